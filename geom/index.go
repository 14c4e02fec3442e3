package geom

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/glonorce/docuforge/model"
)

// ErrMalformedPage is returned by Load when page data cannot be indexed.
var ErrMalformedPage = errors.New("malformed page data")

// baselineTolerance is the vertical band, in points, within which glyphs are
// considered to sit on the same text line for reading-order purposes.
const baselineTolerance = 3.0

// Index is a spatial index over one page's glyphs and vector primitives. It
// is immutable after Load and safe for concurrent readers.
type Index struct {
	number  int
	width   float64
	height  float64
	glyphs  []model.Glyph // sorted in reading order
	vectors []model.Vector
}

// Load builds an index for a page. Glyphs with invalid geometry are dropped;
// a page whose dimensions are not positive, or whose content is entirely
// invalid while claiming content, fails with ErrMalformedPage.
func Load(page model.PageData) (*Index, error) {
	if page.Width <= 0 || page.Height <= 0 {
		return nil, fmt.Errorf("%w: page %d has dimensions %.1fx%.1f",
			ErrMalformedPage, page.Number, page.Width, page.Height)
	}

	glyphs := make([]model.Glyph, 0, len(page.Glyphs))
	for _, g := range page.Glyphs {
		if !g.BBox.IsValid() || g.Text == "" {
			continue
		}
		glyphs = append(glyphs, g)
	}
	if len(page.Glyphs) > 0 && len(glyphs) == 0 {
		return nil, fmt.Errorf("%w: page %d has %d glyphs, none with usable geometry",
			ErrMalformedPage, page.Number, len(page.Glyphs))
	}

	vectors := make([]model.Vector, 0, len(page.Vectors))
	for _, v := range page.Vectors {
		if !v.BBox.IsValid() {
			continue
		}
		vectors = append(vectors, v)
	}

	sortReadingOrder(glyphs)

	return &Index{
		number:  page.Number,
		width:   page.Width,
		height:  page.Height,
		glyphs:  glyphs,
		vectors: vectors,
	}, nil
}

// sortReadingOrder orders glyphs top-to-bottom by baseline band, then
// left-to-right within a band. The sort is stable so source order breaks
// ties for overlapping glyphs.
func sortReadingOrder(glyphs []model.Glyph) {
	sort.SliceStable(glyphs, func(i, j int) bool {
		bi, bj := glyphs[i].Baseline(), glyphs[j].Baseline()
		if diff := bi - bj; diff > baselineTolerance || diff < -baselineTolerance {
			return bi < bj
		}
		return glyphs[i].BBox.X0 < glyphs[j].BBox.X0
	})
}

// Number returns the 1-based page number
func (ix *Index) Number() int { return ix.number }

// Width returns the page width in points
func (ix *Index) Width() float64 { return ix.width }

// Height returns the page height in points
func (ix *Index) Height() float64 { return ix.height }

// GlyphCount returns the number of indexed glyphs
func (ix *Index) GlyphCount() int { return len(ix.glyphs) }

// VectorCount returns the number of indexed vector primitives
func (ix *Index) VectorCount() int { return len(ix.vectors) }

// Glyphs returns all glyphs in reading order. The returned slice is shared;
// callers must not modify it.
func (ix *Index) Glyphs() []model.Glyph {
	return ix.glyphs
}

// Vectors returns all vector primitives. The returned slice is shared;
// callers must not modify it.
func (ix *Index) Vectors() []model.Vector {
	return ix.vectors
}

// GlyphsIn returns the glyphs whose center lies inside bbox, in reading
// order.
func (ix *Index) GlyphsIn(bbox model.BBox) []model.Glyph {
	var out []model.Glyph
	for _, g := range ix.glyphs {
		if bbox.Contains(g.BBox.Center()) {
			out = append(out, g)
		}
	}
	return out
}

// VectorsIn returns the vector primitives whose bounding box intersects
// bbox.
func (ix *Index) VectorsIn(bbox model.BBox) []model.Vector {
	var out []model.Vector
	for _, v := range ix.vectors {
		if bbox.Intersects(v.BBox) {
			out = append(out, v)
		}
	}
	return out
}

// MedianGlyphWidth returns the median width of the indexed glyphs, or 0 for
// an empty page. Whitespace glyphs are excluded since their advance widths
// vary wildly with justification.
func (ix *Index) MedianGlyphWidth() float64 {
	widths := make([]float64, 0, len(ix.glyphs))
	for _, g := range ix.glyphs {
		if strings.TrimSpace(g.Text) == "" {
			continue
		}
		widths = append(widths, g.BBox.Width())
	}
	if len(widths) == 0 {
		return 0
	}
	sort.Float64s(widths)
	mid := len(widths) / 2
	if len(widths)%2 == 0 {
		return (widths[mid-1] + widths[mid]) / 2
	}
	return widths[mid]
}

// DigitRatio returns the fraction of non-space glyphs that are decimal
// digits. Used as a cheap prior for how table-like a page is.
func (ix *Index) DigitRatio() float64 {
	var digits, total int
	for _, g := range ix.glyphs {
		r := []rune(g.Text)
		if len(r) == 0 || strings.TrimSpace(g.Text) == "" {
			continue
		}
		total++
		if r[0] >= '0' && r[0] <= '9' {
			digits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(digits) / float64(total)
}
