package text

import (
	"math"
	"sort"
	"strings"

	"github.com/glonorce/docuforge/model"
	"golang.org/x/text/unicode/norm"
)

// MergeWords reconstructs words from positioned glyphs. Glyphs are grouped
// into baseline lines within baselineTol points, then merged left to right
// whenever the horizontal gap to the previous glyph is at most
// gapFactor times the glyph's font size. Output text is NFC normalized so
// combining accents from the page source collapse into precomposed runes.
func MergeWords(glyphs []model.Glyph, gapFactor, baselineTol float64) []model.Word {
	if len(glyphs) == 0 {
		return nil
	}

	lines := groupLines(glyphs, baselineTol)

	var words []model.Word
	for _, line := range lines {
		words = append(words, mergeLine(line, gapFactor)...)
	}
	return words
}

// groupLines buckets glyphs into baseline bands. Input order does not
// matter; output lines run top to bottom with glyphs sorted left to right.
func groupLines(glyphs []model.Glyph, baselineTol float64) [][]model.Glyph {
	sorted := make([]model.Glyph, len(glyphs))
	copy(sorted, glyphs)
	sort.SliceStable(sorted, func(i, j int) bool {
		bi, bj := sorted[i].Baseline(), sorted[j].Baseline()
		if diff := bi - bj; diff > baselineTol || diff < -baselineTol {
			return bi < bj
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	var lines [][]model.Glyph
	var current []model.Glyph
	var baseline float64

	for _, g := range sorted {
		if len(current) > 0 && math.Abs(g.Baseline()-baseline) > baselineTol {
			lines = append(lines, current)
			current = nil
		}
		if len(current) == 0 {
			baseline = g.Baseline()
		}
		current = append(current, g)
	}
	if len(current) > 0 {
		lines = append(lines, current)
	}

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool {
			return line[i].BBox.X0 < line[j].BBox.X0
		})
	}
	return lines
}

// mergeLine walks one line left to right and splits words at gaps larger
// than gapFactor times the font size. Explicit space glyphs always split
// and are not carried into any word.
func mergeLine(line []model.Glyph, gapFactor float64) []model.Word {
	var words []model.Word

	var sb strings.Builder
	var bbox model.BBox
	var size float64
	var lastX1 float64
	open := false

	flush := func() {
		if !open {
			return
		}
		text := norm.NFC.String(sb.String())
		if strings.TrimSpace(text) != "" {
			words = append(words, model.Word{
				Text:     text,
				BBox:     bbox,
				Size:     size,
				Baseline: bbox.Y1,
			})
		}
		sb.Reset()
		open = false
	}

	for _, g := range line {
		if strings.TrimSpace(g.Text) == "" {
			flush()
			lastX1 = g.BBox.X1
			continue
		}

		maxGap := gapFactor * g.Size
		if open && g.BBox.X0-lastX1 > maxGap {
			flush()
		}

		if !open {
			bbox = g.BBox
			size = g.Size
			open = true
		} else {
			bbox = bbox.Union(g.BBox)
			if g.Size > size {
				size = g.Size
			}
		}
		sb.WriteString(g.Text)
		lastX1 = g.BBox.X1
	}
	flush()

	return words
}
