package text

import (
	"math"
	"sort"
	"strings"

	"github.com/glonorce/docuforge/geom"
	"github.com/glonorce/docuforge/model"
)

// ExtractorConfig holds configuration for structure extraction
type ExtractorConfig struct {
	// GapFactor is the maximum horizontal gap between glyphs of one word,
	// as a multiple of the glyph font size. Default: 0.20
	GapFactor float64

	// BaselineTolerance is the vertical band within which glyphs share a
	// text line (points). Default: 3.0
	BaselineTolerance float64

	// ParagraphGapFactor is the baseline gap, as a multiple of the median
	// line spacing, above which a new paragraph starts. Default: 1.8
	ParagraphGapFactor float64

	// MaxBlockGap is the absolute ceiling on the paragraph gap (points).
	// Pages with very few lines can have a huge median spacing; the ceiling
	// keeps distant furniture like footers from fusing into body text.
	// Default: 72
	MaxBlockGap float64

	// Heading promotion thresholds, as multiples of the body font size.
	// A line whose dominant size exceeds H1Factor becomes a level-1
	// heading, and so on down. Defaults: 2.0, 1.5, 1.2
	H1Factor float64
	H2Factor float64
	H3Factor float64
}

// DefaultExtractorConfig returns sensible default configuration
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		GapFactor:          0.20,
		BaselineTolerance:  3.0,
		ParagraphGapFactor: 1.8,
		MaxBlockGap:        72.0,
		H1Factor:           2.0,
		H2Factor:           1.5,
		H3Factor:           1.2,
	}
}

// Extractor turns a page's glyphs into paragraph blocks, skipping glyphs
// that fall inside ignore regions (detected tables and charts).
type Extractor struct {
	config ExtractorConfig
}

// NewExtractor creates an extractor with default configuration
func NewExtractor() *Extractor {
	return &Extractor{config: DefaultExtractorConfig()}
}

// NewExtractorWithConfig creates an extractor with custom configuration
func NewExtractorWithConfig(config ExtractorConfig) *Extractor {
	return &Extractor{config: config}
}

// Config returns the extractor's configuration
func (e *Extractor) Config() ExtractorConfig {
	return e.config
}

// line is an assembled text line with its dominant font size.
type line struct {
	words    []model.Word
	bbox     model.BBox
	baseline float64
	size     float64
}

// Extract returns the prose blocks of a page in reading order. A glyph is
// masked out when its bounding-box center lies inside any ignore region, so
// table and chart content never leaks into prose.
func (e *Extractor) Extract(ix *geom.Index, ignore []model.Region) []model.Block {
	glyphs := e.maskGlyphs(ix.Glyphs(), ignore)
	if len(glyphs) == 0 {
		return nil
	}

	words := MergeWords(glyphs, e.config.GapFactor, e.config.BaselineTolerance)
	lines := e.assembleLines(words)
	if len(lines) == 0 {
		return nil
	}

	bodySize := dominantSize(lines)
	blocks := e.groupBlocks(lines)

	out := make([]model.Block, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, e.renderBlock(b, bodySize))
	}
	return out
}

// maskGlyphs drops glyphs whose center falls inside an ignore region
func (e *Extractor) maskGlyphs(glyphs []model.Glyph, ignore []model.Region) []model.Glyph {
	if len(ignore) == 0 {
		return glyphs
	}
	out := make([]model.Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		center := g.BBox.Center()
		masked := false
		for _, r := range ignore {
			if r.BBox.Contains(center) {
				masked = true
				break
			}
		}
		if !masked {
			out = append(out, g)
		}
	}
	return out
}

// assembleLines groups words by baseline. Words arrive in reading order
// from MergeWords, so lines come out top to bottom.
func (e *Extractor) assembleLines(words []model.Word) []line {
	var lines []line
	for _, w := range words {
		if n := len(lines); n > 0 && math.Abs(w.Baseline-lines[n-1].baseline) <= e.config.BaselineTolerance {
			l := &lines[n-1]
			l.words = append(l.words, w)
			l.bbox = l.bbox.Union(w.BBox)
			if w.Size > l.size {
				l.size = w.Size
			}
			continue
		}
		lines = append(lines, line{
			words:    []model.Word{w},
			bbox:     w.BBox,
			baseline: w.Baseline,
			size:     w.Size,
		})
	}
	return lines
}

// groupBlocks splits lines into paragraphs at large baseline gaps or font
// size changes. Size changes matter because a heading followed at tight
// spacing by body text must not fuse into one block.
func (e *Extractor) groupBlocks(lines []line) [][]line {
	if len(lines) == 0 {
		return nil
	}

	spacing := medianSpacing(lines)
	maxGap := spacing * e.config.ParagraphGapFactor
	if e.config.MaxBlockGap > 0 && maxGap > e.config.MaxBlockGap {
		maxGap = e.config.MaxBlockGap
	}

	var blocks [][]line
	current := []line{lines[0]}
	for _, l := range lines[1:] {
		prev := current[len(current)-1]
		gap := l.baseline - prev.baseline
		sizeBreak := math.Abs(l.size-prev.size) > prev.size*0.15
		if (spacing > 0 && gap > maxGap) || sizeBreak {
			blocks = append(blocks, current)
			current = nil
		}
		current = append(current, l)
	}
	blocks = append(blocks, current)
	return blocks
}

// medianSpacing returns the median baseline-to-baseline distance, or 0 when
// the page has fewer than two lines.
func medianSpacing(lines []line) float64 {
	if len(lines) < 2 {
		return 0
	}
	gaps := make([]float64, 0, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		gaps = append(gaps, lines[i].baseline-lines[i-1].baseline)
	}
	sort.Float64s(gaps)
	n := len(gaps)
	if n%2 == 1 {
		return gaps[n/2]
	}
	return (gaps[n/2-1] + gaps[n/2]) / 2
}

// dominantSize returns the most common line font size, weighted by word
// count, as the page's body text size.
func dominantSize(lines []line) float64 {
	counts := make(map[float64]int)
	for _, l := range lines {
		counts[l.size] += len(l.words)
	}
	var best float64
	bestCount := -1
	for size, n := range counts {
		if n > bestCount || (n == bestCount && size < best) {
			best = size
			bestCount = n
		}
	}
	return best
}

// renderBlock joins a block's lines into flowing text and promotes
// oversized blocks to headings.
func (e *Extractor) renderBlock(block []line, bodySize float64) model.Block {
	var sb strings.Builder
	bbox := block[0].bbox
	blockSize := 0.0

	for i, l := range block {
		if i > 0 {
			sb.WriteString(" ")
		}
		for j, w := range l.words {
			if j > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(w.Text)
		}
		bbox = bbox.Union(l.bbox)
		if l.size > blockSize {
			blockSize = l.size
		}
	}

	level := 0
	if bodySize > 0 {
		ratio := blockSize / bodySize
		switch {
		case ratio > e.config.H1Factor:
			level = 1
		case ratio > e.config.H2Factor:
			level = 2
		case ratio >= e.config.H3Factor:
			level = 3
		}
	}

	return model.Block{
		Text:         sb.String(),
		BBox:         bbox,
		HeadingLevel: level,
	}
}
