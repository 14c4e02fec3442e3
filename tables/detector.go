package tables

import (
	"math"
	"sort"
	"strings"

	"github.com/glonorce/docuforge/geom"
	"github.com/glonorce/docuforge/layout"
	"github.com/glonorce/docuforge/model"
	"github.com/glonorce/docuforge/text"
)

// Healer repairs extracted cell text. The zero value of a detector works
// without one.
type Healer interface {
	Heal(s string) string
}

// Config holds detector configuration
type Config struct {
	// MinRows is the minimum number of rows for a valid table. Default: 2
	MinRows int

	// MinCols is the minimum number of columns for a valid table. Default: 2
	MinCols int

	// AngleTolerance is the maximum deviation, in degrees, for a line to
	// count as horizontal or vertical. Default: 10
	AngleTolerance float64

	// AlignTolerance is the clustering and dedup tolerance for boundary
	// coordinates (points). Default: 3.0
	AlignTolerance float64

	// BaselineTolerance is the vertical band within which words share a
	// row (points). Default: 3.0
	BaselineTolerance float64

	// GapFactor is the glyph-merge gap threshold used when rebuilding cell
	// words, as a multiple of font size. Default: 0.20
	GapFactor float64

	// RiverWidthFactor is the minimum whitespace-separator width as a
	// multiple of the page's median glyph width. Default: 2.5
	RiverWidthFactor float64

	// SparseRowFill is the minimum filled-cell fraction for a row that is
	// not aligned with the table's row rhythm. Default: 0.3
	SparseRowFill float64

	// AlignedRowFill is the relaxed minimum for rows whose baseline matches
	// a gridline or the table's row pitch. A row of mostly empty cells is
	// still a row when the geometry says so. Default: 0.1
	AlignedRowFill float64

	// GhostColumnFill is the filled-cell fraction below which a column is
	// discarded as a spurious split. Default: 0.15
	GhostColumnFill float64

	// LongCellChars is the cell text length treated as prose-like. Default: 60
	LongCellChars int

	// MaxLongCellRatio is the fraction of prose-like cells above which the
	// candidate is demoted back to prose. Default: 0.3
	MaxLongCellRatio float64

	// MaxEmptyRatio is the fraction of empty cells above which the
	// candidate is demoted. Default: 0.85
	MaxEmptyRatio float64

	// ForceDigitRatio: pages whose digit ratio exceeds this get a full-page
	// borderless attempt when no classified candidate held up. Default: 0.50
	ForceDigitRatio float64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MinRows:           2,
		MinCols:           2,
		AngleTolerance:    10.0,
		AlignTolerance:    3.0,
		BaselineTolerance: 3.0,
		GapFactor:         0.20,
		RiverWidthFactor:  2.5,
		SparseRowFill:     0.3,
		AlignedRowFill:    0.1,
		GhostColumnFill:   0.15,
		LongCellChars:     60,
		MaxLongCellRatio:  0.3,
		MaxEmptyRatio:     0.85,
		ForceDigitRatio:   0.50,
	}
}

// Detector extracts table structure from classified regions. Detection is
// conservative: a candidate that fails structural validation is demoted and
// its content flows back to prose extraction untouched.
type Detector struct {
	config Config
	healer Healer
}

// NewDetector creates a detector with default configuration
func NewDetector() *Detector {
	return &Detector{config: DefaultConfig()}
}

// NewDetectorWithConfig creates a detector with custom configuration
func NewDetectorWithConfig(config Config) *Detector {
	return &Detector{config: config}
}

// SetHealer attaches a cell-text healer
func (d *Detector) SetHealer(h Healer) {
	d.healer = h
}

// DetectAll runs detection over a page's classified table regions and
// returns the confirmed tables together with the regions they came from.
// Every classified candidate gets an attempt; the page digit ratio only
// adds work, never removes it: a digit-heavy page on which no candidate
// held up gets one full-page borderless pass, catching tables the
// classifier never proposed.
func (d *Detector) DetectAll(ix *geom.Index, regions []model.Region) ([]*model.Table, []model.Region) {
	var tables []*model.Table
	var confirmed []model.Region
	for _, r := range regions {
		if r.Kind != model.RegionTable {
			continue
		}
		if table, ok := d.Detect(r, ix); ok {
			tables = append(tables, table)
			r.BBox = table.BBox
			confirmed = append(confirmed, r)
		}
	}

	if len(tables) == 0 && ix.DigitRatio() > d.config.ForceDigitRatio && ix.GlyphCount() > 0 {
		full := model.Region{
			BBox:       model.NewBBox(0, 0, ix.Width(), ix.Height()),
			Kind:       model.RegionTable,
			Confidence: 0.5,
		}
		if table, ok := d.Detect(full, ix); ok {
			tables = append(tables, table)
			full.BBox = table.BBox
			confirmed = append(confirmed, full)
		}
	}
	return tables, confirmed
}

// cellGrid is the working structure: words bucketed into grid cells.
type cellGrid struct {
	rowBounds []float64
	colBounds []float64
	cells     [][][]model.Word // [row][col] -> words
	baselines []float64        // row baseline centers, empty for bordered grids
	bordered  bool
}

// Detect extracts one table from a candidate region. The boolean is false
// when the candidate does not hold up structurally; callers must then treat
// the region's content as prose.
func (d *Detector) Detect(region model.Region, ix *geom.Index) (*model.Table, bool) {
	glyphs := ix.GlyphsIn(region.BBox)
	if len(glyphs) == 0 {
		return nil, false
	}
	words := text.MergeWords(glyphs, d.config.GapFactor, d.config.BaselineTolerance)
	if len(words) == 0 {
		return nil, false
	}

	grid := d.buildGrid(region, ix, words)
	if grid == nil {
		return nil, false
	}

	d.pruneSparseRows(grid, ix)
	d.pruneGhostColumns(grid)
	d.pruneTrailingPageNumber(grid)

	if !d.validate(grid) {
		return nil, false
	}

	return d.render(grid, region), true
}

// buildGrid derives row and column boundaries from line evidence where
// available, falling back to whitespace separators and baseline clusters.
func (d *Detector) buildGrid(region model.Region, ix *geom.Index, words []model.Word) *cellGrid {
	vectors := ix.VectorsIn(region.BBox)

	content := words[0].BBox
	for _, w := range words[1:] {
		content = content.Union(w.BBox)
	}

	hBounds := lineCoords(vectors, d.config.AngleTolerance, d.config.AlignTolerance, true)
	vBounds := lineCoords(vectors, d.config.AngleTolerance, d.config.AlignTolerance, false)

	riverWidth := ix.MedianGlyphWidth() * d.config.RiverWidthFactor
	rivers := riverSeparators(words, region.BBox, riverWidth)

	// Columns: drawn vertical lines win, rivers fill in missing splits.
	var colBounds []float64
	if len(vBounds) >= d.config.MinCols+1 {
		colBounds = mergeBounds(vBounds, rivers, riverWidth/2)
	} else if len(rivers) > 0 {
		colBounds = mergeBounds(rivers, vBounds, d.config.AlignTolerance)
		colBounds = append([]float64{content.X0 - 1}, append(colBounds, content.X1+1)...)
	} else {
		return nil
	}
	colBounds = coverExtent(colBounds, content.X0, content.X1)

	bordered := len(hBounds) >= d.config.MinRows+1

	var rowBounds, baselines []float64
	if bordered {
		rowBounds = coverExtent(hBounds, content.Y0, content.Y1)
	} else {
		baselines = clusterCoords(wordBaselines(words), d.config.BaselineTolerance)
		if len(baselines) < d.config.MinRows {
			return nil
		}
		rowBounds = boundsFromCenters(baselines, content.Y0-1, content.Y1+1)
	}

	grid := &cellGrid{
		rowBounds: rowBounds,
		colBounds: colBounds,
		baselines: baselines,
		bordered:  bordered,
	}
	grid.cells = make([][][]model.Word, len(rowBounds)-1)
	for i := range grid.cells {
		grid.cells[i] = make([][]model.Word, len(colBounds)-1)
	}

	for _, w := range words {
		c := w.BBox.Center()
		row := bucket(rowBounds, c.Y)
		col := bucket(colBounds, c.X)
		if row < 0 || col < 0 {
			continue
		}
		grid.cells[row][col] = append(grid.cells[row][col], w)
	}
	return grid
}

// wordBaselines returns each word's baseline coordinate
func wordBaselines(words []model.Word) []float64 {
	out := make([]float64, len(words))
	for i, w := range words {
		out[i] = w.Baseline
	}
	return out
}

// coverExtent widens the outer boundaries so the content extent falls
// strictly inside the grid.
func coverExtent(bounds []float64, lo, hi float64) []float64 {
	out := make([]float64, len(bounds))
	copy(out, bounds)
	sort.Float64s(out)
	if out[0] > lo {
		out[0] = lo - 1
	}
	if out[len(out)-1] < hi {
		out[len(out)-1] = hi + 1
	}
	return out
}

// bucket returns the index of the interval containing v, or -1
func bucket(bounds []float64, v float64) int {
	idx := sort.SearchFloat64s(bounds, v)
	if idx == 0 || idx == len(bounds) {
		return -1
	}
	return idx - 1
}

// pruneSparseRows drops baseline-derived rows whose fill ratio falls below
// the threshold for their alignment class. A row sitting on the table's row
// pitch, or on a drawn horizontal line, earns the relaxed threshold: sparse
// but aligned rows are real data, unaligned stragglers are caption or noise
// text that leaked into the region.
func (d *Detector) pruneSparseRows(grid *cellGrid, ix *geom.Index) {
	if grid.bordered || len(grid.baselines) == 0 {
		return
	}

	pitch := medianPitch(grid.baselines)
	hLines := lineCoords(ix.Vectors(), d.config.AngleTolerance, d.config.AlignTolerance, true)

	var keptRows [][][]model.Word
	var keptBaselines []float64
	var prevBaseline float64
	havePrev := false

	for i, row := range grid.cells {
		baseline := grid.baselines[i]
		fill := rowFill(row)

		aligned := nearAny(hLines, baseline, d.config.AlignTolerance)
		if !aligned && havePrev && pitch > 0 {
			gap := baseline - prevBaseline
			mult := math.Round(gap / pitch)
			aligned = mult >= 1 && math.Abs(gap-mult*pitch) <= d.config.AlignTolerance
		}

		minFill := d.config.SparseRowFill
		if aligned {
			minFill = d.config.AlignedRowFill
		}
		if fill < minFill {
			continue
		}

		keptRows = append(keptRows, row)
		keptBaselines = append(keptBaselines, baseline)
		prevBaseline = baseline
		havePrev = true
	}

	grid.cells = keptRows
	grid.baselines = keptBaselines
}

func rowFill(row [][]model.Word) float64 {
	if len(row) == 0 {
		return 0
	}
	filled := 0
	for _, cell := range row {
		if len(cell) > 0 {
			filled++
		}
	}
	return float64(filled) / float64(len(row))
}

func nearAny(values []float64, v, tol float64) bool {
	for _, x := range values {
		if math.Abs(x-v) <= tol {
			return true
		}
	}
	return false
}

func medianPitch(baselines []float64) float64 {
	if len(baselines) < 2 {
		return 0
	}
	gaps := make([]float64, 0, len(baselines)-1)
	for i := 1; i < len(baselines); i++ {
		gaps = append(gaps, baselines[i]-baselines[i-1])
	}
	sort.Float64s(gaps)
	return gaps[len(gaps)/2]
}

// pruneGhostColumns removes columns that are nearly empty across all rows.
// Jitter in whitespace separators can split one real column in two; the
// spurious half shows up as a ghost.
func (d *Detector) pruneGhostColumns(grid *cellGrid) {
	if len(grid.cells) == 0 {
		return
	}
	cols := len(grid.cells[0])
	rows := len(grid.cells)

	keep := make([]bool, cols)
	for c := 0; c < cols; c++ {
		filled := 0
		for r := 0; r < rows; r++ {
			if len(grid.cells[r][c]) > 0 {
				filled++
			}
		}
		keep[c] = float64(filled)/float64(rows) >= d.config.GhostColumnFill
	}

	for r := range grid.cells {
		var kept [][]model.Word
		for c, ok := range keep {
			if ok {
				kept = append(kept, grid.cells[r][c])
			}
		}
		grid.cells[r] = kept
	}
}

// pruneTrailingPageNumber drops a final row whose only content is a
// page-number token. Footers sitting close under a table routinely get
// swallowed by the region.
func (d *Detector) pruneTrailingPageNumber(grid *cellGrid) {
	n := len(grid.cells)
	if n == 0 {
		return
	}
	last := grid.cells[n-1]

	var only string
	filled := 0
	for _, cell := range last {
		if len(cell) > 0 {
			filled++
			only = joinWords(cell)
		}
	}
	if filled == 1 && layout.IsPageNumberLine(only) {
		grid.cells = grid.cells[:n-1]
		if len(grid.baselines) == n {
			grid.baselines = grid.baselines[:n-1]
		}
	}
}

// validate applies the structural sanity checks that demote false positives
func (d *Detector) validate(grid *cellGrid) bool {
	rows := len(grid.cells)
	if rows < d.config.MinRows {
		return false
	}
	cols := len(grid.cells[0])
	if cols < d.config.MinCols {
		return false
	}

	var empty, long, total int
	for _, row := range grid.cells {
		for _, cell := range row {
			total++
			if len(cell) == 0 {
				empty++
				continue
			}
			if len(joinWords(cell)) > d.config.LongCellChars {
				long++
			}
		}
	}
	if total == 0 {
		return false
	}
	if float64(empty)/float64(total) > d.config.MaxEmptyRatio {
		return false
	}
	if filled := total - empty; filled > 0 && float64(long)/float64(filled) > d.config.MaxLongCellRatio {
		return false
	}
	return true
}

// render materializes the final table, healing cell text when a healer is
// attached.
func (d *Detector) render(grid *cellGrid, region model.Region) *model.Table {
	rows := len(grid.cells)
	cols := len(grid.cells[0])

	table := model.NewTable(rows, cols)
	table.Bordered = grid.bordered
	table.Confidence = region.Confidence

	var bbox model.BBox
	haveBox := false

	for r, row := range grid.cells {
		for c, cell := range row {
			txt := joinWords(cell)
			if d.healer != nil && txt != "" {
				txt = d.healer.Heal(txt)
			}
			var cellBox model.BBox
			for i, w := range cell {
				if i == 0 {
					cellBox = w.BBox
				} else {
					cellBox = cellBox.Union(w.BBox)
				}
			}
			table.Rows[r][c] = model.Cell{Text: txt, BBox: cellBox}
			if len(cell) > 0 {
				if !haveBox {
					bbox = cellBox
					haveBox = true
				} else {
					bbox = bbox.Union(cellBox)
				}
			}
		}
	}

	if haveBox {
		table.BBox = bbox
	} else {
		table.BBox = region.BBox
	}
	return table
}

// joinWords concatenates cell words in reading order
func joinWords(words []model.Word) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Text
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}
