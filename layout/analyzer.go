package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/glonorce/docuforge/geom"
	"github.com/glonorce/docuforge/model"
)

// ClassifierConfig holds configuration for region classification
type ClassifierConfig struct {
	// AngleTolerance is the maximum deviation, in degrees, for a line to
	// count as horizontal or vertical. Default: 10
	AngleTolerance float64

	// MinRows is the minimum number of rows for a grid candidate. Default: 2
	MinRows int

	// MinCols is the minimum number of columns for a grid candidate. Default: 2
	MinCols int

	// MaxRowGap is the maximum vertical gap between horizontal gridlines
	// belonging to the same table (points). Larger gaps split candidates.
	// Default: 50
	MaxRowGap float64

	// AlignTolerance is the clustering tolerance for line coordinates
	// (points). Default: 3.0
	AlignTolerance float64

	// RiverWidthFactor is the minimum whitespace-river width as a multiple
	// of the page's median glyph width. Default: 2.5
	RiverWidthFactor float64

	// MinRiverRows is the minimum number of consecutive text rows a river
	// must span. Default: 3
	MinRiverRows int

	// MinRivers is the minimum number of interior rivers for a borderless
	// table candidate. A single river already separates two columns.
	// Default: 1
	MinRivers int

	// MaxLineGap is the maximum baseline gap for rows to be considered part
	// of the same text block when searching for rivers (points). Default: 18
	MaxLineGap float64

	// ChartCurveThreshold is the curve count above which a vector cluster is
	// classified as a chart. Default: 5
	ChartCurveThreshold int

	// ChartDiagonalThreshold is the diagonal-line count above which a vector
	// cluster is classified as a chart. Default: 10
	ChartDiagonalThreshold int

	// MinRegionArea is the minimum area for a chart region (square points).
	// Default: 5000
	MinRegionArea float64

	// MaxChartGlyphDensity is the maximum glyph count per 1000 square points
	// for a cluster to still count as a chart rather than dense text.
	// Default: 2.0
	MaxChartGlyphDensity float64
}

// DefaultClassifierConfig returns sensible default configuration
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		AngleTolerance:         10.0,
		MinRows:                2,
		MinCols:                2,
		MaxRowGap:              50.0,
		AlignTolerance:         3.0,
		RiverWidthFactor:       2.5,
		MinRiverRows:           3,
		MinRivers:              1,
		MaxLineGap:             18.0,
		ChartCurveThreshold:    5,
		ChartDiagonalThreshold: 10,
		MinRegionArea:          5000.0,
		MaxChartGlyphDensity:   2.0,
	}
}

// Classifier partitions a page into table, chart, and unclassified regions
// using only geometric evidence: line grids, whitespace rivers, and vector
// cluster complexity.
type Classifier struct {
	config ClassifierConfig
}

// NewClassifier creates a classifier with default configuration
func NewClassifier() *Classifier {
	return &Classifier{config: DefaultClassifierConfig()}
}

// NewClassifierWithConfig creates a classifier with custom configuration
func NewClassifierWithConfig(config ClassifierConfig) *Classifier {
	return &Classifier{config: config}
}

// Classify analyzes one indexed page and returns the detected regions. Table
// regions from visible gridlines carry higher confidence than borderless
// river candidates. Chart regions suppress overlapping borderless table
// candidates, since axis lines and gridlines mimic table geometry.
func (c *Classifier) Classify(ix *geom.Index) []model.Region {
	grids := c.gridCandidates(ix)
	charts := c.chartRegions(ix)
	rivers := c.riverCandidates(ix, grids)

	regions := make([]model.Region, 0, len(grids)+len(charts)+len(rivers))
	regions = append(regions, grids...)
	regions = append(regions, charts...)

	for _, r := range rivers {
		if overlapsAny(r.BBox, charts, 0.3) {
			continue
		}
		if overlapsAny(r.BBox, grids, 0.3) {
			continue
		}
		regions = append(regions, r)
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].BBox.Y0 < regions[j].BBox.Y0
	})
	return regions
}

func overlapsAny(b model.BBox, regions []model.Region, threshold float64) bool {
	for _, r := range regions {
		if b.OverlapRatio(r.BBox) > threshold {
			return true
		}
	}
	return false
}

// gridCandidates finds bordered table regions from horizontal and vertical
// line evidence. Rectangles contribute their edges; a run of horizontal
// lines split at gaps larger than MaxRowGap forms one candidate band.
func (c *Classifier) gridCandidates(ix *geom.Index) []model.Region {
	hLines, vLines := c.rectilinearLines(ix.Vectors())
	if len(hLines) == 0 || len(vLines) == 0 {
		return nil
	}

	hClusters := clusterSegments(hLines, c.config.AlignTolerance, true)
	bands := c.splitBands(hClusters)

	var regions []model.Region
	for _, band := range bands {
		if len(band) < c.config.MinRows+1 {
			continue
		}

		bandBox := band[0].bbox
		for _, h := range band[1:] {
			bandBox = bandBox.Union(h.bbox)
		}

		// Vertical lines must overlap the band's vertical extent to count
		// as its columns.
		var cols []segment
		grown := bandBox.Expand(c.config.AlignTolerance)
		for _, v := range vLines {
			if grown.Intersects(v.BBox) {
				cols = append(cols, segment{pos: (v.BBox.X0 + v.BBox.X1) / 2, bbox: v.BBox})
			}
		}
		colClusters := clusterSegments2(cols, c.config.AlignTolerance)
		if len(colClusters) < c.config.MinCols+1 {
			continue
		}

		for _, col := range colClusters {
			bandBox = bandBox.Union(col.bbox)
		}

		regions = append(regions, model.Region{
			BBox:       bandBox,
			Kind:       model.RegionTable,
			Confidence: 0.9,
		})
	}
	return regions
}

// rectilinearLines splits vectors into horizontal and vertical segments.
// Rectangles decompose into their four edges.
func (c *Classifier) rectilinearLines(vectors []model.Vector) (h, v []model.Vector) {
	tol := c.config.AngleTolerance
	for _, vec := range vectors {
		switch vec.Kind {
		case model.VectorLine:
			if vec.IsHorizontal(tol) {
				h = append(h, vec)
			} else if vec.IsVertical(tol) {
				v = append(v, vec)
			}
		case model.VectorRect:
			b := vec.BBox
			top := model.Vector{Kind: model.VectorLine, Start: model.Point{X: b.X0, Y: b.Y0}, End: model.Point{X: b.X1, Y: b.Y0}, BBox: model.NewBBox(b.X0, b.Y0, b.X1, b.Y0)}
			bot := model.Vector{Kind: model.VectorLine, Start: model.Point{X: b.X0, Y: b.Y1}, End: model.Point{X: b.X1, Y: b.Y1}, BBox: model.NewBBox(b.X0, b.Y1, b.X1, b.Y1)}
			left := model.Vector{Kind: model.VectorLine, Start: model.Point{X: b.X0, Y: b.Y0}, End: model.Point{X: b.X0, Y: b.Y1}, BBox: model.NewBBox(b.X0, b.Y0, b.X0, b.Y1)}
			right := model.Vector{Kind: model.VectorLine, Start: model.Point{X: b.X1, Y: b.Y0}, End: model.Point{X: b.X1, Y: b.Y1}, BBox: model.NewBBox(b.X1, b.Y0, b.X1, b.Y1)}
			h = append(h, top, bot)
			v = append(v, left, right)
		}
	}
	return h, v
}

// segment is a clustered rectilinear line: its cross-axis position and the
// union of the member line boxes.
type segment struct {
	pos  float64
	bbox model.BBox
}

// clusterSegments groups parallel lines whose cross-axis coordinate falls
// within tol of each other. horizontal selects clustering on Y.
func clusterSegments(lines []model.Vector, tol float64, horizontal bool) []segment {
	segs := make([]segment, 0, len(lines))
	for _, l := range lines {
		pos := (l.BBox.X0 + l.BBox.X1) / 2
		if horizontal {
			pos = (l.BBox.Y0 + l.BBox.Y1) / 2
		}
		segs = append(segs, segment{pos: pos, bbox: l.BBox})
	}
	return clusterSegments2(segs, tol)
}

func clusterSegments2(segs []segment, tol float64) []segment {
	if len(segs) == 0 {
		return nil
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].pos < segs[j].pos })

	var out []segment
	cur := segs[0]
	count := 1.0
	for _, s := range segs[1:] {
		if s.pos-cur.pos <= tol {
			cur.bbox = cur.bbox.Union(s.bbox)
			cur.pos = (cur.pos*count + s.pos) / (count + 1)
			count++
			continue
		}
		out = append(out, cur)
		cur = s
		count = 1
	}
	out = append(out, cur)
	return out
}

// splitBands partitions sorted horizontal line clusters into bands separated
// by gaps larger than MaxRowGap. Two stacked tables on one page must not
// merge into a single candidate.
func (c *Classifier) splitBands(hClusters []segment) [][]segment {
	var bands [][]segment
	var cur []segment
	for _, h := range hClusters {
		if len(cur) > 0 && h.pos-cur[len(cur)-1].pos > c.config.MaxRowGap {
			bands = append(bands, cur)
			cur = nil
		}
		cur = append(cur, h)
	}
	if len(cur) > 0 {
		bands = append(bands, cur)
	}
	return bands
}

// chartRegions clusters curves and diagonal lines and classifies dense
// clusters with sparse text as charts.
func (c *Classifier) chartRegions(ix *geom.Index) []model.Region {
	type cluster struct {
		bbox      model.BBox
		curves    int
		diagonals int
	}

	var clusters []*cluster
	tol := c.config.AngleTolerance
	for _, v := range ix.Vectors() {
		var isCurve, isDiag bool
		switch v.Kind {
		case model.VectorCurve:
			isCurve = true
		case model.VectorLine:
			isDiag = !v.IsHorizontal(tol) && !v.IsVertical(tol)
		}
		if !isCurve && !isDiag {
			continue
		}

		grown := v.BBox.Expand(10)
		var target *cluster
		for _, cl := range clusters {
			if grown.Intersects(cl.bbox) {
				target = cl
				break
			}
		}
		if target == nil {
			target = &cluster{bbox: v.BBox}
			clusters = append(clusters, target)
		} else {
			target.bbox = target.bbox.Union(v.BBox)
		}
		if isCurve {
			target.curves++
		} else {
			target.diagonals++
		}
	}

	var regions []model.Region
	for _, cl := range clusters {
		if cl.curves <= c.config.ChartCurveThreshold && cl.diagonals <= c.config.ChartDiagonalThreshold {
			continue
		}
		if cl.bbox.Area() < c.config.MinRegionArea {
			continue
		}
		density := float64(len(ix.GlyphsIn(cl.bbox))) / cl.bbox.Area() * 1000
		if density > c.config.MaxChartGlyphDensity {
			continue
		}
		regions = append(regions, model.Region{
			BBox:       cl.bbox,
			Kind:       model.RegionChart,
			Confidence: 0.8,
		})
	}
	return regions
}

// textRow is one baseline-grouped line of glyphs.
type textRow struct {
	baseline float64
	bbox     model.BBox
	glyphs   []model.Glyph
}

// groupRows groups glyphs into baseline rows using the alignment tolerance.
// Glyphs arrive in reading order, so rows come out top to bottom.
func (c *Classifier) groupRows(glyphs []model.Glyph) []textRow {
	var rows []textRow
	for _, g := range glyphs {
		if strings.TrimSpace(g.Text) == "" {
			continue
		}
		if n := len(rows); n > 0 && math.Abs(g.Baseline()-rows[n-1].baseline) <= c.config.AlignTolerance {
			rows[n-1].glyphs = append(rows[n-1].glyphs, g)
			rows[n-1].bbox = rows[n-1].bbox.Union(g.BBox)
			continue
		}
		rows = append(rows, textRow{baseline: g.Baseline(), bbox: g.BBox, glyphs: []model.Glyph{g}})
	}
	return rows
}

// riverCandidates finds borderless table candidates: blocks of consecutive
// text rows crossed by vertical whitespace rivers.
func (c *Classifier) riverCandidates(ix *geom.Index, exclude []model.Region) []model.Region {
	medianWidth := ix.MedianGlyphWidth()
	if medianWidth <= 0 {
		return nil
	}
	riverWidth := medianWidth * c.config.RiverWidthFactor

	rows := c.groupRows(ix.Glyphs())

	// Rows inside already-detected grid regions are off limits.
	filtered := rows[:0]
	for _, r := range rows {
		if !overlapsAny(r.bbox, exclude, 0.5) {
			filtered = append(filtered, r)
		}
	}
	rows = filtered

	var regions []model.Region
	for start := 0; start < len(rows); {
		end := start + 1
		for end < len(rows) && rows[end].baseline-rows[end-1].baseline <= c.config.MaxLineGap {
			end++
		}
		block := rows[start:end]
		if len(block) >= c.config.MinRiverRows {
			if r, ok := c.blockAsTable(block, riverWidth); ok {
				regions = append(regions, r)
			}
		}
		start = end
	}
	return regions
}

// blockAsTable checks one block of rows for interior whitespace rivers and
// returns a borderless table region when enough are found.
func (c *Classifier) blockAsTable(block []textRow, riverWidth float64) (model.Region, bool) {
	bbox := block[0].bbox
	for _, r := range block[1:] {
		bbox = bbox.Union(r.bbox)
	}

	// Multi-column detection needs rows that each span a meaningful part of
	// the block; short fragment rows would fake rivers everywhere.
	rivers := countRivers(block, bbox, riverWidth)
	if rivers < c.config.MinRivers {
		return model.Region{}, false
	}

	return model.Region{
		BBox:       bbox,
		Kind:       model.RegionTable,
		Confidence: 0.6,
	}, true
}

// countRivers projects glyph coverage onto the X axis at 1pt resolution and
// counts interior gaps of at least riverWidth that are empty across every
// row of the block. The first and last bins are eroded so ragged margins do
// not register as rivers.
func countRivers(block []textRow, bbox model.BBox, riverWidth float64) int {
	width := int(math.Ceil(bbox.Width()))
	if width <= 2 {
		return 0
	}

	covered := make([]bool, width)
	for _, row := range block {
		for _, g := range row.glyphs {
			lo := int(math.Floor(g.BBox.X0 - bbox.X0))
			hi := int(math.Ceil(g.BBox.X1 - bbox.X0))
			for i := lo; i < hi && i < width; i++ {
				if i >= 0 {
					covered[i] = true
				}
			}
		}
	}

	// Erode one bin at each edge.
	covered[0] = true
	covered[width-1] = true

	rivers := 0
	run := 0
	for i := 0; i < width; i++ {
		if !covered[i] {
			run++
			continue
		}
		if float64(run) >= riverWidth {
			rivers++
		}
		run = 0
	}
	return rivers
}
