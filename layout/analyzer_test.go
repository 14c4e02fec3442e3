package layout

import (
	"testing"

	"github.com/glonorce/docuforge/geom"
	"github.com/glonorce/docuforge/model"
)

func makeHLine(x0, x1, y float64) model.Vector {
	return model.Vector{
		Kind:  model.VectorLine,
		Start: model.Point{X: x0, Y: y},
		End:   model.Point{X: x1, Y: y},
		BBox:  model.NewBBox(x0, y, x1, y),
	}
}

func makeVLine(x, y0, y1 float64) model.Vector {
	return model.Vector{
		Kind:  model.VectorLine,
		Start: model.Point{X: x, Y: y0},
		End:   model.Point{X: x, Y: y1},
		BBox:  model.NewBBox(x, y0, x, y1),
	}
}

func makeCurve(x0, y0, x1, y1 float64) model.Vector {
	return model.Vector{
		Kind: model.VectorCurve,
		BBox: model.NewBBox(x0, y0, x1, y1),
	}
}

func makeGlyph(text string, x, y float64) model.Glyph {
	return model.Glyph{
		Text: text,
		BBox: model.NewBBox(x, y, x+6, y+10),
		Size: 10,
	}
}

func loadPage(t *testing.T, glyphs []model.Glyph, vectors []model.Vector) *geom.Index {
	t.Helper()
	ix, err := geom.Load(model.PageData{
		Number:  1,
		Width:   600,
		Height:  800,
		Glyphs:  glyphs,
		Vectors: vectors,
	})
	if err != nil {
		t.Fatalf("loading page: %v", err)
	}
	return ix
}

// gridVectors builds a 3x3 cell grid: 4 horizontal and 4 vertical lines.
func gridVectors(x0, y0 float64) []model.Vector {
	var vectors []model.Vector
	for i := 0; i < 4; i++ {
		vectors = append(vectors, makeHLine(x0, x0+300, y0+float64(i)*30))
		vectors = append(vectors, makeVLine(x0+float64(i)*100, y0, y0+90))
	}
	return vectors
}

func TestClassifyDetectsGrid(t *testing.T) {
	ix := loadPage(t, nil, gridVectors(50, 100))

	regions := NewClassifier().Classify(ix)
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	r := regions[0]
	if r.Kind != model.RegionTable {
		t.Errorf("expected table region, got %v", r.Kind)
	}
	if r.Confidence < 0.8 {
		t.Errorf("grid-backed table should be high confidence, got %f", r.Confidence)
	}
	if r.BBox.X0 > 51 || r.BBox.Y0 > 101 || r.BBox.X1 < 349 || r.BBox.Y1 < 189 {
		t.Errorf("unexpected region bounds %+v", r.BBox)
	}
}

func TestClassifySplitsStackedTables(t *testing.T) {
	vectors := append(gridVectors(50, 100), gridVectors(50, 400)...)
	ix := loadPage(t, nil, vectors)

	regions := NewClassifier().Classify(ix)
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions for stacked grids, got %d", len(regions))
	}
}

func TestClassifyIgnoresSparseLines(t *testing.T) {
	// A single horizontal rule (a separator) is not a table.
	ix := loadPage(t, nil, []model.Vector{makeHLine(50, 550, 100)})

	regions := NewClassifier().Classify(ix)
	if len(regions) != 0 {
		t.Errorf("expected no regions for a lone rule, got %d", len(regions))
	}
}

func TestClassifyDetectsChart(t *testing.T) {
	var vectors []model.Vector
	for i := 0; i < 8; i++ {
		vectors = append(vectors, makeCurve(100+float64(i)*20, 200, 140+float64(i)*20, 300))
	}
	ix := loadPage(t, nil, vectors)

	regions := NewClassifier().Classify(ix)
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	if regions[0].Kind != model.RegionChart {
		t.Errorf("expected chart region, got %v", regions[0].Kind)
	}
}

func TestClassifyChartSuppressesGridlines(t *testing.T) {
	// Chart with rectilinear axis gridlines: curves should win over the
	// sparse line grid for overlapping borderless candidates, and the dense
	// curve cluster must not register as a table.
	var vectors []model.Vector
	for i := 0; i < 8; i++ {
		vectors = append(vectors, makeCurve(100+float64(i)*20, 200, 140+float64(i)*20, 300))
	}
	// Sparse text inside the chart area: three aligned short rows that
	// could look like a borderless table.
	var glyphs []model.Glyph
	for row := 0; row < 3; row++ {
		y := 210 + float64(row)*15
		glyphs = append(glyphs, makeGlyph("1", 110, y), makeGlyph("2", 200, y))
	}
	ix := loadPage(t, glyphs, vectors)

	regions := NewClassifier().Classify(ix)
	for _, r := range regions {
		if r.Kind == model.RegionTable {
			t.Errorf("chart interior misclassified as table: %+v", r)
		}
	}
}

func TestClassifyDetectsWhitespaceRivers(t *testing.T) {
	// Five rows, three columns separated by wide whitespace rivers, no
	// lines at all.
	var glyphs []model.Glyph
	for row := 0; row < 5; row++ {
		y := 100 + float64(row)*15
		for col, x := range []float64{50, 200, 350} {
			for i := 0; i < 5; i++ {
				glyphs = append(glyphs, makeGlyph(string(rune('a'+col)), x+float64(i)*7, y))
			}
		}
	}
	ix := loadPage(t, glyphs, nil)

	regions := NewClassifier().Classify(ix)
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}
	r := regions[0]
	if r.Kind != model.RegionTable {
		t.Errorf("expected table region, got %v", r.Kind)
	}
	if r.Confidence >= 0.9 {
		t.Errorf("borderless candidate should carry lower confidence, got %f", r.Confidence)
	}
}

func TestClassifyDetectsTwoColumnRivers(t *testing.T) {
	// The smallest borderless layout: three rows, two columns, one interior
	// river between them.
	var glyphs []model.Glyph
	for row := 0; row < 3; row++ {
		y := 100 + float64(row)*15
		for col, x := range []float64{50, 200} {
			for i := 0; i < 4; i++ {
				glyphs = append(glyphs, makeGlyph(string(rune('a'+col)), x+float64(i)*7, y))
			}
		}
	}
	ix := loadPage(t, glyphs, nil)

	regions := NewClassifier().Classify(ix)
	if len(regions) != 1 {
		t.Fatalf("expected 1 region for a two-column block, got %d", len(regions))
	}
	if regions[0].Kind != model.RegionTable {
		t.Errorf("expected table region, got %v", regions[0].Kind)
	}
}

func TestClassifyProseHasNoRivers(t *testing.T) {
	// Continuous prose rows with only inter-word gaps.
	var glyphs []model.Glyph
	for row := 0; row < 5; row++ {
		y := 100 + float64(row)*15
		x := 50.0
		for i := 0; i < 60; i++ {
			glyphs = append(glyphs, makeGlyph("a", x, y))
			x += 7
			if i%6 == 5 {
				x += 4 // word gap, narrower than a river
			}
		}
	}
	ix := loadPage(t, glyphs, nil)

	regions := NewClassifier().Classify(ix)
	if len(regions) != 0 {
		t.Errorf("expected no regions for prose, got %d", len(regions))
	}
}
