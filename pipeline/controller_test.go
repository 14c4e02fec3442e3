package pipeline

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/glonorce/docuforge/model"
)

func textLine(s string, x, y, size float64) []model.Glyph {
	var glyphs []model.Glyph
	advance := size * 0.7
	for i, r := range []rune(s) {
		gx := x + float64(i)*advance
		glyphs = append(glyphs, model.Glyph{
			Text: string(r),
			BBox: model.NewBBox(gx, y, gx+size*0.6, y+size),
			Size: size,
		})
	}
	return glyphs
}

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

// reportPage builds a page with a short prose paragraph, a bordered 3x2
// table, and a standalone footer page number.
func reportPage(number int) model.PageData {
	var glyphs []model.Glyph
	glyphs = append(glyphs, textLine("This report summarizes the", 50, 100, 10)...)
	glyphs = append(glyphs, textLine("measured results for part "+string(rune('a'+number)), 50, 112, 10)...)

	rows := []struct {
		left, right string
		y           float64
	}{
		{"Name", "Score", 300},
		{"Ana", "95", 325},
		{"Bora", "88", 350},
	}
	for _, r := range rows {
		glyphs = append(glyphs, textLine(r.left, 50, r.y, 10)...)
		glyphs = append(glyphs, textLine(r.right, 200, r.y, 10)...)
	}

	glyphs = append(glyphs, textLine("- "+string(rune('0'+number))+" -", 280, 750, 10)...)

	var vectors []model.Vector
	for _, y := range []float64{295, 320, 345, 370} {
		vectors = append(vectors, makeHLine(45, 340, y))
	}
	for _, x := range []float64{45, 190, 340} {
		vectors = append(vectors, makeVLine(x, 295, 370))
	}

	return model.PageData{
		Number:  number,
		Width:   600,
		Height:  800,
		Glyphs:  glyphs,
		Vectors: vectors,
	}
}

func TestProcessPageExtractsTableAndProse(t *testing.T) {
	c := NewController(Config{})
	result := c.ProcessPage(reportPage(1))

	if result.Err != nil {
		t.Fatalf("unexpected page error: %v", result.Err)
	}
	if len(result.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(result.Tables))
	}
	table := result.Tables[0]
	if table.RowCount() != 3 || table.ColCount() != 2 {
		t.Errorf("expected 3x2 table, got %dx%d", table.RowCount(), table.ColCount())
	}

	var prose strings.Builder
	for _, b := range result.Prose {
		prose.WriteString(b.Text)
		prose.WriteString("\n")
	}
	if !strings.Contains(prose.String(), "This report summarizes") {
		t.Errorf("prose missing: %q", prose.String())
	}
	if strings.Contains(prose.String(), "Score") {
		t.Errorf("table content leaked into prose: %q", prose.String())
	}
}

func TestProcessPageDetectsBorderlessTable(t *testing.T) {
	// No ruling lines anywhere: column whitespace is the only table signal.
	// The table must still come out as structure and its tokens must not
	// leak into prose.
	var glyphs []model.Glyph
	glyphs = append(glyphs, textLine("This quarterly report covers the usual measurements.", 50, 100, 10)...)
	glyphs = append(glyphs, textLine("Each value was checked twice before publication.", 50, 112, 10)...)

	rows := []struct {
		left, right string
		y           float64
	}{
		{"Name", "Score", 300},
		{"Ana", "95", 315},
		{"Bora", "88", 330},
	}
	for _, r := range rows {
		glyphs = append(glyphs, textLine(r.left, 50, r.y, 10)...)
		glyphs = append(glyphs, textLine(r.right, 200, r.y, 10)...)
	}

	c := NewController(Config{})
	result := c.ProcessPage(model.PageData{Number: 1, Width: 600, Height: 800, Glyphs: glyphs})
	if result.Err != nil {
		t.Fatalf("unexpected page error: %v", result.Err)
	}
	if len(result.Tables) != 1 {
		t.Fatalf("expected 1 borderless table, got %d", len(result.Tables))
	}
	table := result.Tables[0]
	if table.RowCount() != 3 || table.ColCount() != 2 {
		t.Fatalf("expected 3x2 table, got %dx%d", table.RowCount(), table.ColCount())
	}
	if got := table.Rows[1][1].Text; got != "95" {
		t.Errorf("cell 1,1 = %q, want 95", got)
	}

	var prose strings.Builder
	for _, b := range result.Prose {
		prose.WriteString(b.Text)
		prose.WriteString("\n")
	}
	if !strings.Contains(prose.String(), "quarterly report") {
		t.Errorf("prose missing: %q", prose.String())
	}
	for _, token := range []string{"Score", "95", "Bora"} {
		if strings.Contains(prose.String(), token) {
			t.Errorf("table token %q leaked into prose: %q", token, prose.String())
		}
	}
}

func TestProcessPageReturnsPrunedRowToProse(t *testing.T) {
	// A bordered grid whose last row holds only a page-number token. The
	// detector prunes the row; its text must flow back to prose instead of
	// vanishing inside the stale candidate mask.
	var glyphs []model.Glyph
	rows := []struct {
		left, right string
		y           float64
	}{
		{"Name", "Score", 300},
		{"Ana", "95", 325},
		{"Bora", "88", 350},
	}
	for _, r := range rows {
		glyphs = append(glyphs, textLine(r.left, 50, r.y, 10)...)
		glyphs = append(glyphs, textLine(r.right, 200, r.y, 10)...)
	}
	glyphs = append(glyphs, textLine("- 3 -", 50, 375, 10)...)

	var vectors []model.Vector
	for _, y := range []float64{295, 320, 345, 370, 395} {
		vectors = append(vectors, makeHLine(45, 340, y))
	}
	for _, x := range []float64{45, 190, 340} {
		vectors = append(vectors, makeVLine(x, 295, 395))
	}

	c := NewController(Config{})
	result := c.ProcessPage(model.PageData{Number: 1, Width: 600, Height: 800, Glyphs: glyphs, Vectors: vectors})
	if result.Err != nil {
		t.Fatalf("unexpected page error: %v", result.Err)
	}
	if len(result.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(result.Tables))
	}
	if result.Tables[0].RowCount() != 3 {
		t.Errorf("expected page-number row pruned from table, got %d rows", result.Tables[0].RowCount())
	}

	var prose strings.Builder
	for _, b := range result.Prose {
		prose.WriteString(b.Text)
		prose.WriteString("\n")
	}
	if !strings.Contains(prose.String(), "- 3 -") {
		t.Errorf("pruned row text lost, prose: %q", prose.String())
	}
	if strings.Contains(prose.String(), "Score") {
		t.Errorf("table content leaked into prose: %q", prose.String())
	}
}

func TestProcessPageRejectsMalformed(t *testing.T) {
	c := NewController(Config{})
	result := c.ProcessPage(model.PageData{Number: 7, Width: 0, Height: 800})
	if result.Err == nil {
		t.Fatal("expected error result for malformed page")
	}
	if result.Number != 7 {
		t.Errorf("error result must keep its page slot, got %d", result.Number)
	}
}

func TestProcessPagesCancellation(t *testing.T) {
	c := NewController(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pages := []model.PageData{reportPage(1), reportPage(2)}
	results := c.ProcessPages(ctx, pages)
	if len(results) != 2 {
		t.Fatalf("cancelled run must keep page slots, got %d", len(results))
	}
	for _, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("page %d: expected context.Canceled, got %v", r.Number, r.Err)
		}
	}
}

type fakeRecognizer struct {
	text string
	err  error
}

func (f *fakeRecognizer) RecognizePage([]byte) (string, error) {
	return f.text, f.err
}

func TestProcessPageOCRFallback(t *testing.T) {
	// Nearly empty page with an image: the gate flags it and the
	// recognizer output replaces the glyph extraction.
	page := model.PageData{
		Number: 1,
		Width:  600,
		Height: 800,
		Glyphs: textLine("xy", 50, 100, 10),
		Image:  []byte{0x89, 0x50},
	}

	c := NewController(Config{Recognizer: &fakeRecognizer{text: "Recovered page text."}})
	result := c.ProcessPage(page)
	if !result.OCRUsed {
		t.Fatal("expected OCR path to be taken")
	}
	if len(result.Prose) != 1 || !strings.Contains(result.Prose[0].Text, "Recovered page text") {
		t.Errorf("unexpected OCR prose: %+v", result.Prose)
	}
}

func TestProcessPageOCRFailureKeepsGlyphs(t *testing.T) {
	page := model.PageData{
		Number: 1,
		Width:  600,
		Height: 800,
		Glyphs: textLine("short", 50, 100, 10),
		Image:  []byte{0x89, 0x50},
	}

	c := NewController(Config{Recognizer: &fakeRecognizer{err: errors.New("engine down")}})
	result := c.ProcessPage(page)
	if result.OCRUsed {
		t.Error("failed OCR must not be reported as used")
	}
	if len(result.Prose) != 1 || result.Prose[0].Text != "short" {
		t.Errorf("glyph extraction should survive OCR failure: %+v", result.Prose)
	}
}

func TestFinalizePrunesAndRenders(t *testing.T) {
	c := NewController(Config{})

	var pages []model.PageResult
	for _, p := range []model.PageData{reportPage(1), reportPage(2)} {
		pages = append(pages, c.ProcessPage(p))
	}

	doc := c.Finalize("report.pdf", pages)
	if doc.Path != "report.pdf" {
		t.Errorf("unexpected path %q", doc.Path)
	}
	if doc.Pages[0].PageNumber != "1" || doc.Pages[1].PageNumber != "2" {
		t.Errorf("page number tokens not captured: %q %q",
			doc.Pages[0].PageNumber, doc.Pages[1].PageNumber)
	}
	if strings.Contains(doc.Markdown, "- 1 -") {
		t.Error("footer page number leaked into markdown")
	}
	if !strings.Contains(doc.Markdown, "## Page 1") || !strings.Contains(doc.Markdown, "## Page 2") {
		t.Error("page headings missing from markdown")
	}
	if !strings.Contains(doc.Markdown, "| Name | Score |") {
		t.Errorf("table missing from markdown:\n%s", doc.Markdown)
	}
	if !strings.Contains(doc.Markdown, "This report summarizes") {
		t.Error("prose missing from markdown")
	}
}

func TestFinalizeAppliesBlacklist(t *testing.T) {
	c := NewController(Config{
		Blacklist: []*regexp.Regexp{regexp.MustCompile(`(?i)confidential`)},
	})

	pages := []model.PageResult{{
		Number: 1,
		Prose: []model.Block{
			{Text: "Normal content."},
			{Text: "CONFIDENTIAL draft"},
		},
	}}

	doc := c.Finalize("x.pdf", pages)
	if strings.Contains(doc.Markdown, "CONFIDENTIAL") {
		t.Errorf("blacklisted line survived:\n%s", doc.Markdown)
	}
	if !strings.Contains(doc.Markdown, "Normal content.") {
		t.Error("normal content was dropped")
	}
}

func TestRenderDocumentErrorPlaceholder(t *testing.T) {
	pages := []model.PageResult{
		{Number: 1, Prose: []model.Block{{Text: "fine"}}},
		{Number: 2, Err: errors.New("boom")},
	}
	md := renderDocument(pages)
	if !strings.Contains(md, "[ERROR: page 2: boom]") {
		t.Errorf("error placeholder missing:\n%s", md)
	}
	if !strings.Contains(md, "fine") {
		t.Errorf("healthy page content missing:\n%s", md)
	}
}
