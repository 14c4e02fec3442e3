package docuforge

import (
	"context"
	"os"
	"path/filepath"
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

func proseDoc(path, sentence string) model.Document {
	return model.Document{
		Path: path,
		Pages: []model.PageData{{
			Number: 1,
			Width:  600,
			Height: 800,
			Glyphs: textLine(sentence, 50, 100, 10),
		}},
	}
}

func TestConvertRun(t *testing.T) {
	docs := []model.Document{
		proseDoc("a.pdf", "The first document carries this perfectly ordinary prose sentence."),
		proseDoc("b.pdf", "The second document carries another perfectly ordinary sentence here."),
	}

	results, err := Convert(docs...).Workers(2).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Path != "a.pdf" || results[1].Path != "b.pdf" {
		t.Errorf("results out of input order: %q, %q", results[0].Path, results[1].Path)
	}
	if !strings.Contains(results[0].Markdown, "first document") {
		t.Errorf("markdown missing content:\n%s", results[0].Markdown)
	}
	if !strings.Contains(results[1].Markdown, "second document") {
		t.Errorf("markdown missing content:\n%s", results[1].Markdown)
	}
}

func TestConvertBadBlacklist(t *testing.T) {
	s := DefaultSettings()
	s.Blacklist = []string{"("}

	_, err := Convert(proseDoc("x.pdf", "text")).WithSettings(s).Run(context.Background())
	if err == nil {
		t.Fatal("expected error for invalid blacklist pattern")
	}
}

func TestConvertMissingDictionary(t *testing.T) {
	_, err := Convert(proseDoc("x.pdf", "text")).
		WithDictionaryFile(filepath.Join(t.TempDir(), "absent.txt")).
		Run(context.Background())
	if err == nil {
		t.Fatal("expected error for missing dictionary file")
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docuforge.yaml")

	s := DefaultSettings()
	s.Workers = 8
	s.Blacklist = []string{`(?i)draft`}
	if err := s.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Workers != 8 || loaded.OCRMode != "auto" || len(loaded.Blacklist) != 1 {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestLoadSettingsPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("workers: 16\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Workers != 16 {
		t.Errorf("workers not applied: %d", s.Workers)
	}
	if s.ChunkSize != 2 || s.OCRMode != "auto" || s.OCRLanguages != "tur+eng" {
		t.Errorf("defaults lost: %+v", s)
	}
}
