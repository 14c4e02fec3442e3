// Command docuforge converts extracted page geometry into markdown.
//
// It reads one JSON-serialized document per file from the input directory,
// runs the conversion pipeline over them, and writes one .md file per
// document to the output directory.
//
// Usage:
//
//	docuforge -in pages/ -out md/ [-config docuforge.yaml] [-dict freq_tr.txt]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/glonorce/docuforge"
	"github.com/glonorce/docuforge/jobs"
	"github.com/glonorce/docuforge/model"
	"github.com/glonorce/docuforge/ocr"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "docuforge:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		inDir      = flag.String("in", "", "directory of JSON document files (required)")
		outDir     = flag.String("out", "", "directory for markdown output (required)")
		configPath = flag.String("config", "", "YAML settings file")
		dictPath   = flag.String("dict", "", "frequency word list for text healing")
		workers    = flag.Int("workers", 0, "worker pool size (overrides settings)")
		ocrMode    = flag.String("ocr", "", "OCR mode: auto, on, off (overrides settings)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	if *inDir == "" || *outDir == "" {
		flag.Usage()
		return fmt.Errorf("-in and -out are required")
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	settings := docuforge.DefaultSettings()
	if *configPath != "" {
		var err error
		if settings, err = docuforge.LoadSettings(*configPath); err != nil {
			return err
		}
	}
	if *workers > 0 {
		settings.Workers = *workers
	}
	if *ocrMode != "" {
		settings.OCRMode = *ocrMode
	}
	if *dictPath != "" {
		settings.DictionaryPath = *dictPath
	}

	docs, err := loadDocuments(*inDir)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no document files in %s", *inDir)
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conv := docuforge.Convert(docs...).WithSettings(settings)
	if settings.OCRMode != "off" {
		if client, err := ocr.NewClient(settings.OCRLanguages); err != nil {
			slog.Warn("OCR unavailable, continuing without it", "err", err)
		} else {
			defer client.Close()
			conv = conv.WithRecognizer(client)
		}
	}

	events, results, err := conv.Stream(ctx)
	if err != nil {
		return err
	}

	progressDone := make(chan struct{})
	go func() {
		defer close(progressDone)
		reportProgress(events)
	}()

	var failed int
	for r := range results {
		if err := writeResult(*outDir, r.Doc); err != nil {
			fmt.Fprintln(os.Stderr, "docuforge:", err)
			failed++
		}
	}
	<-progressDone

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("interrupted: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed to write", failed, len(docs))
	}
	return nil
}

// loadDocuments reads every *.json file in dir as one document.
func loadDocuments(dir string) ([]model.Document, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	docs := make([]model.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var doc model.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if doc.Path == "" {
			doc.Path = strings.TrimSuffix(filepath.Base(path), ".json")
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func reportProgress(events <-chan jobs.ProgressEvent) {
	for ev := range events {
		switch ev.Type {
		case jobs.EventStarted:
			fmt.Fprintf(os.Stderr, "start  %s (%d pages)\n", ev.Path, ev.TotalPages)
		case jobs.EventChunkDone:
			fmt.Fprintf(os.Stderr, "%3.0f%%   %s (%d/%d pages)\n",
				ev.Percent, ev.Path, ev.PagesDone, ev.TotalPages)
		case jobs.EventChunkFailed:
			fmt.Fprintf(os.Stderr, "fail   %s: %v\n", ev.Path, ev.Err)
		case jobs.EventCancelled:
			fmt.Fprintf(os.Stderr, "skip   %s (cancelled)\n", ev.Path)
		case jobs.EventFileDone:
			fmt.Fprintf(os.Stderr, "done   %s\n", ev.Path)
		}
	}
}

func writeResult(dir string, doc model.DocumentResult) error {
	name := strings.TrimSuffix(filepath.Base(doc.Path), filepath.Ext(doc.Path)) + ".md"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(doc.Markdown), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if failed := doc.FailedPages(); len(failed) > 0 {
		fmt.Fprintf(os.Stderr, "warn   %s: %d pages failed\n", doc.Path, len(failed))
	}
	return nil
}
