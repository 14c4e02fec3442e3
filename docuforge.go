// Package docuforge converts paginated document geometry into clean
// markdown using layout signals alone: glyph positions, ruling lines, and
// whitespace structure.
//
// Basic usage:
//
//	results, err := docuforge.Convert(docs...).Run(ctx)
//	if err != nil {
//	    // handle error
//	}
//
// With options:
//
//	results, err := docuforge.Convert(docs...).
//	    WithSettings(settings).
//	    WithDictionaryFile("freq_tr.txt").
//	    Run(ctx)
//
// For streaming progress, Stream returns the event and result channels of
// the underlying job orchestrator. The lower-level pipeline and jobs
// packages are also available for advanced use.
package docuforge

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/glonorce/docuforge/heal"
	"github.com/glonorce/docuforge/jobs"
	"github.com/glonorce/docuforge/model"
	"github.com/glonorce/docuforge/ocr"
	"github.com/glonorce/docuforge/pipeline"
)

// Converter is the fluent entry point. Configure it with the With*
// methods, then call Run or Stream.
type Converter struct {
	docs       []model.Document
	settings   Settings
	dict       *heal.Dictionary
	dictPath   string
	recognizer pipeline.Recognizer
}

// Convert starts a conversion over the given documents
func Convert(docs ...model.Document) *Converter {
	return &Converter{
		docs:     docs,
		settings: DefaultSettings(),
	}
}

// WithSettings replaces the converter's settings
func (c *Converter) WithSettings(s Settings) *Converter {
	c.settings = s
	return c
}

// WithDictionary sets an already-loaded frequency dictionary. It takes
// precedence over any dictionary path in the settings.
func (c *Converter) WithDictionary(d *heal.Dictionary) *Converter {
	c.dict = d
	return c
}

// WithDictionaryFile sets the path of a frequency word list to load when
// the conversion starts.
func (c *Converter) WithDictionaryFile(path string) *Converter {
	c.dictPath = path
	return c
}

// WithRecognizer sets the OCR engine used for pages the gate flags. The
// gosseract-backed ocr.Client satisfies it when built with the ocr tag.
func (c *Converter) WithRecognizer(r pipeline.Recognizer) *Converter {
	c.recognizer = r
	return c
}

// OCRMode overrides the OCR routing mode: "auto", "on", or "off"
func (c *Converter) OCRMode(mode string) *Converter {
	c.settings.OCRMode = mode
	return c
}

// Workers overrides the worker pool size
func (c *Converter) Workers(n int) *Converter {
	c.settings.Workers = n
	return c
}

// build compiles the settings into a wired orchestrator.
func (c *Converter) build() (*jobs.Orchestrator, error) {
	dict := c.dict
	if dict == nil && c.dictPath == "" {
		c.dictPath = c.settings.DictionaryPath
	}
	if dict == nil && c.dictPath != "" {
		f, err := os.Open(c.dictPath)
		if err != nil {
			return nil, fmt.Errorf("opening dictionary: %w", err)
		}
		defer f.Close()
		dict, err = heal.LoadDictionary(f)
		if err != nil {
			return nil, fmt.Errorf("loading dictionary %s: %w", c.dictPath, err)
		}
	}

	blacklist := make([]*regexp.Regexp, 0, len(c.settings.Blacklist))
	for _, pattern := range c.settings.Blacklist {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("blacklist pattern %q: %w", pattern, err)
		}
		blacklist = append(blacklist, re)
	}

	healer := heal.NewHealer(dict)
	controller := pipeline.NewController(pipeline.Config{
		Healer:     healer,
		Gate:       ocr.NewGate(ocr.ParseMode(c.settings.OCRMode), dict),
		Recognizer: c.recognizer,
		Blacklist:  blacklist,
	})

	return jobs.NewOrchestrator(controller, jobs.Config{
		Workers:   c.settings.Workers,
		ChunkSize: c.settings.ChunkSize,
	}), nil
}

// Run converts all documents and returns their results in input order.
// Progress events are drained internally; use Stream to observe them.
func (c *Converter) Run(ctx context.Context) ([]model.DocumentResult, error) {
	o, err := c.build()
	if err != nil {
		return nil, err
	}

	events, results := o.Run(ctx, c.docs)
	go func() {
		for range events {
		}
	}()

	collected := make([]jobs.Result, 0, len(c.docs))
	for r := range results {
		collected = append(collected, r)
	}
	sort.Slice(collected, func(i, j int) bool {
		return collected[i].FileIdx < collected[j].FileIdx
	})

	out := make([]model.DocumentResult, len(collected))
	for i, r := range collected {
		out[i] = r.Doc
	}
	return out, ctx.Err()
}

// Stream starts the conversion and exposes the orchestrator's progress
// and result channels. Both must be drained; they close when the run is
// over.
func (c *Converter) Stream(ctx context.Context) (<-chan jobs.ProgressEvent, <-chan jobs.Result, error) {
	o, err := c.build()
	if err != nil {
		return nil, nil, err
	}
	events, results := o.Run(ctx, c.docs)
	return events, results, nil
}

// Must panics if err is non-nil. Intended for scripts and tests.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
