package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/glonorce/docuforge/geom"
	"github.com/glonorce/docuforge/heal"
	"github.com/glonorce/docuforge/layout"
	"github.com/glonorce/docuforge/model"
	"github.com/glonorce/docuforge/ocr"
	"github.com/glonorce/docuforge/tables"
	"github.com/glonorce/docuforge/text"
)

// State identifies a stage of the per-page pipeline.
type State int

const (
	StateLayoutAnalysis State = iota
	StateMasking
	StateStructureExtraction
	StateTableExtraction
	StateAssembly
	StateCleanup
	StateDone
	StateError
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateLayoutAnalysis:
		return "layout-analysis"
	case StateMasking:
		return "masking"
	case StateStructureExtraction:
		return "structure-extraction"
	case StateTableExtraction:
		return "table-extraction"
	case StateAssembly:
		return "assembly"
	case StateCleanup:
		return "cleanup"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Recognizer is the external OCR collaborator. The gosseract-backed
// ocr.Client satisfies it when built with the ocr tag.
type Recognizer interface {
	RecognizePage(imageData []byte) (string, error)
}

// Config assembles the pipeline's collaborators. Zero-value fields get
// defaults; Recognizer may stay nil, in which case OCR-flagged pages keep
// their glyph-derived extraction with a warning.
type Config struct {
	Classifier *layout.Classifier
	Detector   *tables.Detector
	Extractor  *text.Extractor
	Healer     *heal.Healer
	Gate       *ocr.Gate
	Pruner     *layout.Pruner
	Recognizer Recognizer

	// Blacklist lines matching any of these patterns are dropped during
	// document cleanup.
	Blacklist []*regexp.Regexp

	// Logger for debug/warning messages.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Classifier == nil {
		c.Classifier = layout.NewClassifier()
	}
	if c.Detector == nil {
		c.Detector = tables.NewDetector()
	}
	if c.Extractor == nil {
		c.Extractor = text.NewExtractor()
	}
	if c.Healer == nil {
		c.Healer = heal.NewHealer(nil)
	}
	if c.Gate == nil {
		c.Gate = ocr.NewGate(ocr.ModeAuto, c.Healer.Dictionary())
	}
	if c.Pruner == nil {
		c.Pruner = layout.NewPruner()
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Controller drives one page at a time through the extraction states:
// layout analysis, region masking, concurrent structure and table
// extraction, OCR fallback, and assembly. Document-wide cleanup runs in
// Finalize once all pages of a document are back together.
type Controller struct {
	config Config
}

// NewController creates a controller, applying defaults for any
// collaborator not set in the config.
func NewController(config Config) *Controller {
	config.defaults()
	c := &Controller{config: config}
	c.config.Detector.SetHealer(c.config.Healer)
	return c
}

// ProcessPages runs the page pipeline over a contiguous page range.
// Cancellation is checked between pages; pages not reached carry the
// context error so the document keeps its full page count.
func (c *Controller) ProcessPages(ctx context.Context, pages []model.PageData) []model.PageResult {
	results := make([]model.PageResult, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(pages); j++ {
				results[j] = model.PageResult{Number: pages[j].Number, Err: err}
			}
			return results
		}
		results[i] = c.ProcessPage(page)
	}
	return results
}

// ProcessPage runs the state machine for a single page. A failure at any
// state produces an error-state result occupying the page's slot; it never
// aborts the surrounding document.
func (c *Controller) ProcessPage(page model.PageData) model.PageResult {
	log := c.config.Logger.With("page", page.Number)

	ix, err := geom.Load(page)
	if err != nil {
		log.Warn("page rejected", "err", err)
		return model.PageResult{Number: page.Number, Err: err}
	}

	// Layout analysis.
	regions := c.config.Classifier.Classify(ix)
	log.Debug("layout analyzed", "state", StateLayoutAnalysis.String(), "regions", len(regions))

	// Structure and table extraction run concurrently: prose is masked
	// with the classified regions while detection confirms or demotes the
	// table candidates.
	var (
		wg        sync.WaitGroup
		blocks    []model.Block
		pageTabs  []*model.Table
		confirmed []model.Region
	)
	charts := filterRegions(regions, model.RegionChart)
	candidates := filterRegions(regions, model.RegionTable)

	wg.Add(2)
	go func() {
		defer wg.Done()
		blocks = c.config.Extractor.Extract(ix, regions)
	}()
	go func() {
		defer wg.Done()
		pageTabs, confirmed = c.config.Detector.DetectAll(ix, regions)
	}()
	wg.Wait()

	// The prose mask must use the finalized regions, not the candidates:
	// detection shrinks confirmed regions to the table's own extent and
	// demotes failures entirely, and glyphs falling outside the final
	// tables belong to prose. Re-extract whenever the set changed at all.
	if !regionsEqual(confirmed, candidates) {
		ignore := append(append([]model.Region{}, confirmed...), charts...)
		blocks = c.config.Extractor.Extract(ix, ignore)
	}

	result := model.PageResult{
		Number: page.Number,
		Prose:  blocks,
		Tables: pageTabs,
		Charts: charts,
	}

	// OCR gate: judge the raw reconstruction quality of the whole page,
	// rebuilt with the same merge tunables the extractor uses.
	tcfg := c.config.Extractor.Config()
	words := text.MergeWords(ix.Glyphs(), tcfg.GapFactor, tcfg.BaselineTolerance)
	if c.config.Gate.ShouldOCR(words) {
		c.applyOCR(page, &result, log)
	}

	// Assembly: heal what we are keeping.
	for i := range result.Prose {
		result.Prose[i].Text = c.config.Healer.Heal(result.Prose[i].Text)
	}
	log.Debug("page assembled", "state", StateDone.String(),
		"blocks", len(result.Prose), "tables", len(result.Tables), "ocr", result.OCRUsed)
	return result
}

// applyOCR replaces glyph-derived extraction with recognizer output. When
// no recognizer is wired or recognition fails, the glyph extraction stays
// and the page is only logged; a degraded page beats an empty one.
func (c *Controller) applyOCR(page model.PageData, result *model.PageResult, log *slog.Logger) {
	if c.config.Recognizer == nil {
		log.Warn("page flagged for OCR but no recognizer configured")
		return
	}
	if len(page.Image) == 0 {
		log.Warn("page flagged for OCR but carries no image")
		return
	}

	recognized, err := c.config.Recognizer.RecognizePage(page.Image)
	if err != nil {
		log.Warn("OCR failed, keeping glyph extraction", "err", err)
		return
	}

	var blocks []model.Block
	for _, para := range strings.Split(recognized, "\n\n") {
		para = strings.TrimSpace(strings.ReplaceAll(para, "\n", " "))
		if para == "" {
			continue
		}
		blocks = append(blocks, model.Block{Text: para})
	}

	result.Prose = blocks
	result.Tables = nil
	result.OCRUsed = true
}

// Finalize runs the document-wide cleanup over all pages of one document:
// header and footer pruning, blacklist filtering, and markdown assembly.
func (c *Controller) Finalize(path string, pages []model.PageResult) model.DocumentResult {
	// Prune headers/footers on block granularity across the document.
	pageLines := make([][]string, len(pages))
	for i, p := range pages {
		lines := make([]string, 0, len(p.Prose))
		for _, b := range p.Prose {
			lines = append(lines, b.Text)
		}
		pageLines[i] = lines
	}
	pruned := c.config.Pruner.Prune(pageLines)

	for i := range pages {
		pages[i].PageNumber = pruned[i].PageNumber
		pages[i].Prose = filterBlocks(pages[i].Prose, pruned[i].Lines)
		pages[i].Prose = c.applyBlacklist(pages[i].Prose)
	}

	return model.DocumentResult{
		Path:     path,
		Pages:    pages,
		Markdown: renderDocument(pages),
	}
}

// filterBlocks keeps the blocks whose text survived pruning, preserving
// order and duplicates via multiset semantics.
func filterBlocks(blocks []model.Block, kept []string) []model.Block {
	budget := make(map[string]int, len(kept))
	for _, l := range kept {
		budget[l]++
	}
	out := make([]model.Block, 0, len(blocks))
	for _, b := range blocks {
		if budget[b.Text] > 0 {
			budget[b.Text]--
			out = append(out, b)
		}
	}
	return out
}

func (c *Controller) applyBlacklist(blocks []model.Block) []model.Block {
	if len(c.config.Blacklist) == 0 {
		return blocks
	}
	out := blocks[:0]
	for _, b := range blocks {
		drop := false
		for _, re := range c.config.Blacklist {
			if re.MatchString(b.Text) {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, b)
		}
	}
	return out
}

// regionsEqual reports whether two region slices describe the same regions
// in the same order.
func regionsEqual(a, b []model.Region) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Kind != b[i].Kind || a[i].BBox != b[i].BBox {
			return false
		}
	}
	return true
}

func filterRegions(regions []model.Region, kind model.RegionKind) []model.Region {
	var out []model.Region
	for _, r := range regions {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// ErrorPlaceholder renders the in-document marker for a failed page
func ErrorPlaceholder(page model.PageResult) string {
	return fmt.Sprintf("[ERROR: page %d: %v]", page.Number, page.Err)
}
