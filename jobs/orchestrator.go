package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/glonorce/docuforge/model"
	"github.com/glonorce/docuforge/pipeline"
)

// EventType identifies a progress event.
type EventType int

const (
	// EventStarted is emitted once per document before its first chunk.
	EventStarted EventType = iota

	// EventChunkDone reports a completed chunk with updated page counts.
	EventChunkDone

	// EventChunkFailed reports a chunk that panicked. Its pages carry the
	// failure as page errors; the document still completes.
	EventChunkFailed

	// EventCancelled reports a chunk skipped due to cancellation.
	EventCancelled

	// EventFileDone is emitted when all chunks of a document are in and
	// the result has been delivered.
	EventFileDone
)

// String returns the event type name
func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventChunkDone:
		return "chunk_done"
	case EventChunkFailed:
		return "chunk_failed"
	case EventCancelled:
		return "cancelled"
	case EventFileDone:
		return "file_done"
	default:
		return "unknown"
	}
}

// ProgressEvent is one observable step of a conversion run.
type ProgressEvent struct {
	Type       EventType
	FileIdx    int
	Path       string
	PagesDone  int
	TotalPages int
	Percent    float64
	Err        error
}

// ChunkError reports a chunk that could not be processed. It wraps the
// underlying cause, so errors.Is still sees cancellation.
type ChunkError struct {
	Path  string
	Start int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %s[%d]: %v", e.Path, e.Start, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// Result is the finished conversion of one document. Cross-document
// delivery order follows completion, not input order; FileIdx ties the
// result back to the input slice.
type Result struct {
	FileIdx int
	Doc     model.DocumentResult
}

// Config holds orchestrator configuration
type Config struct {
	// Workers is the size of the worker pool. Default: 4
	Workers int

	// ChunkSize is the number of contiguous pages per work unit. Small
	// chunks keep progress granular and bound the cost of a lost chunk.
	// Default: 2
	ChunkSize int

	// Logger for debug/error messages.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = 2
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Orchestrator fans a batch of documents out over a fixed worker pool in
// page-range chunks. Page order within a document is always preserved in
// the assembled result regardless of worker completion order.
type Orchestrator struct {
	config     Config
	controller *pipeline.Controller
}

// NewOrchestrator creates an orchestrator driving the given page
// controller.
func NewOrchestrator(controller *pipeline.Controller, config Config) *Orchestrator {
	config.defaults()
	return &Orchestrator{config: config, controller: controller}
}

// chunkTask is one contiguous page range of one document.
type chunkTask struct {
	fileIdx int
	path    string
	start   int // index of the first page within the document
	pages   []model.PageData
}

// chunkOutcome is the processed form of a chunkTask.
type chunkOutcome struct {
	task    chunkTask
	results []model.PageResult
	err     error // non-nil when the chunk was skipped or panicked
}

// Run starts the conversion and returns the progress and result streams.
// Both channels are closed when the run is over; callers must drain them.
// Cancellation via ctx is cooperative: chunks already running finish their
// current page, pending chunks are skipped, and every document still
// delivers a result with its full page count.
func (o *Orchestrator) Run(ctx context.Context, docs []model.Document) (<-chan ProgressEvent, <-chan Result) {
	events := make(chan ProgressEvent)
	results := make(chan Result, len(docs))

	go o.run(ctx, docs, events, results)
	return events, results
}

func (o *Orchestrator) run(ctx context.Context, docs []model.Document, events chan<- ProgressEvent, results chan<- Result) {
	defer close(events)
	defer close(results)

	tasks := o.chunkDocs(docs)

	for i, doc := range docs {
		events <- ProgressEvent{
			Type:       EventStarted,
			FileIdx:    i,
			Path:       doc.Path,
			TotalPages: len(doc.Pages),
		}
	}

	taskCh := make(chan chunkTask)
	outcomeCh := make(chan chunkOutcome)

	var wg sync.WaitGroup
	for w := 0; w < o.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.worker(ctx, taskCh, outcomeCh)
		}()
	}
	go func() {
		for _, t := range tasks {
			taskCh <- t
		}
		close(taskCh)
		wg.Wait()
		close(outcomeCh)
	}()

	o.collect(docs, tasks, outcomeCh, events, results)
}

// chunkDocs slices every document into contiguous page ranges
func (o *Orchestrator) chunkDocs(docs []model.Document) []chunkTask {
	var tasks []chunkTask
	for i, doc := range docs {
		for start := 0; start < len(doc.Pages); start += o.config.ChunkSize {
			end := start + o.config.ChunkSize
			if end > len(doc.Pages) {
				end = len(doc.Pages)
			}
			tasks = append(tasks, chunkTask{
				fileIdx: i,
				path:    doc.Path,
				start:   start,
				pages:   doc.Pages[start:end],
			})
		}
	}
	return tasks
}

// worker processes chunks until the task channel closes. Cancellation is
// checked before each chunk; a panic inside page processing fails only the
// chunk it happened in.
func (o *Orchestrator) worker(ctx context.Context, taskCh <-chan chunkTask, outcomeCh chan<- chunkOutcome) {
	for task := range taskCh {
		if err := ctx.Err(); err != nil {
			outcomeCh <- chunkOutcome{task: task, results: failChunk(task, err), err: err}
			continue
		}
		outcomeCh <- o.processChunk(ctx, task)
	}
}

func (o *Orchestrator) processChunk(ctx context.Context, task chunkTask) (outcome chunkOutcome) {
	outcome.task = task
	defer func() {
		if r := recover(); r != nil {
			err := &ChunkError{
				Path:  task.path,
				Start: task.start,
				Err:   fmt.Errorf("panic: %v", r),
			}
			o.config.Logger.Error("chunk failed",
				"path", task.path, "start", task.start, "err", err)
			outcome.results = failChunk(task, err)
			outcome.err = err
		}
	}()
	outcome.results = o.controller.ProcessPages(ctx, task.pages)
	return outcome
}

// failChunk builds error-state results so the document keeps its page count
func failChunk(task chunkTask, err error) []model.PageResult {
	results := make([]model.PageResult, len(task.pages))
	for i, p := range task.pages {
		results[i] = model.PageResult{Number: p.Number, Err: err}
	}
	return results
}

// fileState tracks assembly progress for one document.
type fileState struct {
	outcomes  []chunkOutcome
	remaining int
	pagesDone int
}

// collect aggregates chunk outcomes, emits progress, and delivers each
// document's result once its last chunk is in.
func (o *Orchestrator) collect(docs []model.Document, tasks []chunkTask, outcomeCh <-chan chunkOutcome, events chan<- ProgressEvent, results chan<- Result) {
	states := make([]fileState, len(docs))
	for _, t := range tasks {
		states[t.fileIdx].remaining++
	}

	for outcome := range outcomeCh {
		idx := outcome.task.fileIdx
		st := &states[idx]
		st.outcomes = append(st.outcomes, outcome)
		st.remaining--
		st.pagesDone += len(outcome.task.pages)

		total := len(docs[idx].Pages)
		ev := ProgressEvent{
			Type:       EventChunkDone,
			FileIdx:    idx,
			Path:       outcome.task.path,
			PagesDone:  st.pagesDone,
			TotalPages: total,
			Percent:    percent(st.pagesDone, total),
			Err:        outcome.err,
		}
		switch {
		case outcome.err == nil:
		case errors.Is(outcome.err, context.Canceled) || errors.Is(outcome.err, context.DeadlineExceeded):
			ev.Type = EventCancelled
		default:
			ev.Type = EventChunkFailed
		}
		events <- ev

		if st.remaining == 0 {
			results <- Result{FileIdx: idx, Doc: o.assemble(docs[idx], st.outcomes)}
			events <- ProgressEvent{
				Type:       EventFileDone,
				FileIdx:    idx,
				Path:       docs[idx].Path,
				PagesDone:  st.pagesDone,
				TotalPages: total,
				Percent:    percent(st.pagesDone, total),
			}
		}
	}
}

// assemble restores page order from chunk start offsets and runs the
// document-wide finalization.
func (o *Orchestrator) assemble(doc model.Document, outcomes []chunkOutcome) model.DocumentResult {
	sort.Slice(outcomes, func(i, j int) bool {
		return outcomes[i].task.start < outcomes[j].task.start
	})

	pages := make([]model.PageResult, 0, len(doc.Pages))
	for _, oc := range outcomes {
		pages = append(pages, oc.results...)
	}
	return o.controller.Finalize(doc.Path, pages)
}

func percent(done, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(done) / float64(total) * 100
}
