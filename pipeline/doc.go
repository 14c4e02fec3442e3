// Package pipeline drives a page through the extraction stages and
// assembles documents into markdown.
//
// The [Controller] runs the per-page state machine: layout analysis,
// region masking, structure and table extraction (concurrently), the OCR
// gate and fallback, then healing and assembly. Page failures are isolated
// into error-state results that keep their slot in the document.
// [Controller.Finalize] performs the document-wide cleanup that needs all
// pages at once: header/footer pruning, blacklist filtering, and markdown
// rendering.
package pipeline
