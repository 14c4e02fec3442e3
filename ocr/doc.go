// Package ocr provides the OCR fallback path for scanned or corrupted
// pages.
//
// The [Gate] decides per page whether glyph-derived extraction is
// trustworthy, using the extracted character volume, the single-character
// word ratio, and the fraction of dictionary-unrecognized tokens. The
// [Client] wraps Tesseract via gosseract behind the "ocr" build tag; the
// default build carries a stub that fails with ErrOCRNotEnabled, so the
// rest of the pipeline works without a Tesseract installation.
package ocr
