// Package model provides the shared data types for document conversion.
//
// This package defines the intermediate representation flowing through the
// pipeline: raw page input ([PageData] with [Glyph] and [Vector] primitives),
// classified [Region] areas, reconstructed [Word] and [Block] prose,
// detected [Table] structures, and the per-page and per-document results
// ([PageResult], [DocumentResult]).
//
// # Coordinate system
//
// All geometry uses a top-left origin with Y increasing downward, matching
// the order in which text is read. A [BBox] stores its top-left corner in
// (X0, Y0) and its bottom-right corner in (X1, Y1).
package model
