// Package tables extracts table structure from classified page regions.
//
// The [Detector] derives a cell grid from two kinds of evidence, in
// preference order: drawn gridlines, and vertical whitespace separators
// through the region's words. Row structure comes from horizontal lines
// when present, otherwise from clustered word baselines with an adaptive
// sparse-row rule: a nearly empty row survives only if its baseline sits on
// the table's row pitch or on a drawn line. Candidates that fail structural
// validation are demoted, never emitted half-broken.
package tables
