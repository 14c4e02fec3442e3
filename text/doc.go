// Package text reconstructs words and prose structure from raw glyphs.
//
// [MergeWords] performs the glyph-to-word merge: glyphs on a shared
// baseline fuse when the horizontal gap between them is small relative to
// the font size, and output text is NFC normalized. The [Extractor] builds
// on that to produce paragraph blocks in reading order, masking out glyphs
// that belong to table or chart regions and promoting oversized lines to
// headings.
package text
