// Package geom builds a queryable spatial index over a page's raw content.
//
// [Load] validates one page of glyph and vector data and returns an [Index]
// supporting rectangular queries ([Index.GlyphsIn], [Index.VectorsIn]) and
// full reading-order traversal ([Index.Glyphs]). The index also exposes the
// page statistics downstream stages key their thresholds on, such as
// [Index.MedianGlyphWidth] and [Index.DigitRatio].
package geom
