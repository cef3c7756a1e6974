package glyphcache

import "github.com/gogpu/glyphcache/font"

// ShapedGlyph is one positioned glyph as produced by a text-shaping
// collaborator. The cache consumes glyph ids from shaped runs; it
// performs no shaping itself (no codepoint-to-glyph sequencing, bidi,
// or line breaking).
type ShapedGlyph struct {
	// GID is the glyph index in the font.
	GID font.GlyphID

	// XOffset and YOffset are fine positioning adjustments applied on
	// top of the pen position, in pixels.
	XOffset float64
	YOffset float64

	// XAdvance and YAdvance move the pen after this glyph, in pixels.
	XAdvance float64
	YAdvance float64

	// Cluster is the index of the source text cluster this glyph was
	// shaped from.
	Cluster int
}
