// Package glyphcache provides the text rasterization cache used by
// GPU text renderers: a memoizing glyph cache backed by growable
// texture atlases.
//
// # Overview
//
// A GlyphCache answers "give me the pixels and placement for this
// glyph" queries from a rendering pass. On the first lookup of a
// (face, glyph, size, scale) combination the glyph is rasterized
// through the font.Face capability into a reusable scratch buffer,
// packed into a shelf-packed Atlas, and memoized; later lookups are
// O(1) map hits with no side effects.
//
// # Quick Start
//
//	face, err := font.LoadOpenTypeFace("Menlo.ttf", 16)
//	if err != nil {
//		// handle FontNotFound / invalid font
//	}
//	cache := glyphcache.NewDefault()
//
//	g, err := cache.GetOrRender(face, face.GlyphIndex('A'))
//	uv := cache.MaskAtlas().UV(g.Region)
//	// build a GPU draw instance from g and uv
//
// Once per frame, a renderer re-uploads an atlas's Data iff its
// Generation changed since the last observed value.
//
// # Scope
//
// The cache produces pixel data and placement metadata only. Text
// shaping (codepoint-to-glyph sequencing, bidi, line breaking) is the
// caller's job, as is every GPU upload and draw call. The cache is
// exclusively owned by one rendering pass: create one per window so
// windows with different scale factors never cross-contaminate.
package glyphcache
