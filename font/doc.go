// Package font provides the font face capability used by the glyph
// cache: glyph id lookup, metric queries, and rasterization into a
// caller-owned buffer.
//
// A Face is polymorphic over rendering backends. Two backends are
// included: an opentype backend built on golang.org/x/image/font/sfnt
// and a gotext backend built on github.com/go-text/typesetting. The
// gotext backend additionally renders embedded bitmap (emoji) glyphs.
//
// Faces are exclusively owned by one rendering pass and are not safe
// for concurrent use.
package font
