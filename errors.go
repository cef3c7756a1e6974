package glyphcache

import "fmt"

// AtlasFullError is returned when a glyph still cannot be placed after
// the single grow-then-retry the cache performs. It is unrecoverable
// for that glyph at that size and scale; callers should substitute a
// missing-glyph marker or abort the text run rather than retry.
type AtlasFullError struct {
	// AtlasWidth and AtlasHeight are the dimensions after growth.
	AtlasWidth  int
	AtlasHeight int

	// GlyphWidth and GlyphHeight are the rejected reservation.
	GlyphWidth  int
	GlyphHeight int
}

func (e *AtlasFullError) Error() string {
	return fmt.Sprintf("glyphcache: atlas full: no room for %dx%d glyph in %dx%d atlas",
		e.GlyphWidth, e.GlyphHeight, e.AtlasWidth, e.AtlasHeight)
}

// ConfigError reports an invalid cache configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "glyphcache: invalid config." + e.Field + ": " + e.Reason
}
