package font

import "sync/atomic"

// GlyphID is a font-internal glyph index. Index 0 is the reserved
// "missing glyph" for every OpenType font.
type GlyphID uint16

// MissingGlyph is the sentinel id returned by GlyphIndex for
// codepoints the font does not map.
const MissingGlyph GlyphID = 0

// GlyphMetrics holds per-glyph measurements in unscaled font units.
type GlyphMetrics struct {
	// AdvanceX is the horizontal pen advance.
	AdvanceX float64

	// AdvanceY is the vertical pen advance (zero for horizontal fonts).
	AdvanceY float64

	// BearingX is the distance from the pen position to the left edge
	// of the glyph's bounding box.
	BearingX float64

	// BearingY is the distance from the baseline to the top edge of
	// the glyph's bounding box (positive above the baseline).
	BearingY float64

	// Width and Height are the bounding box dimensions.
	Width  float64
	Height float64
}

// RasterizedGlyph describes one rasterization produced by RenderGlyph.
// Width and Height are the pixels actually written to the caller's
// buffer; both are zero for glyphs with no visible ink (space, marks).
type RasterizedGlyph struct {
	// Width and Height of the written bitmap in pixels.
	Width  int
	Height int

	// BearingX and BearingY position the bitmap relative to the pen:
	// left edge offset and top edge height above the baseline, in
	// pixels, corrected for the subpixel placement of the outline.
	BearingX float64
	BearingY float64

	// LogicalHeight is the unscaled (logical point) height of the
	// bitmap, including any padding added during rendering.
	LogicalHeight float64

	// Scale is the scale factor actually used for rasterization.
	Scale float64

	// Color reports that the buffer holds RGBA pixels (4 bytes per
	// pixel) instead of a single-channel alpha mask.
	Color bool
}

// Face is the capability a glyph cache needs from a loaded font:
// codepoint to glyph id mapping, metric queries, and rasterization.
//
// Callers use only this interface; concrete backend types appear only
// at construction. A Face is exclusively owned by one rendering pass.
type Face interface {
	// ID returns the face identity. Each constructed Face has a
	// distinct id; two faces loaded from the same data still differ.
	ID() uint64

	// Size returns the point size this face renders at.
	Size() float64

	// Metrics returns the face-wide metrics, computed once at load.
	Metrics() Metrics

	// GlyphIndex maps a Unicode scalar to a glyph id. It returns
	// MissingGlyph for unmapped codepoints and never fails.
	GlyphIndex(r rune) GlyphID

	// GlyphMetrics returns measurements for a glyph in unscaled font
	// units. The missing glyph yields backend-defined (commonly zero)
	// metrics.
	GlyphMetrics(gid GlyphID) GlyphMetrics

	// RenderGlyph rasterizes a glyph at Size()*scale into buf, row
	// major, never writing past capEdge in either dimension. For mask
	// glyphs one byte per pixel is written; for color glyphs four.
	// buf must hold at least capEdge*capEdge bytes (4x for color) and
	// should be zeroed by the caller beforehand.
	//
	// A 0x0 result is valid and means the glyph has no visible ink.
	// Returns a *RasterizationError if the backend cannot establish a
	// drawing surface for the glyph.
	RenderGlyph(gid GlyphID, scale float64, buf []byte, capEdge int) (RasterizedGlyph, error)

	// Close releases backend resources. The Face is invalid afterward.
	Close() error
}

// faceIDs hands out face identities. Atomic so that faces owned by
// different windows may be constructed from different goroutines.
var faceIDs atomic.Uint64

// nextFaceID returns a process-unique, never-zero face identity.
func nextFaceID() uint64 {
	return faceIDs.Add(1)
}
