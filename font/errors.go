package font

import "errors"

// Sentinel errors for face construction.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("font: empty font data")

	// ErrFontNotFound is returned when a font file cannot be located.
	ErrFontNotFound = errors.New("font: font not found")

	// ErrFaceClosed is returned when a closed Face is asked to render.
	ErrFaceClosed = errors.New("font: face is closed")
)

// InvalidFontNameError is returned when a font name or path resolves
// to data that is not a parseable font.
type InvalidFontNameError struct {
	Name string
	Err  error
}

func (e *InvalidFontNameError) Error() string {
	return "font: invalid font " + e.Name + ": " + e.Err.Error()
}

func (e *InvalidFontNameError) Unwrap() error { return e.Err }

// RasterizationError is returned when a backend cannot produce a
// drawing surface for one glyph. The caller may substitute an empty
// or placeholder glyph and continue the text run.
type RasterizationError struct {
	GID GlyphID
	Err error
}

func (e *RasterizationError) Error() string {
	return "font: failed to rasterize glyph: " + e.Err.Error()
}

func (e *RasterizationError) Unwrap() error { return e.Err }
