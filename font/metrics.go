package font

// Metrics holds face-wide font metrics, computed once when a Face is
// constructed and immutable for the Face's lifetime. All values except
// UnitsPerEm and PointSize are in scaled pixels at the face's size.
type Metrics struct {
	// UnitsPerEm is the font's design grid resolution.
	UnitsPerEm int

	// PointSize is the size the face was constructed at.
	PointSize float64

	// Ascent is the distance from the baseline to the top of the font
	// (positive).
	Ascent float64

	// Descent is the distance from the baseline to the bottom of the
	// font, stored as a positive value.
	Descent float64

	// LineGap is the recommended extra gap between lines.
	LineGap float64

	// CapHeight is the height of uppercase letters.
	CapHeight float64

	// XHeight is the height of lowercase letters (like 'x').
	XHeight float64

	// UnderlinePosition is the top of the underline stroke relative to
	// the baseline (negative below the baseline).
	UnderlinePosition float64

	// UnderlineThickness is the underline stroke thickness.
	UnderlineThickness float64

	// Monospace reports that every glyph advances by the same width.
	Monospace bool

	// CellWidth is the fixed advance of a monospace font, or zero.
	CellWidth float64
}

// LineHeight returns the recommended vertical distance between the
// baselines of consecutive lines.
func (m Metrics) LineHeight() float64 {
	return m.Ascent + m.Descent + m.LineGap
}
