package font

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

func newGoTextRegular(t *testing.T, size float64) *GoTextFace {
	t.Helper()
	f, err := NewGoTextFace(goregular.TTF, size)
	if err != nil {
		t.Fatalf("NewGoTextFace: %v", err)
	}
	return f
}

func TestNewGoTextFace(t *testing.T) {
	f := newGoTextRegular(t, 16)

	if f.Size() != 16 {
		t.Errorf("Size() = %v, want 16", f.Size())
	}
	m := f.Metrics()
	if m.UnitsPerEm <= 0 {
		t.Errorf("UnitsPerEm = %d, want > 0", m.UnitsPerEm)
	}
	if m.Ascent <= 0 {
		t.Errorf("Ascent = %v, want > 0", m.Ascent)
	}
	if m.Descent <= 0 {
		t.Errorf("Descent = %v, want > 0", m.Descent)
	}
	if m.CapHeight <= 0 {
		t.Errorf("CapHeight = %v, want > 0", m.CapHeight)
	}
	if m.XHeight <= 0 || m.XHeight >= m.CapHeight {
		t.Errorf("XHeight = %v, want in (0, CapHeight=%v)", m.XHeight, m.CapHeight)
	}
	if m.Monospace {
		t.Error("a proportional font reported as monospace")
	}
}

func TestNewGoTextFaceEmptyData(t *testing.T) {
	_, err := NewGoTextFace(nil, 16)
	if !errors.Is(err, ErrEmptyFontData) {
		t.Errorf("expected ErrEmptyFontData, got %v", err)
	}
}

func TestLoadGoTextFaceMissingFile(t *testing.T) {
	_, err := LoadGoTextFace(filepath.Join(t.TempDir(), "nope.ttf"), 16)
	if !errors.Is(err, ErrFontNotFound) {
		t.Errorf("expected ErrFontNotFound, got %v", err)
	}
}

func TestLoadGoTextFaceInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.ttf")
	if err := os.WriteFile(path, []byte("junk"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := LoadGoTextFace(path, 16)
	var ferr *InvalidFontNameError
	if !errors.As(err, &ferr) {
		t.Fatalf("expected *InvalidFontNameError, got %v", err)
	}
}

func TestGoTextGlyphIndex(t *testing.T) {
	f := newGoTextRegular(t, 16)

	if gid := f.GlyphIndex('A'); gid == MissingGlyph {
		t.Error("GlyphIndex('A') = 0, want a real glyph")
	}
	if gid := f.GlyphIndex('\uE000'); gid != MissingGlyph {
		t.Errorf("GlyphIndex(unmapped) = %d, want 0", gid)
	}
}

func TestGoTextGlyphMetrics(t *testing.T) {
	f := newGoTextRegular(t, 16)

	gm := f.GlyphMetrics(f.GlyphIndex('A'))
	if gm.AdvanceX <= 0 {
		t.Errorf("AdvanceX = %v, want > 0", gm.AdvanceX)
	}
	if gm.Width <= 0 || gm.Height <= 0 {
		t.Errorf("bounds = %vx%v, want positive", gm.Width, gm.Height)
	}
	if gm.BearingY <= 0 {
		t.Errorf("BearingY = %v, want > 0 for a capital letter", gm.BearingY)
	}
}

func TestGoTextRenderGlyph(t *testing.T) {
	f := newGoTextRegular(t, 16)
	const capEdge = 64
	buf := make([]byte, 4*capEdge*capEdge)

	rg, err := f.RenderGlyph(f.GlyphIndex('A'), 1, buf, capEdge)
	if err != nil {
		t.Fatalf("RenderGlyph: %v", err)
	}
	if rg.Width <= 0 || rg.Height <= 0 {
		t.Fatalf("expected visible ink, got %dx%d", rg.Width, rg.Height)
	}
	if rg.Width > capEdge || rg.Height > capEdge {
		t.Errorf("glyph %dx%d exceeds the %d-pixel cap", rg.Width, rg.Height, capEdge)
	}
	if rg.Color {
		t.Error("an outline glyph reported as color")
	}

	ink := false
	for _, p := range buf[:rg.Width*rg.Height] {
		if p != 0 {
			ink = true
			break
		}
	}
	if !ink {
		t.Error("rendered mask contains no coverage")
	}
}

func TestGoTextRenderGlyphSpaceIsInkless(t *testing.T) {
	f := newGoTextRegular(t, 16)
	buf := make([]byte, 64*64)

	rg, err := f.RenderGlyph(f.GlyphIndex(' '), 1, buf, 64)
	if err != nil {
		t.Fatalf("RenderGlyph: %v", err)
	}
	if rg.Width != 0 || rg.Height != 0 {
		t.Errorf("space rendered as %dx%d, want 0x0", rg.Width, rg.Height)
	}
}

func TestGoTextRenderGlyphScale(t *testing.T) {
	f := newGoTextRegular(t, 16)
	const capEdge = 128
	buf := make([]byte, capEdge*capEdge)
	gid := f.GlyphIndex('A')

	r1, err := f.RenderGlyph(gid, 1, buf, capEdge)
	if err != nil {
		t.Fatalf("scale 1: %v", err)
	}
	r2, err := f.RenderGlyph(gid, 2, buf, capEdge)
	if err != nil {
		t.Fatalf("scale 2: %v", err)
	}
	if r2.Height <= r1.Height {
		t.Errorf("scale 2 height %d not larger than scale 1 height %d", r2.Height, r1.Height)
	}
}

func TestGoTextFaceClose(t *testing.T) {
	f := newGoTextRegular(t, 16)
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	buf := make([]byte, 64*64)
	_, err := f.RenderGlyph(1, 1, buf, 64)
	if !errors.Is(err, ErrFaceClosed) {
		t.Errorf("expected ErrFaceClosed, got %v", err)
	}
}

func TestGoTextMonospaceProbe(t *testing.T) {
	f, err := NewGoTextFace(gomono.TTF, 16)
	if err != nil {
		t.Fatalf("NewGoTextFace: %v", err)
	}

	m := f.Metrics()
	if !m.Monospace {
		t.Error("Go Mono not reported as monospace")
	}
	if m.CellWidth <= 0 {
		t.Errorf("CellWidth = %v, want > 0", m.CellWidth)
	}
}

// The two backends must agree on the broad shape of a glyph so callers
// can swap them without re-tuning layout.
func TestBackendsAgreeOnGlyphSize(t *testing.T) {
	ot := newRegular(t, 16)
	gt := newGoTextRegular(t, 16)

	const capEdge = 64
	buf := make([]byte, 4*capEdge*capEdge)

	a, err := ot.RenderGlyph(ot.GlyphIndex('A'), 1, buf, capEdge)
	if err != nil {
		t.Fatalf("sfnt backend: %v", err)
	}
	b, err := gt.RenderGlyph(gt.GlyphIndex('A'), 1, buf, capEdge)
	if err != nil {
		t.Fatalf("go-text backend: %v", err)
	}

	if d := a.Width - b.Width; d < -2 || d > 2 {
		t.Errorf("widths differ too much: %d vs %d", a.Width, b.Width)
	}
	if d := a.Height - b.Height; d < -2 || d > 2 {
		t.Errorf("heights differ too much: %d vs %d", a.Height, b.Height)
	}
}
