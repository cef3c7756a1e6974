package font

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// OpenTypeFace is a Face backed by golang.org/x/image/font/sfnt
// outline loading and golang.org/x/image/vector rasterization.
type OpenTypeFace struct {
	id      uint64
	font    *sfnt.Font
	size    float64
	metrics Metrics

	// buf is the sfnt scratch buffer, reused across queries.
	buf sfnt.Buffer

	// rast is reused across RenderGlyph calls.
	rast vector.Rasterizer

	closed bool
}

var _ Face = (*OpenTypeFace)(nil)

// NewOpenTypeFace parses TTF or OTF data and returns a face at the
// given point size. The data slice is retained and must not be
// modified afterward.
func NewOpenTypeFace(data []byte, size float64) (*OpenTypeFace, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("font: failed to parse font: %w", err)
	}

	face := &OpenTypeFace{
		id:   nextFaceID(),
		font: f,
		size: size,
	}
	face.metrics = face.computeMetrics()
	return face, nil
}

// LoadOpenTypeFace reads a font file and returns a face at the given
// point size. A missing file maps to ErrFontNotFound; unparseable
// data maps to *InvalidFontNameError.
func LoadOpenTypeFace(path string, size float64) (*OpenTypeFace, error) {
	// #nosec G304 -- font file path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFontNotFound, path)
		}
		return nil, fmt.Errorf("font: failed to read font file: %w", err)
	}

	face, err := NewOpenTypeFace(data, size)
	if err != nil {
		return nil, &InvalidFontNameError{Name: path, Err: err}
	}
	return face, nil
}

// computeMetrics derives the immutable face metrics at load time.
func (f *OpenTypeFace) computeMetrics() Metrics {
	upem := int(f.font.UnitsPerEm())
	m := Metrics{
		UnitsPerEm: upem,
		PointSize:  f.size,
	}

	ppem := fixed.Int26_6(f.size * 64)
	if fm, err := f.font.Metrics(&f.buf, ppem, xfont.HintingNone); err == nil {
		m.Ascent = fixedToFloat(fm.Ascent)
		m.Descent = fixedToFloat(fm.Descent)
		m.LineGap = fixedToFloat(fm.Height) - m.Ascent - m.Descent
		if m.LineGap < 0 {
			m.LineGap = 0
		}
		m.XHeight = fixedToFloat(fm.XHeight)
		m.CapHeight = fixedToFloat(fm.CapHeight)
	}

	// Underline and fixed-pitch data come from the post table,
	// recorded in font units.
	emScale := f.size / float64(upem)
	if post := f.font.PostTable(); post != nil {
		m.UnderlinePosition = float64(post.UnderlinePosition) * emScale
		m.UnderlineThickness = float64(post.UnderlineThickness) * emScale
		m.Monospace = post.IsFixedPitch
	}
	if m.Monospace {
		if gid, err := f.font.GlyphIndex(&f.buf, 'M'); err == nil {
			if adv, err := f.font.GlyphAdvance(&f.buf, gid, ppem, xfont.HintingNone); err == nil {
				m.CellWidth = fixedToFloat(adv)
			}
		}
	}
	return m
}

// ID implements Face.ID.
func (f *OpenTypeFace) ID() uint64 { return f.id }

// Size implements Face.Size.
func (f *OpenTypeFace) Size() float64 { return f.size }

// Metrics implements Face.Metrics.
func (f *OpenTypeFace) Metrics() Metrics { return f.metrics }

// GlyphIndex implements Face.GlyphIndex.
func (f *OpenTypeFace) GlyphIndex(r rune) GlyphID {
	gid, err := f.font.GlyphIndex(&f.buf, r)
	if err != nil {
		return MissingGlyph
	}
	return GlyphID(gid)
}

// GlyphMetrics implements Face.GlyphMetrics. Values are reported in
// unscaled font units by querying the font at ppem == unitsPerEm.
func (f *OpenTypeFace) GlyphMetrics(gid GlyphID) GlyphMetrics {
	var gm GlyphMetrics
	unitPpem := fixed.I(f.metrics.UnitsPerEm)

	if adv, err := f.font.GlyphAdvance(&f.buf, sfnt.GlyphIndex(gid), unitPpem, xfont.HintingNone); err == nil {
		gm.AdvanceX = fixedToFloat(adv)
	}
	bounds, _, err := f.font.GlyphBounds(&f.buf, sfnt.GlyphIndex(gid), unitPpem, xfont.HintingNone)
	if err != nil {
		return gm
	}
	// sfnt reports Y growing downward, so Min.Y is the top edge.
	gm.BearingX = fixedToFloat(bounds.Min.X)
	gm.BearingY = -fixedToFloat(bounds.Min.Y)
	gm.Width = fixedToFloat(bounds.Max.X - bounds.Min.X)
	gm.Height = fixedToFloat(bounds.Max.Y - bounds.Min.Y)
	return gm
}

// RenderGlyph implements Face.RenderGlyph. The glyph outline is loaded
// at size*scale pixels per em and filled into buf as a single-channel
// alpha mask with stride == written width.
func (f *OpenTypeFace) RenderGlyph(gid GlyphID, scale float64, buf []byte, capEdge int) (RasterizedGlyph, error) {
	if f.closed {
		return RasterizedGlyph{}, &RasterizationError{GID: gid, Err: ErrFaceClosed}
	}
	if capEdge <= 0 || len(buf) < capEdge*capEdge {
		panic("font: render buffer smaller than its declared capacity")
	}

	ppem := fixed.Int26_6(f.size * scale * 64)
	segs, err := f.font.LoadGlyph(&f.buf, sfnt.GlyphIndex(gid), ppem, nil)
	if err != nil {
		return RasterizedGlyph{}, &RasterizationError{GID: gid, Err: err}
	}
	if len(segs) == 0 {
		// Ink-less glyph (space, marks).
		return RasterizedGlyph{Scale: scale}, nil
	}

	bounds := segs.Bounds()
	minX := bounds.Min.X.Floor()
	minY := bounds.Min.Y.Floor()
	w := bounds.Max.X.Ceil() - minX
	h := bounds.Max.Y.Ceil() - minY
	if w <= 0 || h <= 0 {
		return RasterizedGlyph{Scale: scale}, nil
	}
	// Clamp rather than overflow the caller's buffer.
	if w > capEdge {
		w = capEdge
	}
	if h > capEdge {
		h = capEdge
	}

	f.rast.Reset(w, h)
	f.rast.DrawOp = draw.Src
	ox := float32(minX)
	oy := float32(minY)
	for _, seg := range segs {
		p0 := segPoint(seg.Args[0], ox, oy)
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			f.rast.MoveTo(p0[0], p0[1])
		case sfnt.SegmentOpLineTo:
			f.rast.LineTo(p0[0], p0[1])
		case sfnt.SegmentOpQuadTo:
			p1 := segPoint(seg.Args[1], ox, oy)
			f.rast.QuadTo(p0[0], p0[1], p1[0], p1[1])
		case sfnt.SegmentOpCubeTo:
			p1 := segPoint(seg.Args[1], ox, oy)
			p2 := segPoint(seg.Args[2], ox, oy)
			f.rast.CubeTo(p0[0], p0[1], p1[0], p1[1], p2[0], p2[1])
		}
	}

	dst := &image.Alpha{
		Pix:    buf[:w*h],
		Stride: w,
		Rect:   image.Rect(0, 0, w, h),
	}
	f.rast.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})

	return RasterizedGlyph{
		Width:         w,
		Height:        h,
		BearingX:      float64(minX),
		BearingY:      float64(-minY),
		LogicalHeight: float64(h) / scale,
		Scale:         scale,
	}, nil
}

// Close implements Face.Close.
func (f *OpenTypeFace) Close() error {
	f.closed = true
	f.font = nil
	return nil
}

// segPoint converts a 26.6 outline point to rasterizer coordinates,
// translated so the glyph bounding box starts at the origin.
func segPoint(p fixed.Point26_6, ox, oy float32) [2]float32 {
	return [2]float32{
		float32(p.X)/64 - ox,
		float32(p.Y)/64 - oy,
	}
}

// fixedToFloat converts a fixed.Int26_6 value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
