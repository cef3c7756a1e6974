package font

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/png" // embedded color bitmap glyphs are PNG-compressed
	"math"
	"os"

	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/vector"
)

// GoTextFace is a Face backed by github.com/go-text/typesetting.
// Outline glyphs are filled with golang.org/x/image/vector; embedded
// PNG bitmap glyphs (CBDT/sbix color fonts) are decoded and scaled
// into an RGBA buffer and reported with the Color flag set.
type GoTextFace struct {
	id      uint64
	face    *gtfont.Face
	size    float64
	metrics Metrics

	rast vector.Rasterizer

	closed bool
}

var _ Face = (*GoTextFace)(nil)

// NewGoTextFace parses TTF or OTF data and returns a face at the
// given point size.
func NewGoTextFace(data []byte, size float64) (*GoTextFace, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	face, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("font: failed to parse font: %w", err)
	}

	f := &GoTextFace{
		id:   nextFaceID(),
		face: face,
		size: size,
	}
	f.metrics = f.computeMetrics()
	return f, nil
}

// LoadGoTextFace reads a font file and returns a face at the given
// point size. A missing file maps to ErrFontNotFound; unparseable
// data maps to *InvalidFontNameError.
func LoadGoTextFace(path string, size float64) (*GoTextFace, error) {
	// #nosec G304 -- font file path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFontNotFound, path)
		}
		return nil, fmt.Errorf("font: failed to read font file: %w", err)
	}

	face, err := NewGoTextFace(data, size)
	if err != nil {
		return nil, &InvalidFontNameError{Name: path, Err: err}
	}
	return face, nil
}

// computeMetrics derives the immutable face metrics at load time.
// go-text reports design-space values, scaled here to the face size.
func (f *GoTextFace) computeMetrics() Metrics {
	upem := int(f.face.Upem())
	emScale := f.size / float64(upem)
	m := Metrics{
		UnitsPerEm: upem,
		PointSize:  f.size,
	}

	if ext, ok := f.face.FontHExtents(); ok {
		m.Ascent = float64(ext.Ascender) * emScale
		m.Descent = math.Abs(float64(ext.Descender)) * emScale
		m.LineGap = float64(ext.LineGap) * emScale
	}

	// Cap and x heights are probed from representative glyphs; not
	// every font carries an OS/2 table with usable values.
	m.CapHeight = f.probeHeight('H') * emScale
	m.XHeight = f.probeHeight('x') * emScale

	// go-text does not surface the post table underline fields, so
	// use the conventional em-relative defaults.
	m.UnderlinePosition = -0.075 * f.size
	m.UnderlineThickness = 0.05 * f.size

	m.Monospace, m.CellWidth = f.probeFixedPitch(emScale)
	return m
}

// probeHeight returns the design-space top bearing of the glyph for r,
// or 0 when the font has no such glyph.
func (f *GoTextFace) probeHeight(r rune) float64 {
	gid, ok := f.face.NominalGlyph(r)
	if !ok {
		return 0
	}
	ext, ok := f.face.GlyphExtents(gid)
	if !ok {
		return 0
	}
	return float64(ext.YBearing)
}

// probeFixedPitch reports whether a narrow, a wide, and a digit glyph
// all advance identically, which is how fixed-pitch fonts behave.
func (f *GoTextFace) probeFixedPitch(emScale float64) (bool, float64) {
	var advances [3]float64
	for i, r := range [...]rune{'i', 'M', '0'} {
		gid, ok := f.face.NominalGlyph(r)
		if !ok {
			return false, 0
		}
		advances[i] = float64(f.face.HorizontalAdvance(gid))
	}
	if advances[0] == 0 || advances[0] != advances[1] || advances[1] != advances[2] {
		return false, 0
	}
	return true, advances[0] * emScale
}

// ID implements Face.ID.
func (f *GoTextFace) ID() uint64 { return f.id }

// Size implements Face.Size.
func (f *GoTextFace) Size() float64 { return f.size }

// Metrics implements Face.Metrics.
func (f *GoTextFace) Metrics() Metrics { return f.metrics }

// GlyphIndex implements Face.GlyphIndex.
func (f *GoTextFace) GlyphIndex(r rune) GlyphID {
	gid, ok := f.face.NominalGlyph(r)
	if !ok {
		return MissingGlyph
	}
	return GlyphID(gid)
}

// GlyphMetrics implements Face.GlyphMetrics.
func (f *GoTextFace) GlyphMetrics(gid GlyphID) GlyphMetrics {
	var gm GlyphMetrics
	gm.AdvanceX = float64(f.face.HorizontalAdvance(gtfont.GID(gid)))
	ext, ok := f.face.GlyphExtents(gtfont.GID(gid))
	if !ok {
		return gm
	}
	// go-text reports Height as a negative downward extent.
	gm.BearingX = float64(ext.XBearing)
	gm.BearingY = float64(ext.YBearing)
	gm.Width = float64(ext.Width)
	gm.Height = math.Abs(float64(ext.Height))
	return gm
}

// RenderGlyph implements Face.RenderGlyph.
func (f *GoTextFace) RenderGlyph(gid GlyphID, scale float64, buf []byte, capEdge int) (RasterizedGlyph, error) {
	if f.closed {
		return RasterizedGlyph{}, &RasterizationError{GID: gid, Err: ErrFaceClosed}
	}
	if capEdge <= 0 || len(buf) < capEdge*capEdge {
		panic("font: render buffer smaller than its declared capacity")
	}

	switch data := f.face.GlyphData(gtfont.GID(gid)).(type) {
	case gtfont.GlyphOutline:
		return f.renderOutline(gid, data, scale, buf, capEdge)
	case gtfont.GlyphBitmap:
		return f.renderBitmap(gid, data, scale, buf, capEdge)
	case nil:
		// No glyph data at all: treat as ink-less.
		return RasterizedGlyph{Scale: scale}, nil
	default:
		return RasterizedGlyph{}, &RasterizationError{
			GID: gid,
			Err: fmt.Errorf("font: unsupported glyph data format %T", data),
		}
	}
}

// renderOutline fills the glyph outline into buf as an alpha mask.
// Outline coordinates are design-space with Y growing upward; they are
// scaled to size*scale pixels and flipped to raster orientation.
func (f *GoTextFace) renderOutline(gid GlyphID, outline gtfont.GlyphOutline, scale float64, buf []byte, capEdge int) (RasterizedGlyph, error) {
	if len(outline.Segments) == 0 {
		return RasterizedGlyph{Scale: scale}, nil
	}

	pxScale := float32(f.size * scale / float64(f.metrics.UnitsPerEm))

	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	visit := func(x, y float32) {
		minX = min(minX, x)
		minY = min(minY, y)
		maxX = max(maxX, x)
		maxY = max(maxY, y)
	}
	for _, seg := range outline.Segments {
		for i := 0; i < segArgs(seg.Op); i++ {
			visit(seg.Args[i].X*pxScale, -seg.Args[i].Y*pxScale)
		}
	}

	ox := float32(math.Floor(float64(minX)))
	oy := float32(math.Floor(float64(minY)))
	w := int(math.Ceil(float64(maxX))) - int(ox)
	h := int(math.Ceil(float64(maxY))) - int(oy)
	if w <= 0 || h <= 0 {
		return RasterizedGlyph{Scale: scale}, nil
	}
	if w > capEdge {
		w = capEdge
	}
	if h > capEdge {
		h = capEdge
	}

	f.rast.Reset(w, h)
	f.rast.DrawOp = draw.Src
	pt := func(i int, seg opentype.Segment) (float32, float32) {
		return seg.Args[i].X*pxScale - ox, -seg.Args[i].Y*pxScale - oy
	}
	for _, seg := range outline.Segments {
		x0, y0 := pt(0, seg)
		switch seg.Op {
		case opentype.SegmentOpMoveTo:
			f.rast.MoveTo(x0, y0)
		case opentype.SegmentOpLineTo:
			f.rast.LineTo(x0, y0)
		case opentype.SegmentOpQuadTo:
			x1, y1 := pt(1, seg)
			f.rast.QuadTo(x0, y0, x1, y1)
		case opentype.SegmentOpCubeTo:
			x1, y1 := pt(1, seg)
			x2, y2 := pt(2, seg)
			f.rast.CubeTo(x0, y0, x1, y1, x2, y2)
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
		BearingX:      float64(ox),
		BearingY:      float64(-oy),
		LogicalHeight: float64(h) / scale,
		Scale:         scale,
	}, nil
}

// renderBitmap decodes an embedded bitmap strike and scales it to the
// requested pixel size with nearest-neighbor sampling, writing RGBA
// pixels into buf.
func (f *GoTextFace) renderBitmap(gid GlyphID, bitmap gtfont.GlyphBitmap, scale float64, buf []byte, capEdge int) (RasterizedGlyph, error) {
	if len(buf) < 4*capEdge*capEdge {
		panic("font: render buffer smaller than its declared capacity")
	}
	if bitmap.Format != gtfont.PNG {
		return RasterizedGlyph{}, &RasterizationError{
			GID: gid,
			Err: fmt.Errorf("font: unsupported bitmap format %v", bitmap.Format),
		}
	}

	src, _, err := image.Decode(bytes.NewReader(bitmap.Data))
	if err != nil {
		return RasterizedGlyph{}, &RasterizationError{GID: gid, Err: err}
	}
	srcBounds := src.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return RasterizedGlyph{Scale: scale}, nil
	}

	// Color strikes are square cells spanning roughly the em box.
	h := int(math.Round(f.size * scale))
	if h < 1 {
		h = 1
	}
	if h > capEdge {
		h = capEdge
	}
	w := srcW * h / srcH
	if w < 1 {
		w = 1
	}
	if w > capEdge {
		w = capEdge
	}

	for dy := 0; dy < h; dy++ {
		sy := srcBounds.Min.Y + dy*srcH/h
		for dx := 0; dx < w; dx++ {
			sx := srcBounds.Min.X + dx*srcW/w
			r, g, b, a := src.At(sx, sy).RGBA()
			off := (dy*w + dx) * 4
			buf[off] = byte(r >> 8)
			buf[off+1] = byte(g >> 8)
			buf[off+2] = byte(b >> 8)
			buf[off+3] = byte(a >> 8)
		}
	}

	return RasterizedGlyph{
		Width:         w,
		Height:        h,
		BearingX:      0,
		BearingY:      f.metrics.Ascent * scale,
		LogicalHeight: float64(h) / scale,
		Scale:         scale,
		Color:         true,
	}, nil
}

// Close implements Face.Close.
func (f *GoTextFace) Close() error {
	f.closed = true
	f.face = nil
	return nil
}

// segArgs returns the number of meaningful points in a segment.
func segArgs(op opentype.SegmentOp) int {
	switch op {
	case opentype.SegmentOpQuadTo:
		return 2
	case opentype.SegmentOpCubeTo:
		return 3
	default:
		return 1
	}
}
