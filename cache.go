package glyphcache

import (
	"log/slog"
	"math"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/glyphcache/font"
)

// GlyphKey uniquely identifies a renderable glyph instance. Two equal
// keys always map to bit-identical rendered bitmaps. Face identity,
// not font name, is part of the key: glyphs from different Face
// instances are never conflated even when their names and sizes match.
type GlyphKey struct {
	// FaceID is the identity of the Face the glyph was rendered with.
	FaceID uint64

	// GID is the glyph index within the font.
	GID font.GlyphID

	// Size is the point size quantized to 1/64-unit fixed point.
	Size fixed.Int26_6

	// Scale is the display scale factor quantized to an integer in
	// [1,4].
	Scale uint8
}

// CachedGlyph is the memoized result of one rasterization. It is
// immutable once created; it is replaced only by a full cache clear,
// never mutated in place.
type CachedGlyph struct {
	// Region locates the glyph's pixels inside the atlas. It is the
	// empty 0x0 region for glyphs with no visible ink (space, marks).
	Region Region

	// Color selects which atlas the region belongs to: the color
	// (RGBA) atlas when true, the grayscale mask atlas otherwise.
	Color bool

	// BearingX and BearingY position the bitmap relative to the pen,
	// in device pixels.
	BearingX float64
	BearingY float64

	// Height is the logical (unscaled) height of the bitmap,
	// including any rendering padding.
	Height float64

	// AdvanceX is the horizontal pen advance in logical pixels at the
	// face's point size.
	AdvanceX float64

	// Scale is the scale factor the glyph was rendered at.
	Scale float64
}

// GlyphCache memoizes rasterized glyphs into one grayscale atlas and,
// for color (emoji) glyphs, a lazily created color atlas.
//
// The cache is exclusively owned by one rendering pass: construct one
// per window or text subsystem and pass it through that pipeline's
// context. It is not safe for concurrent use, by design; rasterization
// on a miss is synchronous within the triggering frame.
type GlyphCache struct {
	cfg    Config
	glyphs map[GlyphKey]CachedGlyph

	// mask holds single-channel alpha glyphs; color holds RGBA glyphs
	// and is nil until the first color glyph is rendered.
	mask  *Atlas
	color *Atlas

	// scratch is the single reusable rasterization buffer, sized for
	// the largest supported glyph at four bytes per pixel. It is fully
	// zeroed before each miss so a smaller glyph's unused margin never
	// leaks the previous glyph's pixels.
	scratch []byte

	// scale is the active quantized scale factor, embedded in every
	// key.
	scale uint8

	hits   uint64
	misses uint64
}

// New creates a GlyphCache with the given configuration.
func New(cfg Config) (*GlyphCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &GlyphCache{
		cfg:     cfg,
		glyphs:  make(map[GlyphKey]CachedGlyph),
		mask:    newAtlas(gputypes.TextureFormatR8Unorm, cfg.InitialAtlasSize, cfg.MaxAtlasSize, cfg.Padding),
		scratch: make([]byte, 4*cfg.MaxGlyphEdge*cfg.MaxGlyphEdge),
		scale:   quantizeScale(cfg.ScaleFactor),
	}, nil
}

// NewDefault creates a GlyphCache with the default configuration.
func NewDefault() *GlyphCache {
	c, _ := New(DefaultConfig())
	return c
}

// GetOrRender returns the cached glyph for (face, gid) at the active
// scale factor, rasterizing and packing it on the first lookup.
//
// A hit has no side effects. On a miss the glyph is rendered into the
// scratch buffer and packed; if the target atlas is out of room it is
// grown once (which invalidates the whole cache) and the reservation
// retried; a second failure returns *AtlasFullError.
func (c *GlyphCache) GetOrRender(face font.Face, gid font.GlyphID) (CachedGlyph, error) {
	if face == nil {
		panic("glyphcache: nil face")
	}

	key := GlyphKey{
		FaceID: face.ID(),
		GID:    gid,
		Size:   quantizeSize(face.Size()),
		Scale:  c.scale,
	}
	if g, ok := c.glyphs[key]; ok {
		c.hits++
		return g, nil
	}
	c.misses++

	clear(c.scratch)
	rg, err := face.RenderGlyph(gid, float64(c.scale), c.scratch, c.cfg.MaxGlyphEdge)
	if err != nil {
		return CachedGlyph{}, err
	}

	g := CachedGlyph{
		Color:    rg.Color,
		BearingX: rg.BearingX,
		BearingY: rg.BearingY,
		Height:   rg.LogicalHeight,
		AdvanceX: advancePixels(face, gid),
		Scale:    rg.Scale,
	}

	if rg.Width == 0 || rg.Height == 0 {
		// Ink-less glyph: store a sentinel with the empty region and
		// write nothing to the atlas.
		c.glyphs[key] = g
		return g, nil
	}

	atlas := c.mask
	bpp := 1
	if rg.Color {
		atlas = c.colorAtlas()
		bpp = 4
	}

	region, ok := atlas.Reserve(rg.Width, rg.Height)
	if !ok {
		if !c.growAndInvalidate(atlas) {
			return CachedGlyph{}, c.fullError(atlas, rg)
		}
		region, ok = atlas.Reserve(rg.Width, rg.Height)
		if !ok {
			return CachedGlyph{}, c.fullError(atlas, rg)
		}
	}

	atlas.Set(region, c.scratch[:rg.Width*rg.Height*bpp])

	g.Region = region
	c.glyphs[key] = g
	return g, nil
}

// growAndInvalidate grows the atlas and, in the same operation, clears
// the glyph map: growth discards the atlas's pixel contents, so every
// entry referencing a pre-growth region must become unreachable. The
// sibling atlas is reset as well, since its entries left the map too
// and their reservations would otherwise leak.
func (c *GlyphCache) growAndInvalidate(atlas *Atlas) bool {
	if !atlas.grow() {
		return false
	}
	w, h := atlas.Size()
	Logger().Debug("glyphcache: atlas grown, cache invalidated",
		slog.Int("width", w), slog.Int("height", h))

	c.glyphs = make(map[GlyphKey]CachedGlyph, len(c.glyphs))
	if sibling := c.sibling(atlas); sibling != nil {
		sibling.Clear()
	}
	return true
}

// sibling returns the other atlas, or nil if only one exists.
func (c *GlyphCache) sibling(atlas *Atlas) *Atlas {
	if atlas == c.mask {
		return c.color
	}
	return c.mask
}

// fullError builds the terminal error for a reservation that failed
// even after growth.
func (c *GlyphCache) fullError(atlas *Atlas, rg font.RasterizedGlyph) error {
	w, h := atlas.Size()
	Logger().Warn("glyphcache: atlas full",
		slog.Int("glyphWidth", rg.Width), slog.Int("glyphHeight", rg.Height),
		slog.Int("atlasWidth", w), slog.Int("atlasHeight", h))
	return &AtlasFullError{
		AtlasWidth:  w,
		AtlasHeight: h,
		GlyphWidth:  rg.Width,
		GlyphHeight: rg.Height,
	}
}

// colorAtlas returns the RGBA atlas, creating it on first use.
func (c *GlyphCache) colorAtlas() *Atlas {
	if c.color == nil {
		c.color = newAtlas(gputypes.TextureFormatRGBA8Unorm,
			c.cfg.InitialAtlasSize, c.cfg.MaxAtlasSize, c.cfg.Padding)
	}
	return c.color
}

// SetScaleFactor updates the active display scale factor. It is a
// no-op when the quantized value is unchanged; otherwise the whole
// cache is cleared, because scale is embedded in every key and a
// display change would otherwise leave stale bitmaps unreachable but
// resident.
func (c *GlyphCache) SetScaleFactor(scale float64) {
	ns := quantizeScale(scale)
	if ns == c.scale {
		return
	}
	Logger().Debug("glyphcache: scale factor changed, cache cleared",
		slog.Int("from", int(c.scale)), slog.Int("to", int(ns)))
	c.scale = ns
	c.Clear()
}

// ScaleFactor returns the active quantized scale factor.
func (c *GlyphCache) ScaleFactor() float64 {
	return float64(c.scale)
}

// Clear empties the glyph map and resets both atlases' packing state.
// Backing memory is kept so steady-state churn does not reallocate.
func (c *GlyphCache) Clear() {
	c.glyphs = make(map[GlyphKey]CachedGlyph, len(c.glyphs))
	c.mask.Clear()
	if c.color != nil {
		c.color.Clear()
	}
}

// Close releases the cache's backing memory. The cache is invalid
// afterward.
func (c *GlyphCache) Close() {
	c.glyphs = nil
	c.mask = nil
	c.color = nil
	c.scratch = nil
}

// MaskAtlas returns the grayscale atlas. A renderer uploads its Data
// when Generation changes.
func (c *GlyphCache) MaskAtlas() *Atlas {
	return c.mask
}

// ColorAtlas returns the RGBA atlas, or nil if no color glyph has been
// rendered yet.
func (c *GlyphCache) ColorAtlas() *Atlas {
	return c.color
}

// Generation returns a counter that changes whenever either atlas's
// contents change. A renderer can watch this single value once per
// frame instead of both atlases.
func (c *GlyphCache) Generation() uint64 {
	g := c.mask.Generation()
	if c.color != nil {
		g += c.color.Generation()
	}
	return g
}

// Len returns the number of memoized glyphs.
func (c *GlyphCache) Len() int {
	return len(c.glyphs)
}

// Stats returns hit and miss counters.
func (c *GlyphCache) Stats() (hits, misses uint64) {
	return c.hits, c.misses
}

// advancePixels converts a glyph's design-space advance to logical
// pixels at the face's point size.
func advancePixels(face font.Face, gid font.GlyphID) float64 {
	m := face.Metrics()
	if m.UnitsPerEm == 0 {
		return 0
	}
	return face.GlyphMetrics(gid).AdvanceX * m.PointSize / float64(m.UnitsPerEm)
}

// quantizeSize converts a point size to 1/64-unit fixed point.
func quantizeSize(size float64) fixed.Int26_6 {
	return fixed.Int26_6(size * 64)
}

// quantizeScale rounds a display scale factor to the nearest integer
// and clamps it to [1,4].
func quantizeScale(scale float64) uint8 {
	s := int(math.Round(scale))
	if s < 1 {
		s = 1
	}
	if s > 4 {
		s = 4
	}
	return uint8(s)
}
