package glyphcache

import (
	"github.com/gogpu/gputypes"
)

// Region is a rectangle inside an Atlas's backing store. Live regions
// within one Atlas never overlap. The zero Region (0x0) carries no
// backing-store reservation and must never be passed to Set.
type Region struct {
	X, Y, Width, Height int
}

// Empty reports whether the region reserves no pixels.
func (r Region) Empty() bool {
	return r.Width == 0 || r.Height == 0
}

// TexCoords are normalized [0,1] texture coordinates for one Region,
// valid for the atlas dimensions they were computed against.
type TexCoords struct {
	U0, V0, U1, V1 float32
}

// shelf is a horizontal packing strip. x is the cursor for the next
// placement; height grows to the tallest glyph placed on the shelf.
type shelf struct {
	y      int
	height int
	x      int
}

// Atlas is a growable bitmap that packs many small glyph images using
// shelf packing. It tracks a generation counter that increments on
// every content-changing operation (Set, growth, Clear) so a renderer
// can decide once per frame whether the texture must be re-uploaded.
//
// Growth does not preserve previously reserved regions' pixels; it is
// atlas-wide invalidation. For that reason growth is not callable on
// its own: it only happens inside GlyphCache's miss handling, which
// clears the glyph map in the same operation.
type Atlas struct {
	format     gputypes.TextureFormat
	bpp        int
	width      int
	height     int
	maxEdge    int
	padding    int
	shelves    []shelf
	generation uint64
	data       []byte
}

// newAtlas creates an atlas backed by a size x size store.
func newAtlas(format gputypes.TextureFormat, size, maxEdge, padding int) *Atlas {
	bpp := 1
	if format == gputypes.TextureFormatRGBA8Unorm {
		bpp = 4
	}
	return &Atlas{
		format:  format,
		bpp:     bpp,
		width:   size,
		height:  size,
		maxEdge: maxEdge,
		padding: padding,
		shelves: make([]shelf, 0, 16),
		data:    make([]byte, size*size*bpp),
	}
}

// Reserve places a w x h rectangle and returns its region. It reports
// false when the atlas has no room left; the caller is expected to
// grow and retry exactly once.
func (a *Atlas) Reserve(w, h int) (Region, bool) {
	if w <= 0 || h <= 0 {
		panic("glyphcache: reserve of an empty region")
	}

	pw := w + a.padding
	ph := h + a.padding
	if pw > a.width {
		return Region{}, false
	}

	if len(a.shelves) == 0 {
		if ph > a.height {
			return Region{}, false
		}
		a.shelves = append(a.shelves, shelf{})
	}

	s := &a.shelves[len(a.shelves)-1]

	// Advance the cursor along the current shelf, raising the shelf
	// to the tallest glyph placed so far when needed.
	if s.x+pw <= a.width && s.y+ph <= a.height {
		if h > s.height {
			s.height = h
		}
		r := Region{X: s.x, Y: s.y, Width: w, Height: h}
		s.x += pw
		return r, true
	}

	// Open a new shelf below the current one.
	newY := s.y + s.height + a.padding
	if newY+ph > a.height {
		return Region{}, false
	}
	a.shelves = append(a.shelves, shelf{y: newY, height: h, x: pw})
	return Region{X: 0, Y: newY, Width: w, Height: h}, true
}

// grow enlarges the backing store, roughly doubling its area, and
// resets all packing cursors. Pixel contents are NOT carried over:
// after grow the atlas is garbage and every region handed out before
// is invalid. It reports false when the atlas is already at its
// maximum size.
//
// grow is unexported so that the only reachable growth path is
// GlyphCache's miss handling, which pairs it with a full map clear.
func (a *Atlas) grow() bool {
	w, h := a.width, a.height
	if w <= h {
		w *= 2
	} else {
		h *= 2
	}
	if w > a.maxEdge || h > a.maxEdge {
		return false
	}
	a.width, a.height = w, h
	a.data = make([]byte, w*h*a.bpp)
	a.shelves = a.shelves[:0]
	a.generation++
	return true
}

// Set copies a rectangular pixel block into the backing store at the
// region's location and bumps the generation. pix must hold at least
// region.Width*region.Height pixels at the atlas's bytes per pixel,
// row-major with stride == region.Width.
func (a *Atlas) Set(region Region, pix []byte) {
	if region.Empty() {
		panic("glyphcache: set of an empty region")
	}
	if region.X < 0 || region.Y < 0 ||
		region.X+region.Width > a.width || region.Y+region.Height > a.height {
		panic("glyphcache: region outside atlas bounds")
	}
	rowBytes := region.Width * a.bpp
	if len(pix) < rowBytes*region.Height {
		panic("glyphcache: pixel block smaller than region")
	}

	for row := 0; row < region.Height; row++ {
		dst := ((region.Y+row)*a.width + region.X) * a.bpp
		src := row * rowBytes
		copy(a.data[dst:dst+rowBytes], pix[src:src+rowBytes])
	}
	a.generation++
}

// Clear resets all packing cursors and bumps the generation. It does
// not zero the backing memory; stale pixels are overwritten as new
// glyphs are packed.
func (a *Atlas) Clear() {
	a.shelves = a.shelves[:0]
	a.generation++
}

// Generation returns the content-change counter. A renderer should
// re-upload the atlas texture iff this differs from the value it
// observed at the previous upload.
func (a *Atlas) Generation() uint64 {
	return a.generation
}

// Size returns the current backing store dimensions in pixels.
func (a *Atlas) Size() (width, height int) {
	return a.width, a.height
}

// Format returns the pixel format of the backing store.
func (a *Atlas) Format() gputypes.TextureFormat {
	return a.format
}

// Data returns the backing pixel store, row-major, width*bpp bytes per
// row. The slice is invalidated by growth.
func (a *Atlas) Data() []byte {
	return a.data
}

// UV converts a region to normalized texture coordinates against the
// atlas's current dimensions. Recompute after any generation change,
// since growth changes the dimensions.
func (a *Atlas) UV(r Region) TexCoords {
	w := float32(a.width)
	h := float32(a.height)
	return TexCoords{
		U0: float32(r.X) / w,
		V0: float32(r.Y) / h,
		U1: float32(r.X+r.Width) / w,
		V1: float32(r.Y+r.Height) / h,
	}
}
