package video

// Surface is the double-buffered RGBA frame store shared by the engine
// (writer) and the presentation path (reader).
//
// Both sides run on the main loop goroutine, one after the other: Surface
// needs no synchronization.
type Surface struct {
	W, H int

	front, back []byte
	dirty       bool

	geom      Geometry
	geomDirty bool
}

// Geometry is the logical screen geometry uploaded to the shaders.
type Geometry struct {
	OutWidth     uint32 // output (window) width, in pixels
	OutHeight    uint32 // output (window) height, in pixels
	NativeHeight uint32 // height of the native frame
	VisibleLines uint32 // visible scanlines, from the top row of the native frame
}

// NewSurface returns a surface for frames of w x h pixels, of which
// visible lines are shown.
func NewSurface(w, h, visible int) *Surface {
	return &Surface{
		W:     w,
		H:     h,
		front: make([]byte, w*h*4),
		back:  make([]byte, w*h*4),
		geom: Geometry{
			OutWidth:     uint32(w),
			OutHeight:    uint32(visible),
			NativeHeight: uint32(h),
			VisibleLines: uint32(visible),
		},
		geomDirty: true,
	}
}

// SetPixel sets the pixel at (x, y) of the back buffer.
func (s *Surface) SetPixel(x, y int, rgba uint32) {
	off := (y*s.W + x) * 4
	s.back[off+0] = uint8(rgba >> 24)
	s.back[off+1] = uint8(rgba >> 16)
	s.back[off+2] = uint8(rgba >> 8)
	s.back[off+3] = uint8(rgba)
}

// Commit publishes the back buffer as a complete frame and marks the surface
// dirty. The engine calls it once per completed frame.
func (s *Surface) Commit() {
	s.front, s.back = s.back, s.front
	s.dirty = true
}

// Front returns the last committed frame.
func (s *Surface) Front() []byte { return s.front }

// Dirty reports whether a frame has been committed since the last upload.
func (s *Surface) Dirty() bool { return s.dirty }

// Geometry returns the current geometry.
func (s *Surface) Geometry() Geometry { return s.geom }

// GeometryDirty reports whether the geometry changed since the last upload.
func (s *Surface) GeometryDirty() bool { return s.geomDirty }

// SetOutputSize records the output size, after a window resize.
func (s *Surface) SetOutputSize(w, h int) {
	s.setGeometry(func(g *Geometry) {
		g.OutWidth, g.OutHeight = uint32(w), uint32(h)
	})
}

// SetVisibleLines changes the number of visible scanlines, after a region
// switch.
func (s *Surface) SetVisibleLines(n int) {
	s.setGeometry(func(g *Geometry) {
		g.VisibleLines = uint32(n)
	})
}

func (s *Surface) setGeometry(update func(*Geometry)) {
	g := s.geom
	update(&g)
	if g != s.geom {
		s.geom = g
		s.geomDirty = true
	}
}
