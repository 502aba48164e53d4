package video

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/veandco/go-sdl2/sdl"

	"emuhost/emu/log"
	"emuhost/hw/video/shaders"
)

// WindowConfig describes the window created by NewGLPresenter.
type WindowConfig struct {
	Title  string
	Scale  int    // initial window scale factor
	VSync  bool   // synchronize buffer swaps with the display refresh
	Shader string // name of the embedded shader program
}

// GLPresenter presents frames in an SDL window through an OpenGL 3.3 core
// context, drawing the frame texture on a full screen quad.
//
// All methods must be called from the main (OS locked) thread.
type GLPresenter struct {
	window  *sdl.Window
	context sdl.GLContext

	prog     uint32
	texture  uint32
	vao      uint32
	geomLoc  int32
	texw     int
	texh     int
	captured bool
}

// NewGLPresenter creates a window showing frames of the given surface.
func NewGLPresenter(cfg WindowConfig, s *Surface) (*GLPresenter, error) {
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize SDL video: %s", ErrNoAdapter, err)
	}

	sdl.GLSetAttribute(sdl.GL_CONTEXT_MAJOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_MINOR_VERSION, 3)
	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)
	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)

	scale := max(cfg.Scale, 1)
	geom := s.Geometry()
	winw := int32(s.W * scale)
	winh := int32(int(geom.VisibleLines) * scale)
	w, err := sdl.CreateWindow(cfg.Title,
		sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		winw, winh,
		sdl.WINDOW_OPENGL|sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_VIDEO)
		return nil, fmt.Errorf("%w: failed to create window: %s", ErrNoAdapter, err)
	}

	p := &GLPresenter{window: w, texw: s.W, texh: s.H}
	if err := p.init(cfg); err != nil {
		p.Close()
		return nil, err
	}
	s.SetOutputSize(int(winw), int(winh))

	log.ModVideo.InfoZ("window created").
		Int("width", int(winw)).
		Int("height", int(winh)).
		String("shader", cfg.Shader).
		String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))).
		End()
	return p, nil
}

func (p *GLPresenter) init(cfg WindowConfig) error {
	var err error
	p.context, err = p.window.GLCreateContext()
	if err != nil {
		return fmt.Errorf("%w: failed to create OpenGL context: %s", ErrNoAdapter, err)
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("%w: failed to initialize OpenGL: %s", ErrNoAdapter, err)
	}

	interval := 0
	if cfg.VSync {
		interval = 1
	}
	if err := sdl.GLSetSwapInterval(interval); err != nil {
		log.ModVideo.WarnZ("can't set swap interval").Error("err", err).End()
	}

	name := cfg.Shader
	if name == "" {
		name = shaders.DefaultName
	}
	if p.prog, err = shaders.Program(name); err != nil {
		return err
	}
	p.geomLoc = gl.GetUniformLocation(p.prog, gl.Str("geometry\x00"))

	gl.GenTextures(1, &p.texture)
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(p.texw), int32(p.texh), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)

	var vbo, ebo uint32
	gl.GenVertexArrays(1, &p.vao)
	gl.GenBuffers(1, &vbo)
	gl.GenBuffers(1, &ebo)

	gl.BindVertexArray(p.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(quadVertices)*4, gl.Ptr(quadVertices), gl.STATIC_DRAW)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(quadIndices)*4, gl.Ptr(quadIndices), gl.STATIC_DRAW)

	// Position attributes
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 5*4, 0)
	gl.EnableVertexAttribArray(0)

	// Texture coordinate attributes.
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 5*4, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return glError("init")
}

// Columns are position and texture coordinates.
// Rows are the quad vertices in clockwise order.
var quadVertices = []float32{
	// x, y, z, s, t
	1.0, 1.0, 0, 1, 0, // top right
	1.0, -1.0, 0, 1, 1, // bottom right
	-1.0, -1.0, 0, 0, 1, // bottom left
	-1.0, 1.0, 0, 0, 0, // top left
}

var quadIndices = []uint32{
	0, 1, 3,
	1, 2, 3,
}

func glError(op string) error {
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("%s: OpenGL error 0x%04x", op, code)
	}
	return nil
}

// Acquire makes the GL context current. A minimized window has no
// presentable surface.
func (p *GLPresenter) Acquire() error {
	if p.window.GetFlags()&sdl.WINDOW_MINIMIZED != 0 {
		return ErrSurfaceTimeout
	}
	if err := p.window.GLMakeCurrent(p.context); err != nil {
		return fmt.Errorf("failed to make OpenGL context current: %s", err)
	}
	return nil
}

func (p *GLPresenter) UploadFrame(pixels []byte, w, h int) error {
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&pixels[0]))
	return glError("texture upload")
}

// UploadGeometry sets the geometry uniform and letterboxes the viewport so
// that the visible lines keep square pixels.
func (p *GLPresenter) UploadGeometry(g Geometry) error {
	gl.UseProgram(p.prog)
	gl.Uniform4ui(p.geomLoc, g.OutWidth, g.OutHeight, g.NativeHeight, g.VisibleLines)

	x, y, w, h := letterbox(int(g.OutWidth), int(g.OutHeight), p.texw, int(g.VisibleLines))
	gl.Viewport(int32(x), int32(y), int32(w), int32(h))
	return glError("geometry upload")
}

// letterbox returns the largest viewport of the src aspect ratio centered in
// an output of size outw x outh.
func letterbox(outw, outh, srcw, srch int) (x, y, w, h int) {
	if srcw <= 0 || srch <= 0 {
		return 0, 0, outw, outh
	}
	w, h = outw, outw*srch/srcw
	if h > outh {
		w, h = outh*srcw/srch, outh
	}
	return (outw - w) / 2, (outh - h) / 2, w, h
}

func (p *GLPresenter) Draw() error {
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)

	gl.UseProgram(p.prog)
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.BindVertexArray(p.vao)
	gl.DrawElements(gl.TRIANGLES, int32(len(quadIndices)), gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
	return glError("draw")
}

func (p *GLPresenter) Present() error {
	p.window.GLSwap()
	return nil
}

// CapturePointer grabs and hides the mouse pointer and switches to relative
// motion reporting, or releases it.
func (p *GLPresenter) CapturePointer(on bool) error {
	if on == p.captured {
		return nil
	}
	if err := sdl.CaptureMouse(on); err != nil {
		return fmt.Errorf("failed to capture mouse: %s", err)
	}
	p.window.SetGrab(on)
	sdl.SetRelativeMouseMode(on)
	if on {
		sdl.ShowCursor(sdl.DISABLE)
	} else {
		sdl.ShowCursor(sdl.ENABLE)
	}
	p.captured = on
	return nil
}

// OutputSize returns the drawable size of the window.
func (p *GLPresenter) OutputSize() (w, h int) {
	dw, dh := p.window.GLGetDrawableSize()
	return int(dw), int(dh)
}

func (p *GLPresenter) Close() error {
	if p.captured {
		p.CapturePointer(false)
	}
	if p.context != nil {
		sdl.GLDeleteContext(p.context)
	}
	err := p.window.Destroy()
	sdl.QuitSubSystem(sdl.INIT_VIDEO)
	return err
}
