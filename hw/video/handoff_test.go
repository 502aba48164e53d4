package video

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakePresenter struct {
	calls      []string
	frame      []byte
	geom       Geometry
	acquireErr error
	presentErr error
}

func (f *fakePresenter) Acquire() error {
	f.calls = append(f.calls, "acquire")
	return f.acquireErr
}

func (f *fakePresenter) UploadFrame(pixels []byte, w, h int) error {
	f.calls = append(f.calls, "frame")
	f.frame = append(f.frame[:0], pixels...)
	return nil
}

func (f *fakePresenter) UploadGeometry(g Geometry) error {
	f.calls = append(f.calls, "geometry")
	f.geom = g
	return nil
}

func (f *fakePresenter) Draw() error {
	f.calls = append(f.calls, "draw")
	return nil
}

func (f *fakePresenter) Present() error {
	f.calls = append(f.calls, "present")
	return f.presentErr
}

func TestRedrawIdempotent(t *testing.T) {
	s := NewSurface(4, 3, 2)
	p := &fakePresenter{}
	h := NewHandoff(s, p)

	s.SetPixel(1, 1, 0x11223344)
	s.Commit()

	if err := h.Redraw(); err != nil {
		t.Fatal(err)
	}
	first := append([]byte(nil), p.frame...)

	p.calls = nil
	if err := h.Redraw(); err != nil {
		t.Fatal(err)
	}

	// Second redraw presents again without any upload.
	if diff := cmp.Diff([]string{"acquire", "draw", "present"}, p.calls); diff != "" {
		t.Errorf("second redraw calls mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first, p.frame); diff != "" {
		t.Errorf("presented frame changed (-want +got):\n%s", diff)
	}

	want := HandoffStats{Redraws: 2, Uploads: 1, GeometryUploads: 1, Presents: 2}
	if diff := cmp.Diff(want, h.Stats()); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	off := (1*4 + 1) * 4
	if diff := cmp.Diff([]byte{0x11, 0x22, 0x33, 0x44}, first[off:off+4]); diff != "" {
		t.Errorf("pixel mismatch (-want +got):\n%s", diff)
	}
}

func TestRedrawGeometryDirty(t *testing.T) {
	s := NewSurface(256, 239, 224)
	p := &fakePresenter{}
	h := NewHandoff(s, p)

	if err := h.Redraw(); err != nil {
		t.Fatal(err)
	}
	want := Geometry{OutWidth: 256, OutHeight: 224, NativeHeight: 239, VisibleLines: 224}
	if diff := cmp.Diff(want, p.geom); diff != "" {
		t.Errorf("geometry mismatch (-want +got):\n%s", diff)
	}

	// Same size: no upload.
	s.SetOutputSize(256, 224)
	p.calls = nil
	if err := h.Redraw(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"acquire", "draw", "present"}, p.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}

	s.SetOutputSize(800, 600)
	p.calls = nil
	if err := h.Redraw(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"acquire", "geometry", "draw", "present"}, p.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if p.geom.OutWidth != 800 || p.geom.OutHeight != 600 {
		t.Errorf("geometry = %+v, want 800x600 output", p.geom)
	}
}

func TestRedrawSurfaceTimeout(t *testing.T) {
	s := NewSurface(2, 2, 2)
	p := &fakePresenter{acquireErr: ErrSurfaceTimeout}
	h := NewHandoff(s, p)
	s.Commit()

	if err := h.Redraw(); err != nil {
		t.Fatalf("Redraw() = %v, want nil on surface timeout", err)
	}
	if got := h.Stats().Skips; got != 1 {
		t.Errorf("skips = %d, want 1", got)
	}
	// The frame is still pending.
	if !s.Dirty() {
		t.Errorf("surface should still be dirty after a skipped frame")
	}

	p.acquireErr = nil
	if err := h.Redraw(); err != nil {
		t.Fatal(err)
	}
	if s.Dirty() {
		t.Errorf("surface should be clean after upload")
	}
}

func TestRedrawFatalError(t *testing.T) {
	errLost := errors.New("device lost")

	s := NewSurface(2, 2, 2)
	h := NewHandoff(s, &fakePresenter{presentErr: errLost})
	if err := h.Redraw(); !errors.Is(err, errLost) {
		t.Fatalf("Redraw() = %v, want %v", err, errLost)
	}
}

func TestLetterbox(t *testing.T) {
	tests := []struct {
		outw, outh, srcw, srch int
		want                   [4]int
	}{
		{512, 448, 256, 224, [4]int{0, 0, 512, 448}},
		{800, 448, 256, 224, [4]int{144, 0, 512, 448}},
		{512, 600, 256, 224, [4]int{0, 76, 512, 448}},
		{100, 100, 0, 0, [4]int{0, 0, 100, 100}},
	}
	for _, tt := range tests {
		x, y, w, h := letterbox(tt.outw, tt.outh, tt.srcw, tt.srch)
		if got := [4]int{x, y, w, h}; got != tt.want {
			t.Errorf("letterbox(%d, %d, %d, %d) = %v, want %v", tt.outw, tt.outh, tt.srcw, tt.srch, got, tt.want)
		}
	}
}
