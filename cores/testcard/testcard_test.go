package testcard

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"emuhost/emu/core"
	"emuhost/hw/audio"
	"emuhost/hw/input"
	"emuhost/hw/video"
)

type sampleSink struct {
	samples []audio.StereoSample
}

func (s *sampleSink) PushSample(smp audio.StereoSample) { s.samples = append(s.samples, smp) }

func (s *sampleSink) nonZero() int {
	n := 0
	for _, smp := range s.samples {
		if smp.L != 0 || smp.R != 0 {
			n++
		}
	}
	return n
}

func newTestEngine(t *testing.T, r core.Region, kinds ...input.Kind) (*Engine, *sampleSink, *input.Ports) {
	t.Helper()

	e := New("test", r)
	meta := e.Metadata()
	sink := &sampleSink{}
	ports := &input.Ports{}
	for i, k := range kinds {
		ports.Plug(i, input.NewDevice(k))
	}
	e.Connect(core.Devices{
		Audio:  sink,
		Screen: video.NewSurface(meta.Width, meta.Height, meta.VisibleLines),
		Ports:  ports,
	})
	return e, sink, ports
}

// runFrame steps e until it completes a frame and returns the number of steps.
func runFrame(t *testing.T, e *Engine) int {
	t.Helper()

	for n := 1; n <= int(e.FrameCycles()); n++ {
		if e.Step(2) {
			return n
		}
	}
	t.Fatalf("no frame completed after %d cycles", e.FrameCycles())
	return 0
}

func TestFrameLength(t *testing.T) {
	tests := []struct {
		region  core.Region
		steps   int
		visible int
	}{
		{core.NTSC, 262 * 1364 / 2, 224},
		{core.PAL, 312 * 1364 / 2, 239},
	}
	for _, tt := range tests {
		t.Run(tt.region.String(), func(t *testing.T) {
			e, _, _ := newTestEngine(t, tt.region)

			if got := runFrame(t, e); got != tt.steps {
				t.Errorf("frame took %d steps, want %d", got, tt.steps)
			}
			if got := runFrame(t, e); got != tt.steps {
				t.Errorf("second frame took %d steps, want %d", got, tt.steps)
			}
			if e.Frame() != 2 {
				t.Errorf("Frame() = %d, want 2", e.Frame())
			}
			if got := e.Metadata().VisibleLines; got != tt.visible {
				t.Errorf("VisibleLines = %d, want %d", got, tt.visible)
			}
		})
	}
}

func TestSetRegion(t *testing.T) {
	e := New("test", core.NTSC)
	e.SetRegion(core.PAL)

	want := core.Metadata{Title: "test", Region: core.PAL, Width: Width, Height: Height, VisibleLines: Height}
	if diff := cmp.Diff(want, e.Metadata()); diff != "" {
		t.Errorf("Metadata() mismatch (-want +got):\n%s", diff)
	}
}

func TestFrameCommitted(t *testing.T) {
	e, _, _ := newTestEngine(t, core.NTSC)
	screen := e.dev.Screen

	runFrame(t, e)
	if !screen.Dirty() {
		t.Fatal("surface not dirty after a frame")
	}
	// First bar is grey.
	if got := screen.Front()[:4]; !bytes.Equal(got, []byte{0xc0, 0xc0, 0xc0, 0xff}) {
		t.Errorf("pixel (0,0) = %x, want c0c0c0ff", got)
	}
}

func TestVisibleLinesFromTop(t *testing.T) {
	e, _, _ := newTestEngine(t, core.NTSC)
	screen := e.dev.Screen

	runFrame(t, e)
	pixel := func(y int) []byte {
		off := y * screen.W * 4
		return screen.Front()[off : off+4]
	}
	black := []byte{0, 0, 0, 0xff}
	if bytes.Equal(pixel(0), black) {
		t.Errorf("top row is blank")
	}
	if bytes.Equal(pixel(ntscVisible-1), black) {
		t.Errorf("last visible row %d is blank", ntscVisible-1)
	}
	for y := ntscVisible; y < Height; y++ {
		if got := pixel(y); !bytes.Equal(got, black) {
			t.Fatalf("row %d below the visible area = %x, want black", y, got)
		}
	}
}

func TestSetRegionAfterConnect(t *testing.T) {
	e, _, _ := newTestEngine(t, core.NTSC)
	screen := e.dev.Screen
	if got := screen.Geometry().VisibleLines; got != ntscVisible {
		t.Fatalf("VisibleLines = %d, want %d", got, ntscVisible)
	}

	screen.SetOutputSize(640, 480)
	e.SetRegion(core.PAL)
	want := video.Geometry{OutWidth: 640, OutHeight: 480, NativeHeight: Height, VisibleLines: Height}
	if diff := cmp.Diff(want, screen.Geometry()); diff != "" {
		t.Errorf("geometry mismatch (-want +got):\n%s", diff)
	}
	if !screen.GeometryDirty() {
		t.Errorf("geometry change not flagged")
	}
}

func TestToneWhileHeld(t *testing.T) {
	e, sink, ports := newTestEngine(t, core.NTSC, input.KindPad)

	runFrame(t, e)
	if n := sink.nonZero(); n != 0 {
		t.Fatalf("got %d non-silent samples with no button held", n)
	}
	silent := len(sink.samples)
	// 357368 master cycles at 21.477MHz, sampled at 32kHz.
	if silent < 525 || silent > 540 {
		t.Errorf("got %d samples for one frame, want ~532", silent)
	}

	ports.Device(0).(*input.Pad).Set(input.PadA, true)
	runFrame(t, e)
	if n := sink.nonZero(); n < (len(sink.samples)-silent)/2 {
		t.Errorf("got %d non-silent samples out of %d with a button held", n, len(sink.samples)-silent)
	}
	for _, smp := range sink.samples {
		if smp.L != smp.R {
			t.Fatalf("sample %v has different channels", smp)
		}
	}
}

func TestPointerMovesCursor(t *testing.T) {
	e, _, ports := newTestEngine(t, core.NTSC, input.KindPad, input.KindPointer)

	mouse := ports.Device(1).(*input.Pointer)
	mouse.Move(10, -5)
	runFrame(t, e)

	if e.cursorX != Width/2+10 || e.cursorY != ntscVisible/2-5 {
		t.Errorf("cursor = (%d,%d), want (%d,%d)", e.cursorX, e.cursorY, Width/2+10, ntscVisible/2-5)
	}
	if mouse.DX != 0 || mouse.DY != 0 {
		t.Errorf("motion not consumed by latch: (%d,%d)", mouse.DX, mouse.DY)
	}

	// The cursor stays on screen.
	for range 10 {
		mouse.Move(-127, 127)
		runFrame(t, e)
	}
	if e.cursorX != 0 || e.cursorY != ntscVisible-1 {
		t.Errorf("cursor = (%d,%d), want (0,%d)", e.cursorX, e.cursorY, ntscVisible-1)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	e, _, ports := newTestEngine(t, core.NTSC, input.KindPad, input.KindPointer)

	pad := ports.Device(0).(*input.Pad)
	pad.Set(input.PadY, true)
	runFrame(t, e)
	for range 1000 {
		e.Step(2)
	}
	ports.Device(1).(*input.Pointer).Move(3, 4)

	saved := e.Serialize()

	// Diverge, then restore.
	pad.Set(input.PadY, false)
	pad.Set(input.PadStart, true)
	runFrame(t, e)
	runFrame(t, e)

	if err := e.Deserialize(saved); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if got := e.Serialize(); !bytes.Equal(got, saved) {
		t.Errorf("state after restore differs:\n got %s\nwant %s", got, saved)
	}
	if !pad.Held(input.PadY) || pad.Held(input.PadStart) {
		t.Errorf("pad buttons not restored: %016b", pad.Buttons)
	}
}

func TestSerializeDeterministic(t *testing.T) {
	run := func() []byte {
		e, _, ports := newTestEngine(t, core.PAL, input.KindPad)
		ports.Device(0).(*input.Pad).Set(input.PadR, true)
		runFrame(t, e)
		for range 777 {
			e.Step(2)
		}
		return e.Serialize()
	}

	a, b := run(), run()
	if !bytes.Equal(a, b) {
		t.Errorf("same inputs, different states:\n%s\n%s", a, b)
	}
}

func TestDeserializeErrors(t *testing.T) {
	ntsc, _, _ := newTestEngine(t, core.NTSC)
	pal, _, _ := newTestEngine(t, core.PAL)
	palState := pal.Serialize()

	tests := []struct {
		name string
		data []byte
	}{
		{"garbage", []byte("not json")},
		{"truncated", palState[:len(palState)/2]},
		{"wrong region", palState},
		{"wrong version", []byte(`{"version":42,"region":"NTSC"}`)},
		{"frame cycle out of range", []byte(`{"version":1,"region":"NTSC","frame_cycles":999999999}`)},
		{"bad cursor", []byte(`{"version":1,"region":"NTSC","cursor":[1]}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := ntsc.Serialize()
			err := ntsc.Deserialize(tt.data)
			if !errors.Is(err, ErrBadState) {
				t.Fatalf("Deserialize error = %v, want ErrBadState", err)
			}
			if after := ntsc.Serialize(); !bytes.Equal(before, after) {
				t.Errorf("failed Deserialize modified the state")
			}
		})
	}
}
