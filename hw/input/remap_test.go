package input

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/veandco/go-sdl2/sdl"
)

func mustProfile(t *testing.T, name string, k Kind, buttons map[string]Code) *Profile {
	t.Helper()
	p, err := NewProfile(name, k, buttons, 1)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func arrowsPad(t *testing.T) *Profile {
	return mustProfile(t, "arrows", KindPad, map[string]Code{
		"Up":    Key(sdl.SCANCODE_UP),
		"Down":  Key(sdl.SCANCODE_DOWN),
		"Left":  Key(sdl.SCANCODE_LEFT),
		"Right": Key(sdl.SCANCODE_RIGHT),
		"A":     Key(sdl.SCANCODE_X),
		"B":     Key(sdl.SCANCODE_Z),
		"Start": Key(sdl.SCANCODE_RETURN),
	})
}

func TestRemapperFirstPortWins(t *testing.T) {
	// Both profiles map the X key.
	p1 := arrowsPad(t)
	p2 := mustProfile(t, "other", KindPad, map[string]Code{
		"A": Key(sdl.SCANCODE_X),
		"Y": Key(sdl.SCANCODE_Y),
	})

	var ports Ports
	rm := NewRemapper(p1, p2)
	rm.Plug(&ports)

	if !rm.HandleKey(sdl.SCANCODE_X, true, &ports) {
		t.Fatalf("HandleKey(X) not consumed")
	}

	want := [2]PortState{
		{Kind: KindPad, Buttons: 1 << PadA},
		{Kind: KindPad},
	}
	if diff := cmp.Diff(want, ports.State()); diff != "" {
		t.Fatalf("port states mismatch (-want +got):\n%s", diff)
	}

	// Y is only known by port 2.
	if !rm.HandleKey(sdl.SCANCODE_Y, true, &ports) {
		t.Fatalf("HandleKey(Y) not consumed")
	}
	want[1].Buttons = 1 << PadY
	if diff := cmp.Diff(want, ports.State()); diff != "" {
		t.Fatalf("port states mismatch (-want +got):\n%s", diff)
	}

	rm.HandleKey(sdl.SCANCODE_X, false, &ports)
	want[0].Buttons = 0
	if diff := cmp.Diff(want, ports.State()); diff != "" {
		t.Fatalf("port states mismatch after release (-want +got):\n%s", diff)
	}
}

func TestRemapperUnmappedFallsThrough(t *testing.T) {
	var ports Ports
	rm := NewRemapper(arrowsPad(t), nil)
	rm.Plug(&ports)

	if rm.HandleKey(sdl.SCANCODE_3, true, &ports) {
		t.Errorf("HandleKey(3) consumed, want fall through")
	}
	if rm.HandleMouseButton(sdl.BUTTON_LEFT, true, &ports) {
		t.Errorf("HandleMouseButton(left) consumed by a pad without mouse mapping")
	}
	if rm.HandleMouseMotion(3, 4, &ports) {
		t.Errorf("HandleMouseMotion consumed without pointing device")
	}
	if _, ok := ports.Device(1).(Absent); !ok {
		t.Errorf("port 2 = %T, want Absent", ports.Device(1))
	}
}

func TestRemapperPointer(t *testing.T) {
	mouse := mustProfile(t, "mouse", KindPointer, map[string]Code{
		"Left":  MouseButton(sdl.BUTTON_LEFT),
		"Right": MouseButton(sdl.BUTTON_RIGHT),
	})

	var ports Ports
	rm := NewRemapper(arrowsPad(t), mouse)
	rm.Plug(&ports)

	if !rm.HasPointer() {
		t.Fatalf("HasPointer() = false")
	}
	if !rm.HandleMouseButton(sdl.BUTTON_RIGHT, true, &ports) {
		t.Fatalf("right button not consumed")
	}
	rm.HandleMouseMotion(10, -3, &ports)
	rm.HandleMouseMotion(200, 0, &ports)

	ptr := ports.Device(1).(*Pointer)
	want := &Pointer{Right: true, DX: 127, DY: -3, Sensitivity: 1}
	if diff := cmp.Diff(want, ptr); diff != "" {
		t.Fatalf("pointer mismatch (-want +got):\n%s", diff)
	}

	// Latching consumes the motion but not the buttons.
	bits := ptr.Latch()
	if got, want := bits>>24, uint32(127); got != want {
		t.Errorf("latched dx = %d, want %d", got, want)
	}
	if got, want := bits>>16&0xff, uint32(0x83); got != want {
		t.Errorf("latched dy = %#x, want %#x", got, want)
	}
	if bits&(1<<14) == 0 {
		t.Errorf("latched right button not set in %#x", bits)
	}
	if ptr.DX != 0 || ptr.DY != 0 {
		t.Errorf("motion not consumed by latch: (%d,%d)", ptr.DX, ptr.DY)
	}
	if ports.Device(0).Bits() != 0 {
		t.Errorf("pad on port 1 mutated by mouse events: %#x", ports.Device(0).Bits())
	}
}

func TestNewProfileErrors(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		buttons map[string]Code
	}{
		{"unknown button", KindPad, map[string]Code{"Turbo": Key(sdl.SCANCODE_T)}},
		{"pad button on pointer", KindPointer, map[string]Code{"Start": MouseButton(sdl.BUTTON_RIGHT)}},
		{"duplicate code", KindPad, map[string]Code{"A": Key(sdl.SCANCODE_A), "B": Key(sdl.SCANCODE_A)}},
		{"absent with buttons", KindAbsent, map[string]Code{"A": Key(sdl.SCANCODE_A)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewProfile(tt.name, tt.kind, tt.buttons, 0); err == nil {
				t.Fatalf("NewProfile() error = nil")
			} else {
				t.Log(err)
			}
		})
	}
}

func TestPortsStateRoundTrip(t *testing.T) {
	var ports Ports
	ports.Plug(0, &Pad{Buttons: 0x0a5})
	ports.Plug(1, &Pointer{Left: true, DX: -5, DY: 9, Sensitivity: 2})

	saved := ports.State()

	ports.Device(0).(*Pad).Buttons = 0
	ports.Device(1).(*Pointer).Latch()
	ports.Device(1).(*Pointer).Left = false

	ports.SetState(saved)
	if diff := cmp.Diff(saved, ports.State()); diff != "" {
		t.Fatalf("state mismatch after restore (-want +got):\n%s", diff)
	}
}

func TestPortsRelease(t *testing.T) {
	var ports Ports
	ports.Plug(0, &Pad{Buttons: 0xfff})
	ports.Plug(1, &Pointer{Left: true, Right: true, DX: 3, DY: -1, Sensitivity: 2})

	ports.Release()

	want := [2]PortState{
		{Kind: KindPad},
		{Kind: KindPointer, DX: 3, DY: -1, Sensitivity: 2},
	}
	if diff := cmp.Diff(want, ports.State()); diff != "" {
		t.Errorf("state after release (-want +got):\n%s", diff)
	}
}
