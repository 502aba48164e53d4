package input

import "fmt"

// A PadButton identifies a button of the standard pad, in the order the
// console shifts them out of the port.
type PadButton uint8

const (
	PadB PadButton = iota
	PadY
	PadSelect
	PadStart
	PadUp
	PadDown
	PadLeft
	PadRight
	PadA
	PadX
	PadL
	PadR

	PadButtonCount
)

var padButtonNames = [PadButtonCount]string{
	"B", "Y", "Select", "Start",
	"Up", "Down", "Left", "Right",
	"A", "X", "L", "R",
}

func (b PadButton) String() string {
	if b < PadButtonCount {
		return padButtonNames[b]
	}
	return fmt.Sprintf("PadButton(%d)", uint8(b))
}

// A PointerButton identifies a button of the pointing device.
type PointerButton uint8

const (
	PointerLeft PointerButton = iota
	PointerRight

	PointerButtonCount
)

var pointerButtonNames = [PointerButtonCount]string{"Left", "Right"}

func (b PointerButton) String() string {
	if b < PointerButtonCount {
		return pointerButtonNames[b]
	}
	return fmt.Sprintf("PointerButton(%d)", uint8(b))
}

// Kind is the capability of the device plugged into a port.
type Kind uint8

const (
	KindAbsent Kind = iota
	KindPad
	KindPointer
)

func (k Kind) String() string {
	switch k {
	case KindPad:
		return "pad"
	case KindPointer:
		return "mouse"
	}
	return "absent"
}

// ParseKind parses the configuration name of a device kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "absent", "none":
		return KindAbsent, nil
	case "pad":
		return KindPad, nil
	case "mouse", "pointer":
		return KindPointer, nil
	}
	return KindAbsent, fmt.Errorf("unknown controller kind %q", s)
}

// A Device is what is plugged into a controller port, one of Absent, *Pad
// or *Pointer.
type Device interface {
	Kind() Kind

	// Bits returns the raw state the console reads from the port.
	Bits() uint32

	// Latch is Bits for the console latch signal. Devices with relative
	// state consume it.
	Latch() uint32
}

// Absent is an empty port. It always reads as zero.
type Absent struct{}

func (Absent) Kind() Kind    { return KindAbsent }
func (Absent) Bits() uint32  { return 0 }
func (Absent) Latch() uint32 { return 0 }

// Pad is the standard pad. Bit n of Buttons is set while PadButton(n) is held.
type Pad struct {
	Buttons uint16
}

func (p *Pad) Kind() Kind    { return KindPad }
func (p *Pad) Bits() uint32  { return uint32(p.Buttons) }
func (p *Pad) Latch() uint32 { return uint32(p.Buttons) }

// Held reports whether button b is held.
func (p *Pad) Held(b PadButton) bool {
	return p.Buttons>>b&1 != 0
}

func (p *Pad) Set(b PadButton, pressed bool) {
	if pressed {
		p.Buttons |= 1 << b
	} else {
		p.Buttons &^= 1 << b
	}
}

// Pointer is a relative-motion pointing device (mouse). Motion accumulates
// until the console latches the port.
type Pointer struct {
	Left, Right bool
	DX, DY      int32
	Sensitivity uint8 // 0 to 2
}

const maxPointerDelta = 127

func (m *Pointer) Kind() Kind { return KindPointer }

func (m *Pointer) Set(b PointerButton, pressed bool) {
	switch b {
	case PointerLeft:
		m.Left = pressed
	case PointerRight:
		m.Right = pressed
	}
}

// Move accumulates a relative motion.
func (m *Pointer) Move(dx, dy int32) {
	m.DX = clampDelta(m.DX + dx)
	m.DY = clampDelta(m.DY + dy)
}

func clampDelta(v int32) int32 {
	return max(-maxPointerDelta, min(maxPointerDelta, v))
}

// Bits returns the 32-bit mouse report:
//
//	bits 31-24: horizontal motion (sign-magnitude)
//	bits 23-16: vertical motion (sign-magnitude)
//	bit  15/14: left/right buttons
//	bits 13-12: sensitivity
//	bits 11-8 : signature (0001)
func (m *Pointer) Bits() uint32 {
	var bits uint32
	bits |= signMagnitude(m.DX) << 24
	bits |= signMagnitude(m.DY) << 16
	if m.Left {
		bits |= 1 << 15
	}
	if m.Right {
		bits |= 1 << 14
	}
	bits |= uint32(m.Sensitivity&3) << 12
	bits |= 1 << 8
	return bits
}

func (m *Pointer) Latch() uint32 {
	bits := m.Bits()
	m.DX, m.DY = 0, 0
	return bits
}

func signMagnitude(v int32) uint32 {
	if v < 0 {
		return 0x80 | uint32(-v)&0x7f
	}
	return uint32(v) & 0x7f
}

// NewDevice returns a fresh device of kind k.
func NewDevice(k Kind) Device {
	switch k {
	case KindPad:
		return &Pad{}
	case KindPointer:
		return &Pointer{}
	}
	return Absent{}
}

// Port is one of the two console controller ports.
type Port struct {
	Device Device
}

// Ports holds both controller ports. Port 1 is at index 0.
type Ports [2]Port

// Plug connects dev to port idx (0 or 1). A nil dev unplugs the port.
func (ps *Ports) Plug(idx int, dev Device) {
	if dev == nil {
		dev = Absent{}
	}
	ps[idx].Device = dev
}

// Device returns the device plugged into port idx, never nil.
func (ps *Ports) Device(idx int) Device {
	if ps[idx].Device == nil {
		return Absent{}
	}
	return ps[idx].Device
}

// Release lets go of every held button on both ports. Pending pointer
// motion is kept.
func (ps *Ports) Release() {
	for i := range ps {
		switch dev := ps.Device(i).(type) {
		case *Pad:
			dev.Buttons = 0
		case *Pointer:
			dev.Left, dev.Right = false, false
		}
	}
}

// PortState is the logical state of a port, as stored in snapshots.
type PortState struct {
	Kind        Kind
	Buttons     uint16
	DX, DY      int32
	Sensitivity uint8
}

// State returns the logical state of both ports.
func (ps *Ports) State() [2]PortState {
	var states [2]PortState
	for i := range ps {
		switch dev := ps.Device(i).(type) {
		case *Pad:
			states[i] = PortState{Kind: KindPad, Buttons: dev.Buttons}
		case *Pointer:
			var buttons uint16
			if dev.Left {
				buttons |= 1 << PointerLeft
			}
			if dev.Right {
				buttons |= 1 << PointerRight
			}
			states[i] = PortState{
				Kind:        KindPointer,
				Buttons:     buttons,
				DX:          dev.DX,
				DY:          dev.DY,
				Sensitivity: dev.Sensitivity,
			}
		case Absent:
			states[i] = PortState{Kind: KindAbsent}
		}
	}
	return states
}

// SetState restores the logical state of both ports. The plugged devices are
// kept: a state recorded for another kind of device is ignored.
func (ps *Ports) SetState(states [2]PortState) {
	for i, st := range states {
		switch dev := ps.Device(i).(type) {
		case *Pad:
			if st.Kind == KindPad {
				dev.Buttons = st.Buttons
			}
		case *Pointer:
			if st.Kind == KindPointer {
				dev.Left = st.Buttons>>PointerLeft&1 != 0
				dev.Right = st.Buttons>>PointerRight&1 != 0
				dev.DX, dev.DY = st.DX, st.DY
				dev.Sensitivity = st.Sensitivity
			}
		}
	}
}
