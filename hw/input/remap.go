package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"emuhost/emu/log"
)

// Remapper translates raw host inputs into controller port mutations.
//
// Ports are evaluated in order, port 1 first. The first port whose profile
// consumes an event wins: an event never reaches two ports.
type Remapper struct {
	profiles [2]*Profile
}

// NewRemapper returns a remapper for the given port profiles. A nil profile
// leaves the port empty.
func NewRemapper(port1, port2 *Profile) *Remapper {
	return &Remapper{profiles: [2]*Profile{port1, port2}}
}

// Plug connects to ports the devices described by the profiles.
func (r *Remapper) Plug(ports *Ports) {
	for i, p := range r.profiles {
		if p == nil {
			ports.Plug(i, Absent{})
			continue
		}
		ports.Plug(i, p.NewDevice())
		log.ModInput.InfoZ("controller plugged").
			Int("port", i+1).
			String("profile", p.Name).
			Stringer("kind", p.Kind).
			End()
	}
}

// HasPointer reports whether a pointing device is configured on any port.
func (r *Remapper) HasPointer() bool {
	for _, p := range r.profiles {
		if p != nil && p.Kind == KindPointer {
			return true
		}
	}
	return false
}

func (r *Remapper) apply(code Code, pressed bool, ports *Ports) bool {
	for i, p := range r.profiles {
		if p == nil {
			continue
		}
		if p.Apply(code, pressed, ports.Device(i)) {
			log.ModInput.DebugZ("input mapped").
				Int("port", i+1).
				Stringer("code", code).
				Bool("pressed", pressed).
				End()
			return true
		}
	}
	return false
}

// HandleKey applies a key press or release. It returns false if no port
// consumed it.
func (r *Remapper) HandleKey(sc sdl.Scancode, pressed bool, ports *Ports) bool {
	return r.apply(Key(sc), pressed, ports)
}

// HandleMouseButton applies a mouse button press or release.
func (r *Remapper) HandleMouseButton(btn uint8, pressed bool, ports *Ports) bool {
	return r.apply(MouseButton(btn), pressed, ports)
}

// HandleMouseMotion applies a relative mouse motion to the first pointing
// device.
func (r *Remapper) HandleMouseMotion(dx, dy int32, ports *Ports) bool {
	for i, p := range r.profiles {
		if p == nil {
			continue
		}
		if p.Move(dx, dy, ports.Device(i)) {
			return true
		}
	}
	return false
}
