package input

import (
	"fmt"
	"sort"
)

// A Profile maps raw host inputs to the buttons of the device plugged into
// one port. Profiles are immutable once built.
type Profile struct {
	Name        string
	Kind        Kind
	Sensitivity uint8

	// raw code -> PadButton or PointerButton, depending on Kind.
	actions map[Code]uint8
}

// NewProfile builds a profile for a device of kind k. buttons maps button
// names (as returned by PadButton.String or PointerButton.String) to the raw
// host input that drives them.
func NewProfile(name string, k Kind, buttons map[string]Code, sensitivity uint8) (*Profile, error) {
	p := &Profile{
		Name:        name,
		Kind:        k,
		Sensitivity: min(sensitivity, 2),
		actions:     make(map[Code]uint8, len(buttons)),
	}

	// Sort button names so that error messages are deterministic.
	names := make([]string, 0, len(buttons))
	for n := range buttons {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, bname := range names {
		code := buttons[bname]
		if code.Type == Unset {
			continue
		}
		btn, ok := buttonByName(k, bname)
		if !ok {
			return nil, fmt.Errorf("controller %q: no button %q on a %s", name, bname, k)
		}
		if prev, dup := p.actions[code]; dup {
			return nil, fmt.Errorf("controller %q: %s is mapped to both %s and %s",
				name, code, buttonName(k, prev), bname)
		}
		p.actions[code] = btn
	}
	return p, nil
}

func buttonByName(k Kind, name string) (uint8, bool) {
	switch k {
	case KindPad:
		for i, n := range padButtonNames {
			if n == name {
				return uint8(i), true
			}
		}
	case KindPointer:
		for i, n := range pointerButtonNames {
			if n == name {
				return uint8(i), true
			}
		}
	}
	return 0, false
}

func buttonName(k Kind, btn uint8) string {
	if k == KindPointer {
		return PointerButton(btn).String()
	}
	return PadButton(btn).String()
}

// NewDevice returns a fresh device matching the profile kind.
func (p *Profile) NewDevice() Device {
	dev := NewDevice(p.Kind)
	if ptr, ok := dev.(*Pointer); ok {
		ptr.Sensitivity = p.Sensitivity
	}
	return dev
}

// Apply mutates dev according to the raw input code. It returns true if the
// profile maps code, in which case the event is consumed.
func (p *Profile) Apply(code Code, pressed bool, dev Device) bool {
	btn, ok := p.actions[code]
	if !ok {
		return false
	}

	switch dev := dev.(type) {
	case *Pad:
		dev.Set(PadButton(btn), pressed)
		return true
	case *Pointer:
		dev.Set(PointerButton(btn), pressed)
		return true
	case Absent:
	}
	return false
}

// Move applies a relative motion to dev. Only pointing devices consume motion.
func (p *Profile) Move(dx, dy int32, dev Device) bool {
	if ptr, ok := dev.(*Pointer); ok {
		ptr.Move(dx, dy)
		return true
	}
	return false
}
