package input

import (
	"fmt"
	"strings"

	"github.com/veandco/go-sdl2/sdl"
)

type CodeType uint8

const (
	Unset CodeType = iota
	KeyCode
	MouseCode
)

func (t CodeType) String() string {
	switch t {
	case KeyCode:
		return "key"
	case MouseCode:
		return "mouse button"
	}
	return "not set"
}

// A Code identifies a raw host input: a keyboard key or a mouse button. Only
// the field matching Type is valid.
type Code struct {
	Type     CodeType
	Scancode sdl.Scancode
	Button   uint8 // sdl.BUTTON_*
}

// Key returns the code of the keyboard key sc.
func Key(sc sdl.Scancode) Code { return Code{Type: KeyCode, Scancode: sc} }

// MouseButton returns the code of the mouse button btn (sdl.BUTTON_*).
func MouseButton(btn uint8) Code { return Code{Type: MouseCode, Button: btn} }

var mouseButtonNames = map[uint8]string{
	sdl.BUTTON_LEFT:   "left",
	sdl.BUTTON_MIDDLE: "middle",
	sdl.BUTTON_RIGHT:  "right",
	sdl.BUTTON_X1:     "x1",
	sdl.BUTTON_X2:     "x2",
}

// Name returns an user-friendly name for the input code.
func (c Code) Name() string {
	switch c.Type {
	case KeyCode:
		return sdl.GetScancodeName(c.Scancode)
	case MouseCode:
		return mouseButtonNames[c.Button]
	}
	return ""
}

func (c Code) String() string {
	if c.Type == Unset {
		return "<unset>"
	}
	return c.Type.String() + " " + c.Name()
}

func (c Code) MarshalText() ([]byte, error) {
	switch c.Type {
	case KeyCode:
		return []byte("key " + c.Name()), nil
	case MouseCode:
		name, ok := mouseButtonNames[c.Button]
		if !ok {
			return nil, fmt.Errorf("unknown mouse button %d", c.Button)
		}
		return []byte("mouse " + name), nil
	}
	return []byte{}, nil
}

func (c *Code) UnmarshalText(text []byte) error {
	s := string(text)

	switch {
	case s == "":
		*c = Code{}

	case strings.HasPrefix(s, "key "):
		// Scancode names may contain spaces ("Left Shift").
		name := strings.TrimSpace(s[len("key "):])
		if name == "" {
			return fmt.Errorf("malformed key code: %q", s)
		}
		sc := sdl.GetScancodeFromName(name)
		if sc == sdl.SCANCODE_UNKNOWN {
			return fmt.Errorf("unrecognized scancode %q", name)
		}
		*c = Key(sc)

	case strings.HasPrefix(s, "mouse "):
		name := ""
		if _, err := fmt.Sscanf(s, "mouse %s", &name); err != nil {
			return fmt.Errorf("malformed mouse code: %q", s)
		}
		for btn, bname := range mouseButtonNames {
			if bname == name {
				*c = MouseButton(btn)
				return nil
			}
		}
		return fmt.Errorf("unrecognized mouse button %q", name)

	default:
		return fmt.Errorf("unrecognized input code: %q", s)
	}

	return nil
}
