package emu

import (
	"github.com/veandco/go-sdl2/sdl"

	"emuhost/emu/log"
	"emuhost/hw/snapshot"
)

// An Event is a host event, independent of the windowing library.
type Event interface {
	isEvent()
}

type (
	KeyEvent struct {
		Scancode sdl.Scancode
		Pressed  bool
	}

	MouseButtonEvent struct {
		Button  uint8
		Pressed bool
	}

	// MouseMotionEvent is a relative pointer motion.
	MouseMotionEvent struct {
		DX, DY int32
	}

	FocusEvent struct {
		Focused bool
	}

	// ResizeEvent carries the new drawable size of the window.
	ResizeEvent struct {
		Width, Height int
	}

	CloseEvent struct{}
)

func (KeyEvent) isEvent()         {}
func (MouseButtonEvent) isEvent() {}
func (MouseMotionEvent) isEvent() {}
func (FocusEvent) isEvent()       {}
func (ResizeEvent) isEvent()      {}
func (CloseEvent) isEvent()       {}

// FromSDL translates an SDL event. It returns nil for events the session
// doesn't handle, and for key repeats.
func FromSDL(ev sdl.Event) Event {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		return CloseEvent{}
	case *sdl.KeyboardEvent:
		if e.Repeat != 0 {
			return nil
		}
		return KeyEvent{Scancode: e.Keysym.Scancode, Pressed: e.State == sdl.PRESSED}
	case *sdl.MouseButtonEvent:
		return MouseButtonEvent{Button: e.Button, Pressed: e.State == sdl.PRESSED}
	case *sdl.MouseMotionEvent:
		return MouseMotionEvent{DX: e.XRel, DY: e.YRel}
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_FOCUS_GAINED:
			return FocusEvent{Focused: true}
		case sdl.WINDOWEVENT_FOCUS_LOST:
			return FocusEvent{Focused: false}
		case sdl.WINDOWEVENT_SIZE_CHANGED:
			return ResizeEvent{Width: int(e.Data1), Height: int(e.Data2)}
		case sdl.WINDOWEVENT_CLOSE:
			return CloseEvent{}
		}
	}
	return nil
}

// HandleEvent applies a host event to the session. It returns true when the
// session should end.
//
// Input events are ignored while the window doesn't have the focus. Keys go
// to the controller ports first, then to the snapshot hotkeys, never both.
func (s *Session) HandleEvent(ev Event) (quit bool) {
	switch ev := ev.(type) {
	case CloseEvent:
		return true

	case FocusEvent:
		s.setFocus(ev.Focused)

	case ResizeEvent:
		s.surface.SetOutputSize(ev.Width, ev.Height)

	case KeyEvent:
		if s.focused {
			s.handleKey(ev)
		}

	case MouseButtonEvent:
		if s.focused {
			s.remapper.HandleMouseButton(ev.Button, ev.Pressed, &s.ports)
		}

	case MouseMotionEvent:
		if s.focused {
			s.remapper.HandleMouseMotion(ev.DX, ev.DY, &s.ports)
		}
	}
	return false
}

func (s *Session) setFocus(focused bool) {
	s.focused = focused
	if !focused {
		// Releases happening while unfocused are never seen.
		s.shift = [2]bool{}
		s.ports.Release()
	}
	if s.host == nil || !s.remapper.HasPointer() {
		return
	}
	if err := s.host.CapturePointer(focused); err != nil {
		log.ModInput.WarnZ("pointer capture failed").Error("err", err).End()
	}
}

func (s *Session) handleKey(ev KeyEvent) {
	if s.remapper.HandleKey(ev.Scancode, ev.Pressed, &s.ports) {
		return
	}

	switch ev.Scancode {
	case sdl.SCANCODE_LSHIFT:
		s.shift[0] = ev.Pressed
		return
	case sdl.SCANCODE_RSHIFT:
		s.shift[1] = ev.Pressed
		return
	}

	slot, ok := snapshot.SlotForScancode(ev.Scancode)
	if !ok || !ev.Pressed {
		return
	}
	if s.shift[0] || s.shift[1] {
		if _, err := s.LoadSlot(slot); err != nil {
			log.ModSnapshot.ErrorZ("failed to load state").Int("slot", slot).Error("err", err).End()
		}
		return
	}
	if err := s.SaveSlot(slot); err != nil {
		log.ModSnapshot.ErrorZ("failed to save state").Int("slot", slot).Error("err", err).End()
	}
}
