// Package snapshot keeps in-memory save states of the running engine.
package snapshot

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"emuhost/emu/log"
)

// NumSlots is the number of save slots.
const NumSlots = 10

// ErrInvalidSlot is returned for a slot index outside [0, NumSlots).
var ErrInvalidSlot = errors.New("invalid snapshot slot")

// A Blob is an opaque serialized engine state. A Blob is never modified
// after it's been stored in a slot.
type Blob struct {
	Data  []byte
	Saved time.Time
}

type Serializer interface {
	Serialize() []byte
}

type Deserializer interface {
	Deserialize([]byte) error
}

// Manager holds the save slots. Saving to a slot replaces its blob with a
// single pointer swap: a reader never sees a partially written blob.
type Manager struct {
	slots [NumSlots]atomic.Pointer[Blob]
}

func checkSlot(slot int) error {
	if slot < 0 || slot >= NumSlots {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	return nil
}

// Save serializes the state of s into slot, replacing any previous blob.
func (m *Manager) Save(slot int, s Serializer) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	blob := &Blob{Data: s.Serialize(), Saved: time.Now()}
	m.slots[slot].Store(blob)

	log.ModSnapshot.InfoZ("state saved").
		Int("slot", slot).
		Int("size", len(blob.Data)).
		End()
	return nil
}

// Load restores the state held in slot into d. Loading an empty slot is a
// no-op and reports loaded = false.
func (m *Manager) Load(slot int, d Deserializer) (loaded bool, err error) {
	if err := checkSlot(slot); err != nil {
		return false, err
	}
	blob := m.slots[slot].Load()
	if blob == nil {
		log.ModSnapshot.InfoZ("empty slot, nothing to load").Int("slot", slot).End()
		return false, nil
	}
	if err := d.Deserialize(blob.Data); err != nil {
		return false, fmt.Errorf("slot %d: %w", slot, err)
	}

	log.ModSnapshot.InfoZ("state loaded").
		Int("slot", slot).
		Duration("age", time.Since(blob.Saved)).
		End()
	return true, nil
}

// Has reports whether slot holds a blob.
func (m *Manager) Has(slot int) bool {
	return checkSlot(slot) == nil && m.slots[slot].Load() != nil
}

// Blob returns the blob held in slot, or nil.
func (m *Manager) Blob(slot int) *Blob {
	if checkSlot(slot) != nil {
		return nil
	}
	return m.slots[slot].Load()
}

// SlotForScancode returns the slot bound to a digit key of the main
// keyboard: keys 1 to 9 select slots 1 to 9, key 0 selects slot 0.
func SlotForScancode(sc sdl.Scancode) (slot int, ok bool) {
	switch {
	case sc >= sdl.SCANCODE_1 && sc <= sdl.SCANCODE_9:
		return int(sc-sdl.SCANCODE_1) + 1, true
	case sc == sdl.SCANCODE_0:
		return 0, true
	}
	return 0, false
}
