package emu

import (
	"errors"
	"sync/atomic"
	"time"

	"emuhost/emu/core"
	"emuhost/emu/log"
	"emuhost/hw/audio"
	"emuhost/hw/input"
	"emuhost/hw/snapshot"
	"emuhost/hw/video"
)

// ErrBurstInProgress is returned by snapshot operations attempted while the
// engine is being stepped.
var ErrBurstInProgress = errors.New("emulation step burst in progress")

// A Host performs window side effects requested by the session.
type Host interface {
	// CapturePointer grabs and hides the pointer (on) or releases it.
	CapturePointer(on bool) error
}

type SessionConfig struct {
	Profile Profile
	Audio   audio.Sink // nil discards samples
	Host    Host       // may be nil
}

// Session is the state of one emulation session: clocks, controller ports,
// save slots and frame surface. It's only accessed from the main loop
// goroutine, the audio bridge being the only structure shared with another
// goroutine.
type Session struct {
	engine core.Engine
	meta   core.Metadata
	region core.Region

	emuClock     EmulationClock
	presentClock PresentationClock

	ports     input.Ports
	remapper  *input.Remapper
	snapshots snapshot.Manager
	surface   *video.Surface
	host      Host

	focused bool
	shift   [2]bool // left and right shift keys
	inBurst bool
	frame   atomic.Uint64 // read by log contexts on any goroutine

	stats PacerStats
}

type discardSink struct{}

func (discardSink) PushSample(audio.StereoSample) {}

// NewSession connects the engine to the session devices. Both clocks start
// at now.
func NewSession(engine core.Engine, cfg SessionConfig, now time.Time) *Session {
	if cfg.Profile.ForceRegion {
		if sr, ok := engine.(core.SetRegion); ok {
			sr.SetRegion(cfg.Profile.Region)
		} else {
			log.ModEmu.WarnZ("engine doesn't support forcing the region").
				Stringer("region", cfg.Profile.Region).
				End()
		}
	}

	meta := engine.Metadata()
	s := &Session{
		engine:       engine,
		meta:         meta,
		region:       meta.Region,
		presentClock: newPresentationClock(now),
		remapper:     input.NewRemapper(cfg.Profile.Ports[0], cfg.Profile.Ports[1]),
		surface:      video.NewSurface(meta.Width, meta.Height, meta.VisibleLines),
		host:         cfg.Host,
	}
	s.emuClock = newEmulationClock(now, s.region)
	s.remapper.Plug(&s.ports)

	sink := cfg.Audio
	if sink == nil {
		sink = discardSink{}
	}
	engine.Connect(core.Devices{
		Audio:  sink,
		Screen: s.surface,
		Ports:  &s.ports,
	})

	log.ModEmu.InfoZ("session started").
		String("title", meta.Title).
		Stringer("region", s.region).
		String("profile", cfg.Profile.Name).
		End()
	return s
}

// SetHost sets the host receiving window requests.
func (s *Session) SetHost(h Host) { s.host = h }

func (s *Session) Surface() *video.Surface { return s.surface }
func (s *Session) Ports() *input.Ports      { return &s.ports }
func (s *Session) Region() core.Region      { return s.region }
func (s *Session) Metadata() core.Metadata  { return s.meta }

// Frame returns the number of frames emulated since the session started.
func (s *Session) Frame() uint64 { return s.frame.Load() }

// SaveSlot saves the engine state into a slot.
func (s *Session) SaveSlot(slot int) error {
	if s.inBurst {
		return ErrBurstInProgress
	}
	return s.snapshots.Save(slot, s.engine)
}

// LoadSlot restores the engine state saved in slot. It's a no-op, returning
// false, if the slot is empty.
func (s *Session) LoadSlot(slot int) (bool, error) {
	if s.inBurst {
		return false, ErrBurstInProgress
	}
	return s.snapshots.Load(slot, s.engine)
}

// HasSlot reports whether slot holds a saved state.
func (s *Session) HasSlot(slot int) bool { return s.snapshots.Has(slot) }

// AddLogContext implements log.Context. It's safe for concurrent use, the
// audio device goroutine logs too.
func (s *Session) AddLogContext(z *log.EntryZ) {
	z.Uint64("frame", s.frame.Load())
}
