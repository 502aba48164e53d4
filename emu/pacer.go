package emu

import (
	"time"

	"emuhost/emu/core"
	"emuhost/emu/log"
)

const (
	// CyclesPerStep is the number of master cycles run by one engine step.
	CyclesPerStep = 2

	// ResetThreshold is how far the emulation clock may fall behind wall
	// clock time before it's resynchronized.
	ResetThreshold = 500 * time.Millisecond

	// PresentInterval is the minimum time between two redraws (~120Hz).
	PresentInterval = 8333 * time.Microsecond
)

// EmulationClock paces engine steps. next only moves forward, by the
// emulated duration of the cycles actually run, except on drift reset.
type EmulationClock struct {
	next          time.Time
	cyclesPerStep uint16
	region        core.Region
}

func newEmulationClock(now time.Time, region core.Region) EmulationClock {
	return EmulationClock{next: now, cyclesPerStep: CyclesPerStep, region: region}
}

// Next returns the deadline of the next burst.
func (c *EmulationClock) Next() time.Time { return c.next }

// PresentationClock throttles redraws, independently of emulated frames.
type PresentationClock struct {
	next     time.Time
	interval time.Duration
}

func newPresentationClock(now time.Time) PresentationClock {
	return PresentationClock{next: now, interval: PresentInterval}
}

// PacerStats counts pacing events since the session started.
type PacerStats struct {
	Bursts      uint64 // step bursts, one per completed frame
	Cycles      uint64 // master cycles run
	DriftResets uint64
	Redraws     uint64 // redraw requests
}

// Tick runs one iteration of the pacer at time now: it runs a burst of
// engine steps if the emulation deadline has passed, and reports whether a
// redraw should happen. Tick never waits.
func (s *Session) Tick(now time.Time) (redraw bool) {
	clk := &s.emuClock
	if !now.Before(clk.next) {
		cycles := s.burst()
		clk.next = clk.next.Add(clk.region.Duration(cycles))

		if now.Sub(clk.next) > ResetThreshold {
			log.ModPacer.DebugZ("emulation clock reset").
				Duration("behind", now.Sub(clk.next)).
				End()
			clk.next = now
			s.stats.DriftResets++
		}
	}

	if !now.Before(s.presentClock.next) {
		s.presentClock.next = now.Add(s.presentClock.interval)
		s.stats.Redraws++
		return true
	}
	return false
}

// burst steps the engine until it completes a frame, and returns the number
// of master cycles run.
func (s *Session) burst() uint64 {
	s.inBurst = true
	defer func() { s.inBurst = false }()

	var cycles uint64
	step := s.emuClock.cyclesPerStep
	for {
		cycles += uint64(step)
		if s.engine.Step(step) {
			break
		}
	}

	s.frame.Add(1)
	s.stats.Bursts++
	s.stats.Cycles += cycles
	return cycles
}

// Stats returns the pacer counters.
func (s *Session) Stats() PacerStats { return s.stats }
