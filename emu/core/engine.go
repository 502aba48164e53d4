// Package core defines the contract between the host loop and an emulation
// engine.
package core

import (
	"fmt"
	"strings"
	"time"

	"emuhost/hw/audio"
	"emuhost/hw/input"
	"emuhost/hw/video"
)

// Region is the video standard of the emulated console. It sets the ratio
// between master cycles and wall clock time.
type Region uint8

const (
	NTSC Region = iota
	PAL
)

func (r Region) String() string {
	switch r {
	case NTSC:
		return "NTSC"
	case PAL:
		return "PAL"
	}
	return fmt.Sprintf("Region(%d)", uint8(r))
}

// ParseRegion parses a region name, case insensitive.
func ParseRegion(s string) (Region, error) {
	switch strings.ToLower(s) {
	case "ntsc":
		return NTSC, nil
	case "pal":
		return PAL, nil
	}
	return NTSC, fmt.Errorf("unknown region %q", s)
}

// Master clock frequencies, as exact fractions of a second:
//
//	NTSC: 21477272.72... Hz = 189e6/8.8
//	PAL:  21281370 Hz
const (
	ntscNum, ntscDen = 8800, 189
	palNum, palDen   = 100_000_000, 2_128_137
)

// Duration returns the wall clock duration of the given number of master
// cycles, truncated to the nanosecond.
func (r Region) Duration(cycles uint64) time.Duration {
	num, den := uint64(ntscNum), uint64(ntscDen)
	if r == PAL {
		num, den = palNum, palDen
	}
	// Split to avoid overflowing cycles*num.
	q, rem := cycles/den, cycles%den
	return time.Duration(q*num + rem*num/den)
}

// Metadata is the static description of the loaded game.
type Metadata struct {
	Title        string
	Region       Region
	Width        int // native frame width
	Height       int // native frame height
	VisibleLines int // number of lines shown, counted from the top row
}

// Devices are the host devices an engine writes to and reads from.
type Devices struct {
	Audio  audio.Sink
	Screen *video.Surface
	Ports  *input.Ports
}

// An Engine is a cycle stepped emulation engine with a game loaded.
type Engine interface {
	Metadata() Metadata

	// Connect gives the engine the devices it uses. It's called once, before
	// the first Step.
	Connect(Devices)

	// Step runs the given number of master cycles. It pushes generated audio
	// samples to the audio sink, and returns true when it has committed a
	// complete frame to the screen.
	Step(cycles uint16) (frameDone bool)

	// Serialize returns the whole engine state, including controller ports
	// and audio state. Deserialize restores a state returned by Serialize.
	Serialize() []byte
	Deserialize([]byte) error
}

// SetRegion is implemented by engines whose region can be forced before the
// session starts.
type SetRegion interface {
	SetRegion(Region)
}
