package audio

import (
	"errors"
	"math/bits"

	"emuhost/emu/log"
)

// SampleRate is the fixed rate at which the engine generates samples.
const SampleRate = 32000

const defaultBufferFrames = 1024

// ErrNoDevice is returned when no usable audio output device exists.
var ErrNoDevice = errors.New("no audio output device")

// DeviceSpec describes the negotiated output device.
type DeviceSpec struct {
	Rate         int // frames per second
	Channels     int
	BufferFrames int // device buffer size, in frames
}

// A Sink receives the samples generated by the engine.
type Sink interface {
	PushSample(StereoSample)
}

// A Source fills device buffers with interleaved samples.
type Source interface {
	Fill(out []int16, channels int)
}

// Bridge connects the engine (producer) with the audio device callback
// (consumer) through a Ring.
type Bridge struct {
	ring *Ring
	spec DeviceSpec
	tap  Sink

	overrunning  bool // producer side only
	underrunning bool // consumer side only
}

// RingCapacity returns the number of stereo samples the ring holds for a
// device: one device buffer plus ~1/6s of latency margin, rounded up to a
// power of 2.
func RingCapacity(spec DeviceSpec) int {
	frames := spec.BufferFrames
	if frames <= 0 {
		frames = defaultBufferFrames
	}
	n := uint(frames + spec.Rate/6)
	return 1 << bits.Len(n-1)
}

// NewBridge returns a bridge sized for spec. The ring is pre-filled with 20%
// of silence, so that playback doesn't start with an underrun.
func NewBridge(spec DeviceSpec) *Bridge {
	b := &Bridge{
		ring: NewRing(RingCapacity(spec)),
		spec: spec,
	}
	for range b.ring.Cap() / 5 {
		b.ring.Push(StereoSample{})
	}

	log.ModSound.InfoZ("audio bridge ready").
		Int("capacity", b.ring.Cap()).
		Int("prefill", b.ring.Len()).
		Int("rate", spec.Rate).
		Int("channels", spec.Channels).
		End()
	return b
}

// SetTap registers a sink receiving a copy of every sample pushed. The tap
// runs on the producer side.
func (b *Bridge) SetTap(tap Sink) { b.tap = tap }

// PushSample queues a sample produced by the engine. Implements Sink.
func (b *Bridge) PushSample(s StereoSample) {
	if b.tap != nil {
		b.tap.PushSample(s)
	}
	if !b.ring.Push(s) {
		if !b.overrunning {
			b.overrunning = true
			log.ModSound.DebugZ("audio overrun").Uint64("total", b.ring.Overruns()).End()
		}
		return
	}
	b.overrunning = false
}

// Fill fills out with interleaved frames of the given channel count.
//
// Mono takes the left sample. With more than 2 channels, the extra channels
// mirror the left sample: this is an approximation, not a real downmix.
// Implements Source.
func (b *Bridge) Fill(out []int16, channels int) {
	if channels <= 0 {
		return
	}
	before := b.ring.Underruns()
	for i := 0; i+channels <= len(out); i += channels {
		s := b.ring.Pop()
		switch channels {
		case 1:
			out[i] = s.L
		default:
			out[i] = s.L
			out[i+1] = s.R
			for c := 2; c < channels; c++ {
				out[i+c] = s.L
			}
		}
	}

	if b.ring.Underruns() != before {
		if !b.underrunning {
			b.underrunning = true
			log.ModSound.DebugZ("audio underrun").Uint64("total", b.ring.Underruns()).End()
		}
		return
	}
	b.underrunning = false
}

// Stats is a snapshot of the bridge counters.
type Stats struct {
	Buffered  int
	Capacity  int
	Overruns  uint64
	Underruns uint64
}

func (b *Bridge) Stats() Stats {
	return Stats{
		Buffered:  b.ring.Len(),
		Capacity:  b.ring.Cap(),
		Overruns:  b.ring.Overruns(),
		Underruns: b.ring.Underruns(),
	}
}

// Spec returns the device specification the bridge was sized for.
func (b *Bridge) Spec() DeviceSpec { return b.spec }
