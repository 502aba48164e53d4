package audio

import (
	"fmt"
	"unsafe"

	"emuhost/emu/log"
)

// A Device is an opened audio output device, pulling samples from a Source
// on its own goroutine once started.
type Device interface {
	// Spec returns the negotiated device specification.
	Spec() DeviceSpec

	// Start starts playback. src is the device consumer: it is only ever
	// called from one goroutine at a time.
	Start(src Source) error

	Close() error
}

// Backend names.
const (
	BackendSDL = "sdl"
	BackendOto = "oto"
)

// Open opens the default output device of the given backend, requesting
// stereo samples at SampleRate.
func Open(backend string, bufferFrames int) (Device, error) {
	if bufferFrames <= 0 {
		bufferFrames = defaultBufferFrames
	}
	want := DeviceSpec{Rate: SampleRate, Channels: 2, BufferFrames: bufferFrames}

	var (
		dev Device
		err error
	)
	switch backend {
	case "", BackendSDL:
		dev, err = openSDL(want)
	case BackendOto:
		dev, err = openOto(want)
	default:
		return nil, fmt.Errorf("unknown audio backend %q", backend)
	}
	if err != nil {
		return nil, err
	}

	got := dev.Spec()
	if got.Rate != want.Rate {
		// No resampling: a rate mismatch shifts the pitch slightly.
		log.ModSound.WarnZ("audio device rate differs from emulation rate").
			Int("want", want.Rate).
			Int("got", got.Rate).
			End()
	}
	return dev, nil
}

// bytesOf returns the bytes of a slice of native endian samples.
func bytesOf(buf []int16) []byte {
	if len(buf) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), len(buf)*2)
}
