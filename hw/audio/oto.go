package audio

import (
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"

	"emuhost/emu/log"
)

// otoDevice plays audio with oto. The oto player pulls bytes from a reader
// on its own goroutine; the reader drains the Source.
type otoDevice struct {
	ctx    *oto.Context
	player *oto.Player
	spec   DeviceSpec
}

func openOto(want DeviceSpec) (*otoDevice, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   want.Rate,
		ChannelCount: want.Channels,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   time.Duration(want.BufferFrames) * time.Second / time.Duration(want.Rate),
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDevice, err)
	}
	<-ready

	log.ModSound.InfoZ("oto audio context ready").
		Int("rate", want.Rate).
		Int("channels", want.Channels).
		Duration("buffer", opts.BufferSize).
		End()
	return &otoDevice{ctx: ctx, spec: want}, nil
}

func (d *otoDevice) Spec() DeviceSpec { return d.spec }

func (d *otoDevice) Start(src Source) error {
	if d.player != nil {
		return fmt.Errorf("oto audio device already started")
	}
	d.player = d.ctx.NewPlayer(&pullReader{src: src, channels: d.spec.Channels})
	d.player.SetBufferSize(d.spec.BufferFrames * d.spec.Channels * 2)
	d.player.Play()
	return nil
}

func (d *otoDevice) Close() error {
	if d.player == nil {
		return nil
	}
	err := d.player.Close()
	d.player = nil
	return err
}

// pullReader adapts a Source to the io.Reader oto pulls from. It never
// blocks and never returns io.EOF: an empty ring reads as silence.
type pullReader struct {
	src      Source
	channels int
	buf      []int16
}

func (r *pullReader) Read(p []byte) (int, error) {
	frameSize := 2 * r.channels
	n := len(p) / frameSize * frameSize
	if n == 0 {
		return 0, nil
	}
	if cap(r.buf) < n/2 {
		r.buf = make([]int16, n/2)
	}
	buf := r.buf[:n/2]
	r.src.Fill(buf, r.channels)
	for i, s := range buf {
		p[2*i] = byte(s)
		p[2*i+1] = byte(s >> 8)
	}
	return n, nil
}
