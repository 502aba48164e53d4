package audio

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/sync/errgroup"

	"emuhost/emu/log"
)

// sdlDevice plays audio with an SDL queued audio device. SDL pulls from its
// queue on its own thread; a feeder goroutine keeps the queue topped up with
// about two device buffers, drained from the Source.
type sdlDevice struct {
	id   sdl.AudioDeviceID
	spec DeviceSpec

	cancel context.CancelFunc
	g      *errgroup.Group
}

func openSDL(want DeviceSpec) (*sdlDevice, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL audio: %s", err)
	}
	if sdl.GetNumAudioDevices(false) == 0 {
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
		return nil, ErrNoDevice
	}

	desired := sdl.AudioSpec{
		Freq:     int32(want.Rate),
		Format:   sdl.AUDIO_S16SYS,
		Channels: uint8(want.Channels),
		Samples:  uint16(want.BufferFrames),
	}
	var obtained sdl.AudioSpec
	id, err := sdl.OpenAudioDevice("", false, &desired, &obtained,
		sdl.AUDIO_ALLOW_FREQUENCY_CHANGE|sdl.AUDIO_ALLOW_CHANNELS_CHANGE)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
		return nil, fmt.Errorf("%w: %s", ErrNoDevice, err)
	}

	d := &sdlDevice{
		id: id,
		spec: DeviceSpec{
			Rate:         int(obtained.Freq),
			Channels:     int(obtained.Channels),
			BufferFrames: int(obtained.Samples),
		},
	}
	log.ModSound.InfoZ("SDL audio device opened").
		String("driver", sdl.GetCurrentAudioDriver()).
		Int("rate", d.spec.Rate).
		Int("channels", d.spec.Channels).
		Int("samples", d.spec.BufferFrames).
		End()
	return d, nil
}

func (d *sdlDevice) Spec() DeviceSpec { return d.spec }

func (d *sdlDevice) Start(src Source) error {
	if d.g != nil {
		return fmt.Errorf("SDL audio device already started")
	}

	var ctx context.Context
	ctx, d.cancel = context.WithCancel(context.Background())
	d.g, ctx = errgroup.WithContext(ctx)

	buf := make([]int16, d.spec.BufferFrames*d.spec.Channels)
	target := uint32(2 * len(buf) * 2)
	period := time.Duration(d.spec.BufferFrames) * time.Second / time.Duration(d.spec.Rate) / 2

	d.g.Go(func() error {
		tick := time.NewTicker(period)
		defer tick.Stop()

		for {
			for sdl.GetQueuedAudioSize(d.id) < target {
				src.Fill(buf, d.spec.Channels)
				if err := sdl.QueueAudio(d.id, bytesOf(buf)); err != nil {
					return fmt.Errorf("failed to queue audio: %s", err)
				}
			}
			select {
			case <-ctx.Done():
				return nil
			case <-tick.C:
			}
		}
	})

	sdl.PauseAudioDevice(d.id, false)
	return nil
}

func (d *sdlDevice) Close() error {
	var err error
	if d.g != nil {
		d.cancel()
		err = d.g.Wait()
	}
	sdl.CloseAudioDevice(d.id)
	sdl.QuitSubSystem(sdl.INIT_AUDIO)
	return err
}
