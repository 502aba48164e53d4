package emu

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/veandco/go-sdl2/sdl"

	"emuhost/emu/core"
	"emuhost/emu/log"
	"emuhost/hw/audio"
	"emuhost/hw/video"
)

// LaunchOptions are the settings given on the command line.
type LaunchOptions struct {
	Profile     string // profile name, empty for the default profile
	Region      string // forced region, overrides the profile
	RecordAudio string // WAV file path, overrides the config
}

// Emulator runs a session in an SDL window, with audio output.
type Emulator struct {
	session *Session
	handoff *video.Handoff
	window  *video.GLPresenter
	bridge  *audio.Bridge
	device  audio.Device
	rec     *audio.Recorder

	removeLogCtx func()
	quit         atomic.Bool
	cmds         chan func(*Session)
	done         chan struct{} // closed when Run returns
}

// ErrNotRunning is returned by Do once the emulation loop has exited.
var ErrNotRunning = errors.New("emulation loop not running")

// Launch opens the audio device, shows the window and connects the engine.
// It doesn't start the emulation loop, call Run() for that. Launch must be
// called from the main thread.
func Launch(engine core.Engine, cfg Config, opts LaunchOptions) (_ *Emulator, err error) {
	profile, err := cfg.Profile(opts.Profile)
	if err != nil {
		return nil, err
	}
	if opts.Region != "" && opts.Region != "auto" {
		if profile.Region, err = core.ParseRegion(opts.Region); err != nil {
			return nil, err
		}
		profile.ForceRegion = true
	}

	e := &Emulator{
		cmds: make(chan func(*Session)),
		done: make(chan struct{}),
	}
	defer func() {
		if err != nil {
			e.Close()
		}
	}()

	// Audio output.
	e.device, err = audio.Open(cfg.Audio.Backend, cfg.Audio.BufferFrames)
	if err != nil {
		return nil, fmt.Errorf("audio output: %w", err)
	}
	e.bridge = audio.NewBridge(e.device.Spec())

	record := cfg.Audio.Record
	if opts.RecordAudio != "" {
		record = opts.RecordAudio
	}
	if record != "" {
		if e.rec, err = audio.CreateRecorder(record, audio.SampleRate); err != nil {
			return nil, err
		}
		e.bridge.SetTap(e.rec)
	}

	e.session = NewSession(engine, SessionConfig{Profile: profile, Audio: e.bridge}, time.Now())

	// Video output.
	title := "emuhost"
	if meta := e.session.Metadata(); meta.Title != "" {
		title = meta.Title + " - emuhost"
	}
	e.window, err = video.NewGLPresenter(video.WindowConfig{
		Title:  title,
		Scale:  cfg.Video.Scale,
		VSync:  cfg.Video.VSync,
		Shader: cfg.Video.Shader,
	}, e.session.Surface())
	if err != nil {
		return nil, fmt.Errorf("video output: %w", err)
	}
	e.session.SetHost(e.window)
	e.handoff = video.NewHandoff(e.session.Surface(), e.window)

	// The audio goroutine logs with the session context too.
	e.removeLogCtx = log.AddContext(e.session)
	if err := e.device.Start(e.bridge); err != nil {
		return nil, fmt.Errorf("audio output: %w", err)
	}
	return e, nil
}

// Session returns the running session.
func (e *Emulator) Session() *Session { return e.session }

// Stop requests the emulation loop to exit. It's safe for concurrent use.
func (e *Emulator) Stop() { e.quit.Store(true) }

// Do runs f with the session on the loop goroutine, between two bursts, and
// waits for it to return. It's safe for concurrent use.
func (e *Emulator) Do(f func(*Session)) error {
	ran := make(chan struct{})
	select {
	case e.cmds <- func(s *Session) { f(s); close(ran) }:
	case <-e.done:
		return ErrNotRunning
	}
	<-ran
	return nil
}

func (e *Emulator) runCommands() {
	for {
		select {
		case f := <-e.cmds:
			f(e.session)
		default:
			return
		}
	}
}

const statsInterval = 5 * time.Second

// Run runs the emulation loop until the window is closed or Stop is called.
// It returns an error only for fatal presentation failures.
func (e *Emulator) Run() error {
	defer close(e.done)
	lastStats := time.Now()

	for !e.quit.Load() {
		// Drain events first: input of this iteration applies to the burst
		// that follows.
		for ev := sdl.WaitEventTimeout(1); ev != nil; ev = sdl.PollEvent() {
			hev := FromSDL(ev)
			if hev == nil {
				continue
			}
			if _, ok := hev.(ResizeEvent); ok {
				w, h := e.window.OutputSize()
				hev = ResizeEvent{Width: w, Height: h}
			}
			if e.session.HandleEvent(hev) {
				e.quit.Store(true)
			}
		}
		if e.quit.Load() {
			break
		}
		e.runCommands()

		now := time.Now()
		if e.session.Tick(now) {
			if err := e.handoff.Redraw(); err != nil {
				return fmt.Errorf("presentation failure: %w", err)
			}
		}

		if now.Sub(lastStats) >= statsInterval {
			e.logStats()
			lastStats = now
		}
	}

	log.ModEmu.InfoZ("Emulation loop exited").End()
	e.logStats()
	return nil
}

func (e *Emulator) logStats() {
	ps := e.session.Stats()
	as := e.bridge.Stats()
	hs := e.handoff.Stats()
	log.ModPacer.InfoZ("stats").
		Uint64("bursts", ps.Bursts).
		Uint64("cycles", ps.Cycles).
		Uint64("drift_resets", ps.DriftResets).
		Uint64("presents", hs.Presents).
		Uint64("uploads", hs.Uploads).
		Uint64("skips", hs.Skips).
		Int("audio_buffered", as.Buffered).
		Uint64("overruns", as.Overruns).
		Uint64("underruns", as.Underruns).
		End()
}

// Close releases the audio device and the window. In-flight engine state is
// discarded.
func (e *Emulator) Close() error {
	var errs []error
	if e.device != nil {
		errs = append(errs, e.device.Close())
	}
	if e.removeLogCtx != nil {
		e.removeLogCtx()
	}
	if e.rec != nil {
		errs = append(errs, e.rec.Close())
	}
	if e.window != nil {
		errs = append(errs, e.window.Close())
	}
	sdl.Quit()
	return errors.Join(errs...)
}
