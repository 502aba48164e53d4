// Package testcard implements a synthetic engine drawing a scrolling test
// card. It exercises the whole host loop without a game image: video frames
// at the console rate, a tone while a pad button is held, and a cursor
// driven by a pointing device.
package testcard

import (
	"errors"
	"fmt"
	"math"

	"github.com/arl/blip"
	"github.com/go-faster/jx"

	"emuhost/emu/core"
	"emuhost/emu/log"
	"emuhost/hw/audio"
	"emuhost/hw/input"
)

const (
	Width  = 256
	Height = 239

	ntscVisible = 224

	cyclesPerLine = 1364
	ntscLines     = 262
	palLines      = 312

	ntscClockRate = 189e6 / 8.8
	palClockRate  = 21_281_370

	// Tone base pitch (PadB), each next button is a semitone higher.
	baseFreq  = 220.0
	amplitude = 4000

	stateVersion = 1
)

var ErrBadState = errors.New("testcard: bad state")

// Engine is the test card engine. The zero value is not usable, call New.
type Engine struct {
	title  string
	region core.Region
	dev    core.Devices

	// Serialized state.
	frame       uint64
	frameCycles uint32 // master cycles into the current frame
	latched     bool   // ports latched for the current frame
	held        uint16 // pad buttons latched this frame, all pads merged
	cursorX     int32
	cursorY     int32
	level       int32  // tone output level
	nextEdge    uint32 // frame cycle of the next tone edge

	halfPeriods [input.PadButtonCount]uint32
	buf         *blip.Buffer
	out         int32 // level last fed to buf
	samples     []int16
}

const maxSamplesPerFrame = 2048

// New returns a test card engine for region r.
func New(title string, r core.Region) *Engine {
	e := &Engine{
		title:   title,
		buf:     blip.NewBuffer(maxSamplesPerFrame),
		samples: make([]int16, maxSamplesPerFrame),
	}
	e.SetRegion(r)
	e.cursorX, e.cursorY = Width/2, e.visibleLines()/2
	return e
}

func (e *Engine) SetRegion(r core.Region) {
	e.region = r
	if e.dev.Screen != nil {
		e.dev.Screen.SetVisibleLines(int(e.visibleLines()))
	}
	clock := e.clockRate()
	e.buf.SetRates(clock, audio.SampleRate)
	for i := range e.halfPeriods {
		freq := baseFreq * math.Pow(2, float64(i)/12)
		e.halfPeriods[i] = uint32(clock / (2 * freq))
	}
}

func (e *Engine) clockRate() float64 {
	if e.region == core.PAL {
		return palClockRate
	}
	return ntscClockRate
}

// FrameCycles returns the number of master cycles of one frame.
func (e *Engine) FrameCycles() uint32 {
	if e.region == core.PAL {
		return palLines * cyclesPerLine
	}
	return ntscLines * cyclesPerLine
}

func (e *Engine) visibleLines() int32 {
	if e.region == core.PAL {
		return Height
	}
	return ntscVisible
}

func (e *Engine) Metadata() core.Metadata {
	return core.Metadata{
		Title:        e.title,
		Region:       e.region,
		Width:        Width,
		Height:       Height,
		VisibleLines: int(e.visibleLines()),
	}
}

func (e *Engine) Connect(dev core.Devices) {
	e.dev = dev
	log.ModEmu.InfoZ("test card connected").
		Stringer("region", e.region).
		Uint("frame_cycles", uint(e.FrameCycles())).
		End()
}

// Frame returns the number of completed frames.
func (e *Engine) Frame() uint64 { return e.frame }

func (e *Engine) Step(cycles uint16) bool {
	if !e.latched {
		e.latch()
	}

	end := e.frameCycles + uint32(cycles)
	e.runTone(end)
	e.frameCycles = end

	flen := e.FrameCycles()
	if e.frameCycles < flen {
		return false
	}

	e.buf.EndFrame(int(flen))
	e.frameCycles -= flen
	if e.level != 0 {
		e.nextEdge -= flen
	} else {
		e.nextEdge = 0
	}
	e.drainAudio()
	e.render()
	e.frame++
	e.latched = false
	return true
}

// latch reads both ports: pads merge their buttons, pointers move the cursor.
func (e *Engine) latch() {
	e.latched = true
	e.held = 0
	if e.dev.Ports == nil {
		return
	}
	for i := range e.dev.Ports {
		dev := e.dev.Ports.Device(i)
		switch dev := dev.(type) {
		case *input.Pad:
			e.held |= uint16(dev.Latch())
		case *input.Pointer:
			dx, dy := dev.DX, dev.DY
			dev.Latch()
			e.cursorX = max(0, min(Width-1, e.cursorX+dx))
			e.cursorY = max(0, min(e.visibleLines()-1, e.cursorY+dy))
		}
	}
}

func (e *Engine) lowestHeld() (input.PadButton, bool) {
	for b := range input.PadButtonCount {
		if e.held>>b&1 != 0 {
			return b, true
		}
	}
	return 0, false
}

// runTone generates the square wave edges up to frame cycle end.
func (e *Engine) runTone(end uint32) {
	if e.out != e.level {
		e.setOut(e.frameCycles, e.level)
	}

	b, ok := e.lowestHeld()
	if !ok {
		if e.level != 0 {
			e.level = 0
			e.setOut(e.frameCycles, 0)
		}
		return
	}

	half := e.halfPeriods[b]
	if e.level == 0 {
		e.level = amplitude
		e.setOut(e.frameCycles, e.level)
		e.nextEdge = e.frameCycles + half
	}
	for e.nextEdge < end {
		e.level = -e.level
		e.setOut(e.nextEdge, e.level)
		e.nextEdge += half
	}
}

func (e *Engine) setOut(t uint32, v int32) {
	e.buf.AddDelta(uint64(t), v-e.out)
	e.out = v
}

func (e *Engine) drainAudio() {
	for e.buf.SamplesAvailable() > 0 {
		n := e.buf.ReadSamples(e.samples, len(e.samples), blip.Mono)
		if e.dev.Audio == nil {
			continue
		}
		for _, s := range e.samples[:n] {
			e.dev.Audio.PushSample(audio.StereoSample{L: s, R: s})
		}
	}
}

var bars = [...]uint32{
	0xc0c0c0ff, // grey
	0xc0c000ff, // yellow
	0x00c0c0ff, // cyan
	0x00c000ff, // green
	0xc000c0ff, // magenta
	0xc00000ff, // red
	0x0000c0ff, // blue
}

const (
	barWidth = (Width + len(bars) - 1) / len(bars)

	padRowHeight = 16
	cellWidth    = Width / int(input.PadButtonCount)

	cellIdle   = 0x202020ff
	cellHeld   = 0xf0f0f0ff
	cursorSize = 5
	cursorRGBA = 0xff2020ff
)

func (e *Engine) render() {
	s := e.dev.Screen
	if s == nil {
		return
	}

	visible := int(e.visibleLines())
	top := visible - padRowHeight
	scroll := int(e.frame % Width)

	for y := range s.H {
		for x := range s.W {
			var rgba uint32
			switch {
			case y >= visible:
				rgba = 0x000000ff
			case y >= top:
				rgba = cellIdle
				if b := x / cellWidth; b < int(input.PadButtonCount) && e.held>>b&1 != 0 {
					rgba = cellHeld
				}
			default:
				rgba = bars[((x+scroll)%Width)/barWidth]
			}
			s.SetPixel(x, y, rgba)
		}
	}

	if e.hasPointer() {
		cx, cy := int(e.cursorX), int(e.cursorY)
		for y := max(0, cy-cursorSize/2); y <= min(visible-1, cy+cursorSize/2); y++ {
			for x := max(0, cx-cursorSize/2); x <= min(s.W-1, cx+cursorSize/2); x++ {
				s.SetPixel(x, y, cursorRGBA)
			}
		}
	}

	s.Commit()
}

func (e *Engine) hasPointer() bool {
	if e.dev.Ports == nil {
		return false
	}
	for i := range e.dev.Ports {
		if e.dev.Ports.Device(i).Kind() == input.KindPointer {
			return true
		}
	}
	return false
}

// Serialize returns the engine state as a JSON document.
func (e *Engine) Serialize() []byte {
	var ports [2]input.PortState
	if e.dev.Ports != nil {
		ports = e.dev.Ports.State()
	}

	var enc jx.Encoder
	enc.Obj(func(enc *jx.Encoder) {
		enc.Field("version", func(enc *jx.Encoder) { enc.Int(stateVersion) })
		enc.Field("region", func(enc *jx.Encoder) { enc.Str(e.region.String()) })
		enc.Field("frame", func(enc *jx.Encoder) { enc.UInt64(e.frame) })
		enc.Field("frame_cycles", func(enc *jx.Encoder) { enc.UInt32(e.frameCycles) })
		enc.Field("latched", func(enc *jx.Encoder) { enc.Bool(e.latched) })
		enc.Field("held", func(enc *jx.Encoder) { enc.UInt16(e.held) })
		enc.Field("cursor", func(enc *jx.Encoder) {
			enc.Arr(func(enc *jx.Encoder) {
				enc.Int32(e.cursorX)
				enc.Int32(e.cursorY)
			})
		})
		enc.Field("tone", func(enc *jx.Encoder) {
			enc.Obj(func(enc *jx.Encoder) {
				enc.Field("level", func(enc *jx.Encoder) { enc.Int32(e.level) })
				enc.Field("next_edge", func(enc *jx.Encoder) { enc.UInt32(e.nextEdge) })
			})
		})
		enc.Field("ports", func(enc *jx.Encoder) {
			enc.Arr(func(enc *jx.Encoder) {
				for _, p := range ports {
					encodePort(enc, p)
				}
			})
		})
	})
	return enc.Bytes()
}

func encodePort(enc *jx.Encoder, p input.PortState) {
	enc.Obj(func(enc *jx.Encoder) {
		enc.Field("kind", func(enc *jx.Encoder) { enc.UInt8(uint8(p.Kind)) })
		enc.Field("buttons", func(enc *jx.Encoder) { enc.UInt16(p.Buttons) })
		enc.Field("dx", func(enc *jx.Encoder) { enc.Int32(p.DX) })
		enc.Field("dy", func(enc *jx.Encoder) { enc.Int32(p.DY) })
		enc.Field("sensitivity", func(enc *jx.Encoder) { enc.UInt8(p.Sensitivity) })
	})
}

// Deserialize restores a state returned by Serialize. On error the engine
// state is left untouched.
func (e *Engine) Deserialize(data []byte) error {
	var (
		st      Engine
		ports   [2]input.PortState
		version int
		region  string
	)
	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "version":
			version, err = d.Int()
		case "region":
			region, err = d.Str()
		case "frame":
			st.frame, err = d.UInt64()
		case "frame_cycles":
			st.frameCycles, err = d.UInt32()
		case "latched":
			st.latched, err = d.Bool()
		case "held":
			st.held, err = d.UInt16()
		case "cursor":
			var xy []int32
			err = d.Arr(func(d *jx.Decoder) error {
				v, err := d.Int32()
				xy = append(xy, v)
				return err
			})
			if err == nil && len(xy) != 2 {
				err = fmt.Errorf("cursor has %d coordinates", len(xy))
			}
			if err == nil {
				st.cursorX, st.cursorY = xy[0], xy[1]
			}
		case "tone":
			err = d.Obj(func(d *jx.Decoder, key string) error {
				var err error
				switch key {
				case "level":
					st.level, err = d.Int32()
				case "next_edge":
					st.nextEdge, err = d.UInt32()
				default:
					err = d.Skip()
				}
				return err
			})
		case "ports":
			i := 0
			err = d.Arr(func(d *jx.Decoder) error {
				if i >= len(ports) {
					return errors.New("too many ports")
				}
				p, err := decodePort(d)
				ports[i] = p
				i++
				return err
			})
		default:
			err = d.Skip()
		}
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadState, err)
	}
	if version != stateVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrBadState, version)
	}
	if region != e.region.String() {
		return fmt.Errorf("%w: state is %s, engine is %s", ErrBadState, region, e.region)
	}
	if st.frameCycles >= e.FrameCycles() {
		return fmt.Errorf("%w: frame cycle %d out of range", ErrBadState, st.frameCycles)
	}

	e.frame = st.frame
	e.frameCycles = st.frameCycles
	e.latched = st.latched
	e.held = st.held
	e.cursorX, e.cursorY = st.cursorX, st.cursorY
	e.level = st.level
	e.nextEdge = st.nextEdge
	if e.dev.Ports != nil {
		e.dev.Ports.SetState(ports)
	}

	// Samples of the interrupted frame are dropped, runTone restores the
	// output level on the next step.
	e.buf.Clear()
	e.out = 0
	return nil
}

func decodePort(d *jx.Decoder) (input.PortState, error) {
	var p input.PortState
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "kind":
			var k uint8
			k, err = d.UInt8()
			p.Kind = input.Kind(k)
		case "buttons":
			p.Buttons, err = d.UInt16()
		case "dx":
			p.DX, err = d.Int32()
		case "dy":
			p.DY, err = d.Int32()
		case "sensitivity":
			p.Sensitivity, err = d.UInt8()
		default:
			err = d.Skip()
		}
		return err
	})
	return p, err
}
