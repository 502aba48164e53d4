package audio

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"emuhost/emu/log"
)

const recorderChunk = 4096 // frames

// Recorder writes every sample it receives to a 16-bit stereo WAV stream.
// It's meant to be registered as the Bridge tap, so it records what the
// engine produced, before any overrun.
type Recorder struct {
	enc    *wav.Encoder
	buf    *goaudio.IntBuffer
	closer io.Closer // nil if the recorder doesn't own the writer
	frames int
	err    error
}

// NewRecorder returns a recorder encoding samples at the given rate into w.
func NewRecorder(w io.WriteSeeker, rate int) *Recorder {
	return &Recorder{
		enc: wav.NewEncoder(w, rate, 16, 2, 1),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: 2, SampleRate: rate},
			Data:           make([]int, 0, recorderChunk*2),
			SourceBitDepth: 16,
		},
	}
}

// CreateRecorder creates (or truncates) the named WAV file and returns a
// recorder writing into it. Closing the recorder closes the file.
func CreateRecorder(path string, rate int) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("audio recorder: %w", err)
	}
	r := NewRecorder(f, rate)
	r.closer = f
	log.ModSound.InfoZ("recording audio").String("path", path).End()
	return r, nil
}

// PushSample implements Sink.
func (r *Recorder) PushSample(s StereoSample) {
	if r.err != nil {
		return
	}
	r.buf.Data = append(r.buf.Data, int(s.L), int(s.R))
	r.frames++
	if len(r.buf.Data) == cap(r.buf.Data) {
		r.flush()
	}
}

func (r *Recorder) flush() {
	if len(r.buf.Data) == 0 || r.err != nil {
		return
	}
	if err := r.enc.Write(r.buf); err != nil {
		r.err = fmt.Errorf("audio recorder: %w", err)
		log.ModSound.ErrorZ("audio recording stopped").Error("err", err).End()
	}
	r.buf.Data = r.buf.Data[:0]
}

// Frames returns the number of frames recorded so far.
func (r *Recorder) Frames() int { return r.frames }

// Close flushes pending samples and finalizes the WAV header.
func (r *Recorder) Close() error {
	r.flush()
	err := r.err
	if cerr := r.enc.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("audio recorder: %w", cerr)
	}
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
