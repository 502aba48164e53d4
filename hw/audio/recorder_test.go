package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/google/go-cmp/cmp"
)

func TestRecorderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	rec, err := CreateRecorder(path, SampleRate)
	if err != nil {
		t.Fatal(err)
	}

	// Span more than one chunk.
	const nframes = recorderChunk + 100
	var want []int
	for i := range nframes {
		s := StereoSample{L: int16(i), R: int16(-i)}
		rec.PushSample(s)
		want = append(want, int(s.L), int(s.R))
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if rec.Frames() != nframes {
		t.Errorf("Frames() = %d, want %d", rec.Frames(), nframes)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		t.Fatalf("not a valid wav file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatal(err)
	}

	if dec.SampleRate != SampleRate || dec.NumChans != 2 || dec.BitDepth != 16 {
		t.Errorf("format = %d Hz, %d channels, %d bits, want %d Hz, 2 channels, 16 bits",
			dec.SampleRate, dec.NumChans, dec.BitDepth, SampleRate)
	}
	if diff := cmp.Diff(want, buf.Data); diff != "" {
		t.Errorf("samples mismatch (-want +got):\n%s", diff)
	}
}
