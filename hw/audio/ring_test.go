package audio

import (
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestRingOverrunScenario(t *testing.T) {
	r := NewRing(100)
	for i := range 1000 {
		r.Push(StereoSample{L: int16(i), R: int16(-i)})
	}

	if got := r.Len(); got != 100 {
		t.Errorf("Len() = %d, want 100", got)
	}
	if got := r.Overruns(); got != 900 {
		t.Errorf("Overruns() = %d, want 900", got)
	}

	// The oldest samples were kept.
	for i := range 100 {
		s, ok := r.TryPop()
		if !ok {
			t.Fatalf("TryPop() #%d: ring empty", i)
		}
		if want := (StereoSample{L: int16(i), R: int16(-i)}); s != want {
			t.Fatalf("TryPop() #%d = %+v, want %+v", i, s, want)
		}
	}
}

func TestRingNeverBlocks(t *testing.T) {
	r := NewRing(4)

	// Empty pop yields silence.
	if s := r.Pop(); s != (StereoSample{}) {
		t.Errorf("Pop() on empty ring = %+v, want silence", s)
	}
	if got := r.Underruns(); got != 1 {
		t.Errorf("Underruns() = %d, want 1", got)
	}

	for range 4 {
		if !r.Push(StereoSample{L: 1, R: 1}) {
			t.Fatalf("Push() on non-full ring returned false")
		}
	}
	if r.Push(StereoSample{L: 2, R: 2}) {
		t.Errorf("Push() on full ring returned true")
	}
	if got := r.Len(); got != 4 {
		t.Errorf("Len() = %d, want 4", got)
	}
}

func TestRingCapacityInvariant(t *testing.T) {
	for _, capacity := range []int{1, 3, 8, 100} {
		r := NewRing(capacity)
		// Deterministic mix of pushes and pops.
		for i := range 2000 {
			if i%7 < 4 {
				r.Push(StereoSample{L: int16(i)})
			} else {
				r.Pop()
			}
			if n := r.Len(); n < 0 || n > capacity {
				t.Fatalf("cap %d, step %d: Len() = %d out of range", capacity, i, n)
			}
		}
	}
}

func TestRingConcurrentOrder(t *testing.T) {
	const total = 200_000

	r := NewRing(64)
	var g errgroup.Group

	g.Go(func() error {
		for i := 0; i < total; {
			if r.Push(StereoSample{L: int16(i), R: int16(i >> 16)}) {
				i++
			}
		}
		return nil
	})

	var errs int
	g.Go(func() error {
		next := 0
		for next < total {
			s, ok := r.TryPop()
			if !ok {
				continue
			}
			if want := (StereoSample{L: int16(next), R: int16(next >> 16)}); s != want && errs < 10 {
				errs++
				t.Errorf("sample %d = %+v, want %+v", next, s, want)
			}
			next++
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d after draining, want 0", r.Len())
	}
}

func BenchmarkRingPushPop(b *testing.B) {
	r := NewRing(1024)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r.Push(StereoSample{L: int16(i)})
		r.Pop()
	}
}
