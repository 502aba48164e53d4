package audio

import "sync/atomic"

// StereoSample is one frame of interleaved signed 16-bit stereo audio.
type StereoSample struct {
	L, R int16
}

// Ring is a fixed capacity, lock-free, single-producer single-consumer queue
// of stereo samples.
//
// Only one goroutine may call Push and only one goroutine may call Pop. The
// write cursor is only advanced by the producer and the read cursor only by
// the consumer. Both cursors grow monotonically; their difference is the
// number of buffered samples, so there's no separate counter that could be
// read torn.
type Ring struct {
	buf  []StereoSample
	size uint64
	mask uint64 // size-1 if size is a power of 2, else 0

	w atomic.Uint64
	_ [56]byte // keep cursors on separate cache lines
	r atomic.Uint64
	_ [56]byte

	overruns  atomic.Uint64
	underruns atomic.Uint64
}

// NewRing returns a ring holding up to capacity samples.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		panic("audio: ring capacity must be positive")
	}
	r := &Ring{
		buf:  make([]StereoSample, capacity),
		size: uint64(capacity),
	}
	if capacity&(capacity-1) == 0 {
		r.mask = uint64(capacity - 1)
	}
	return r
}

func (r *Ring) index(cursor uint64) uint64 {
	if r.mask != 0 || r.size == 1 {
		return cursor & r.mask
	}
	return cursor % r.size
}

// Push appends s. It never blocks: if the ring is full the sample is dropped,
// counted as an overrun, and Push returns false.
func (r *Ring) Push(s StereoSample) bool {
	w := r.w.Load()
	if w-r.r.Load() >= r.size {
		r.overruns.Add(1)
		return false
	}
	r.buf[r.index(w)] = s
	r.w.Store(w + 1)
	return true
}

// Pop removes and returns the oldest sample. It never blocks: if the ring is
// empty it returns silence, counted as an underrun.
func (r *Ring) Pop() StereoSample {
	s, ok := r.TryPop()
	if !ok {
		r.underruns.Add(1)
	}
	return s
}

// TryPop is like Pop but reports whether a sample was available, without
// counting an underrun.
func (r *Ring) TryPop() (StereoSample, bool) {
	rd := r.r.Load()
	if rd == r.w.Load() {
		return StereoSample{}, false
	}
	s := r.buf[r.index(rd)]
	r.r.Store(rd + 1)
	return s, true
}

// Len returns the number of buffered samples. When called concurrently with
// Push or Pop the value is only a snapshot, always within [0, Cap()].
func (r *Ring) Len() int {
	// Load the read cursor first: the write cursor can only be ahead of it.
	rd := r.r.Load()
	w := r.w.Load()
	return int(min(w-rd, r.size))
}

// Cap returns the ring capacity.
func (r *Ring) Cap() int { return int(r.size) }

// Overruns returns the number of samples dropped by Push.
func (r *Ring) Overruns() uint64 { return r.overruns.Load() }

// Underruns returns the number of times Pop returned silence.
func (r *Ring) Underruns() uint64 { return r.underruns.Load() }
