package video

import (
	"errors"
	"fmt"

	"emuhost/emu/log"
)

var (
	// ErrSurfaceTimeout is a transient condition: no presentable surface
	// could be acquired in time. The frame is skipped.
	ErrSurfaceTimeout = errors.New("timeout acquiring presentable surface")

	// ErrNoAdapter is returned when no graphics adapter or surface is
	// available.
	ErrNoAdapter = errors.New("no graphics adapter available")
)

// A Presenter shows frames on screen.
//
// Acquire and Present may return ErrSurfaceTimeout, any other error is fatal.
type Presenter interface {
	Acquire() error
	UploadFrame(pixels []byte, w, h int) error
	UploadGeometry(Geometry) error
	Draw() error
	Present() error
}

// HandoffStats counts what happened on redraws.
type HandoffStats struct {
	Redraws         uint64
	Uploads         uint64
	GeometryUploads uint64
	Presents        uint64
	Skips           uint64
}

// Handoff moves frames from a Surface to a Presenter.
type Handoff struct {
	surface   *Surface
	presenter Presenter
	stats     HandoffStats
}

func NewHandoff(s *Surface, p Presenter) *Handoff {
	return &Handoff{surface: s, presenter: p}
}

// Redraw presents the surface. The frame texture is uploaded only if a new
// frame was committed, and the geometry only if it changed; otherwise the
// previous contents are presented again.
//
// A surface timeout skips the frame and returns nil; other errors are
// returned.
func (h *Handoff) Redraw() error {
	h.stats.Redraws++

	if err := h.presenter.Acquire(); err != nil {
		return h.presentError("acquire", err)
	}

	s := h.surface
	if s.geomDirty {
		if err := h.presenter.UploadGeometry(s.geom); err != nil {
			return fmt.Errorf("geometry upload: %w", err)
		}
		s.geomDirty = false
		h.stats.GeometryUploads++
	}
	if s.dirty {
		if err := h.presenter.UploadFrame(s.front, s.W, s.H); err != nil {
			return fmt.Errorf("frame upload: %w", err)
		}
		s.dirty = false
		h.stats.Uploads++
	}

	if err := h.presenter.Draw(); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	if err := h.presenter.Present(); err != nil {
		return h.presentError("present", err)
	}
	h.stats.Presents++
	return nil
}

func (h *Handoff) presentError(op string, err error) error {
	if errors.Is(err, ErrSurfaceTimeout) {
		h.stats.Skips++
		log.ModVideo.DebugZ("frame skipped").String("op", op).Error("err", err).End()
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (h *Handoff) Stats() HandoffStats { return h.stats }
