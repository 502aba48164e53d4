// Package statsview serves live runtime charts (heap, goroutines, GC pauses)
// of the running host, for profiling the host loop.
package statsview

import (
	"errors"
	"net/http"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"emuhost/emu/log"
)

const (
	DefaultAddr = "localhost:12600"
	path        = "/debug/statsview"
)

// Server is a running stats server.
type Server struct {
	mgr *statsview.ViewManager
}

// Launch starts serving the stats on addr, in the background.
func Launch(addr string) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	viewer.SetConfiguration(viewer.WithAddr(addr))
	s := &Server{mgr: statsview.New()}

	go func() {
		if err := s.mgr.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ModEmu.Warnf("stats server: %v", err)
		}
	}()

	log.ModEmu.InfoZ("stats server started").
		String("url", "http://"+addr+path).
		End()
	return s
}

// Stop shuts the server down.
func (s *Server) Stop() {
	s.mgr.Stop()
}
