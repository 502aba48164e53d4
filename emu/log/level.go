package log

import (
	"io"
	"slices"
	"sync"
	"sync/atomic"

	"gopkg.in/Sirupsen/logrus.v0"
)

// Level mirrors the logrus levels, from the most to the least severe.
type Level uint32

const (
	PanicLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

var disabled bool

func init() {
	// Level gating is done per module, let everything through logrus.
	logrus.SetLevel(logrus.DebugLevel)
}

// Disable turns off all logs but fatal and panic ones.
func Disable() {
	disabled = true
	logrus.SetOutput(io.Discard)
}

// SetOutput redirects all logs to w.
func SetOutput(w io.Writer) {
	logrus.SetOutput(w)
}

// A Context adds fields to every log entry, whatever the module.
//
// AddLogContext is called by whichever goroutine emits the entry.
type Context interface {
	AddLogContext(entry *EntryZ)
}

// The registered contexts. The slice is replaced on each change, never
// modified in place.
var (
	contextsMu sync.Mutex
	contexts   atomic.Pointer[[]Context]
)

func loadContexts() []Context {
	if cs := contexts.Load(); cs != nil {
		return *cs
	}
	return nil
}

// AddContext registers ctx, it stays active until the returned function is
// called.
func AddContext(ctx Context) (remove func()) {
	contextsMu.Lock()
	defer contextsMu.Unlock()

	cs := append(slices.Clone(loadContexts()), ctx)
	contexts.Store(&cs)

	return func() {
		contextsMu.Lock()
		defer contextsMu.Unlock()

		cs := slices.Clone(loadContexts())
		if i := slices.Index(cs, ctx); i >= 0 {
			cs = slices.Delete(cs, i, i+1)
			contexts.Store(&cs)
		}
	}
}
