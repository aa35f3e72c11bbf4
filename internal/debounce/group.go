package debounce

import (
	"context"
	"sync"
	"time"

	appErrors "github.com/noah-isme/weather-events-bff/pkg/errors"
)

// DefaultWindow is the quiet period used when none is configured.
const DefaultWindow = 500 * time.Millisecond

// Group debounces calls per key. A call waits for the quiet window before
// running; a newer call on the same key supersedes it. Superseded calls that
// have not started never run, and running ones have their context cancelled.
type Group struct {
	window time.Duration
	seq    *Sequencer

	mu      sync.Mutex
	pending map[string]*call
}

type call struct {
	token  uint64
	cancel context.CancelFunc
}

// NewGroup constructs a Group. A non-positive window falls back to DefaultWindow.
func NewGroup(window time.Duration) *Group {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Group{window: window, seq: NewSequencer(), pending: make(map[string]*call)}
}

// Window returns the configured quiet period.
func (g *Group) Window() time.Duration {
	return g.window
}

// Sequencer exposes the token source, mainly for tests.
func (g *Group) Sequencer() *Sequencer {
	return g.seq
}

func (g *Group) register(ctx context.Context, key string) (context.Context, uint64) {
	callCtx, cancel := context.WithCancel(ctx)

	g.mu.Lock()
	defer g.mu.Unlock()
	token := g.seq.Next(key)
	if prev, ok := g.pending[key]; ok {
		prev.cancel()
	}
	g.pending[key] = &call{token: token, cancel: cancel}
	return callCtx, token
}

func (g *Group) release(key string, token uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c, ok := g.pending[key]; ok && c.token == token {
		c.cancel()
		delete(g.pending, key)
	}
	g.seq.Forget(key, token)
}

// Do runs fn for key after the quiet window unless a newer call arrives
// first. It returns appErrors.ErrSuperseded when the call was replaced, either
// before fn ran or before its result could be applied.
func Do[T any](ctx context.Context, g *Group, key string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	callCtx, token := g.register(ctx, key)
	defer g.release(key, token)

	timer := time.NewTimer(g.window)
	select {
	case <-timer.C:
	case <-callCtx.Done():
		timer.Stop()
		if !g.seq.IsLatest(key, token) {
			return zero, appErrors.ErrSuperseded
		}
		return zero, ctx.Err()
	}

	if !g.seq.IsLatest(key, token) {
		return zero, appErrors.ErrSuperseded
	}

	result, err := fn(callCtx)
	if !g.seq.IsLatest(key, token) {
		return zero, appErrors.ErrSuperseded
	}
	return result, err
}
