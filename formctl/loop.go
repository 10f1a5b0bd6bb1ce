package formctl

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type envelope struct {
	ev    Event
	reply chan Effect
}

// Loop serialises events for one form. A single goroutine owns the State;
// preview requests run concurrently and report back through the same queue.
type Loop struct {
	previewer Previewer
	timeout   time.Duration
	logger    *zap.Logger

	events chan envelope
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
	inflight  sync.WaitGroup

	mu      sync.RWMutex
	state   State
	changed chan struct{}
}

// Start launches an event loop that sends previews through p.
func (c *Controller) Start(p Previewer) *Loop {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loop{
		previewer: p,
		timeout:   c.requestTimeout,
		logger:    c.logger,
		events:    make(chan envelope),
		done:      make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
		changed:   make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	for {
		select {
		case env := <-l.events:
			l.mu.Lock()
			if stale(l.state, env.ev) {
				l.logger.Debug("dropping stale preview result", zap.Uint64("current", l.state.Generation))
			}
			next, eff := Reduce(l.state, env.ev)
			l.state = next
			close(l.changed)
			l.changed = make(chan struct{})
			l.mu.Unlock()

			if eff.Request != nil {
				l.inflight.Add(1)
				go l.fetch(*eff.Request)
			}
			if env.reply != nil {
				env.reply <- eff
			}
		case <-l.done:
			return
		}
	}
}

func stale(s State, ev Event) bool {
	switch e := ev.(type) {
	case PreviewSettled:
		return e.Generation != s.Generation
	case PreviewFailed:
		return e.Generation != s.Generation
	}
	return false
}

func (l *Loop) fetch(req Request) {
	defer l.inflight.Done()

	ctx, cancel := context.WithTimeout(l.ctx, l.timeout)
	defer cancel()

	res, err := l.previewer.Preview(ctx, req.Body)
	if err != nil {
		l.logger.Warn("preview request failed", zap.Uint64("generation", req.Generation), zap.Error(err))
		l.post(PreviewFailed{Generation: req.Generation, Err: err})
		return
	}
	l.post(PreviewSettled{Generation: req.Generation, Result: res})
}

func (l *Loop) post(ev Event) {
	select {
	case l.events <- envelope{ev: ev}:
	case <-l.done:
	}
}

// Dispatch reduces ev and returns the resulting effect. Request effects are
// already in flight when Dispatch returns. A closed loop ignores events.
func (l *Loop) Dispatch(ev Event) Effect {
	reply := make(chan Effect, 1)
	select {
	case l.events <- envelope{ev: ev, reply: reply}:
	case <-l.done:
		return Effect{}
	}
	select {
	case eff := <-reply:
		return eff
	case <-l.done:
		return Effect{}
	}
}

// Snapshot returns the current state.
func (l *Loop) Snapshot() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Await blocks until no preview is loading, ctx ends or the loop closes,
// and returns the state at that point.
func (l *Loop) Await(ctx context.Context) State {
	for {
		l.mu.RLock()
		s, changed := l.state, l.changed
		l.mu.RUnlock()
		if !s.Modal.Loading {
			return s
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return s
		case <-l.done:
			return s
		}
	}
}

// Close stops the loop and waits for in-flight previews to return.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		l.cancel()
		close(l.done)
	})
	l.inflight.Wait()
}
