package formctl

import (
	"sync"
	"time"
)

type registryEntry struct {
	loop     *Loop
	lastSeen time.Time
}

// Registry keeps one Loop per owner and closes loops idle for longer than
// the configured TTL.
type Registry struct {
	ctrl      *Controller
	previewer func(owner string) Previewer
	ttl       time.Duration

	mu      sync.Mutex
	entries map[string]*registryEntry
	onEvict []func(owner string)
	done    chan struct{}
	once    sync.Once
}

// NewRegistry starts a registry. previewer builds the Previewer bound to an
// owner.
func NewRegistry(ctrl *Controller, previewer func(owner string) Previewer, ttl time.Duration) *Registry {
	r := &Registry{
		ctrl:      ctrl,
		previewer: previewer,
		ttl:       ttl,
		entries:   make(map[string]*registryEntry),
		done:      make(chan struct{}),
	}
	go r.cleanup()
	return r
}

// Elements returns the element ids of the registry's controller.
func (r *Registry) Elements() Elements {
	return r.ctrl.Elements()
}

// OnEvict registers fn to run whenever an owner's loop is dropped, whether
// by Forget, idle eviction or Stop. fn runs without the registry lock held.
func (r *Registry) OnEvict(fn func(owner string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onEvict = append(r.onEvict, fn)
}

// Get returns the owner's loop, starting one when needed.
func (r *Registry) Get(owner string) *Loop {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[owner]
	if !ok {
		e = &registryEntry{loop: r.ctrl.Start(r.previewer(owner))}
		r.entries[owner] = e
	}
	e.lastSeen = time.Now()
	return e.loop
}

// Forget closes and drops the owner's loop, e.g. on logout.
func (r *Registry) Forget(owner string) {
	r.mu.Lock()
	e, ok := r.entries[owner]
	delete(r.entries, owner)
	hooks := r.onEvict
	r.mu.Unlock()
	if ok {
		e.loop.Close()
	}
	notify(hooks, owner)
}

// Len returns the number of live loops.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) cleanup() {
	interval := r.ttl / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.evict(time.Now())
		case <-r.done:
			return
		}
	}
}

func (r *Registry) evict(now time.Time) {
	idle := make(map[string]*Loop)
	r.mu.Lock()
	for owner, e := range r.entries {
		if now.Sub(e.lastSeen) > r.ttl {
			idle[owner] = e.loop
			delete(r.entries, owner)
		}
	}
	hooks := r.onEvict
	r.mu.Unlock()
	for owner, l := range idle {
		l.Close()
		notify(hooks, owner)
	}
}

func notify(hooks []func(string), owner string) {
	for _, fn := range hooks {
		fn(owner)
	}
}

// Stop closes every loop and ends the cleanup goroutine.
func (r *Registry) Stop() {
	r.once.Do(func() { close(r.done) })
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*registryEntry)
	hooks := r.onEvict
	r.mu.Unlock()
	for owner, e := range entries {
		e.loop.Close()
		notify(hooks, owner)
	}
}
