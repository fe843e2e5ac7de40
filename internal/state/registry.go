package state

import (
	"sync"
	"time"
)

type entry struct {
	containers *Containers
	lastSeen   time.Time
}

// Registry maps session ids to their containers and evicts entries that
// have been idle longer than ttl.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	done    chan struct{}
}

func NewRegistry(ttl, sweepEvery time.Duration) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go r.sweep(sweepEvery)
	return r
}

// Get returns the containers for sid, creating them on first use.
func (r *Registry) Get(sid string) *Containers {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[sid]
	if !ok {
		e = &entry{containers: NewContainers()}
		r.entries[sid] = e
	}
	e.lastSeen = now
	return e.containers
}

// Drop removes a session's containers immediately (logout path).
func (r *Registry) Drop(sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sid)
}

func (r *Registry) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-r.ttl)
			r.mu.Lock()
			for sid, e := range r.entries {
				if e.lastSeen.Before(cutoff) {
					delete(r.entries, sid)
				}
			}
			r.mu.Unlock()
		case <-r.done:
			return
		}
	}
}

func (r *Registry) Stop() {
	close(r.done)
}
