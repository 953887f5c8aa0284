package async

import (
	"sync"

	"github.com/kelsos/comet-dash/internal/logger"
)

// Reloader is the process-wide "data changed, re-read everything" signal.
// Reload never blocks: every subscriber owns a one-slot buffer, so reloads
// fired while a subscriber is still busy collapse into one pending signal.
type Reloader struct {
	mu   sync.Mutex
	subs []chan struct{}
}

// NewReloader creates a reloader with no subscribers
func NewReloader() *Reloader {
	return &Reloader{}
}

// Subscribe returns a channel that receives a value after each Reload
func (r *Reloader) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)

	r.mu.Lock()
	r.subs = append(r.subs, ch)
	r.mu.Unlock()

	return ch
}

// Reload signals every subscriber
func (r *Reloader) Reload() {
	r.mu.Lock()
	defer r.mu.Unlock()

	delivered := 0
	for _, ch := range r.subs {
		select {
		case ch <- struct{}{}:
			delivered++
		default:
		}
	}
	logger.Debug("Reload signalled to %d of %d subscribers", delivered, len(r.subs))
}
