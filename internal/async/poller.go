package async

import (
	"context"
	"sync"
	"time"

	"github.com/kelsos/comet-dash/internal/logger"
)

// Source is one independently polled piece of chain state
type Source struct {
	Name  string
	Fetch func(ctx context.Context) error
}

// Poller re-runs its sources on a fixed interval and whenever a reload is
// signalled. Sources run concurrently and never wait on each other, so one
// slow or failing read does not hold back the rest.
type Poller struct {
	sources      []Source
	errs         map[string]error
	mu           sync.RWMutex
	pollInterval time.Duration
	reloads      <-chan struct{}
	stopPolling  chan struct{}
	done         chan struct{}
	active       bool
	onUpdate     func(name string, err error)
}

// NewPoller creates a poller. reloader may be nil when only the interval
// should trigger polls.
func NewPoller(pollInterval time.Duration, reloader *Reloader) *Poller {
	p := &Poller{
		errs:         make(map[string]error),
		pollInterval: pollInterval,
	}
	if reloader != nil {
		p.reloads = reloader.Subscribe()
	}
	return p
}

// Register adds a source. Sources registered after Start join the next poll.
func (p *Poller) Register(source Source) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sources = append(p.sources, source)
}

// OnUpdate sets a callback invoked after every source run with its result
func (p *Poller) OnUpdate(fn func(name string, err error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onUpdate = fn
}

// Err returns the error of the last run of the named source
func (p *Poller) Err(name string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.errs[name]
}

// RunOnce runs every source once and waits for all of them to finish
func (p *Poller) RunOnce(ctx context.Context) {
	p.mu.RLock()
	sources := make([]Source, len(p.sources))
	copy(sources, p.sources)
	onUpdate := p.onUpdate
	p.mu.RUnlock()

	var wg sync.WaitGroup
	for _, source := range sources {
		wg.Add(1)
		go func(s Source) {
			defer wg.Done()

			err := s.Fetch(ctx)
			if err != nil {
				logger.Warn("Fetching %s failed: %v", s.Name, err)
			}

			p.mu.Lock()
			p.errs[s.Name] = err
			p.mu.Unlock()

			if onUpdate != nil {
				onUpdate(s.Name, err)
			}
		}(source)
	}
	wg.Wait()
}

// Start polls immediately and then in the background until Stop is called
// or ctx is done. Calling Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.active {
		p.mu.Unlock()
		return
	}
	p.active = true
	p.stopPolling = make(chan struct{})
	p.done = make(chan struct{})
	stop, done := p.stopPolling, p.done
	p.mu.Unlock()

	go p.poll(ctx, stop, done)
	logger.Debug("Polling started every %s", p.pollInterval)
}

func (p *Poller) poll(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	p.RunOnce(ctx)
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			p.mu.Lock()
			p.active = false
			p.mu.Unlock()
			return
		case <-ticker.C:
			p.RunOnce(ctx)
		case <-p.reloads:
			logger.Debug("Reload received, polling all sources")
			p.RunOnce(ctx)
			ticker.Reset(p.pollInterval)
		}
	}
}

// Stop ends background polling and waits for an in-progress poll to finish
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	close(p.stopPolling)
	p.active = false
	done := p.done
	p.mu.Unlock()

	<-done
}
