package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Poller runs a function periodically in a background goroutine until it
// is stopped or its parent context is cancelled.
type Poller struct {
	name      string
	interval  time.Duration
	immediate bool
	fn        func(ctx context.Context)

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewPoller creates a Poller that calls fn every interval. When immediate
// is true the first call happens right after Start instead of one period later.
func NewPoller(name string, interval time.Duration, immediate bool, fn func(ctx context.Context)) *Poller {
	return &Poller{
		name:      name,
		interval:  interval,
		immediate: immediate,
		fn:        fn,
	}
}

// Start begins the polling loop.
// It returns an error if the poller is already running.
func (p *Poller) Start(parent context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("%s poller already running", p.name)
	}

	ctx, cancel := context.WithCancel(parent)
	p.cancel = cancel
	p.running = true

	p.wg.Add(1)
	go p.loop(ctx)

	return nil
}

// Stop halts the polling loop and waits for the current call to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	cancel := p.cancel
	p.mu.Unlock()

	cancel()
	p.wg.Wait()

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}

// IsRunning returns whether the poller is currently running.
func (p *Poller) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	if p.immediate {
		p.fn(ctx)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.fn(ctx)
		case <-ctx.Done():
			return
		}
	}
}
