package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/n0madic/go-chorus/internal/types"
)

const DefaultInterval = 10 * time.Second

// Checker probes the backend once.
type Checker interface {
	Health(ctx context.Context) (*types.HealthStatus, error)
}

// Options configures a Poller.
type Options struct {
	// Interval between probes after the first one (default 10s).
	Interval time.Duration
	// Timeout bounds each probe; zero leaves it to the checker.
	Timeout time.Duration
	Logger  *slog.Logger
	// OnChange is called from the polling goroutine whenever the connected
	// state flips, including the first probe that reports connected.
	OnChange func(connected bool)
}

// Poller tracks whether the backend is reachable and healthy.
type Poller struct {
	checker Checker
	opts    Options

	mu          sync.Mutex
	connected   bool
	lastChecked time.Time
	cancel      context.CancelFunc
	done        chan struct{}
}

// NewPoller creates a poller. It does not probe until Check or Start.
func NewPoller(checker Checker, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Poller{checker: checker, opts: opts}
}

// Check probes once and records the outcome. The backend counts as connected
// only if it answers with status "healthy".
func (p *Poller) Check(ctx context.Context) bool {
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}

	status, err := p.checker.Health(ctx)
	healthy := err == nil && status != nil && status.Healthy()
	switch {
	case err != nil:
		p.opts.Logger.Warn("health.check_failed", "error", err)
	case !healthy:
		p.opts.Logger.Warn("health.unhealthy", "status", status.Status)
	}

	p.mu.Lock()
	changed := p.connected != healthy
	p.connected = healthy
	if healthy {
		p.lastChecked = time.Now()
	}
	p.mu.Unlock()

	if changed {
		p.opts.Logger.Info("health.changed", "connected", healthy)
		if p.opts.OnChange != nil {
			p.opts.OnChange(healthy)
		}
	}
	return healthy
}

// Start checks immediately and then every Interval until Stop is called or
// ctx ends. Calling Start on a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.done != nil {
		p.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	done := make(chan struct{})
	p.done = done
	p.mu.Unlock()

	go func() {
		defer close(done)
		p.Check(ctx)
		ticker := time.NewTicker(p.opts.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.Check(ctx)
			}
		}
	}()
}

// Stop halts polling and waits for an in-flight probe to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Connected reports the outcome of the latest probe.
func (p *Poller) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// LastChecked returns the time of the latest healthy probe, or the zero time.
func (p *Poller) LastChecked() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastChecked
}
