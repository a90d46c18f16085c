package source

import (
	"context"
	"crypto/sha256"
	"sync"
	"time"

	"github.com/c360/schemascope/errors"
	"github.com/c360/schemascope/service"
)

// Poller periodically fetches schema text from a Source and invokes a
// callback whenever the document changes. The first successful fetch
// always fires the callback so consumers receive an initial schema.
type Poller struct {
	*service.BaseService

	source   Source
	interval time.Duration
	onChange func(sdl string)

	mu       sync.Mutex
	lastHash [sha256.Size]byte
	seeded   bool
	lastErr  error
	quit     chan struct{}

	wg sync.WaitGroup
}

// NewPoller creates a poller that checks src every interval. The
// onChange callback may be nil when only health tracking is wanted.
func NewPoller(src Source, interval time.Duration, onChange func(sdl string), opts ...service.Option) (*Poller, error) {
	if src == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "Poller", "NewPoller", "validate source")
	}
	if interval <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Poller", "NewPoller", "validate interval")
	}

	p := &Poller{
		BaseService: service.NewBaseService("schema-source", opts...),
		source:      src,
		interval:    interval,
		onChange:    onChange,
	}
	p.SetHealthCheck(p.checkLastFetch)
	return p, nil
}

// Start begins polling. The source is fetched once synchronously before
// the ticker loop starts, so a reachable source yields a schema by the
// time Start returns.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.quit != nil {
		p.mu.Unlock()
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "Poller", "Start", "start polling")
	}
	quit := make(chan struct{})
	p.quit = quit
	p.mu.Unlock()

	if err := p.BaseService.Start(ctx); err != nil {
		p.mu.Lock()
		p.quit = nil
		p.mu.Unlock()
		return err
	}

	p.poll(ctx)

	p.wg.Add(1)
	go p.run(ctx, quit)

	p.Logger().Info("schema polling started",
		"source", p.source.Name(),
		"interval", p.interval,
	)
	return nil
}

// Stop terminates the polling loop and shuts down the service.
func (p *Poller) Stop(timeout time.Duration) error {
	p.mu.Lock()
	quit := p.quit
	p.quit = nil
	p.mu.Unlock()

	if quit != nil {
		close(quit)
		p.wg.Wait()
	}
	return p.BaseService.Stop(timeout)
}

func (p *Poller) run(ctx context.Context, quit chan struct{}) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	sdl, err := p.source.Fetch(ctx)
	if err != nil {
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		p.Logger().Warn("schema poll failed", "source", p.source.Name(), "error", err)
		return
	}

	sum := sha256.Sum256([]byte(sdl))

	p.mu.Lock()
	changed := !p.seeded || sum != p.lastHash
	p.seeded = true
	p.lastHash = sum
	p.lastErr = nil
	p.mu.Unlock()

	p.RecordActivity(1)

	if changed && p.onChange != nil {
		p.Logger().Info("schema updated", "source", p.source.Name(), "bytes", len(sdl))
		p.onChange(sdl)
	}
}

// checkLastFetch reports the outcome of the most recent fetch attempt.
// A failing source drives the service unhealthy until a fetch succeeds.
func (p *Poller) checkLastFetch() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}
