package simulation

import (
	"context"
	"time"
)

// DefaultTickInterval paces output only; it has no effect on the physics.
const DefaultTickInterval = 500 * time.Millisecond

// Pacer blocks between ticks.
type Pacer interface {
	Wait(ctx context.Context) error
}

type TickerPacer struct {
	t *time.Ticker
}

func NewTickerPacer(d time.Duration) *TickerPacer {
	if d <= 0 {
		d = DefaultTickInterval
	}
	return &TickerPacer{t: time.NewTicker(d)}
}

func (p *TickerPacer) Wait(ctx context.Context) error {
	select {
	case <-p.t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *TickerPacer) Stop() {
	p.t.Stop()
}

// NoopPacer never blocks; tests use it to run whole routes instantly.
type NoopPacer struct{}

func (NoopPacer) Wait(ctx context.Context) error {
	return ctx.Err()
}
