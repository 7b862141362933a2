package importer

import (
	"context"
	"time"
)

const DefaultRequestDelay = 250 * time.Millisecond

// Pacer enforces a fixed pause between successive detail requests. The first
// call to Wait returns at once.
type Pacer struct {
	delay   time.Duration
	started bool
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewPacer(delay time.Duration) *Pacer {
	return &Pacer{delay: delay, sleep: sleepContext}
}

func (p *Pacer) Wait(ctx context.Context) error {
	if !p.started {
		p.started = true
		return ctx.Err()
	}
	if p.delay <= 0 {
		return ctx.Err()
	}
	return p.sleep(ctx, p.delay)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
