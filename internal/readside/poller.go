package readside

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Poller runs fn at a fixed interval until Stop is called or the context is
// cancelled. It backs the periodic invoice-list refresh while a finance panel
// is open and is independent of the commit pipeline. Errors are logged and
// the next tick proceeds; there is no retry beyond the regular interval.
type Poller struct {
	interval time.Duration
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewPoller(interval time.Duration) *Poller {
	return &Poller{
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins polling. fn runs once per tick, never concurrently with
// itself. Start returns immediately.
func (p *Poller) Start(ctx context.Context, fn func(ctx context.Context) error) {
	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			case <-ticker.C:
				if err := fn(ctx); err != nil {
					log.Debug().Err(err).Msg("readside: poll tick failed")
				}
			}
		}
	}()
}

// Stop halts polling and waits for the loop to exit. Safe to call more than
// once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}
