package readside

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Searcher debounces keystroke-driven lookups and delivers results as they
// complete. Responses are not reordered: the last completed response wins,
// not necessarily the last issued one. Failed lookups are advisory and
// dropped silently.
type Searcher[T any] struct {
	debounce *Debouncer
	fetch    func(ctx context.Context, query string) (T, error)
	publish  func(query string, result T)

	mu     sync.Mutex
	closed bool
}

// NewSearcher wires fetch (the network call) to publish (the consumer).
// A non-positive delay selects the default 300 ms window.
func NewSearcher[T any](delay time.Duration, fetch func(ctx context.Context, query string) (T, error), publish func(query string, result T)) *Searcher[T] {
	return &Searcher[T]{
		debounce: NewDebouncer(delay),
		fetch:    fetch,
		publish:  publish,
	}
}

// Query schedules a lookup for q after the debounce window. Calls within the
// window replace each other, so a typing burst issues one network call.
func (s *Searcher[T]) Query(ctx context.Context, q string) {
	s.debounce.Do(func() {
		go s.run(ctx, q)
	})
}

func (s *Searcher[T]) run(ctx context.Context, q string) {
	result, err := s.fetch(ctx, q)
	if err != nil {
		log.Debug().Err(err).Str("query", q).Msg("readside: search failed, result dropped")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.publish(q, result)
}

// Close cancels any pending lookup and drops results still in flight.
func (s *Searcher[T]) Close() {
	s.debounce.Stop()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
