package readside

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// StaleFetcher loads one resource at a time, keyed by an opaque key. When the
// key changes before an earlier load resolves, the stale result is discarded
// and its cleanup runs, releasing whatever resources the result would have
// held. Used for preview-style panels where only the current selection
// matters.
type StaleFetcher[T any] struct {
	fetch   func(ctx context.Context, key string) (T, error)
	publish func(key string, result T)
	cleanup func(result T)

	mu  sync.Mutex
	gen uint64
	key string
}

func NewStaleFetcher[T any](
	fetch func(ctx context.Context, key string) (T, error),
	publish func(key string, result T),
	cleanup func(result T),
) *StaleFetcher[T] {
	return &StaleFetcher[T]{fetch: fetch, publish: publish, cleanup: cleanup}
}

// Load starts fetching key, invalidating any load still in flight.
func (f *StaleFetcher[T]) Load(ctx context.Context, key string) {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	f.key = key
	f.mu.Unlock()

	go func() {
		result, err := f.fetch(ctx, key)
		if err != nil {
			log.Debug().Err(err).Str("key", key).Msg("readside: fetch failed")
			return
		}

		f.mu.Lock()
		stale := gen != f.gen
		f.mu.Unlock()

		if stale {
			if f.cleanup != nil {
				f.cleanup(result)
			}
			return
		}
		f.publish(key, result)
	}()
}

// Cancel invalidates any load in flight without starting a new one.
func (f *StaleFetcher[T]) Cancel() {
	f.mu.Lock()
	f.gen++
	f.key = ""
	f.mu.Unlock()
}
