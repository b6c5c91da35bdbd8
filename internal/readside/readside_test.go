package readside_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transmodal/freightdesk/internal/readside"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	d := readside.NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Do(func() { calls.Add(1) })
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "a burst within the window must run once")
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := readside.NewDebouncer(30 * time.Millisecond)

	var calls atomic.Int32
	d.Do(func() { calls.Add(1) })
	d.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestSearcher_TypingBurstIssuesOneFetch(t *testing.T) {
	var fetches atomic.Int32
	results := make(chan string, 1)

	s := readside.NewSearcher(
		20*time.Millisecond,
		func(ctx context.Context, query string) (string, error) {
			fetches.Add(1)
			return "result for " + query, nil
		},
		func(query string, result string) {
			results <- result
		},
	)
	defer s.Close()

	ctx := context.Background()
	s.Query(ctx, "h")
	s.Query(ctx, "ha")
	s.Query(ctx, "ham")
	s.Query(ctx, "hamburg")

	select {
	case got := <-results:
		assert.Equal(t, "result for hamburg", got)
	case <-time.After(time.Second):
		t.Fatal("no result published")
	}
	assert.Equal(t, int32(1), fetches.Load())
}

func TestSearcher_FailedLookupDroppedSilently(t *testing.T) {
	published := make(chan string, 1)
	s := readside.NewSearcher(
		time.Millisecond,
		func(ctx context.Context, query string) (string, error) {
			return "", errors.New("upstream unavailable")
		},
		func(query string, result string) {
			published <- result
		},
	)
	defer s.Close()

	s.Query(context.Background(), "berlin")

	select {
	case <-published:
		t.Fatal("failed lookup must not publish")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSearcher_CloseDropsInFlightResult(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	published := make(chan string, 1)

	s := readside.NewSearcher(
		time.Millisecond,
		func(ctx context.Context, query string) (string, error) {
			close(started)
			<-release
			return "late", nil
		},
		func(query string, result string) {
			published <- result
		},
	)

	s.Query(context.Background(), "q")
	<-started
	s.Close()
	close(release)

	select {
	case <-published:
		t.Fatal("result arriving after Close must be dropped")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStaleFetcher_SecondLoadInvalidatesFirst(t *testing.T) {
	var mu sync.Mutex
	blocked := map[string]chan struct{}{
		"a": make(chan struct{}),
		"b": make(chan struct{}),
	}

	published := make(chan string, 2)
	var cleaned []string
	var cleanedMu sync.Mutex

	f := readside.NewStaleFetcher(
		func(ctx context.Context, key string) (string, error) {
			mu.Lock()
			ch := blocked[key]
			mu.Unlock()
			<-ch
			return "payload:" + key, nil
		},
		func(key string, result string) {
			published <- result
		},
		func(result string) {
			cleanedMu.Lock()
			cleaned = append(cleaned, result)
			cleanedMu.Unlock()
		},
	)

	f.Load(context.Background(), "a")
	f.Load(context.Background(), "b")

	// Let the newer load finish first, then release the stale one.
	close(blocked["b"])
	select {
	case got := <-published:
		assert.Equal(t, "payload:b", got)
	case <-time.After(time.Second):
		t.Fatal("current load never published")
	}

	close(blocked["a"])
	time.Sleep(50 * time.Millisecond)

	select {
	case got := <-published:
		t.Fatalf("stale result %q must not publish", got)
	default:
	}

	cleanedMu.Lock()
	defer cleanedMu.Unlock()
	require.Len(t, cleaned, 1)
	assert.Equal(t, "payload:a", cleaned[0])
}

func TestStaleFetcher_CancelDropsInFlight(t *testing.T) {
	release := make(chan struct{})
	published := make(chan string, 1)
	cleaned := make(chan string, 1)

	f := readside.NewStaleFetcher(
		func(ctx context.Context, key string) (string, error) {
			<-release
			return "payload", nil
		},
		func(key string, result string) { published <- result },
		func(result string) { cleaned <- result },
	)

	f.Load(context.Background(), "x")
	f.Cancel()
	close(release)

	select {
	case got := <-cleaned:
		assert.Equal(t, "payload", got)
	case <-time.After(time.Second):
		t.Fatal("cancelled load must run cleanup")
	}

	select {
	case <-published:
		t.Fatal("cancelled load must not publish")
	default:
	}
}

func TestPoller_TicksUntilStopped(t *testing.T) {
	var ticks atomic.Int32
	p := readside.NewPoller(10 * time.Millisecond)

	p.Start(context.Background(), func(ctx context.Context) error {
		ticks.Add(1)
		return nil
	})

	time.Sleep(100 * time.Millisecond)
	p.Stop()
	after := ticks.Load()

	assert.Positive(t, after)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, ticks.Load(), "no tick may fire after Stop returns")
}

func TestPoller_StopIsIdempotent(t *testing.T) {
	p := readside.NewPoller(10 * time.Millisecond)
	p.Start(context.Background(), func(ctx context.Context) error { return nil })

	p.Stop()
	assert.NotPanics(t, p.Stop)
}

func TestPoller_ErrorDoesNotStopLoop(t *testing.T) {
	var ticks atomic.Int32
	p := readside.NewPoller(10 * time.Millisecond)

	p.Start(context.Background(), func(ctx context.Context) error {
		ticks.Add(1)
		return errors.New("transient")
	})

	time.Sleep(100 * time.Millisecond)
	p.Stop()

	assert.GreaterOrEqual(t, ticks.Load(), int32(2))
}
