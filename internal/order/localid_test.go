package order_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/transmodal/freightdesk/internal/order"
)

func TestLocalIDAllocator_Next(t *testing.T) {
	alloc := order.NewLocalIDAllocator()

	first := alloc.Next()
	second := alloc.Next()

	assert.Equal(t, int64(-1), first)
	assert.Equal(t, int64(-2), second)
	assert.True(t, order.IsLocalID(first))
	assert.True(t, order.IsLocalID(second))
}

func TestLocalIDAllocator_NoCollisions(t *testing.T) {
	alloc := order.NewLocalIDAllocator()

	const workers = 8
	const perWorker = 500

	var mu sync.Mutex
	seen := make(map[int64]bool)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]int64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				ids = append(ids, alloc.Next())
			}
			mu.Lock()
			for _, id := range ids {
				assert.False(t, seen[id], "duplicate local id %d", id)
				seen[id] = true
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
	for id := range seen {
		assert.Negative(t, id)
	}
}

func TestIsLocalID(t *testing.T) {
	assert.True(t, order.IsLocalID(-1))
	assert.False(t, order.IsLocalID(0))
	assert.False(t, order.IsLocalID(42))
}
