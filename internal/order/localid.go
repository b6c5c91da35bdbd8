package order

import "sync/atomic"

// LocalIDAllocator issues synthetic identifiers for aggregate members created
// client-side before the store has assigned them a real id. Local ids are
// negative, real ids are positive, so the two spaces can never collide.
// Local ids are never written to the store; the reconciler replaces them with
// real ids (or nulls them out) before any dependent row is persisted.
type LocalIDAllocator struct {
	last atomic.Int64
}

func NewLocalIDAllocator() *LocalIDAllocator {
	return &LocalIDAllocator{}
}

// Next returns a fresh local id: -1, -2, -3, ...
func (a *LocalIDAllocator) Next() int64 {
	return -a.last.Add(1)
}

// IsLocalID reports whether id is a synthetic client-side id.
func IsLocalID(id int64) bool {
	return id < 0
}
