package service

import (
	"context"
	"sync"
)

// StoreTx runs a function atomically across the messaging stores. The
// postgres implementation opens a database transaction; the in-memory one
// serializes writers with a mutex.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// MemoryTx serializes multi-store writes for the in-memory stores. A single
// lock is used rather than per-user shards because a send touches rows owned
// by both participants.
type MemoryTx struct {
	mu sync.Mutex
}

func NewMemoryTx() *MemoryTx {
	return &MemoryTx{}
}

func (t *MemoryTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}
