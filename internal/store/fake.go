package store

import (
	"context"
	"sync"
)

// FakePool is an in-memory Pool used by tests and by actors/* examples
// when no real driver is configured. It never errors on Acquire and
// hands out FakeClients that record every Operation they execute.
type FakePool struct {
	mu         sync.Mutex
	executions []Operation
}

// NewFakePool creates an empty FakePool.
func NewFakePool() *FakePool {
	return &FakePool{}
}

func (p *FakePool) Acquire(ctx context.Context) (Client, error) {
	return &fakeClient{pool: p}, nil
}

// Executions returns every Operation ever run against any client this
// pool handed out, in execution order. Safe to call concurrently with
// running actors.
func (p *FakePool) Executions() []Operation {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Operation, len(p.executions))
	copy(out, p.executions)
	return out
}

type fakeClient struct {
	pool *FakePool
}

func (c *fakeClient) Execute(ctx context.Context, op Operation) (any, error) {
	c.pool.mu.Lock()
	c.pool.executions = append(c.pool.executions, op)
	c.pool.mu.Unlock()
	return map[string]any{"ok": true}, nil
}

func (c *fakeClient) Release() {}
