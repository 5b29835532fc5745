package graph

import (
	"context"
	"maps"
	"sync"
)

// Call is one statement seen by MemoryClient.
type Call struct {
	Query  string
	Params map[string]any
}

// MemoryClient replays queued results and records every statement. It
// stands in for Neo4j in tests.
type MemoryClient struct {
	mu      sync.Mutex
	reads   []Call
	writes  []Call
	queued  []Result
	err     error
	pingErr error
}

func NewMemoryClient() *MemoryClient { return &MemoryClient{} }

// WithError makes every subsequent read and write fail with err.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithConnectivityError makes VerifyConnectivity fail with err.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingErr = err
	return m
}

// PushReadResult queues the result of the next ExecuteRead.
func (m *MemoryClient) PushReadResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queued = append(m.queued, res)
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Result{}, m.err
	}
	m.reads = append(m.reads, Call{Query: cypher, Params: maps.Clone(params)})
	if len(m.queued) == 0 {
		return Result{}, nil
	}
	res := m.queued[0]
	m.queued = m.queued[1:]
	return res, nil
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return Result{}, m.err
	}
	m.writes = append(m.writes, Call{Query: cypher, Params: maps.Clone(params)})
	return Result{}, nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingErr
}

func (m *MemoryClient) Close(context.Context) error { return nil }

// ReadCalls returns a copy of the recorded reads.
func (m *MemoryClient) ReadCalls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.reads...)
}

// WriteCalls returns a copy of the recorded writes.
func (m *MemoryClient) WriteCalls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.writes...)
}
