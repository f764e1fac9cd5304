package test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"

	"podcast-highlighter/internal/store"
)

// MockTaskEnqueuer is a mock implementation of tasks.TaskEnqueuer for testing.
type MockTaskEnqueuer struct {
	mu            sync.Mutex
	EnqueuedTasks []*asynq.Task
	Err           error
}

func (m *MockTaskEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.EnqueuedTasks = append(m.EnqueuedTasks, task)
	return &asynq.TaskInfo{ID: "test-task-id", Queue: "default"}, nil
}

// NewMockDB returns a postgres-flavoured sqlx handle backed by sqlmock with exact query matching.
func NewMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { mockDb.Close() })
	return sqlx.NewDb(mockDb, "postgres"), mock
}

var ErrInjected = errors.New("injected store failure")

// FaultyGateway wraps a gateway, counting selects per table and failing the ones it is told to.
type FaultyGateway struct {
	store.Gateway

	mu         sync.Mutex
	failSelect map[string]error
	selects    map[string]int
	maxIn      map[string]int
}

func NewFaultyGateway(inner store.Gateway) *FaultyGateway {
	return &FaultyGateway{
		Gateway:    inner,
		failSelect: make(map[string]error),
		selects:    make(map[string]int),
		maxIn:      make(map[string]int),
	}
}

func (g *FaultyGateway) FailSelect(table string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err == nil {
		delete(g.failSelect, table)
		return
	}
	g.failSelect[table] = err
}

func (g *FaultyGateway) Selects(table string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.selects[table]
}

// MaxIn is the largest "in" filter sent to table since the last reset.
func (g *FaultyGateway) MaxIn(table string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.maxIn[table]
}

func (g *FaultyGateway) ResetCounts() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.selects = make(map[string]int)
	g.maxIn = make(map[string]int)
}

func (g *FaultyGateway) Select(ctx context.Context, table string, q store.Query, dest any) error {
	g.mu.Lock()
	g.selects[table]++
	for _, f := range q.Filters {
		if f.Op == store.OpIn && len(f.Values) > g.maxIn[table] {
			g.maxIn[table] = len(f.Values)
		}
	}
	err := g.failSelect[table]
	g.mu.Unlock()
	if err != nil {
		return err
	}
	return g.Gateway.Select(ctx, table, q, dest)
}
