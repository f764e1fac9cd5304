package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"podcast-highlighter/internal/store"
)

// DefaultBatchSize caps the number of ids sent in a single "in" lookup.
const DefaultBatchSize = 100

// Store maps typed records onto a store.Gateway.
type Store struct {
	gw        store.Gateway
	batchSize int
	now       func() time.Time
	newID     func() string
}

func New(gw store.Gateway, batchSize int) *Store {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Store{
		gw:        gw,
		batchSize: batchSize,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// WithClock overrides the time source used for created_at/updated_at.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) BatchSize() int {
	return s.batchSize
}

// selectIn fetches rows whose column matches any of ids, issuing one query per
// batch of at most batchSize ids and concatenating the results.
func selectIn[T any](ctx context.Context, s *Store, table, column string, ids []string, q store.Query) ([]T, error) {
	ids = distinct(ids)
	out := make([]T, 0, len(ids))
	for start := 0; start < len(ids); start += s.batchSize {
		end := min(start+s.batchSize, len(ids))
		var part []T
		if err := s.gw.Select(ctx, table, q.Where(store.In(column, ids[start:end])), &part); err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}

// deleteIn removes rows whose column matches any of ids, batch by batch.
func deleteIn[T any](ctx context.Context, s *Store, table, column string, ids []string) ([]T, error) {
	ids = distinct(ids)
	var out []T
	for start := 0; start < len(ids); start += s.batchSize {
		end := min(start+s.batchSize, len(ids))
		var part []T
		if err := s.gw.Delete(ctx, table, []store.Filter{store.In(column, ids[start:end])}, &part); err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func first[T any](rows []T) (T, bool) {
	var zero T
	if len(rows) == 0 {
		return zero, false
	}
	return rows[0], true
}
