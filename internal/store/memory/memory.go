// Package memory is an in-process store.Gateway used by tests and the memory driver.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"podcast-highlighter/internal/store"
)

type record map[string]any

type Gateway struct {
	mu     sync.RWMutex
	tables map[string][]record
}

func New() *Gateway {
	return &Gateway{tables: make(map[string][]record)}
}

// Count returns the number of rows held for table.
func (g *Gateway) Count(table string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.tables[table])
}

func (g *Gateway) Select(ctx context.Context, table string, q store.Query, dest any) error {
	if err := store.CheckIdentifiers(table); err != nil {
		return err
	}
	if err := q.Validate(); err != nil {
		return err
	}
	filters, err := normalizeFilters(q.Filters)
	if err != nil {
		return err
	}

	g.mu.RLock()
	var out []record
	for _, r := range g.tables[table] {
		if matchesAll(r, filters) {
			out = append(out, r)
		}
	}
	g.mu.RUnlock()

	sortRecords(out, q.Orders)
	return decode(window(out, q.Offset, q.Limit), dest)
}

func (g *Gateway) Insert(ctx context.Context, table string, rows []store.Row, dest any) error {
	if err := store.CheckIdentifiers(table); err != nil {
		return err
	}
	out := make([]record, 0, len(rows))
	for _, row := range rows {
		for col := range row {
			if err := store.CheckIdentifiers(col); err != nil {
				return err
			}
		}
		r, err := normalizeRow(row)
		if err != nil {
			return err
		}
		out = append(out, r)
	}

	g.mu.Lock()
	g.tables[table] = append(g.tables[table], out...)
	g.mu.Unlock()

	return decode(out, dest)
}

func (g *Gateway) Update(ctx context.Context, table string, patch store.Row, filters []store.Filter, dest any) error {
	if err := store.CheckIdentifiers(table); err != nil {
		return err
	}
	if len(patch) == 0 {
		return fmt.Errorf("update %s: empty patch", table)
	}
	if err := store.ValidateFilters(filters); err != nil {
		return err
	}
	p, err := normalizeRow(patch)
	if err != nil {
		return err
	}
	fs, err := normalizeFilters(filters)
	if err != nil {
		return err
	}

	g.mu.Lock()
	var out []record
	rows := g.tables[table]
	for i, r := range rows {
		if !matchesAll(r, fs) {
			continue
		}
		updated := make(record, len(r)+len(p))
		for k, v := range r {
			updated[k] = v
		}
		for k, v := range p {
			updated[k] = v
		}
		rows[i] = updated
		out = append(out, updated)
	}
	g.mu.Unlock()

	return decode(out, dest)
}

func (g *Gateway) Delete(ctx context.Context, table string, filters []store.Filter, dest any) error {
	if err := store.CheckIdentifiers(table); err != nil {
		return err
	}
	if len(filters) == 0 {
		return fmt.Errorf("delete %s: refusing to delete without filters", table)
	}
	if err := store.ValidateFilters(filters); err != nil {
		return err
	}
	fs, err := normalizeFilters(filters)
	if err != nil {
		return err
	}

	g.mu.Lock()
	var kept, removed []record
	for _, r := range g.tables[table] {
		if matchesAll(r, fs) {
			removed = append(removed, r)
		} else {
			kept = append(kept, r)
		}
	}
	g.tables[table] = kept
	g.mu.Unlock()

	return decode(removed, dest)
}

// normalize converts v to the shape encoding/json produces, so stored rows and
// filter values compare the same way regardless of the Go type they came from.
func normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeRow(row store.Row) (record, error) {
	b, err := json.Marshal(row)
	if err != nil {
		return nil, err
	}
	var out record
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeFilters(filters []store.Filter) ([]store.Filter, error) {
	out := make([]store.Filter, len(filters))
	for i, f := range filters {
		if f.Op != store.OpIn {
			v, err := normalize(f.Value)
			if err != nil {
				return nil, fmt.Errorf("filter %s: %w", f.Column, err)
			}
			f.Value = v
		}
		out[i] = f
	}
	return out, nil
}

func matchesAll(r record, filters []store.Filter) bool {
	for _, f := range filters {
		if !matches(r[f.Column], f) {
			return false
		}
	}
	return true
}

func matches(v any, f store.Filter) bool {
	if f.Op == store.OpIn {
		s, ok := asString(v)
		if !ok {
			return false
		}
		for _, want := range f.Values {
			if s == want {
				return true
			}
		}
		return false
	}
	if f.Op == store.OpEq && v == nil && f.Value == nil {
		return true
	}
	c, ok := compare(v, f.Value)
	if !ok {
		return false
	}
	switch f.Op {
	case store.OpEq:
		return c == 0
	case store.OpGt:
		return c > 0
	case store.OpGte:
		return c >= 0
	case store.OpLt:
		return c < 0
	case store.OpLte:
		return c <= 0
	}
	return false
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// compare orders two normalised values. Strings that both parse as RFC 3339 compare as instants.
func compare(a, b any) (int, bool) {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		tx, errx := time.Parse(time.RFC3339Nano, x)
		ty, erry := time.Parse(time.RFC3339Nano, y)
		if errx == nil && erry == nil {
			return tx.Compare(ty), true
		}
		return strings.Compare(x, y), true
	case bool:
		y, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func sortRecords(rows []record, orders []store.Order) {
	if len(orders) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, o := range orders {
			a, b := rows[i][o.Column], rows[j][o.Column]
			if a == nil || b == nil {
				if a == nil && b == nil {
					continue
				}
				// nulls last
				return b == nil
			}
			c, ok := compare(a, b)
			if !ok || c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func window(rows []record, offset, limit int) []record {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func decode(rows []record, dest any) error {
	if dest == nil {
		return nil
	}
	if rows == nil {
		rows = []record{}
	}
	b, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}
