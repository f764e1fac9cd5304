// Package supabase implements store.Gateway over the Supabase REST (PostgREST) API.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"
	supabase "github.com/supabase-community/supabase-go"
	"golang.org/x/time/rate"

	"podcast-highlighter/internal/store"
)

// Querier is satisfied by *supabase.Client and *postgrest.Client.
type Querier interface {
	From(table string) *postgrest.QueryBuilder
}

type Gateway struct {
	client  Querier
	limiter *rate.Limiter
}

// New wraps client. Requests are throttled to rps with a burst of the same size.
func New(client Querier, rps float64) *Gateway {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &Gateway{client: client, limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Open creates a Supabase client for projectURL authenticated with key.
func Open(projectURL, key string, rps float64) (*Gateway, error) {
	client, err := supabase.NewClient(projectURL, key, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize supabase client: %w", err)
	}
	return New(client, rps), nil
}

func (g *Gateway) Select(ctx context.Context, table string, q store.Query, dest any) error {
	if err := store.CheckIdentifiers(table); err != nil {
		return err
	}
	if err := q.Validate(); err != nil {
		return err
	}
	if q.Limit == 0 && q.Offset > 0 {
		return fmt.Errorf("select %s: offset requires a limit", table)
	}
	if err := g.wait(ctx); err != nil {
		return err
	}

	fb := g.client.From(table).Select("*", "", false)
	if err := applyFilters(fb, q.Filters); err != nil {
		return err
	}
	for _, o := range q.Orders {
		fb = fb.Order(o.Column, &postgrest.OrderOpts{Ascending: !o.Desc})
	}
	if q.Limit > 0 {
		fb = fb.Range(q.Offset, q.Offset+q.Limit-1, "")
	}
	return execute(table, fb, dest)
}

func (g *Gateway) Insert(ctx context.Context, table string, rows []store.Row, dest any) error {
	if err := store.CheckIdentifiers(table); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	for _, r := range rows {
		for col := range r {
			if err := store.CheckIdentifiers(col); err != nil {
				return err
			}
		}
	}
	if err := g.wait(ctx); err != nil {
		return err
	}

	fb := g.client.From(table).Insert(rows, false, "", returning(dest), "")
	return execute(table, fb, dest)
}

func (g *Gateway) Update(ctx context.Context, table string, patch store.Row, filters []store.Filter, dest any) error {
	if err := store.CheckIdentifiers(table); err != nil {
		return err
	}
	if len(patch) == 0 {
		return fmt.Errorf("update %s: empty patch", table)
	}
	if len(filters) == 0 {
		return fmt.Errorf("update %s: refusing to update without filters", table)
	}
	if err := store.ValidateFilters(filters); err != nil {
		return err
	}
	if err := g.wait(ctx); err != nil {
		return err
	}

	fb := g.client.From(table).Update(patch, returning(dest), "")
	if err := applyFilters(fb, filters); err != nil {
		return err
	}
	return execute(table, fb, dest)
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
	if err := g.wait(ctx); err != nil {
		return err
	}

	fb := g.client.From(table).Delete(returning(dest), "")
	if err := applyFilters(fb, filters); err != nil {
		return err
	}
	return execute(table, fb, dest)
}

func (g *Gateway) wait(ctx context.Context) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("supabase rate limiter: %w", err)
	}
	return nil
}

func returning(dest any) string {
	if dest == nil {
		return "minimal"
	}
	return "representation"
}

func execute(table string, fb *postgrest.FilterBuilder, dest any) error {
	body, _, err := fb.Execute()
	if err != nil {
		return fmt.Errorf("supabase %s: %w", table, err)
	}
	if dest == nil {
		return nil
	}
	if len(body) == 0 {
		body = []byte("[]")
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s rows: %w", table, err)
	}
	return nil
}

// applyFilters adds filters to fb. PostgREST keys filters by column, so several
// filters on one column are folded into a single and=(...) group.
func applyFilters(fb *postgrest.FilterBuilder, filters []store.Filter) error {
	perColumn := make(map[string]int, len(filters))
	for _, f := range filters {
		perColumn[f.Column]++
	}

	var grouped []string
	for _, f := range filters {
		if perColumn[f.Column] > 1 {
			expr, err := expression(f)
			if err != nil {
				return err
			}
			grouped = append(grouped, expr)
			continue
		}

		if f.Op == store.OpIn {
			fb.In(f.Column, f.Values)
			continue
		}
		if f.Value == nil {
			if f.Op != store.OpEq {
				return fmt.Errorf("filter %s: null only supported with eq", f.Column)
			}
			fb.Is(f.Column, "null")
			continue
		}
		v, err := formatValue(f.Value)
		if err != nil {
			return fmt.Errorf("filter %s: %w", f.Column, err)
		}
		fb.Filter(f.Column, string(f.Op), v)
	}

	if len(grouped) > 0 {
		fb.And(strings.Join(grouped, ","), "")
	}
	return nil
}

var reserved = regexp.MustCompile(`[,()"]`)

func quote(v string) string {
	if reserved.MatchString(v) {
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return v
}

func expression(f store.Filter) (string, error) {
	if f.Op == store.OpIn {
		vals := make([]string, len(f.Values))
		for i, v := range f.Values {
			vals[i] = quote(v)
		}
		return fmt.Sprintf("%s.in.(%s)", f.Column, strings.Join(vals, ",")), nil
	}
	if f.Value == nil {
		return f.Column + ".is.null", nil
	}
	v, err := formatValue(f.Value)
	if err != nil {
		return "", fmt.Errorf("filter %s: %w", f.Column, err)
	}
	return fmt.Sprintf("%s.%s.%s", f.Column, f.Op, quote(v)), nil
}

func formatValue(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case time.Time:
		return t.UTC().Format(time.RFC3339Nano), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case bool:
		return strconv.FormatBool(t), nil
	case fmt.Stringer:
		return t.String(), nil
	}
	return "", fmt.Errorf("unsupported filter value type %T", v)
}
