// Package postgres implements store.Gateway on top of sqlx.
package postgres

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the "postgres" driver
	"github.com/rs/zerolog"

	"podcast-highlighter/internal/store"
)

type Gateway struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Gateway {
	return &Gateway{db: db}
}

func (g *Gateway) DB() *sqlx.DB {
	return g.db
}

// Connect opens driverName and retries the initial ping with exponential backoff.
func Connect(ctx context.Context, driverName, dsn string, maxWait time.Duration) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxWait
	op := func() error {
		if err := db.PingContext(ctx); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("driver", driverName).Msg("database not reachable yet")
			return err
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("driver", driverName).Msg("database connection established")
	return db, nil
}

func (g *Gateway) Select(ctx context.Context, table string, q store.Query, dest any) error {
	if err := store.CheckIdentifiers(table); err != nil {
		return err
	}
	if err := q.Validate(); err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(table)

	where, args := buildWhere(q.Filters)
	sb.WriteString(where)

	if len(q.Orders) > 0 {
		parts := make([]string, len(q.Orders))
		for i, o := range q.Orders {
			dir := "ASC"
			if o.Desc {
				dir = "DESC"
			}
			parts[i] = o.Column + " " + dir
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	if q.Offset > 0 {
		sb.WriteString(" OFFSET ?")
		args = append(args, q.Offset)
	}

	query := g.db.Rebind(sb.String())
	if dest == nil {
		_, err := g.db.ExecContext(ctx, query, args...)
		return err
	}
	return g.db.SelectContext(ctx, dest, query, args...)
}

func (g *Gateway) Insert(ctx context.Context, table string, rows []store.Row, dest any) error {
	if err := store.CheckIdentifiers(table); err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	cols := columns(rows)
	if err := store.CheckIdentifiers(cols...); err != nil {
		return err
	}

	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	values := make([]string, len(rows))
	args := make([]any, 0, len(rows)*len(cols))
	for i, row := range rows {
		values[i] = placeholder
		for _, c := range cols {
			args = append(args, row[c])
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, strings.Join(cols, ", "), strings.Join(values, ", "))
	return g.run(ctx, query, args, dest)
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

	cols := columns([]store.Row{patch})
	if err := store.CheckIdentifiers(cols...); err != nil {
		return err
	}
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols))
	for i, c := range cols {
		sets[i] = c + " = ?"
		args = append(args, patch[c])
	}

	where, whereArgs := buildWhere(filters)
	query := fmt.Sprintf("UPDATE %s SET %s%s", table, strings.Join(sets, ", "), where)
	return g.run(ctx, query, append(args, whereArgs...), dest)
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

	where, args := buildWhere(filters)
	return g.run(ctx, "DELETE FROM "+table+where, args, dest)
}

// run executes a write statement, returning the affected rows into dest when it is set.
func (g *Gateway) run(ctx context.Context, query string, args []any, dest any) error {
	if dest == nil {
		_, err := g.db.ExecContext(ctx, g.db.Rebind(query), args...)
		return err
	}
	return g.db.SelectContext(ctx, dest, g.db.Rebind(query+" RETURNING *"), args...)
}

var sqlOps = map[store.Op]string{
	store.OpEq:  "=",
	store.OpGt:  ">",
	store.OpGte: ">=",
	store.OpLt:  "<",
	store.OpLte: "<=",
}

// buildWhere renders filters with '?' placeholders; callers rebind for the driver.
func buildWhere(filters []store.Filter) (string, []any) {
	if len(filters) == 0 {
		return "", nil
	}
	conds := make([]string, 0, len(filters))
	var args []any
	for _, f := range filters {
		switch {
		case f.Op == store.OpIn && len(f.Values) == 0:
			conds = append(conds, "FALSE")
		case f.Op == store.OpIn:
			conds = append(conds, f.Column+" IN ("+strings.TrimSuffix(strings.Repeat("?, ", len(f.Values)), ", ")+")")
			for _, v := range f.Values {
				args = append(args, v)
			}
		case f.Op == store.OpEq && f.Value == nil:
			conds = append(conds, f.Column+" IS NULL")
		default:
			conds = append(conds, f.Column+" "+sqlOps[f.Op]+" ?")
			args = append(args, f.Value)
		}
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func columns(rows []store.Row) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		for c := range r {
			seen[c] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for c := range seen {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}
