package store

import "fmt"

type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

type Filter struct {
	Column string
	Op     Op
	Value  any
	Values []string
}

type Order struct {
	Column string
	Desc   bool
}

// Query describes a filtered, ordered and optionally paginated select.
// A zero Limit means no limit.
type Query struct {
	Filters []Filter
	Orders  []Order
	Offset  int
	Limit   int
}

func Eq(column string, value any) Filter  { return Filter{Column: column, Op: OpEq, Value: value} }
func Gt(column string, value any) Filter  { return Filter{Column: column, Op: OpGt, Value: value} }
func Gte(column string, value any) Filter { return Filter{Column: column, Op: OpGte, Value: value} }
func Lt(column string, value any) Filter  { return Filter{Column: column, Op: OpLt, Value: value} }
func Lte(column string, value any) Filter { return Filter{Column: column, Op: OpLte, Value: value} }

func In(column string, values []string) Filter {
	return Filter{Column: column, Op: OpIn, Values: values}
}

func From() Query { return Query{} }

func (q Query) Where(filters ...Filter) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), filters...)
	return q
}

func (q Query) OrderBy(column string, desc bool) Query {
	q.Orders = append(append([]Order(nil), q.Orders...), Order{Column: column, Desc: desc})
	return q
}

func (q Query) Range(offset, limit int) Query {
	q.Offset = offset
	q.Limit = limit
	return q
}

// Validate checks every column name and operator used by the query.
func (q Query) Validate() error {
	if err := ValidateFilters(q.Filters); err != nil {
		return err
	}
	for _, o := range q.Orders {
		if err := CheckIdentifiers(o.Column); err != nil {
			return err
		}
	}
	if q.Offset < 0 || q.Limit < 0 {
		return fmt.Errorf("invalid range offset=%d limit=%d", q.Offset, q.Limit)
	}
	return nil
}

func ValidateFilters(filters []Filter) error {
	for _, f := range filters {
		if err := CheckIdentifiers(f.Column); err != nil {
			return err
		}
		switch f.Op {
		case OpEq, OpGt, OpGte, OpLt, OpLte, OpIn:
		default:
			return fmt.Errorf("unsupported operator %q on %s", f.Op, f.Column)
		}
	}
	return nil
}
