package sheettable

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Condition represents a single query condition on a row
type Condition struct {
	Column   string   // カラム名
	Operator string   // 演算子: ==, !=, >, >=, <, <=, in, between, prefix
	Values   []string // 比較値 (in: any number, between: two, others: one)
}

// Query selects rows of one table
type Query struct {
	Conditions []Condition // AND条件として評価
	Limit      int
	Offset     int
}

// Where is shorthand for a Query with a single condition.
func Where(column, operator string, values ...string) Query {
	return Query{Conditions: []Condition{{Column: column, Operator: operator, Values: values}}}
}

// Query returns the live rows of table that match q, in sheet order.
func (s *Store) Query(ctx context.Context, table string, q Query) ([]Row, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, err
	}
	def, err := s.table(table)
	if err != nil {
		return nil, err
	}
	for _, c := range q.Conditions {
		if !contains(def.Columns, c.Column) {
			return nil, fmt.Errorf("unknown column %q in table %q", c.Column, table)
		}
	}

	rows, err := s.Rows(ctx, table)
	if err != nil {
		return nil, err
	}
	return ApplyQuery(rows, q), nil
}

// Matches checks if the row satisfies every condition of the query
func (r Row) Matches(q Query) bool {
	for _, c := range q.Conditions {
		if !evalCondition(r.Values[c.Column], c) {
			return false
		}
	}
	return true
}

// evalCondition evaluates a single condition against a cell
func evalCondition(cell string, c Condition) bool {
	switch c.Operator {
	case "==":
		return cell == c.Values[0]
	case "!=":
		return cell != c.Values[0]
	case ">":
		return compare(cell, c.Values[0]) > 0
	case ">=":
		return compare(cell, c.Values[0]) >= 0
	case "<":
		return compare(cell, c.Values[0]) < 0
	case "<=":
		return compare(cell, c.Values[0]) <= 0
	case "in":
		for _, v := range c.Values {
			if cell == v {
				return true
			}
		}
		return false
	case "between":
		return compare(cell, c.Values[0]) >= 0 && compare(cell, c.Values[1]) <= 0
	case "prefix":
		return strings.HasPrefix(cell, c.Values[0])
	default:
		return false
	}
}

// compare orders two cells numerically when both parse as numbers and
// lexically otherwise. RFC3339 timestamps order correctly either way.
// Equality operators never use it: "1" and "01" are different codes.
func compare(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// ApplyQuery filters rows based on query conditions
func ApplyQuery(rows []Row, q Query) []Row {
	results := []Row{}

	// フィルタリング
	for _, r := range rows {
		if r.Matches(q) {
			results = append(results, r)
		}
	}

	// Offset適用
	if q.Offset >= len(results) && q.Offset > 0 {
		return []Row{}
	}
	if q.Offset > 0 {
		results = results[q.Offset:]
	}

	// Limit適用
	if q.Limit > 0 && q.Limit < len(results) {
		results = results[:q.Limit]
	}

	return results
}

// ValidateQuery validates query structure
func ValidateQuery(q Query) error {
	for i, c := range q.Conditions {
		if c.Column == "" {
			return fmt.Errorf("empty column name in condition %d", i)
		}

		switch c.Operator {
		case "==", "!=", ">", ">=", "<", "<=", "prefix":
			if len(c.Values) != 1 {
				return fmt.Errorf("operator '%s' requires exactly one value in condition %d", c.Operator, i)
			}
		case "in":
			if len(c.Values) == 0 {
				return fmt.Errorf("operator 'in' requires at least one value in condition %d", i)
			}
		case "between":
			if len(c.Values) != 2 {
				return fmt.Errorf("operator 'between' requires two values in condition %d", i)
			}
		default:
			return fmt.Errorf("invalid operator '%s' in condition %d", c.Operator, i)
		}
	}

	// Limit/Offsetの検証
	if q.Limit < 0 {
		return fmt.Errorf("limit must be non-negative")
	}
	if q.Offset < 0 {
		return fmt.Errorf("offset must be non-negative")
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
