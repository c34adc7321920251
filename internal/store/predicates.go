package store

import "strings"

// predicates collects parameterized WHERE conditions. Clauses use `?`
// placeholders; queries are rebound for the driver before execution.
type predicates struct {
	clauses []string
	args    []any
}

// add appends clause with its argument when set is true.
func (p *predicates) add(set bool, clause string, arg any) {
	if !set {
		return
	}
	p.clauses = append(p.clauses, clause)
	p.args = append(p.args, arg)
}

// where renders the WHERE clause, or an empty string with no predicates.
func (p *predicates) where() string {
	if len(p.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(p.clauses, " AND ")
}
