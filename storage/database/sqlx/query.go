package sqlxrepos

import (
	"fmt"
	"strings"

	"github.com/telepoint/backoffice/core"
)

// queryBuilder accumulates AND conditions with positional ($N) placeholders.
// Conditions are fmt verbs: %s expands to the next placeholder, %[1]s reuses
// the first one of the condition.
type queryBuilder struct {
	base  string
	conds []string
	args  []interface{}
}

func newQueryBuilder(base string) *queryBuilder {
	return &queryBuilder{base: base}
}

func (qb *queryBuilder) where(cond string, args ...interface{}) {
	placeholders := make([]interface{}, 0, len(args))
	for _, a := range args {
		qb.args = append(qb.args, a)
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(qb.args)))
	}
	qb.conds = append(qb.conds, fmt.Sprintf(cond, placeholders...))
}

// placeholder appends an arg outside the WHERE clause (LIMIT, OFFSET) and
// returns its $N placeholder.
func (qb *queryBuilder) placeholder(arg interface{}) string {
	qb.args = append(qb.args, arg)
	return fmt.Sprintf("$%d", len(qb.args))
}

func (qb *queryBuilder) build(suffix string) (string, []interface{}) {
	query := qb.base
	if len(qb.conds) > 0 {
		query += " AND " + strings.Join(qb.conds, " AND ")
	}
	return query + suffix, qb.args
}

// pageSuffix assembles the ORDER BY / LIMIT / OFFSET tail of a page query.
func (qb *queryBuilder) pageSuffix(p core.Pagination, ords ...core.DBOrdering) string {
	cols := make([]string, len(ords))
	for i, ord := range ords {
		cols[i] = ord.String()
	}
	return " ORDER BY " + strings.Join(cols, ", ") +
		" LIMIT " + qb.placeholder(p.Limit()) + " OFFSET " + qb.placeholder(p.Offset())
}

// conditions returns just the assembled WHERE tail, for sharing between the
// page query and its COUNT twin.
func (qb *queryBuilder) conditions() string {
	if len(qb.conds) == 0 {
		return ""
	}
	return " AND " + strings.Join(qb.conds, " AND ")
}
