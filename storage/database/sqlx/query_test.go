package sqlxrepos

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/telepoint/backoffice/core"
)

func TestQueryBuilder(t *testing.T) {
	qb := newQueryBuilder(`SELECT * FROM customer WHERE deleted_at IS NULL`)
	qb.where(`(name ILIKE %s OR surname ILIKE %[1]s)`, "%rossi%")
	qb.where(`phone = %s`, "333")

	p := core.Pagination{Page: 2, PerPage: 10}
	query, args := qb.build(qb.pageSuffix(p, core.Asc("surname"), core.Asc("name")))

	assert.Equal(t,
		`SELECT * FROM customer WHERE deleted_at IS NULL`+
			` AND (name ILIKE $1 OR surname ILIKE $1) AND phone = $2`+
			` ORDER BY surname ASC, name ASC LIMIT $3 OFFSET $4`,
		query)
	assert.Equal(t, []interface{}{"%rossi%", "333", 10, 10}, args)
}

func TestQueryBuilder_noConditions(t *testing.T) {
	qb := newQueryBuilder(`SELECT * FROM notification WHERE TRUE`)
	query, args := qb.build(qb.pageSuffix(core.Pagination{Page: 1, PerPage: 20}, core.Desc("id")))

	assert.Equal(t, `SELECT * FROM notification WHERE TRUE ORDER BY id DESC LIMIT $1 OFFSET $2`, query)
	assert.Equal(t, []interface{}{20, 0}, args)
	assert.Empty(t, qb.conditions())
}
