package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/telepoint/backoffice/core/operator"
)

type operatorRow struct {
	ID           int       `db:"id"`
	Name         string    `db:"name"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	IsAdmin      bool      `db:"is_admin"`
	IsActive     bool      `db:"is_active"`
	MFAEnabled   bool      `db:"mfa_enabled"`
	MFASecret    string    `db:"mfa_secret"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	LastLogin    null.Time `db:"last_login"`
}

func (r operatorRow) toDomain() operator.Operator {
	return operator.Operator{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username,
		Email:        r.Email,
		IsAdmin:      r.IsAdmin,
		IsActive:     r.IsActive,
		MFAEnabled:   r.MFAEnabled,
		MFASecret:    r.MFASecret,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

type operatorRepository struct {
	db *sqlx.DB
}

var _ operator.Repository = (*operatorRepository)(nil) // interface compliance check

func NewOperatorRepository(db *sqlx.DB) *operatorRepository {
	return &operatorRepository{db: db}
}

func (repo operatorRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return operator.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo operatorRepository) get(query string, args ...interface{}) (operator.Operator, error) {
	var row operatorRow
	if err := repo.db.Get(&row, query, args...); err != nil {
		return operator.Operator{}, repo.trapNoRowsErr(err, "finding operator")
	}
	return row.toDomain(), nil
}

func (repo operatorRepository) CheckUsernameUniqueness(username, email string, excluded ...operator.Operator) error {
	query := `SELECT username, email FROM operator WHERE (username = $1 OR email = $2)`
	args := []interface{}{username, email}
	if len(excluded) > 0 {
		ids := make([]int, 0, len(excluded))
		for _, op := range excluded {
			ids = append(ids, op.ID)
		}
		q, inArgs, err := sqlx.In(`SELECT username, email FROM operator WHERE (username = ? OR email = ?) AND id NOT IN (?)`, username, email, ids)
		if err != nil {
			return errors.Wrap(err, "checking operator uniqueness")
		}
		query, args = repo.db.Rebind(q), inArgs
	}

	var rows []operatorRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return errors.Wrap(err, "checking operator uniqueness")
	}
	for _, r := range rows {
		if r.Username == username && username != "" {
			return operator.ErrUsernameExists
		}
		if r.Email == email && email != "" {
			return operator.ErrEmailExists
		}
	}
	return nil
}

func (repo operatorRepository) CreateOperator(op operator.Operator) (operator.Operator, error) {
	query := `
INSERT INTO operator (name, username, email, is_admin, is_active, mfa_enabled, mfa_secret, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`
	err := repo.db.Get(&op.ID, query,
		op.Name, op.Username, op.Email, op.IsAdmin, op.IsActive,
		op.MFAEnabled, op.MFASecret, op.PasswordHash, op.CreatedAt, op.UpdatedAt)
	if err != nil {
		return operator.Operator{}, errors.Wrap(err, "inserting operator")
	}
	return op, nil
}

func (repo operatorRepository) QueryAllOperators() ([]operator.Operator, error) {
	var rows []operatorRow
	if err := repo.db.Select(&rows, `SELECT * FROM operator ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying operators")
	}
	ops := make([]operator.Operator, 0, len(rows))
	for _, r := range rows {
		ops = append(ops, r.toDomain())
	}
	return ops, nil
}

func (repo operatorRepository) GetOperatorByID(id int) (operator.Operator, error) {
	return repo.get(`SELECT * FROM operator WHERE id = $1`, id)
}

func (repo operatorRepository) GetOperatorByUsername(username string) (operator.Operator, error) {
	return repo.get(`SELECT * FROM operator WHERE username = $1`, username)
}

func (repo operatorRepository) GetOperatorByEmail(email string) (operator.Operator, error) {
	return repo.get(`SELECT * FROM operator WHERE email = $1`, email)
}

func (repo operatorRepository) GetOperatorByUsernameOrEmail(username string) (operator.Operator, error) {
	return repo.get(`SELECT * FROM operator WHERE username = $1 OR email = $1`, username)
}

func (repo operatorRepository) FilterOperators(filter operator.QueryFilter) ([]operator.Operator, error) {
	qb := newQueryBuilder(`SELECT * FROM operator WHERE TRUE`)
	if filter.Search != "" {
		qb.where(`(name ILIKE %[1]s OR username ILIKE %[1]s OR email ILIKE %[1]s)`, "%"+filter.Search+"%")
	}
	if filter.IsAdmin != nil {
		qb.where(`is_admin = %s`, *filter.IsAdmin)
	}
	if filter.IsActive != nil {
		qb.where(`is_active = %s`, *filter.IsActive)
	}
	if !filter.CreatedFrom.IsZero() {
		qb.where(`created_at >= %s`, filter.CreatedFrom.UTC())
	}
	if !filter.CreatedTo.IsZero() {
		qb.where(`created_at <= %s`, filter.CreatedTo.UTC())
	}
	query, args := qb.build(` ORDER BY name`)

	var rows []operatorRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering operators")
	}
	ops := make([]operator.Operator, 0, len(rows))
	for _, r := range rows {
		ops = append(ops, r.toDomain())
	}
	return ops, nil
}

func (repo operatorRepository) UpdateOperator(op operator.Operator, isAdmin, isActive *bool) (operator.Operator, error) {
	query := `
UPDATE operator SET
    name          = COALESCE(NULLIF($2, ''), name),
    username      = COALESCE(NULLIF($3, ''), username),
    email         = COALESCE(NULLIF($4, ''), email),
    is_admin      = COALESCE($5, is_admin),
    is_active     = COALESCE($6, is_active),
    password_hash = COALESCE($7, password_hash),
    updated_at    = $8
WHERE id = $1
RETURNING *`
	var hash []byte
	if len(op.PasswordHash) > 0 {
		hash = op.PasswordHash
	}
	var row operatorRow
	err := repo.db.Get(&row, query,
		op.ID, op.Name, op.Username, op.Email,
		null.BoolFromPtr(isAdmin), null.BoolFromPtr(isActive), hash, op.UpdatedAt)
	if err != nil {
		return operator.Operator{}, repo.trapNoRowsErr(err, "updating operator")
	}
	return row.toDomain(), nil
}

func (repo operatorRepository) SetOperatorMFA(id int, enabled bool, secret string) error {
	res, err := repo.db.Exec(`UPDATE operator SET mfa_enabled = $2, mfa_secret = $3, updated_at = NOW() WHERE id = $1`, id, enabled, secret)
	if err != nil {
		return errors.Wrap(err, "setting operator MFA")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return operator.ErrNotFound
	}
	return nil
}

func (repo operatorRepository) SetOperatorLastLogin(id int, t time.Time) error {
	_, err := repo.db.Exec(`UPDATE operator SET last_login = $2 WHERE id = $1`, id, t)
	return errors.Wrap(err, "setting operator last login")
}

func (repo operatorRepository) DeleteOperatorsByID(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM operator WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting operators")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting operators")
	}
	return nil
}
