package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/telepoint/backoffice/core/sso"
)

type authCodeRow struct {
	Code          string    `db:"code"`
	ClientID      string    `db:"client_id"`
	OperatorID    int       `db:"operator_id"`
	RedirectURI   string    `db:"redirect_uri"`
	CodeChallenge string    `db:"code_challenge"`
	ExpiresAt     time.Time `db:"expires_at"`
}

func (r authCodeRow) toDomain() sso.AuthCode {
	return sso.AuthCode{
		Code:          r.Code,
		ClientID:      r.ClientID,
		OperatorID:    r.OperatorID,
		RedirectURI:   r.RedirectURI,
		CodeChallenge: r.CodeChallenge,
		ExpiresAt:     r.ExpiresAt,
	}
}

type ssoRepository struct {
	db *sqlx.DB
}

var _ sso.Repository = (*ssoRepository)(nil) // interface compliance check

func NewSSORepository(db *sqlx.DB) *ssoRepository {
	return &ssoRepository{db: db}
}

func (repo ssoRepository) CreateAuthCode(ac sso.AuthCode) error {
	query := `
INSERT INTO sso_auth_code (code, client_id, operator_id, redirect_uri, code_challenge, expires_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.Exec(query, ac.Code, ac.ClientID, ac.OperatorID, ac.RedirectURI, ac.CodeChallenge, ac.ExpiresAt)
	return errors.Wrap(err, "inserting auth code")
}

// ConsumeAuthCode deletes the code in the same statement that reads it, so a
// replayed code cannot win a race.
func (repo ssoRepository) ConsumeAuthCode(code string) (sso.AuthCode, error) {
	var row authCodeRow
	query := `DELETE FROM sso_auth_code WHERE code = $1 RETURNING *`
	if err := repo.db.Get(&row, query, code); err != nil {
		if err == sql.ErrNoRows {
			return sso.AuthCode{}, sso.ErrCodeNotFound
		}
		return sso.AuthCode{}, errors.Wrap(err, "consuming auth code")
	}
	return row.toDomain(), nil
}
