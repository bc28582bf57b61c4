package dummydb

import (
	"github.com/telepoint/backoffice/core/sso"
)

type ssoRepository struct {
	db *authCodeTable
}

var _ sso.Repository = (*ssoRepository)(nil) // interface compliance check

func NewSSORepository(db *DB) sso.Repository {
	return &ssoRepository{db: db.authCode}
}

func (repo *ssoRepository) CreateAuthCode(ac sso.AuthCode) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[ac.Code] = &ac
	return nil
}

func (repo *ssoRepository) ConsumeAuthCode(code string) (sso.AuthCode, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	ac, ok := repo.db.table[code]
	if !ok {
		return sso.AuthCode{}, sso.ErrCodeNotFound
	}
	delete(repo.db.table, code)
	return *ac, nil
}
