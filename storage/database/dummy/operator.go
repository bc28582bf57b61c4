package dummydb

import (
	"sort"
	"strings"
	"time"

	"github.com/telepoint/backoffice/core/operator"
)

type operatorRepository struct {
	db *operatorTable
}

var _ operator.Repository = (*operatorRepository)(nil) // interface compliance check

func NewOperatorRepository(db *DB) operator.Repository {
	return &operatorRepository{db: db.operator}
}

func (repo *operatorRepository) query() []operator.Operator {
	ops := make([]operator.Operator, 0, len(repo.db.table))
	for _, op := range repo.db.table {
		ops = append(ops, *op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].ID < ops[j].ID })
	return ops
}

func (repo *operatorRepository) CheckUsernameUniqueness(username, email string, excluded ...operator.Operator) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	exclLen := len(excluded)
	if exclLen > 1 {
		sort.Slice(excluded, func(i, j int) bool { return excluded[i].ID < excluded[j].ID })
	}

	for _, op := range repo.query() {
		if op.Username == username && username != "" && !isExcluded(op, excluded, exclLen) {
			return operator.ErrUsernameExists
		}
		if op.Email == email && email != "" && !isExcluded(op, excluded, exclLen) {
			return operator.ErrEmailExists
		}
	}
	return nil
}

func (repo *operatorRepository) CreateOperator(op operator.Operator) (operator.Operator, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	op.ID = repo.db.seq
	repo.db.table[op.ID] = &op
	return op, nil
}

func (repo *operatorRepository) QueryAllOperators() ([]operator.Operator, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *operatorRepository) GetOperatorByID(id int) (operator.Operator, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if op, ok := repo.db.table[id]; ok {
		return *op, nil
	}
	return operator.Operator{}, operator.ErrNotFound
}

func (repo *operatorRepository) GetOperatorByUsername(username string) (operator.Operator, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, op := range repo.query() {
		if op.Username == username {
			return op, nil
		}
	}
	return operator.Operator{}, operator.ErrNotFound
}

func (repo *operatorRepository) GetOperatorByEmail(email string) (operator.Operator, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, op := range repo.query() {
		if op.Email == email {
			return op, nil
		}
	}
	return operator.Operator{}, operator.ErrNotFound
}

func (repo *operatorRepository) GetOperatorByUsernameOrEmail(username string) (operator.Operator, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, op := range repo.query() {
		if (op.Username == username) || (op.Email == username) {
			return op, nil
		}
	}
	return operator.Operator{}, operator.ErrNotFound
}

func (repo *operatorRepository) FilterOperators(filter operator.QueryFilter) ([]operator.Operator, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ops := repo.query()

	if filter.Search != "" {
		var filtered []operator.Operator
		search := strings.ToLower(filter.Search)
		for _, op := range ops {
			if strings.Contains(strings.ToLower(op.Name), search) ||
				strings.Contains(strings.ToLower(op.Username), search) ||
				strings.Contains(strings.ToLower(op.Email), search) {
				filtered = append(filtered, op)
			}
		}
		ops = filtered
	}
	if ops != nil && filter.IsAdmin != nil {
		var filtered []operator.Operator
		for _, op := range ops {
			if op.IsAdmin == *filter.IsAdmin {
				filtered = append(filtered, op)
			}
		}
		ops = filtered
	}
	if ops != nil && filter.IsActive != nil {
		var filtered []operator.Operator
		for _, op := range ops {
			if op.IsActive == *filter.IsActive {
				filtered = append(filtered, op)
			}
		}
		ops = filtered
	}
	if ops != nil && !filter.CreatedFrom.IsZero() {
		var filtered []operator.Operator
		timeUTC := filter.CreatedFrom.UTC()
		for _, op := range ops {
			if !op.CreatedAt.Before(timeUTC) {
				filtered = append(filtered, op)
			}
		}
		ops = filtered
	}
	if ops != nil && !filter.CreatedTo.IsZero() {
		var filtered []operator.Operator
		timeUTC := filter.CreatedTo.UTC()
		for _, op := range ops {
			if !op.CreatedAt.After(timeUTC) {
				filtered = append(filtered, op)
			}
		}
		ops = filtered
	}

	return ops, nil
}

func (repo *operatorRepository) UpdateOperator(op operator.Operator, isAdmin, isActive *bool) (operator.Operator, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	orig, ok := repo.db.table[op.ID]
	if !ok {
		return operator.Operator{}, operator.ErrNotFound
	}
	if op.Name != "" {
		orig.Name = op.Name
	}
	if op.Username != "" {
		orig.Username = op.Username
	}
	if op.Email != "" {
		orig.Email = op.Email
	}
	if op.PasswordHash != nil {
		orig.PasswordHash = op.PasswordHash
	}
	if isAdmin != nil {
		orig.IsAdmin = *isAdmin
	}
	if isActive != nil {
		orig.IsActive = *isActive
	}
	orig.UpdatedAt = op.UpdatedAt

	repo.db.table[op.ID] = orig
	return *orig, nil
}

func (repo *operatorRepository) SetOperatorMFA(id int, enabled bool, secret string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	op, ok := repo.db.table[id]
	if !ok {
		return operator.ErrNotFound
	}
	op.MFAEnabled = enabled
	op.MFASecret = secret
	return nil
}

func (repo *operatorRepository) SetOperatorLastLogin(id int, t time.Time) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	op, ok := repo.db.table[id]
	if !ok {
		return operator.ErrNotFound
	}
	op.LastLogin = t
	return nil
}

func (repo *operatorRepository) DeleteOperatorsByID(ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func isExcluded(op operator.Operator, excluded []operator.Operator, n int) bool {
	if n <= 0 {
		return false
	}
	idx := sort.Search(n, func(i int) bool { return excluded[i].ID >= op.ID })
	return idx < n && excluded[idx].ID == op.ID
}
