package dummydb

import (
	"sort"
	"strings"

	"github.com/telepoint/backoffice/core/customer"
)

type customerRepository struct {
	db *customerTable
}

var _ customer.Repository = (*customerRepository)(nil) // interface compliance check

func NewCustomerRepository(db *DB) customer.Repository {
	return &customerRepository{db: db.customer}
}

func (repo *customerRepository) query() []customer.Customer {
	customers := make([]customer.Customer, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		customers = append(customers, *c)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].ID < customers[j].ID })
	return customers
}

func (repo *customerRepository) CheckPhoneUniqueness(phone string, excluded ...customer.Customer) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, c := range repo.query() {
		if c.Phone != phone {
			continue
		}
		skip := false
		for _, excl := range excluded {
			if excl.ID == c.ID {
				skip = true
				break
			}
		}
		if !skip {
			return customer.ErrPhoneExists
		}
	}
	return nil
}

func (repo *customerRepository) CreateCustomer(c customer.Customer) (customer.Customer, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	c.ID = repo.db.seq
	repo.db.table[c.ID] = &c
	return c, nil
}

func (repo *customerRepository) GetCustomerByID(id int) (customer.Customer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.table[id]; ok {
		return *c, nil
	}
	return customer.Customer{}, customer.ErrNotFound
}

func (repo *customerRepository) FilterCustomers(filter customer.QueryFilter) ([]customer.Customer, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	customers := repo.query()

	if filter.Search != "" {
		var filtered []customer.Customer
		search := strings.ToLower(filter.Search)
		for _, c := range customers {
			if strings.Contains(strings.ToLower(c.Name), search) ||
				strings.Contains(strings.ToLower(c.Surname), search) ||
				strings.Contains(strings.ToLower(c.Phone), search) ||
				strings.Contains(strings.ToLower(c.Email), search) {
				filtered = append(filtered, c)
			}
		}
		customers = filtered
	}
	if customers != nil && !filter.CreatedFrom.IsZero() {
		var filtered []customer.Customer
		timeUTC := filter.CreatedFrom.UTC()
		for _, c := range customers {
			if !c.CreatedAt.Before(timeUTC) {
				filtered = append(filtered, c)
			}
		}
		customers = filtered
	}
	if customers != nil && !filter.CreatedTo.IsZero() {
		var filtered []customer.Customer
		timeUTC := filter.CreatedTo.UTC()
		for _, c := range customers {
			if !c.CreatedAt.After(timeUTC) {
				filtered = append(filtered, c)
			}
		}
		customers = filtered
	}

	total := len(customers)
	return paginateCustomers(customers, filter.Pagination.Offset(), filter.Pagination.Limit()), total, nil
}

func (repo *customerRepository) UpdateCustomer(c customer.Customer) (customer.Customer, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[c.ID]
	if !ok {
		return customer.Customer{}, customer.ErrNotFound
	}
	if c.Name != "" {
		orig.Name = c.Name
	}
	if c.Phone != "" {
		orig.Phone = c.Phone
	}
	orig.Surname = c.Surname
	orig.Email = c.Email
	orig.TaxCode = c.TaxCode
	orig.Notes = c.Notes
	orig.UpdatedAt = c.UpdatedAt

	repo.db.table[c.ID] = orig
	return *orig, nil
}

func (repo *customerRepository) DeleteCustomersByID(ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}

func (repo *customerRepository) CountCustomers() (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.table), nil
}

func paginateCustomers(rows []customer.Customer, offset, limit int) []customer.Customer {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
