package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/customer"
)

type customerRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	Surname   string    `db:"surname"`
	Phone     string    `db:"phone"`
	Email     string    `db:"email"`
	TaxCode   string    `db:"tax_code"`
	Notes     string    `db:"notes"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r customerRow) toDomain() customer.Customer {
	return customer.Customer{
		ID:        r.ID,
		Name:      r.Name,
		Surname:   r.Surname,
		Phone:     r.Phone,
		Email:     r.Email,
		TaxCode:   r.TaxCode,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type customerRepository struct {
	db *sqlx.DB
}

var _ customer.Repository = (*customerRepository)(nil) // interface compliance check

func NewCustomerRepository(db *sqlx.DB) *customerRepository {
	return &customerRepository{db: db}
}

func (repo customerRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return customer.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo customerRepository) CheckPhoneUniqueness(phone string, excluded ...customer.Customer) error {
	query := `SELECT EXISTS (SELECT 1 FROM customer WHERE phone = $1)`
	args := []interface{}{phone}
	if len(excluded) > 0 {
		ids := make([]int, 0, len(excluded))
		for _, c := range excluded {
			ids = append(ids, c.ID)
		}
		q, inArgs, err := sqlx.In(`SELECT EXISTS (SELECT 1 FROM customer WHERE phone = ? AND id NOT IN (?))`, phone, ids)
		if err != nil {
			return errors.Wrap(err, "checking customer phone uniqueness")
		}
		query, args = repo.db.Rebind(q), inArgs
	}

	var exists bool
	if err := repo.db.Get(&exists, query, args...); err != nil {
		return errors.Wrap(err, "checking customer phone uniqueness")
	}
	if exists {
		return customer.ErrPhoneExists
	}
	return nil
}

func (repo customerRepository) CreateCustomer(c customer.Customer) (customer.Customer, error) {
	query := `
INSERT INTO customer (name, surname, phone, email, tax_code, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err := repo.db.Get(&c.ID, query, c.Name, c.Surname, c.Phone, c.Email, c.TaxCode, c.Notes, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return customer.Customer{}, errors.Wrap(err, "inserting customer")
	}
	return c, nil
}

func (repo customerRepository) GetCustomerByID(id int) (customer.Customer, error) {
	var row customerRow
	if err := repo.db.Get(&row, `SELECT * FROM customer WHERE id = $1`, id); err != nil {
		return customer.Customer{}, repo.trapNoRowsErr(err, "finding customer by ID")
	}
	return row.toDomain(), nil
}

func (repo customerRepository) FilterCustomers(filter customer.QueryFilter) ([]customer.Customer, int, error) {
	qb := newQueryBuilder(`SELECT * FROM customer WHERE TRUE`)
	if filter.Search != "" {
		qb.where(`(name ILIKE %[1]s OR surname ILIKE %[1]s OR phone ILIKE %[1]s OR email ILIKE %[1]s)`, "%"+filter.Search+"%")
	}
	if !filter.CreatedFrom.IsZero() {
		qb.where(`created_at >= %s`, filter.CreatedFrom.UTC())
	}
	if !filter.CreatedTo.IsZero() {
		qb.where(`created_at <= %s`, filter.CreatedTo.UTC())
	}

	var total int
	if err := repo.db.Get(&total, `SELECT COUNT(*) FROM customer WHERE TRUE`+qb.conditions(), qb.args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting customers")
	}

	suffix := qb.pageSuffix(filter.Pagination, core.Asc("surname"), core.Asc("name"))
	query, args := qb.build(suffix)

	var rows []customerRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering customers")
	}
	customers := make([]customer.Customer, 0, len(rows))
	for _, r := range rows {
		customers = append(customers, r.toDomain())
	}
	return customers, total, nil
}

func (repo customerRepository) UpdateCustomer(c customer.Customer) (customer.Customer, error) {
	query := `
UPDATE customer SET
    name       = COALESCE(NULLIF($2, ''), name),
    surname    = $3,
    phone      = COALESCE(NULLIF($4, ''), phone),
    email      = $5,
    tax_code   = $6,
    notes      = $7,
    updated_at = $8
WHERE id = $1
RETURNING *`
	var row customerRow
	err := repo.db.Get(&row, query, c.ID, c.Name, c.Surname, c.Phone, c.Email, c.TaxCode, c.Notes, c.UpdatedAt)
	if err != nil {
		return customer.Customer{}, repo.trapNoRowsErr(err, "updating customer")
	}
	return row.toDomain(), nil
}

func (repo customerRepository) DeleteCustomersByID(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM customer WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting customers")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting customers")
	}
	return nil
}

func (repo customerRepository) CountCustomers() (int, error) {
	var total int
	if err := repo.db.Get(&total, `SELECT COUNT(*) FROM customer`); err != nil {
		return 0, errors.Wrap(err, "counting customers")
	}
	return total, nil
}
