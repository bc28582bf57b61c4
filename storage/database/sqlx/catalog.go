package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/catalog"
)

type productRow struct {
	ID        int       `db:"id"`
	SKU       string    `db:"sku"`
	Name      string    `db:"name"`
	Category  string    `db:"category"`
	Price     float64   `db:"price"`
	Cost      float64   `db:"cost"`
	Stock     int       `db:"stock"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r productRow) toDomain() catalog.Product {
	return catalog.Product{
		ID:        r.ID,
		SKU:       r.SKU,
		Name:      r.Name,
		Category:  r.Category,
		Price:     r.Price,
		Cost:      r.Cost,
		Stock:     r.Stock,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type simCardRow struct {
	ID         int       `db:"id"`
	ICCID      string    `db:"iccid"`
	Carrier    string    `db:"carrier"`
	Number     string    `db:"number"`
	Status     string    `db:"status"`
	CustomerID null.Int  `db:"customer_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r simCardRow) toDomain() catalog.SIMCard {
	sim := catalog.SIMCard{
		ID:        r.ID,
		ICCID:     r.ICCID,
		Carrier:   r.Carrier,
		Number:    r.Number,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.CustomerID.Valid {
		id := r.CustomerID.Int
		sim.CustomerID = &id
	}
	return sim
}

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo catalogRepository) CheckSKUUniqueness(sku string, excluded ...catalog.Product) error {
	query := `SELECT EXISTS (SELECT 1 FROM product WHERE sku = $1)`
	args := []interface{}{sku}
	if len(excluded) > 0 {
		ids := make([]int, 0, len(excluded))
		for _, p := range excluded {
			ids = append(ids, p.ID)
		}
		q, inArgs, err := sqlx.In(`SELECT EXISTS (SELECT 1 FROM product WHERE sku = ? AND id NOT IN (?))`, sku, ids)
		if err != nil {
			return errors.Wrap(err, "checking SKU uniqueness")
		}
		query, args = repo.db.Rebind(q), inArgs
	}

	var exists bool
	if err := repo.db.Get(&exists, query, args...); err != nil {
		return errors.Wrap(err, "checking SKU uniqueness")
	}
	if exists {
		return catalog.ErrSKUExists
	}
	return nil
}

func (repo catalogRepository) CreateProduct(p catalog.Product) (catalog.Product, error) {
	query := `
INSERT INTO product (sku, name, category, price, cost, stock, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id`
	err := repo.db.Get(&p.ID, query, p.SKU, p.Name, p.Category, p.Price, p.Cost, p.Stock, p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return catalog.Product{}, errors.Wrap(err, "inserting product")
	}
	return p, nil
}

func (repo catalogRepository) GetProductByID(id int) (catalog.Product, error) {
	var row productRow
	if err := repo.db.Get(&row, `SELECT * FROM product WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Product{}, catalog.ErrProductNotFound
		}
		return catalog.Product{}, errors.Wrap(err, "finding product by ID")
	}
	return row.toDomain(), nil
}

func (repo catalogRepository) GetProductBySKU(sku string) (catalog.Product, error) {
	var row productRow
	if err := repo.db.Get(&row, `SELECT * FROM product WHERE sku = $1`, sku); err != nil {
		if err == sql.ErrNoRows {
			return catalog.Product{}, catalog.ErrProductNotFound
		}
		return catalog.Product{}, errors.Wrap(err, "finding product by SKU")
	}
	return row.toDomain(), nil
}

func (repo catalogRepository) FilterProducts(filter catalog.ProductFilter) ([]catalog.Product, int, error) {
	qb := newQueryBuilder(`SELECT * FROM product WHERE TRUE`)
	if filter.Search != "" {
		qb.where(`(name ILIKE %[1]s OR sku ILIKE %[1]s)`, "%"+filter.Search+"%")
	}
	if filter.Category != "" {
		qb.where(`category = %s`, filter.Category)
	}
	if filter.Active != nil {
		qb.where(`active = %s`, *filter.Active)
	}
	if filter.LowStock {
		qb.where(`stock <= %s`, core.Conf.Alerts.LowStockThreshold)
	}

	var total int
	if err := repo.db.Get(&total, `SELECT COUNT(*) FROM product WHERE TRUE`+qb.conditions(), qb.args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting products")
	}

	suffix := qb.pageSuffix(filter.Pagination, core.Asc("name"))
	query, args := qb.build(suffix)

	var rows []productRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering products")
	}
	products := make([]catalog.Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, r.toDomain())
	}
	return products, total, nil
}

func (repo catalogRepository) UpdateProduct(p catalog.Product, active *bool) (catalog.Product, error) {
	query := `
UPDATE product SET
    sku        = COALESCE(NULLIF($2, ''), sku),
    name       = COALESCE(NULLIF($3, ''), name),
    category   = COALESCE(NULLIF($4, ''), category),
    price      = $5,
    cost       = $6,
    active     = COALESCE($7, active),
    updated_at = $8
WHERE id = $1
RETURNING *`
	var row productRow
	err := repo.db.Get(&row, query, p.ID, p.SKU, p.Name, p.Category, p.Price, p.Cost, null.BoolFromPtr(active), p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return catalog.Product{}, catalog.ErrProductNotFound
		}
		return catalog.Product{}, errors.Wrap(err, "updating product")
	}
	return row.toDomain(), nil
}

func (repo catalogRepository) AdjustProductStock(id, delta int) (catalog.Product, error) {
	query := `
UPDATE product SET stock = stock + $2, updated_at = NOW()
WHERE id = $1 AND stock + $2 >= 0
RETURNING *`
	var row productRow
	if err := repo.db.Get(&row, query, id, delta); err != nil {
		if err == sql.ErrNoRows {
			// either missing or the decrement would go negative
			if _, getErr := repo.GetProductByID(id); getErr != nil {
				return catalog.Product{}, getErr
			}
			return catalog.Product{}, catalog.ErrInsufficientStock
		}
		return catalog.Product{}, errors.Wrap(err, "adjusting product stock")
	}
	return row.toDomain(), nil
}

func (repo catalogRepository) LowStockProducts(threshold int) ([]catalog.Product, error) {
	var rows []productRow
	query := `SELECT * FROM product WHERE active AND stock <= $1 ORDER BY stock, name`
	if err := repo.db.Select(&rows, query, threshold); err != nil {
		return nil, errors.Wrap(err, "querying low stock products")
	}
	products := make([]catalog.Product, 0, len(rows))
	for _, r := range rows {
		products = append(products, r.toDomain())
	}
	return products, nil
}

func (repo catalogRepository) DeleteProductsByID(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM product WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting products")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting products")
	}
	return nil
}

func (repo catalogRepository) CreateSIMCards(cards []catalog.SIMCard) ([]catalog.SIMCard, error) {
	tx, err := repo.db.Beginx()
	if err != nil {
		return nil, errors.Wrap(err, "inserting sim cards")
	}
	defer func() { _ = tx.Rollback() }()

	query := `
INSERT INTO sim_card (iccid, carrier, number, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (iccid) DO NOTHING
RETURNING id`
	created := make([]catalog.SIMCard, 0, len(cards))
	for _, sim := range cards {
		var id int
		err := tx.Get(&id, query, sim.ICCID, sim.Carrier, sim.Number, sim.Status, sim.CreatedAt, sim.UpdatedAt)
		if err == sql.ErrNoRows {
			return nil, catalog.ErrICCIDExists
		}
		if err != nil {
			return nil, errors.Wrap(err, "inserting sim cards")
		}
		sim.ID = id
		created = append(created, sim)
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "inserting sim cards")
	}
	return created, nil
}

func (repo catalogRepository) GetSIMCardByID(id int) (catalog.SIMCard, error) {
	var row simCardRow
	if err := repo.db.Get(&row, `SELECT * FROM sim_card WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return catalog.SIMCard{}, catalog.ErrSIMNotFound
		}
		return catalog.SIMCard{}, errors.Wrap(err, "finding sim card by ID")
	}
	return row.toDomain(), nil
}

func (repo catalogRepository) FilterSIMCards(filter catalog.SIMFilter) ([]catalog.SIMCard, int, error) {
	qb := newQueryBuilder(`SELECT * FROM sim_card WHERE TRUE`)
	if filter.Search != "" {
		qb.where(`(iccid ILIKE %[1]s OR number ILIKE %[1]s)`, "%"+filter.Search+"%")
	}
	if filter.Carrier != "" {
		qb.where(`carrier ILIKE %s`, filter.Carrier)
	}
	if filter.Status != "" {
		qb.where(`status = %s`, filter.Status)
	}

	var total int
	if err := repo.db.Get(&total, `SELECT COUNT(*) FROM sim_card WHERE TRUE`+qb.conditions(), qb.args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting sim cards")
	}

	suffix := qb.pageSuffix(filter.Pagination, core.Desc("created_at"), core.Desc("id"))
	query, args := qb.build(suffix)

	var rows []simCardRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering sim cards")
	}
	cards := make([]catalog.SIMCard, 0, len(rows))
	for _, r := range rows {
		cards = append(cards, r.toDomain())
	}
	return cards, total, nil
}

func (repo catalogRepository) UpdateSIMCardStatus(id int, status string, customerID *int) (catalog.SIMCard, error) {
	query := `
UPDATE sim_card SET status = $2, customer_id = $3, updated_at = NOW()
WHERE id = $1
RETURNING *`
	var row simCardRow
	if err := repo.db.Get(&row, query, id, status, null.IntFromPtr(customerID)); err != nil {
		if err == sql.ErrNoRows {
			return catalog.SIMCard{}, catalog.ErrSIMNotFound
		}
		return catalog.SIMCard{}, errors.Wrap(err, "updating sim card status")
	}
	return row.toDomain(), nil
}

func (repo catalogRepository) CountSIMCardsByStatus() (map[string]int, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := repo.db.Select(&rows, `SELECT status, COUNT(*) AS count FROM sim_card GROUP BY status`); err != nil {
		return nil, errors.Wrap(err, "counting sim cards by status")
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
