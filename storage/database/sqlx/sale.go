package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/catalog"
	"github.com/telepoint/backoffice/core/sale"
)

type saleRow struct {
	ID            int       `db:"id"`
	Number        string    `db:"number"`
	OperatorID    int       `db:"operator_id"`
	CustomerID    null.Int  `db:"customer_id"`
	OfferID       null.Int  `db:"offer_id"`
	Subtotal      float64   `db:"subtotal"`
	Discount      float64   `db:"discount"`
	Tax           float64   `db:"tax"`
	Total         float64   `db:"total"`
	PaymentMethod string    `db:"payment_method"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r saleRow) toDomain() sale.Sale {
	s := sale.Sale{
		ID:            r.ID,
		Number:        r.Number,
		OperatorID:    r.OperatorID,
		Subtotal:      r.Subtotal,
		Discount:      r.Discount,
		Tax:           r.Tax,
		Total:         r.Total,
		PaymentMethod: r.PaymentMethod,
		CreatedAt:     r.CreatedAt,
	}
	if r.CustomerID.Valid {
		id := r.CustomerID.Int
		s.CustomerID = &id
	}
	if r.OfferID.Valid {
		id := r.OfferID.Int
		s.OfferID = &id
	}
	return s
}

type saleLineRow struct {
	ID          int      `db:"id"`
	SaleID      int      `db:"sale_id"`
	ProductID   null.Int `db:"product_id"`
	SIMCardID   null.Int `db:"sim_card_id"`
	Description string   `db:"description"`
	Qty         int      `db:"qty"`
	UnitPrice   float64  `db:"unit_price"`
	Total       float64  `db:"total"`
}

func (r saleLineRow) toDomain() sale.SaleLine {
	line := sale.SaleLine{
		ID:          r.ID,
		SaleID:      r.SaleID,
		Description: r.Description,
		Qty:         r.Qty,
		UnitPrice:   r.UnitPrice,
		Total:       r.Total,
	}
	if r.ProductID.Valid {
		id := r.ProductID.Int
		line.ProductID = &id
	}
	if r.SIMCardID.Valid {
		id := r.SIMCardID.Int
		line.SIMCardID = &id
	}
	return line
}

type saleRepository struct {
	db *sqlx.DB
}

var _ sale.Repository = (*saleRepository)(nil) // interface compliance check

func NewSaleRepository(db *sqlx.DB) *saleRepository {
	return &saleRepository{db: db}
}

// CreateSale persists the receipt, its lines, the stock decrements and the SIM
// status flips in one transaction.
func (repo saleRepository) CreateSale(s sale.Sale) (sale.Sale, error) {
	tx, err := repo.db.Beginx()
	if err != nil {
		return sale.Sale{}, errors.Wrap(err, "inserting sale")
	}
	defer func() { _ = tx.Rollback() }()

	query := `
INSERT INTO sale (number, operator_id, customer_id, offer_id, subtotal, discount, tax, total, payment_method, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id`
	err = tx.Get(&s.ID, query,
		s.Number, s.OperatorID, null.IntFromPtr(s.CustomerID), null.IntFromPtr(s.OfferID),
		s.Subtotal, s.Discount, s.Tax, s.Total, s.PaymentMethod, s.CreatedAt)
	if err != nil {
		return sale.Sale{}, errors.Wrap(err, "inserting sale")
	}

	lineQuery := `
INSERT INTO sale_line (sale_id, product_id, sim_card_id, description, qty, unit_price, total)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	for i, line := range s.Lines {
		err = tx.Get(&s.Lines[i].ID, lineQuery,
			s.ID, null.IntFromPtr(line.ProductID), null.IntFromPtr(line.SIMCardID),
			line.Description, line.Qty, line.UnitPrice, line.Total)
		if err != nil {
			return sale.Sale{}, errors.Wrap(err, "inserting sale line")
		}
		s.Lines[i].SaleID = s.ID

		switch {
		case line.ProductID != nil:
			res, err := tx.Exec(`UPDATE product SET stock = stock - $2 WHERE id = $1 AND stock >= $2`, *line.ProductID, line.Qty)
			if err != nil {
				return sale.Sale{}, errors.Wrap(err, "decrementing product stock")
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return sale.Sale{}, catalog.ErrInsufficientStock
			}
		case line.SIMCardID != nil:
			res, err := tx.Exec(
				`UPDATE sim_card SET status = $2, customer_id = COALESCE($3, customer_id), updated_at = NOW() WHERE id = $1 AND status <> $2`,
				*line.SIMCardID, catalog.SIMSold, null.IntFromPtr(s.CustomerID))
			if err != nil {
				return sale.Sale{}, errors.Wrap(err, "marking sim card sold")
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return sale.Sale{}, catalog.ErrSIMNotAvailable
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return sale.Sale{}, errors.Wrap(err, "inserting sale")
	}
	return s, nil
}

func (repo saleRepository) GetSaleByID(id int) (sale.Sale, error) {
	var row saleRow
	if err := repo.db.Get(&row, `SELECT * FROM sale WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return sale.Sale{}, sale.ErrNotFound
		}
		return sale.Sale{}, errors.Wrap(err, "finding sale by ID")
	}
	s := row.toDomain()

	var lineRows []saleLineRow
	if err := repo.db.Select(&lineRows, `SELECT * FROM sale_line WHERE sale_id = $1 ORDER BY id`, id); err != nil {
		return sale.Sale{}, errors.Wrap(err, "querying sale lines")
	}
	for _, lr := range lineRows {
		s.Lines = append(s.Lines, lr.toDomain())
	}
	return s, nil
}

func (repo saleRepository) FilterSales(filter sale.QueryFilter) ([]sale.Sale, int, error) {
	qb := newQueryBuilder(`SELECT * FROM sale WHERE TRUE`)
	if filter.OperatorID > 0 {
		qb.where(`operator_id = %s`, filter.OperatorID)
	}
	if filter.CustomerID > 0 {
		qb.where(`customer_id = %s`, filter.CustomerID)
	}
	if !filter.CreatedFrom.IsZero() {
		qb.where(`created_at >= %s`, filter.CreatedFrom.UTC())
	}
	if !filter.CreatedTo.IsZero() {
		qb.where(`created_at <= %s`, filter.CreatedTo.UTC())
	}

	var total int
	if err := repo.db.Get(&total, `SELECT COUNT(*) FROM sale WHERE TRUE`+qb.conditions(), qb.args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting sales")
	}

	suffix := qb.pageSuffix(filter.Pagination, core.Desc("created_at"), core.Desc("id"))
	query, args := qb.build(suffix)

	var rows []saleRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering sales")
	}
	sales := make([]sale.Sale, 0, len(rows))
	for _, r := range rows {
		sales = append(sales, r.toDomain())
	}
	return sales, total, nil
}
