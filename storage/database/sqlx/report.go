package sqlxrepos

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/telepoint/backoffice/core/report"
)

type reportRepository struct {
	db *sqlx.DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *sqlx.DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo reportRepository) SalesSummary(from, to time.Time) (report.Summary, error) {
	var s report.Summary
	query := `
SELECT COUNT(*)                  AS count,
       COALESCE(SUM(total), 0)    AS revenue,
       COALESCE(SUM(discount), 0) AS discount,
       COALESCE(SUM(tax), 0)      AS tax
FROM sale
WHERE created_at >= $1 AND created_at < $2`
	row := struct {
		Count    int     `db:"count"`
		Revenue  float64 `db:"revenue"`
		Discount float64 `db:"discount"`
		Tax      float64 `db:"tax"`
	}{}
	if err := repo.db.Get(&row, query, from.UTC(), to.UTC()); err != nil {
		return s, errors.Wrap(err, "querying sales summary")
	}
	return report.Summary{Count: row.Count, Revenue: row.Revenue, Discount: row.Discount, Tax: row.Tax}, nil
}

func (repo reportRepository) RevenueByDay(from, to time.Time) ([]report.DayRevenue, error) {
	query := `
SELECT DATE_TRUNC('day', created_at) AS day,
       COUNT(*)                      AS count,
       COALESCE(SUM(total), 0)       AS revenue
FROM sale
WHERE created_at >= $1 AND created_at < $2
GROUP BY day
ORDER BY day`
	var rows []struct {
		Day     time.Time `db:"day"`
		Count   int       `db:"count"`
		Revenue float64   `db:"revenue"`
	}
	if err := repo.db.Select(&rows, query, from.UTC(), to.UTC()); err != nil {
		return nil, errors.Wrap(err, "querying revenue by day")
	}
	days := make([]report.DayRevenue, 0, len(rows))
	for _, r := range rows {
		days = append(days, report.DayRevenue{Day: r.Day, Count: r.Count, Revenue: r.Revenue})
	}
	return days, nil
}

func (repo reportRepository) TopProducts(from, to time.Time, limit int) ([]report.ProductSales, error) {
	query := `
SELECT p.id                     AS product_id,
       p.name                   AS name,
       SUM(l.qty)               AS qty,
       COALESCE(SUM(l.total), 0) AS revenue
FROM sale_line l
         JOIN sale s ON s.id = l.sale_id
         JOIN product p ON p.id = l.product_id
WHERE s.created_at >= $1 AND s.created_at < $2
GROUP BY p.id, p.name
ORDER BY qty DESC, revenue DESC
LIMIT $3`
	var rows []struct {
		ProductID int     `db:"product_id"`
		Name      string  `db:"name"`
		Qty       int     `db:"qty"`
		Revenue   float64 `db:"revenue"`
	}
	if err := repo.db.Select(&rows, query, from.UTC(), to.UTC(), limit); err != nil {
		return nil, errors.Wrap(err, "querying top products")
	}
	products := make([]report.ProductSales, 0, len(rows))
	for _, r := range rows {
		products = append(products, report.ProductSales{ProductID: r.ProductID, Name: r.Name, Qty: r.Qty, Revenue: r.Revenue})
	}
	return products, nil
}

func (repo reportRepository) RevenueByPaymentMethod(from, to time.Time) (map[string]float64, error) {
	query := `
SELECT payment_method, COALESCE(SUM(total), 0) AS revenue
FROM sale
WHERE created_at >= $1 AND created_at < $2
GROUP BY payment_method`
	var rows []struct {
		PaymentMethod string  `db:"payment_method"`
		Revenue       float64 `db:"revenue"`
	}
	if err := repo.db.Select(&rows, query, from.UTC(), to.UTC()); err != nil {
		return nil, errors.Wrap(err, "querying revenue by payment method")
	}
	revenue := make(map[string]float64, len(rows))
	for _, r := range rows {
		revenue[r.PaymentMethod] = r.Revenue
	}
	return revenue, nil
}
