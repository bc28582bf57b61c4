package dummydb

import (
	"sort"
	"time"

	"github.com/telepoint/backoffice/core/report"
)

type reportRepository struct {
	sales    *saleTable
	products *productTable
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *DB) report.Repository {
	return &reportRepository{sales: db.sale, products: db.product}
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

func (repo *reportRepository) SalesSummary(from, to time.Time) (report.Summary, error) {
	repo.sales.RLock()
	defer repo.sales.RUnlock()

	var s report.Summary
	for _, sl := range repo.sales.table {
		if !inWindow(sl.CreatedAt, from, to) {
			continue
		}
		s.Count++
		s.Revenue += sl.Total
		s.Discount += sl.Discount
		s.Tax += sl.Tax
	}
	return s, nil
}

func (repo *reportRepository) RevenueByDay(from, to time.Time) ([]report.DayRevenue, error) {
	repo.sales.RLock()
	defer repo.sales.RUnlock()

	byDay := make(map[time.Time]*report.DayRevenue)
	for _, sl := range repo.sales.table {
		if !inWindow(sl.CreatedAt, from, to) {
			continue
		}
		day := sl.CreatedAt.Truncate(24 * time.Hour)
		dr, ok := byDay[day]
		if !ok {
			dr = &report.DayRevenue{Day: day}
			byDay[day] = dr
		}
		dr.Count++
		dr.Revenue += sl.Total
	}

	days := make([]report.DayRevenue, 0, len(byDay))
	for _, dr := range byDay {
		days = append(days, *dr)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Day.Before(days[j].Day) })
	return days, nil
}

func (repo *reportRepository) TopProducts(from, to time.Time, limit int) ([]report.ProductSales, error) {
	repo.sales.RLock()
	defer repo.sales.RUnlock()
	repo.products.RLock()
	defer repo.products.RUnlock()

	byProduct := make(map[int]*report.ProductSales)
	for _, sl := range repo.sales.table {
		if !inWindow(sl.CreatedAt, from, to) {
			continue
		}
		for _, line := range sl.Lines {
			if line.ProductID == nil {
				continue
			}
			ps, ok := byProduct[*line.ProductID]
			if !ok {
				ps = &report.ProductSales{ProductID: *line.ProductID}
				if p, found := repo.products.table[*line.ProductID]; found {
					ps.Name = p.Name
				}
				byProduct[*line.ProductID] = ps
			}
			ps.Qty += line.Qty
			ps.Revenue += line.Total
		}
	}

	products := make([]report.ProductSales, 0, len(byProduct))
	for _, ps := range byProduct {
		products = append(products, *ps)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Qty != products[j].Qty {
			return products[i].Qty > products[j].Qty
		}
		return products[i].Revenue > products[j].Revenue
	})
	if limit > 0 && limit < len(products) {
		products = products[:limit]
	}
	return products, nil
}

func (repo *reportRepository) RevenueByPaymentMethod(from, to time.Time) (map[string]float64, error) {
	repo.sales.RLock()
	defer repo.sales.RUnlock()

	revenue := make(map[string]float64)
	for _, sl := range repo.sales.table {
		if !inWindow(sl.CreatedAt, from, to) {
			continue
		}
		revenue[sl.PaymentMethod] += sl.Total
	}
	return revenue, nil
}
