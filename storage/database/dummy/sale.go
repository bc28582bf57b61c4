package dummydb

import (
	"sort"
	"time"

	"github.com/telepoint/backoffice/core/catalog"
	"github.com/telepoint/backoffice/core/sale"
)

type saleRepository struct {
	db       *saleTable
	products *productTable
	simCards *simCardTable
}

var _ sale.Repository = (*saleRepository)(nil) // interface compliance check

func NewSaleRepository(db *DB) sale.Repository {
	return &saleRepository{db: db.sale, products: db.product, simCards: db.simCard}
}

// CreateSale mimics the real repository's transaction: it fails without side
// effects when stock or SIM status would be violated.
func (repo *saleRepository) CreateSale(s sale.Sale) (sale.Sale, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.products.Lock()
	defer repo.products.Unlock()
	repo.simCards.Lock()
	defer repo.simCards.Unlock()

	// validate everything before mutating anything
	for _, line := range s.Lines {
		switch {
		case line.ProductID != nil:
			p, ok := repo.products.table[*line.ProductID]
			if !ok {
				return sale.Sale{}, catalog.ErrProductNotFound
			}
			if p.Stock < line.Qty {
				return sale.Sale{}, catalog.ErrInsufficientStock
			}
		case line.SIMCardID != nil:
			sim, ok := repo.simCards.table[*line.SIMCardID]
			if !ok {
				return sale.Sale{}, catalog.ErrSIMNotFound
			}
			if sim.Status == catalog.SIMSold {
				return sale.Sale{}, catalog.ErrSIMNotAvailable
			}
		}
	}

	repo.db.seq++
	s.ID = repo.db.seq
	for i := range s.Lines {
		repo.db.lineSeq++
		s.Lines[i].ID = repo.db.lineSeq
		s.Lines[i].SaleID = s.ID

		line := s.Lines[i]
		switch {
		case line.ProductID != nil:
			repo.products.table[*line.ProductID].Stock -= line.Qty
		case line.SIMCardID != nil:
			sim := repo.simCards.table[*line.SIMCardID]
			sim.Status = catalog.SIMSold
			if s.CustomerID != nil {
				sim.CustomerID = s.CustomerID
			}
			sim.UpdatedAt = time.Now().UTC()
		}
	}
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *saleRepository) GetSaleByID(id int) (sale.Sale, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return sale.Sale{}, sale.ErrNotFound
}

func (repo *saleRepository) FilterSales(filter sale.QueryFilter) ([]sale.Sale, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sales := make([]sale.Sale, 0, len(repo.db.table))
	for _, s := range repo.db.table {
		sales = append(sales, *s)
	}
	// newest first
	sort.Slice(sales, func(i, j int) bool { return sales[i].ID > sales[j].ID })

	if filter.OperatorID > 0 {
		var filtered []sale.Sale
		for _, s := range sales {
			if s.OperatorID == filter.OperatorID {
				filtered = append(filtered, s)
			}
		}
		sales = filtered
	}
	if sales != nil && filter.CustomerID > 0 {
		var filtered []sale.Sale
		for _, s := range sales {
			if s.CustomerID != nil && *s.CustomerID == filter.CustomerID {
				filtered = append(filtered, s)
			}
		}
		sales = filtered
	}
	if sales != nil && !filter.CreatedFrom.IsZero() {
		var filtered []sale.Sale
		timeUTC := filter.CreatedFrom.UTC()
		for _, s := range sales {
			if !s.CreatedAt.Before(timeUTC) {
				filtered = append(filtered, s)
			}
		}
		sales = filtered
	}
	if sales != nil && !filter.CreatedTo.IsZero() {
		var filtered []sale.Sale
		timeUTC := filter.CreatedTo.UTC()
		for _, s := range sales {
			if !s.CreatedAt.After(timeUTC) {
				filtered = append(filtered, s)
			}
		}
		sales = filtered
	}

	total := len(sales)
	offset, limit := filter.Pagination.Offset(), filter.Pagination.Limit()
	if offset >= len(sales) {
		return nil, total, nil
	}
	sales = sales[offset:]
	if limit > 0 && limit < len(sales) {
		sales = sales[:limit]
	}
	return sales, total, nil
}
