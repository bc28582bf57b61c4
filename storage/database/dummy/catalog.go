package dummydb

import (
	"sort"
	"strings"
	"time"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/catalog"
)

type catalogRepository struct {
	products *productTable
	simCards *simCardTable
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{products: db.product, simCards: db.simCard}
}

func (repo *catalogRepository) queryProducts() []catalog.Product {
	products := make([]catalog.Product, 0, len(repo.products.table))
	for _, p := range repo.products.table {
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products
}

func (repo *catalogRepository) querySIMs() []catalog.SIMCard {
	cards := make([]catalog.SIMCard, 0, len(repo.simCards.table))
	for _, sim := range repo.simCards.table {
		cards = append(cards, *sim)
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards
}

func (repo *catalogRepository) CheckSKUUniqueness(sku string, excluded ...catalog.Product) error {
	repo.products.RLock()
	defer repo.products.RUnlock()

	for _, p := range repo.queryProducts() {
		if p.SKU != sku {
			continue
		}
		skip := false
		for _, excl := range excluded {
			if excl.ID == p.ID {
				skip = true
				break
			}
		}
		if !skip {
			return catalog.ErrSKUExists
		}
	}
	return nil
}

func (repo *catalogRepository) CreateProduct(p catalog.Product) (catalog.Product, error) {
	repo.products.Lock()
	defer repo.products.Unlock()

	repo.products.seq++
	p.ID = repo.products.seq
	repo.products.table[p.ID] = &p
	return p, nil
}

func (repo *catalogRepository) GetProductByID(id int) (catalog.Product, error) {
	repo.products.RLock()
	defer repo.products.RUnlock()

	if p, ok := repo.products.table[id]; ok {
		return *p, nil
	}
	return catalog.Product{}, catalog.ErrProductNotFound
}

func (repo *catalogRepository) GetProductBySKU(sku string) (catalog.Product, error) {
	repo.products.RLock()
	defer repo.products.RUnlock()

	for _, p := range repo.queryProducts() {
		if p.SKU == sku {
			return p, nil
		}
	}
	return catalog.Product{}, catalog.ErrProductNotFound
}

func (repo *catalogRepository) FilterProducts(filter catalog.ProductFilter) ([]catalog.Product, int, error) {
	repo.products.RLock()
	defer repo.products.RUnlock()

	products := repo.queryProducts()

	if filter.Search != "" {
		var filtered []catalog.Product
		search := strings.ToLower(filter.Search)
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Name), search) ||
				strings.Contains(strings.ToLower(p.SKU), search) {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	if products != nil && filter.Category != "" {
		var filtered []catalog.Product
		for _, p := range products {
			if p.Category == filter.Category {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	if products != nil && filter.Active != nil {
		var filtered []catalog.Product
		for _, p := range products {
			if p.Active == *filter.Active {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	if products != nil && filter.LowStock {
		var filtered []catalog.Product
		for _, p := range products {
			if p.Stock <= core.Conf.Alerts.LowStockThreshold {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	total := len(products)
	return paginateProducts(products, filter.Pagination.Offset(), filter.Pagination.Limit()), total, nil
}

func (repo *catalogRepository) UpdateProduct(p catalog.Product, active *bool) (catalog.Product, error) {
	repo.products.Lock()
	defer repo.products.Unlock()

	orig, ok := repo.products.table[p.ID]
	if !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	if p.SKU != "" {
		orig.SKU = p.SKU
	}
	if p.Name != "" {
		orig.Name = p.Name
	}
	if p.Category != "" {
		orig.Category = p.Category
	}
	orig.Price = p.Price
	orig.Cost = p.Cost
	if active != nil {
		orig.Active = *active
	}
	orig.UpdatedAt = p.UpdatedAt

	repo.products.table[p.ID] = orig
	return *orig, nil
}

func (repo *catalogRepository) AdjustProductStock(id, delta int) (catalog.Product, error) {
	repo.products.Lock()
	defer repo.products.Unlock()

	p, ok := repo.products.table[id]
	if !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return catalog.Product{}, catalog.ErrInsufficientStock
	}
	p.Stock += delta
	p.UpdatedAt = time.Now().UTC()
	return *p, nil
}

func (repo *catalogRepository) LowStockProducts(threshold int) ([]catalog.Product, error) {
	repo.products.RLock()
	defer repo.products.RUnlock()

	var low []catalog.Product
	for _, p := range repo.queryProducts() {
		if p.Active && p.Stock <= threshold {
			low = append(low, p)
		}
	}
	sort.Slice(low, func(i, j int) bool { return low[i].Stock < low[j].Stock })
	return low, nil
}

func (repo *catalogRepository) DeleteProductsByID(ids ...int) error {
	repo.products.Lock()
	defer repo.products.Unlock()
	for _, id := range ids {
		delete(repo.products.table, id)
	}
	return nil
}

func (repo *catalogRepository) CreateSIMCards(cards []catalog.SIMCard) ([]catalog.SIMCard, error) {
	repo.simCards.Lock()
	defer repo.simCards.Unlock()

	for _, sim := range repo.simCards.table {
		for _, nc := range cards {
			if sim.ICCID == nc.ICCID {
				return nil, catalog.ErrICCIDExists
			}
		}
	}

	created := make([]catalog.SIMCard, 0, len(cards))
	for _, sim := range cards {
		repo.simCards.seq++
		sim.ID = repo.simCards.seq
		row := sim
		repo.simCards.table[sim.ID] = &row
		created = append(created, sim)
	}
	return created, nil
}

func (repo *catalogRepository) GetSIMCardByID(id int) (catalog.SIMCard, error) {
	repo.simCards.RLock()
	defer repo.simCards.RUnlock()

	if sim, ok := repo.simCards.table[id]; ok {
		return *sim, nil
	}
	return catalog.SIMCard{}, catalog.ErrSIMNotFound
}

func (repo *catalogRepository) FilterSIMCards(filter catalog.SIMFilter) ([]catalog.SIMCard, int, error) {
	repo.simCards.RLock()
	defer repo.simCards.RUnlock()

	cards := repo.querySIMs()

	if filter.Search != "" {
		var filtered []catalog.SIMCard
		search := strings.ToLower(filter.Search)
		for _, sim := range cards {
			if strings.Contains(strings.ToLower(sim.ICCID), search) ||
				strings.Contains(strings.ToLower(sim.Number), search) {
				filtered = append(filtered, sim)
			}
		}
		cards = filtered
	}
	if cards != nil && filter.Carrier != "" {
		var filtered []catalog.SIMCard
		for _, sim := range cards {
			if strings.EqualFold(sim.Carrier, filter.Carrier) {
				filtered = append(filtered, sim)
			}
		}
		cards = filtered
	}
	if cards != nil && filter.Status != "" {
		var filtered []catalog.SIMCard
		for _, sim := range cards {
			if sim.Status == filter.Status {
				filtered = append(filtered, sim)
			}
		}
		cards = filtered
	}

	total := len(cards)
	return paginateSIMs(cards, filter.Pagination.Offset(), filter.Pagination.Limit()), total, nil
}

func (repo *catalogRepository) UpdateSIMCardStatus(id int, status string, customerID *int) (catalog.SIMCard, error) {
	repo.simCards.Lock()
	defer repo.simCards.Unlock()

	sim, ok := repo.simCards.table[id]
	if !ok {
		return catalog.SIMCard{}, catalog.ErrSIMNotFound
	}
	sim.Status = status
	sim.CustomerID = customerID
	sim.UpdatedAt = time.Now().UTC()
	return *sim, nil
}

func (repo *catalogRepository) CountSIMCardsByStatus() (map[string]int, error) {
	repo.simCards.RLock()
	defer repo.simCards.RUnlock()

	counts := make(map[string]int)
	for _, sim := range repo.simCards.table {
		counts[sim.Status]++
	}
	return counts, nil
}

func paginateProducts(rows []catalog.Product, offset, limit int) []catalog.Product {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func paginateSIMs(rows []catalog.SIMCard, offset, limit int) []catalog.SIMCard {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
