package catalog

import (
	"errors"
	"time"

	"github.com/telepoint/backoffice/core"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrSIMNotFound       = errors.New("sim card not found")
	ErrSKUExists         = errors.New("a product with this SKU already exists")
	ErrICCIDExists       = errors.New("a sim card with this ICCID is already loaded")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrSIMNotAvailable   = errors.New("sim card is not available")
)

type (
	Repository interface {
		CheckSKUUniqueness(sku string, excluded ...Product) error
		CreateProduct(p Product) (Product, error)
		GetProductByID(id int) (Product, error)
		GetProductBySKU(sku string) (Product, error)
		// FilterProducts returns the page of rows plus the unpaginated total.
		FilterProducts(filter ProductFilter) ([]Product, int, error)
		UpdateProduct(p Product, active *bool) (Product, error)
		// AdjustProductStock adds delta to the product stock, failing when the
		// result would go negative.
		AdjustProductStock(id, delta int) (Product, error)
		LowStockProducts(threshold int) ([]Product, error)
		DeleteProductsByID(ids ...int) error

		CreateSIMCards(cards []SIMCard) ([]SIMCard, error)
		GetSIMCardByID(id int) (SIMCard, error)
		FilterSIMCards(filter SIMFilter) ([]SIMCard, int, error)
		UpdateSIMCardStatus(id int, status string, customerID *int) (SIMCard, error)
		CountSIMCardsByStatus() (map[string]int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkSKUUniqueness(sku string, excl ...Product) error {
	if err := svc.repo.CheckSKUUniqueness(sku, excl...); err != nil {
		if err == ErrSKUExists {
			return core.NewValidationError(err, core.FieldError{Field: "sku", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) CreateProduct(np NewProduct) (Product, error) {
	now := time.Now().UTC()
	p := Product{
		SKU:       np.SKU,
		Name:      np.Name,
		Category:  np.Category,
		Price:     np.Price,
		Cost:      np.Cost,
		Stock:     np.Stock,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateProduct(p)
}

func (svc *Service) GetProduct(id int) (Product, error) {
	return svc.repo.GetProductByID(id)
}

func (svc *Service) FilterProducts(filter ProductFilter) ([]Product, int, error) {
	filter.Clean()
	return svc.repo.FilterProducts(filter)
}

func (svc *Service) UpdateProduct(id int, up UpdateProduct) (Product, error) {
	p := Product{
		ID:        id,
		SKU:       up.SKU,
		Name:      up.Name,
		Category:  up.Category,
		UpdatedAt: time.Now().UTC(),
	}
	if up.Price != nil {
		p.Price = *up.Price
	}
	if up.Cost != nil {
		p.Cost = *up.Cost
	}
	return svc.repo.UpdateProduct(p, up.Active)
}

func (svc *Service) AdjustStock(id, delta int) (Product, error) {
	return svc.repo.AdjustProductStock(id, delta)
}

func (svc *Service) LowStock(threshold int) ([]Product, error) {
	return svc.repo.LowStockProducts(threshold)
}

func (svc *Service) DeleteProducts(ids ...int) error {
	return svc.repo.DeleteProductsByID(ids...)
}

// LoadSIMBatch registers a run of SIM cards as available stock.
func (svc *Service) LoadSIMBatch(nb NewSIMBatch) ([]SIMCard, error) {
	now := time.Now().UTC()
	cards := make([]SIMCard, 0, len(nb.ICCIDs))
	for _, iccid := range nb.ICCIDs {
		cards = append(cards, SIMCard{
			ICCID:     iccid,
			Carrier:   nb.Carrier,
			Status:    SIMAvailable,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return svc.repo.CreateSIMCards(cards)
}

func (svc *Service) GetSIM(id int) (SIMCard, error) {
	return svc.repo.GetSIMCardByID(id)
}

func (svc *Service) FilterSIMs(filter SIMFilter) ([]SIMCard, int, error) {
	filter.Clean()
	return svc.repo.FilterSIMCards(filter)
}

// AssignSIM reserves an available SIM for a customer.
func (svc *Service) AssignSIM(id, customerID int) (SIMCard, error) {
	sim, err := svc.repo.GetSIMCardByID(id)
	if err != nil {
		return SIMCard{}, err
	}
	if sim.Status != SIMAvailable {
		return SIMCard{}, ErrSIMNotAvailable
	}
	return svc.repo.UpdateSIMCardStatus(id, SIMAssigned, &customerID)
}

// SellSIM marks an available or assigned SIM as sold to a customer.
func (svc *Service) SellSIM(id, customerID int) (SIMCard, error) {
	sim, err := svc.repo.GetSIMCardByID(id)
	if err != nil {
		return SIMCard{}, err
	}
	if sim.Status == SIMSold {
		return SIMCard{}, ErrSIMNotAvailable
	}
	return svc.repo.UpdateSIMCardStatus(id, SIMSold, &customerID)
}

func (svc *Service) SIMCountsByStatus() (map[string]int, error) {
	return svc.repo.CountSIMCardsByStatus()
}
