package sale

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/catalog"
	"github.com/telepoint/backoffice/core/offer"
)

var (
	ErrNotFound  = errors.New("sale not found")
	ErrEmptySale = errors.New("sale has no sellable rows")
)

type (
	Repository interface {
		// CreateSale persists the sale with its lines, decrements product stock and
		// marks SIM cards sold, all in one transaction.
		CreateSale(s Sale) (Sale, error)
		GetSaleByID(id int) (Sale, error)
		// FilterSales returns the page of rows plus the unpaginated total.
		FilterSales(filter QueryFilter) ([]Sale, int, error)
	}

	Service struct {
		repo       Repository
		catalogSvc *catalog.Service
		offerSvc   *offer.Service
	}
)

func NewService(repo Repository, catalogSvc *catalog.Service, offerSvc *offer.Service) *Service {
	return &Service{repo: repo, catalogSvc: catalogSvc, offerSvc: offerSvc}
}

// Checkout prices the requested rows, applies the campaign discount, computes tax
// from the configured rate and persists everything atomically.
func (svc *Service) Checkout(operatorID int, ns NewSale) (Sale, error) {
	if err := ns.Validate(); err != nil {
		return Sale{}, err
	}

	now := time.Now().UTC()
	s := Sale{
		Number:        newReceiptNumber(now),
		OperatorID:    operatorID,
		CustomerID:    ns.CustomerID,
		PaymentMethod: ns.PaymentMethod,
		CreatedAt:     now,
	}

	for _, row := range ns.Lines {
		switch {
		case row.ProductID != nil:
			p, err := svc.catalogSvc.GetProduct(*row.ProductID)
			if err != nil {
				return Sale{}, err
			}
			if p.Stock < row.Qty {
				return Sale{}, core.NewValidationError(catalog.ErrInsufficientStock, core.FieldError{
					Field: "lines", Error: fmt.Sprintf("%s: %s", p.Name, catalog.ErrInsufficientStock),
				})
			}
			s.Lines = append(s.Lines, SaleLine{
				ProductID:   row.ProductID,
				Description: p.Name,
				Qty:         row.Qty,
				UnitPrice:   p.Price,
				Total:       core.Round2(p.Price * float64(row.Qty)),
			})
		case row.SIMCardID != nil:
			sim, err := svc.catalogSvc.GetSIM(*row.SIMCardID)
			if err != nil {
				return Sale{}, err
			}
			if sim.Status == catalog.SIMSold {
				return Sale{}, core.NewValidationError(catalog.ErrSIMNotAvailable, core.FieldError{
					Field: "lines", Error: fmt.Sprintf("SIM %s: %s", sim.ICCID, catalog.ErrSIMNotAvailable),
				})
			}
			s.Lines = append(s.Lines, SaleLine{
				SIMCardID:   row.SIMCardID,
				Description: fmt.Sprintf("SIM %s %s", sim.Carrier, sim.ICCID),
				Qty:         1,
			})
		}
	}
	if len(s.Lines) == 0 {
		return Sale{}, ErrEmptySale
	}

	for _, line := range s.Lines {
		s.Subtotal += line.Total
	}
	s.Subtotal = core.Round2(s.Subtotal)

	if ns.OfferID != nil {
		o, err := svc.offerSvc.GetByID(*ns.OfferID)
		if err != nil {
			return Sale{}, err
		}
		if o.AppliesOn(now) {
			s.OfferID = ns.OfferID
			s.Discount = core.Round2(s.Subtotal * o.Percent / 100)
		}
	}

	// prices are VAT-inclusive; the receipt breaks the tax share out of the net total
	taxRate := core.Conf.TaxRate
	net := s.Subtotal - s.Discount
	s.Tax = core.Round2(net * taxRate / (1 + taxRate))
	s.Total = core.Round2(net)

	return svc.repo.CreateSale(s)
}

func (svc *Service) GetByID(id int) (Sale, error) {
	return svc.repo.GetSaleByID(id)
}

func (svc *Service) Filter(filter QueryFilter) ([]Sale, int, error) {
	return svc.repo.FilterSales(filter)
}

// newReceiptNumber builds a human-readable unique receipt number.
func newReceiptNumber(t time.Time) string {
	suffix := uuid.New().String()[:8]
	return fmt.Sprintf("R%s-%s", t.Format("20060102"), suffix)
}
