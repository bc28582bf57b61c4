package sale

import (
	"time"

	"github.com/telepoint/backoffice/core"
)

// Payment methods
const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

var PaymentMethods = []string{PaymentCash, PaymentCard}

type (
	// Sale is one completed point-of-sale checkout.
	Sale struct {
		ID            int        `json:"id"`
		Number        string     `json:"number"` // receipt number
		OperatorID    int        `json:"operator_id"`
		CustomerID    *int       `json:"customer_id,omitempty"`
		OfferID       *int       `json:"offer_id,omitempty"`
		Lines         []SaleLine `json:"lines"`
		Subtotal      float64    `json:"subtotal"`
		Discount      float64    `json:"discount"`
		Tax           float64    `json:"tax"`
		Total         float64    `json:"total"`
		PaymentMethod string     `json:"payment_method"`
		CreatedAt     time.Time  `json:"created_at"` // UTC
	}

	// SaleLine is one row on the receipt.
	SaleLine struct {
		ID          int     `json:"id"`
		SaleID      int     `json:"sale_id"`
		ProductID   *int    `json:"product_id,omitempty"`
		SIMCardID   *int    `json:"sim_card_id,omitempty"`
		Description string  `json:"description"`
		Qty         int     `json:"qty"`
		UnitPrice   float64 `json:"unit_price"`
		Total       float64 `json:"total"`
	}
)

// NewSale contains the checkout form contents.
type NewSale struct {
	CustomerID    *int          `json:"customer_id" form:"customer_id"`
	OfferID       *int          `json:"offer_id" form:"offer_id"`
	PaymentMethod string        `json:"payment_method" form:"payment_method" validate:"required,payment_method"`
	Lines         []NewSaleLine `json:"lines" validate:"required,min=1,dive"`
}

// NewSaleLine is one requested checkout row: a product (with quantity) or a SIM.
type NewSaleLine struct {
	ProductID *int `json:"product_id" form:"product_id"`
	SIMCardID *int `json:"sim_card_id" form:"sim_card_id"`
	Qty       int  `json:"qty" form:"qty" validate:"gte=0"`
}

func (ns *NewSale) Validate() error {
	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	for i, line := range ns.Lines {
		if line.ProductID == nil && line.SIMCardID == nil {
			return core.NewValidationError(nil, core.FieldError{
				Field: "lines", Error: "every row needs a product or a sim card",
			})
		}
		if line.ProductID != nil && line.Qty < 1 {
			ns.Lines[i].Qty = 1
		}
	}
	return nil
}

type QueryFilter struct {
	OperatorID  int       `query:"operator_id"`
	CustomerID  int       `query:"customer_id"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`

	Pagination core.Pagination
}
