package catalog

import (
	"time"

	"github.com/telepoint/backoffice/core"
)

// Product categories
const (
	CategoryPhone     = "phone"
	CategoryAccessory = "accessory"
	CategoryRecharge  = "recharge"
	CategoryOther     = "other"
)

var Categories = []string{CategoryPhone, CategoryAccessory, CategoryRecharge, CategoryOther}

// SIM card statuses
const (
	SIMAvailable = "available"
	SIMAssigned  = "assigned"
	SIMSold      = "sold"
)

type (
	// Product is a sellable catalog item with tracked stock.
	Product struct {
		ID        int       `json:"id"`
		SKU       string    `json:"sku"`
		Name      string    `json:"name"`
		Category  string    `json:"category"`
		Price     float64   `json:"price"` // VAT-inclusive unit price
		Cost      float64   `json:"cost"`
		Stock     int       `json:"stock"`
		Active    bool      `json:"active"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	// SIMCard tracks one physical SIM through its lifecycle.
	SIMCard struct {
		ID         int       `json:"id"`
		ICCID      string    `json:"iccid"`
		Carrier    string    `json:"carrier"`
		Number     string    `json:"number"`
		Status     string    `json:"status"`
		CustomerID *int      `json:"customer_id,omitempty"`
		CreatedAt  time.Time `json:"created_at"` // UTC
		UpdatedAt  time.Time `json:"updated_at"` // UTC
	}
)

// NewProduct contains information needed to add a catalog item.
type NewProduct struct {
	SKU      string  `json:"sku" form:"sku" validate:"required,alphanum_"`
	Name     string  `json:"name" form:"name" validate:"required"`
	Category string  `json:"category" form:"category" validate:"required,category"`
	Price    float64 `json:"price" form:"price" validate:"gte=0"`
	Cost     float64 `json:"cost" form:"cost" validate:"gte=0"`
	Stock    int     `json:"stock" form:"stock" validate:"gte=0"`
}

func (np *NewProduct) Validate(svc *Service) error {
	np.SKU = core.CleanString(np.SKU, true /* lower */)
	np.Name = core.CleanString(np.Name)
	np.Category = core.CleanString(np.Category, true)

	if err := core.Validate.Struct(np); err != nil {
		return err
	}
	return svc.checkSKUUniqueness(np.SKU)
}

// UpdateProduct defines what may be modified on an existing Product.
type UpdateProduct struct {
	SKU      string   `json:"sku" form:"sku" validate:"omitempty,alphanum_"`
	Name     string   `json:"name" form:"name"`
	Category string   `json:"category" form:"category" validate:"omitempty,category"`
	Price    *float64 `json:"price" form:"price" validate:"omitempty,gte=0"`
	Cost     *float64 `json:"cost" form:"cost" validate:"omitempty,gte=0"`
	Active   *bool    `json:"active" form:"active"`
}

func (up *UpdateProduct) Validate(orig Product, svc *Service) error {
	if sku := core.CleanString(up.SKU, true); sku != "" {
		up.SKU = sku
	} else {
		up.SKU = orig.SKU
	}
	if name := core.CleanString(up.Name); name != "" {
		up.Name = name
	} else {
		up.Name = orig.Name
	}
	if cat := core.CleanString(up.Category, true); cat != "" {
		up.Category = cat
	} else {
		up.Category = orig.Category
	}

	if err := core.Validate.Struct(up); err != nil {
		return err
	}
	if up.SKU != orig.SKU {
		return svc.checkSKUUniqueness(up.SKU)
	}
	return nil
}

// NewSIMBatch loads a run of SIM cards from one carrier.
type NewSIMBatch struct {
	Carrier string   `json:"carrier" form:"carrier" validate:"required"`
	ICCIDs  []string `json:"iccids" form:"iccids" validate:"required,min=1,dive,required,min=18,max=22,numeric"`
}

func (nb *NewSIMBatch) Validate() error {
	nb.Carrier = core.CleanString(nb.Carrier)
	for i := range nb.ICCIDs {
		nb.ICCIDs[i] = core.CleanString(nb.ICCIDs[i])
	}
	return core.Validate.Struct(nb)
}

type (
	ProductFilter struct {
		Search   string `query:"search"`
		Category string `query:"category"`
		Active   *bool  `query:"active"`
		LowStock bool   `query:"low_stock"`

		Pagination core.Pagination
	}

	SIMFilter struct {
		Search  string `query:"search"`
		Carrier string `query:"carrier"`
		Status  string `query:"status"`

		Pagination core.Pagination
	}
)

func (pf *ProductFilter) Clean() {
	pf.Search = core.CleanString(pf.Search)
	pf.Category = core.CleanString(pf.Category, true)
}

func (sf *SIMFilter) Clean() {
	sf.Search = core.CleanString(sf.Search)
	sf.Carrier = core.CleanString(sf.Carrier)
	sf.Status = core.CleanString(sf.Status, true)
}
