package customer

import (
	"time"

	"github.com/telepoint/backoffice/core"
)

// Customer is a retail client of the shop.
type Customer struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	TaxCode   string    `json:"tax_code"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (c Customer) FullName() string {
	if c.Surname == "" {
		return c.Name
	}
	return c.Name + " " + c.Surname
}

// NewCustomer contains information needed to register a new Customer.
type NewCustomer struct {
	Name    string `json:"name" form:"name" validate:"required"`
	Surname string `json:"surname" form:"surname"`
	Phone   string `json:"phone" form:"phone" validate:"required,min=6"`
	Email   string `json:"email" form:"email" validate:"omitempty,email"`
	TaxCode string `json:"tax_code" form:"tax_code" validate:"omitempty,len=16,alphanum"`
	Notes   string `json:"notes" form:"notes"`
}

func (nc *NewCustomer) Validate(svc *Service) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Surname = core.CleanString(nc.Surname)
	nc.Phone = core.CleanString(nc.Phone)
	nc.Email = core.CleanString(nc.Email, true /* lower */)
	nc.TaxCode = core.CleanString(nc.TaxCode, true)
	nc.Notes = core.CleanString(nc.Notes)

	if err := core.Validate.Struct(nc); err != nil {
		return err
	}
	return svc.checkPhoneUniqueness(nc.Phone)
}

// UpdateCustomer defines what information may be provided to modify an existing Customer.
type UpdateCustomer struct {
	Name    string `json:"name" form:"name"`
	Surname string `json:"surname" form:"surname"`
	Phone   string `json:"phone" form:"phone" validate:"omitempty,min=6"`
	Email   string `json:"email" form:"email" validate:"omitempty,email"`
	TaxCode string `json:"tax_code" form:"tax_code" validate:"omitempty,len=16,alphanum"`
	Notes   string `json:"notes" form:"notes"`
}

func (uc *UpdateCustomer) Validate(orig Customer, svc *Service) error {
	if name := core.CleanString(uc.Name); name != "" {
		uc.Name = name
	} else {
		uc.Name = orig.Name
	}
	uc.Surname = core.CleanString(uc.Surname)
	if phone := core.CleanString(uc.Phone); phone != "" {
		uc.Phone = phone
	} else {
		uc.Phone = orig.Phone
	}
	uc.Email = core.CleanString(uc.Email, true /* lower */)
	uc.TaxCode = core.CleanString(uc.TaxCode, true)
	uc.Notes = core.CleanString(uc.Notes)

	if err := core.Validate.Struct(uc); err != nil {
		return err
	}
	if uc.Phone != orig.Phone {
		return svc.checkPhoneUniqueness(uc.Phone)
	}
	return nil
}

type QueryFilter struct {
	Search      string    `query:"search"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`

	Pagination core.Pagination
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
