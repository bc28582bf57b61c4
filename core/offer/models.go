package offer

import (
	"time"

	"github.com/telepoint/backoffice/core"
)

// Offer is a discount campaign applied at checkout.
type Offer struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Percent   float64   `json:"percent"` // 0-100
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// AppliesOn reports whether the campaign discounts a sale made at t.
func (o Offer) AppliesOn(t time.Time) bool {
	if !o.Active {
		return false
	}
	if !o.StartsAt.IsZero() && t.Before(o.StartsAt) {
		return false
	}
	if !o.EndsAt.IsZero() && t.After(o.EndsAt) {
		return false
	}
	return true
}

// NewOffer contains information needed to create a discount campaign.
type NewOffer struct {
	Name     string    `json:"name" form:"name" validate:"required"`
	Percent  float64   `json:"percent" form:"percent" validate:"required,gt=0,lte=100"`
	StartsAt time.Time `json:"starts_at" form:"starts_at"`
	EndsAt   time.Time `json:"ends_at" form:"ends_at"`
}

func (no *NewOffer) Validate() error {
	no.Name = core.CleanString(no.Name)
	if err := core.Validate.Struct(no); err != nil {
		return err
	}
	if !no.StartsAt.IsZero() && !no.EndsAt.IsZero() && no.EndsAt.Before(no.StartsAt) {
		return core.NewValidationError(nil, core.FieldError{
			Field: "ends_at", Error: "campaign end cannot precede its start",
		})
	}
	return nil
}
