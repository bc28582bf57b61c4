package operator

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/telepoint/backoffice/core"
)

// Operator is a back-office staff principal.
type Operator struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsAdmin      bool      `json:"is_admin"`
	IsActive     bool      `json:"is_active"`
	MFAEnabled   bool      `json:"mfa_enabled"`
	MFASecret    string    `json:"-"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (o *Operator) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	o.PasswordHash = hash
	return nil
}

func (o *Operator) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(o.PasswordHash, []byte(pwd))
}

// NewOperator contains information needed to create a new Operator.
type NewOperator struct {
	Name            string `json:"name" form:"name" validate:"required"`
	Username        string `json:"username" form:"username" validate:"omitempty,min=4,alphanum_"`
	Email           string `json:"email" form:"email" validate:"omitempty,email"`
	Password        string `json:"password" form:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required,eqfield=Password"`
	IsAdmin         bool   `json:"is_admin" form:"is_admin"`
}

func (no *NewOperator) Validate(svc *Service) error {
	no.Name = core.CleanString(no.Name)
	no.Username = core.CleanString(no.Username, true /* lower */)
	no.Email = core.CleanString(no.Email, true /* lower */)

	if err := core.Validate.Struct(no); err != nil {
		return err
	}
	return svc.checkUniqueness(no.Username, no.Email)
}

// UpdateOperator defines what information may be provided to modify an existing Operator.
type UpdateOperator struct {
	Name            string `json:"name" form:"name"`
	Username        string `json:"username" form:"username" validate:"omitempty,min=4,alphanum_"`
	Email           string `json:"email" form:"email" validate:"omitempty,email"`
	IsAdmin         *bool  `json:"is_admin" form:"is_admin"`
	IsActive        *bool  `json:"is_active" form:"is_active"`
	Password        string `json:"password" form:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uo *UpdateOperator) Validate(orig Operator, svc *Service) error {
	if name := core.CleanString(uo.Name); name != "" {
		uo.Name = name
	} else {
		uo.Name = orig.Name
	}

	if uname := core.CleanString(uo.Username, true /* lower */); uname != "" {
		uo.Username = uname
	} else {
		uo.Username = orig.Username
	}

	if email := core.CleanString(uo.Email, true /* lower */); email != "" {
		uo.Email = email
	} else {
		uo.Email = orig.Email
	}

	if err := core.Validate.Struct(uo); err != nil {
		return err
	}
	return svc.checkUniqueness(uo.Username, uo.Email, orig)
}

type ResetPassword struct {
	Token           string `json:"token,omitempty" form:"token" validate:"required"`
	UID             string `json:"uid,omitempty" form:"uid" validate:"required"`
	Password        string `json:"password,omitempty" form:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" form:"password_confirm" validate:"required,eqfield=Password"`
}

func (rp ResetPassword) Validate() error { return core.Validate.Struct(rp) }

type QueryFilter struct {
	Search      string    `query:"search"`
	IsAdmin     *bool     `query:"is_admin"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.IsAdmin == nil && qf.IsActive == nil &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
