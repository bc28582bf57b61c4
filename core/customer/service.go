package customer

import (
	"errors"
	"time"

	"github.com/telepoint/backoffice/core"
)

var (
	ErrNotFound    = errors.New("customer not found")
	ErrPhoneExists = errors.New("a customer with this phone number already exists")
)

type (
	Repository interface {
		CheckPhoneUniqueness(phone string, excluded ...Customer) error
		CreateCustomer(c Customer) (Customer, error)
		GetCustomerByID(id int) (Customer, error)
		// FilterCustomers applies AND operation on available QueryFilter fields;
		// Search does a case-insensitive match on one of Name, Surname, Phone or Email.
		// It returns the page of rows plus the unpaginated total.
		FilterCustomers(filter QueryFilter) ([]Customer, int, error)
		UpdateCustomer(c Customer) (Customer, error)
		DeleteCustomersByID(ids ...int) error
		CountCustomers() (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkPhoneUniqueness(phone string, excl ...Customer) error {
	if err := svc.repo.CheckPhoneUniqueness(phone, excl...); err != nil {
		if err == ErrPhoneExists {
			return core.NewValidationError(err, core.FieldError{Field: "phone", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(nc NewCustomer) (Customer, error) {
	now := time.Now().UTC()
	c := Customer{
		Name:      nc.Name,
		Surname:   nc.Surname,
		Phone:     nc.Phone,
		Email:     nc.Email,
		TaxCode:   nc.TaxCode,
		Notes:     nc.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateCustomer(c)
}

func (svc *Service) GetByID(id int) (Customer, error) {
	return svc.repo.GetCustomerByID(id)
}

func (svc *Service) Filter(filter QueryFilter) ([]Customer, int, error) {
	filter.Clean()
	return svc.repo.FilterCustomers(filter)
}

func (svc *Service) Update(id int, uc UpdateCustomer) (Customer, error) {
	c := Customer{
		ID:        id,
		Name:      uc.Name,
		Surname:   uc.Surname,
		Phone:     uc.Phone,
		Email:     uc.Email,
		TaxCode:   uc.TaxCode,
		Notes:     uc.Notes,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateCustomer(c)
}

func (svc *Service) Delete(ids ...int) error {
	return svc.repo.DeleteCustomersByID(ids...)
}

func (svc *Service) Count() (int, error) {
	return svc.repo.CountCustomers()
}
