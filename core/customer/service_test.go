package customer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/customer"
	dummydb "github.com/telepoint/backoffice/storage/database/dummy"
)

func setup(t *testing.T) *customer.Service {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)
	return customer.NewService(dummydb.NewCustomerRepository(db))
}

func create(t *testing.T, svc *customer.Service, name, phone string) customer.Customer {
	t.Helper()
	nc := customer.NewCustomer{Name: name, Phone: phone}
	require.NoError(t, nc.Validate(svc))
	c, err := svc.Create(nc)
	require.NoError(t, err)
	return c
}

func TestNewCustomer_Validate(t *testing.T) {
	svc := setup(t)
	create(t, svc, "Luigi", "3331234567")

	// phone numbers are unique
	nc := customer.NewCustomer{Name: "Altro", Phone: "3331234567"}
	err := nc.Validate(svc)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)

	// name and phone are required
	nc = customer.NewCustomer{Phone: "12345"}
	require.Error(t, nc.Validate(svc))
}

func TestService_Filter(t *testing.T) {
	svc := setup(t)
	create(t, svc, "Luigi Verdi", "3331234567")
	create(t, svc, "Anna Bianchi", "3479876543")

	rows, total, err := svc.Filter(customer.QueryFilter{Search: "bianchi"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, "Anna Bianchi", rows[0].Name)

	// search matches phone numbers too
	_, total, err = svc.Filter(customer.QueryFilter{Search: "333"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestService_UpdateAndDelete(t *testing.T) {
	svc := setup(t)
	c := create(t, svc, "Luigi", "3331234567")

	uc := customer.UpdateCustomer{Name: "Luigi Verdi", Phone: c.Phone}
	require.NoError(t, uc.Validate(c, svc))
	updated, err := svc.Update(c.ID, uc)
	require.NoError(t, err)
	assert.Equal(t, "Luigi Verdi", updated.Name)

	require.NoError(t, svc.Delete(c.ID))
	_, err = svc.GetByID(c.ID)
	assert.Equal(t, customer.ErrNotFound, err)

	n, err := svc.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}
