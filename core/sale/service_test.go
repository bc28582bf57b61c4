package sale_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/catalog"
	"github.com/telepoint/backoffice/core/offer"
	"github.com/telepoint/backoffice/core/sale"
	dummydb "github.com/telepoint/backoffice/storage/database/dummy"
)

func setup(t *testing.T) (*sale.Service, *catalog.Service, *offer.Service) {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)

	catSvc := catalog.NewService(dummydb.NewCatalogRepository(db))
	offerSvc := offer.NewService(dummydb.NewOfferRepository(db))
	saleSvc := sale.NewService(dummydb.NewSaleRepository(db), catSvc, offerSvc)
	return saleSvc, catSvc, offerSvc
}

func createProduct(t *testing.T, svc *catalog.Service, sku, name string, price float64, stock int) catalog.Product {
	t.Helper()
	p, err := svc.CreateProduct(catalog.NewProduct{
		SKU: sku, Name: name, Category: catalog.CategoryPhone, Price: price, Stock: stock,
	})
	require.NoError(t, err)
	return p
}

func loadSIM(t *testing.T, svc *catalog.Service, iccid string) catalog.SIMCard {
	t.Helper()
	cards, err := svc.LoadSIMBatch(catalog.NewSIMBatch{Carrier: "WindTre", ICCIDs: []string{iccid}})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	return cards[0]
}

func TestService_Checkout_math(t *testing.T) {
	saleSvc, catSvc, offerSvc := setup(t)

	phone := createProduct(t, catSvc, "ph1", "Telefono", 99.90, 5)
	cover := createProduct(t, catSvc, "cv1", "Cover", 10.00, 5)
	o, err := offerSvc.Create(offer.NewOffer{Name: "Promo", Percent: 10})
	require.NoError(t, err)

	s, err := saleSvc.Checkout(1, sale.NewSale{
		OfferID:       &o.ID,
		PaymentMethod: sale.PaymentCard,
		Lines: []sale.NewSaleLine{
			{ProductID: &phone.ID, Qty: 2},
			{ProductID: &cover.ID, Qty: 1},
		},
	})
	require.NoError(t, err)

	assert.InDelta(t, 209.80, s.Subtotal, 0.001)
	assert.InDelta(t, 20.98, s.Discount, 0.001)
	assert.InDelta(t, 188.82, s.Total, 0.001)
	// prices are VAT-inclusive: tax = net * rate / (1 + rate)
	assert.InDelta(t, 34.05, s.Tax, 0.001)
	assert.NotEmpty(t, s.Number)
	require.Len(t, s.Lines, 2)
	assert.InDelta(t, 199.80, s.Lines[0].Total, 0.001)

	// stock was decremented atomically with the sale
	p, err := catSvc.GetProduct(phone.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock)
}

func TestService_Checkout_simLine(t *testing.T) {
	saleSvc, catSvc, _ := setup(t)
	sim := loadSIM(t, catSvc, "893901234567890123")

	s, err := saleSvc.Checkout(1, sale.NewSale{
		PaymentMethod: sale.PaymentCash,
		Lines:         []sale.NewSaleLine{{SIMCardID: &sim.ID}},
	})
	require.NoError(t, err)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, 1, s.Lines[0].Qty)
	assert.Contains(t, s.Lines[0].Description, sim.ICCID)

	refreshed, err := catSvc.GetSIM(sim.ID)
	require.NoError(t, err)
	assert.Equal(t, catalog.SIMSold, refreshed.Status)

	// a sold SIM cannot be sold twice
	_, err = saleSvc.Checkout(1, sale.NewSale{
		PaymentMethod: sale.PaymentCash,
		Lines:         []sale.NewSaleLine{{SIMCardID: &sim.ID}},
	})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestService_Checkout_insufficientStock(t *testing.T) {
	saleSvc, catSvc, _ := setup(t)
	p := createProduct(t, catSvc, "ph2", "Telefono", 50, 1)

	_, err := saleSvc.Checkout(1, sale.NewSale{
		PaymentMethod: sale.PaymentCash,
		Lines:         []sale.NewSaleLine{{ProductID: &p.ID, Qty: 2}},
	})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)

	// nothing was persisted
	refreshed, err := catSvc.GetProduct(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed.Stock)
}

func TestService_Checkout_expiredOfferIgnored(t *testing.T) {
	saleSvc, catSvc, offerSvc := setup(t)
	p := createProduct(t, catSvc, "ph3", "Telefono", 100, 5)
	o, err := offerSvc.Create(offer.NewOffer{
		Name: "Scaduta", Percent: 50,
		StartsAt: time.Now().UTC().Add(-48 * time.Hour),
		EndsAt:   time.Now().UTC().Add(-24 * time.Hour),
	})
	require.NoError(t, err)

	s, err := saleSvc.Checkout(1, sale.NewSale{
		OfferID:       &o.ID,
		PaymentMethod: sale.PaymentCash,
		Lines:         []sale.NewSaleLine{{ProductID: &p.ID, Qty: 1}},
	})
	require.NoError(t, err)
	assert.Zero(t, s.Discount)
	assert.Nil(t, s.OfferID)
}

func TestService_Checkout_requiresLines(t *testing.T) {
	saleSvc, _, _ := setup(t)
	_, err := saleSvc.Checkout(1, sale.NewSale{PaymentMethod: sale.PaymentCash})
	require.Error(t, err)
}

func TestService_Checkout_defaultsQtyToOne(t *testing.T) {
	saleSvc, catSvc, _ := setup(t)
	p := createProduct(t, catSvc, "ph4", "Telefono", 80, 5)

	s, err := saleSvc.Checkout(1, sale.NewSale{
		PaymentMethod: sale.PaymentCash,
		Lines:         []sale.NewSaleLine{{ProductID: &p.ID}},
	})
	require.NoError(t, err)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, 1, s.Lines[0].Qty)
}
