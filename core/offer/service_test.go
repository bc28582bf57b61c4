package offer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/offer"
	dummydb "github.com/telepoint/backoffice/storage/database/dummy"
)

func setup(t *testing.T) *offer.Service {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)
	return offer.NewService(dummydb.NewOfferRepository(db))
}

func TestNewOffer_Validate(t *testing.T) {
	no := offer.NewOffer{Name: "Promo", Percent: 10}
	require.NoError(t, no.Validate())

	no = offer.NewOffer{Name: "Promo", Percent: 101}
	require.Error(t, no.Validate())
	no = offer.NewOffer{Name: "Promo", Percent: 0}
	require.Error(t, no.Validate())

	no = offer.NewOffer{
		Name: "Promo", Percent: 10,
		StartsAt: time.Now(), EndsAt: time.Now().Add(-time.Hour),
	}
	var vErr *core.ValidationError
	require.ErrorAs(t, no.Validate(), &vErr)
}

func TestService_ActiveOn(t *testing.T) {
	svc := setup(t)
	now := time.Now().UTC()

	_, err := svc.Create(offer.NewOffer{Name: "Sempre", Percent: 5})
	require.NoError(t, err)
	_, err = svc.Create(offer.NewOffer{
		Name: "Scaduta", Percent: 10,
		StartsAt: now.Add(-48 * time.Hour), EndsAt: now.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	_, err = svc.Create(offer.NewOffer{
		Name: "Futura", Percent: 15, StartsAt: now.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	active, err := svc.ActiveOn(now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Sempre", active[0].Name)
}

func TestService_Toggle(t *testing.T) {
	svc := setup(t)
	o, err := svc.Create(offer.NewOffer{Name: "Promo", Percent: 10})
	require.NoError(t, err)
	require.True(t, o.Active)

	o, err = svc.Toggle(o.ID)
	require.NoError(t, err)
	assert.False(t, o.Active)

	// a toggled-off campaign never applies
	assert.False(t, o.AppliesOn(time.Now().UTC()))

	o, err = svc.Toggle(o.ID)
	require.NoError(t, err)
	assert.True(t, o.Active)

	_, err = svc.Toggle(999)
	assert.Equal(t, offer.ErrNotFound, err)
}
