package offer

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("offer not found")

type (
	Repository interface {
		CreateOffer(o Offer) (Offer, error)
		GetOfferByID(id int) (Offer, error)
		QueryAllOffers() ([]Offer, error)
		// ActiveOffersOn returns campaigns whose window covers t and that are toggled on.
		ActiveOffersOn(t time.Time) ([]Offer, error)
		SetOfferActive(id int, active bool) (Offer, error)
		DeleteOffersByID(ids ...int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(no NewOffer) (Offer, error) {
	now := time.Now().UTC()
	o := Offer{
		Name:      no.Name,
		Percent:   no.Percent,
		StartsAt:  no.StartsAt,
		EndsAt:    no.EndsAt,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateOffer(o)
}

func (svc *Service) GetByID(id int) (Offer, error) {
	return svc.repo.GetOfferByID(id)
}

func (svc *Service) QueryAll() ([]Offer, error) {
	return svc.repo.QueryAllOffers()
}

func (svc *Service) ActiveOn(t time.Time) ([]Offer, error) {
	return svc.repo.ActiveOffersOn(t)
}

// Toggle flips the campaign's active flag and returns the updated row.
func (svc *Service) Toggle(id int) (Offer, error) {
	o, err := svc.repo.GetOfferByID(id)
	if err != nil {
		return Offer{}, err
	}
	return svc.repo.SetOfferActive(id, !o.Active)
}

func (svc *Service) Delete(ids ...int) error {
	return svc.repo.DeleteOffersByID(ids...)
}
