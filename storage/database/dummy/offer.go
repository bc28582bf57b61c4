package dummydb

import (
	"sort"
	"time"

	"github.com/telepoint/backoffice/core/offer"
)

type offerRepository struct {
	db *offerTable
}

var _ offer.Repository = (*offerRepository)(nil) // interface compliance check

func NewOfferRepository(db *DB) offer.Repository {
	return &offerRepository{db: db.offer}
}

func (repo *offerRepository) query() []offer.Offer {
	offers := make([]offer.Offer, 0, len(repo.db.table))
	for _, o := range repo.db.table {
		offers = append(offers, *o)
	}
	sort.Slice(offers, func(i, j int) bool { return offers[i].ID < offers[j].ID })
	return offers
}

func (repo *offerRepository) CreateOffer(o offer.Offer) (offer.Offer, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	o.ID = repo.db.seq
	repo.db.table[o.ID] = &o
	return o, nil
}

func (repo *offerRepository) GetOfferByID(id int) (offer.Offer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if o, ok := repo.db.table[id]; ok {
		return *o, nil
	}
	return offer.Offer{}, offer.ErrNotFound
}

func (repo *offerRepository) QueryAllOffers() ([]offer.Offer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *offerRepository) ActiveOffersOn(t time.Time) ([]offer.Offer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var active []offer.Offer
	for _, o := range repo.query() {
		if o.AppliesOn(t) {
			active = append(active, o)
		}
	}
	return active, nil
}

func (repo *offerRepository) SetOfferActive(id int, active bool) (offer.Offer, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	o, ok := repo.db.table[id]
	if !ok {
		return offer.Offer{}, offer.ErrNotFound
	}
	o.Active = active
	o.UpdatedAt = time.Now().UTC()
	return *o, nil
}

func (repo *offerRepository) DeleteOffersByID(ids ...int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
