package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/telepoint/backoffice/core/offer"
)

type offerRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	Percent   float64   `db:"percent"`
	StartsAt  time.Time `db:"starts_at"`
	EndsAt    time.Time `db:"ends_at"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r offerRow) toDomain() offer.Offer {
	return offer.Offer{
		ID:        r.ID,
		Name:      r.Name,
		Percent:   r.Percent,
		StartsAt:  r.StartsAt,
		EndsAt:    r.EndsAt,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type offerRepository struct {
	db *sqlx.DB
}

var _ offer.Repository = (*offerRepository)(nil) // interface compliance check

func NewOfferRepository(db *sqlx.DB) *offerRepository {
	return &offerRepository{db: db}
}

func (repo offerRepository) CreateOffer(o offer.Offer) (offer.Offer, error) {
	query := `
INSERT INTO offer (name, percent, starts_at, ends_at, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`
	err := repo.db.Get(&o.ID, query, o.Name, o.Percent, o.StartsAt, o.EndsAt, o.Active, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return offer.Offer{}, errors.Wrap(err, "inserting offer")
	}
	return o, nil
}

func (repo offerRepository) GetOfferByID(id int) (offer.Offer, error) {
	var row offerRow
	if err := repo.db.Get(&row, `SELECT * FROM offer WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return offer.Offer{}, offer.ErrNotFound
		}
		return offer.Offer{}, errors.Wrap(err, "finding offer by ID")
	}
	return row.toDomain(), nil
}

func (repo offerRepository) QueryAllOffers() ([]offer.Offer, error) {
	var rows []offerRow
	if err := repo.db.Select(&rows, `SELECT * FROM offer ORDER BY starts_at DESC, id DESC`); err != nil {
		return nil, errors.Wrap(err, "querying offers")
	}
	offers := make([]offer.Offer, 0, len(rows))
	for _, r := range rows {
		offers = append(offers, r.toDomain())
	}
	return offers, nil
}

func (repo offerRepository) ActiveOffersOn(t time.Time) ([]offer.Offer, error) {
	var rows []offerRow
	query := `SELECT * FROM offer WHERE active AND starts_at <= $1 AND ends_at >= $1 ORDER BY percent DESC`
	if err := repo.db.Select(&rows, query, t.UTC()); err != nil {
		return nil, errors.Wrap(err, "querying active offers")
	}
	offers := make([]offer.Offer, 0, len(rows))
	for _, r := range rows {
		offers = append(offers, r.toDomain())
	}
	return offers, nil
}

func (repo offerRepository) SetOfferActive(id int, active bool) (offer.Offer, error) {
	var row offerRow
	query := `UPDATE offer SET active = $2, updated_at = NOW() WHERE id = $1 RETURNING *`
	if err := repo.db.Get(&row, query, id, active); err != nil {
		if err == sql.ErrNoRows {
			return offer.Offer{}, offer.ErrNotFound
		}
		return offer.Offer{}, errors.Wrap(err, "toggling offer")
	}
	return row.toDomain(), nil
}

func (repo offerRepository) DeleteOffersByID(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM offer WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting offers")
	}
	if _, err = repo.db.Exec(repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting offers")
	}
	return nil
}
