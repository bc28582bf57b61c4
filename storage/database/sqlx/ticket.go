package sqlxrepos

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/ticket"
)

type ticketRow struct {
	ID         int       `db:"id"`
	Kind       string    `db:"kind"`
	CustomerID null.Int  `db:"customer_id"`
	OperatorID int       `db:"operator_id"`
	Subject    string    `db:"subject"`
	Body       string    `db:"body"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r ticketRow) toDomain() ticket.Ticket {
	t := ticket.Ticket{
		ID:         r.ID,
		Kind:       r.Kind,
		OperatorID: r.OperatorID,
		Subject:    r.Subject,
		Body:       r.Body,
		Status:     r.Status,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.CustomerID.Valid {
		id := r.CustomerID.Int
		t.CustomerID = &id
	}
	return t
}

type ticketNoteRow struct {
	ID         int       `db:"id"`
	TicketID   int       `db:"ticket_id"`
	OperatorID int       `db:"operator_id"`
	Body       string    `db:"body"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r ticketNoteRow) toDomain() ticket.Note {
	return ticket.Note{
		ID:         r.ID,
		TicketID:   r.TicketID,
		OperatorID: r.OperatorID,
		Body:       r.Body,
		CreatedAt:  r.CreatedAt,
	}
}

type ticketRepository struct {
	db *sqlx.DB
}

var _ ticket.Repository = (*ticketRepository)(nil) // interface compliance check

func NewTicketRepository(db *sqlx.DB) *ticketRepository {
	return &ticketRepository{db: db}
}

func (repo ticketRepository) CreateTicket(t ticket.Ticket) (ticket.Ticket, error) {
	query := `
INSERT INTO ticket (kind, customer_id, operator_id, subject, body, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err := repo.db.Get(&t.ID, query,
		t.Kind, null.IntFromPtr(t.CustomerID), t.OperatorID, t.Subject, t.Body, t.Status, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return ticket.Ticket{}, errors.Wrap(err, "inserting ticket")
	}
	return t, nil
}

func (repo ticketRepository) GetTicketByID(id int) (ticket.Ticket, error) {
	var row ticketRow
	if err := repo.db.Get(&row, `SELECT * FROM ticket WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return ticket.Ticket{}, ticket.ErrNotFound
		}
		return ticket.Ticket{}, errors.Wrap(err, "finding ticket by ID")
	}
	t := row.toDomain()

	var noteRows []ticketNoteRow
	if err := repo.db.Select(&noteRows, `SELECT * FROM ticket_note WHERE ticket_id = $1 ORDER BY id`, id); err != nil {
		return ticket.Ticket{}, errors.Wrap(err, "querying ticket notes")
	}
	for _, nr := range noteRows {
		t.Notes = append(t.Notes, nr.toDomain())
	}
	return t, nil
}

func (repo ticketRepository) FilterTickets(filter ticket.QueryFilter) ([]ticket.Ticket, int, error) {
	qb := newQueryBuilder(`SELECT * FROM ticket WHERE TRUE`)
	if filter.Kind != "" {
		qb.where(`kind = %s`, filter.Kind)
	}
	if filter.Status != "" {
		qb.where(`status = %s`, filter.Status)
	}
	if filter.CustomerID > 0 {
		qb.where(`customer_id = %s`, filter.CustomerID)
	}
	if filter.Search != "" {
		qb.where(`(subject ILIKE %[1]s OR body ILIKE %[1]s)`, "%"+filter.Search+"%")
	}

	var total int
	if err := repo.db.Get(&total, `SELECT COUNT(*) FROM ticket WHERE TRUE`+qb.conditions(), qb.args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting tickets")
	}

	suffix := qb.pageSuffix(filter.Pagination, core.Desc("created_at"), core.Desc("id"))
	query, args := qb.build(suffix)

	var rows []ticketRow
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering tickets")
	}
	tickets := make([]ticket.Ticket, 0, len(rows))
	for _, r := range rows {
		tickets = append(tickets, r.toDomain())
	}
	return tickets, total, nil
}

func (repo ticketRepository) UpdateTicketStatus(id int, status string) (ticket.Ticket, error) {
	var row ticketRow
	query := `UPDATE ticket SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING *`
	if err := repo.db.Get(&row, query, id, status); err != nil {
		if err == sql.ErrNoRows {
			return ticket.Ticket{}, ticket.ErrNotFound
		}
		return ticket.Ticket{}, errors.Wrap(err, "updating ticket status")
	}
	return row.toDomain(), nil
}

func (repo ticketRepository) AddTicketNote(n ticket.Note) (ticket.Note, error) {
	query := `
INSERT INTO ticket_note (ticket_id, operator_id, body, created_at)
VALUES ($1, $2, $3, $4)
RETURNING id`
	err := repo.db.Get(&n.ID, query, n.TicketID, n.OperatorID, n.Body, n.CreatedAt)
	if err != nil {
		return ticket.Note{}, errors.Wrap(err, "inserting ticket note")
	}
	return n, nil
}

func (repo ticketRepository) CountTicketsByStatus(kind string) (map[string]int, error) {
	qb := newQueryBuilder(`SELECT status, COUNT(*) AS count FROM ticket WHERE TRUE`)
	if kind != "" {
		qb.where(`kind = %s`, kind)
	}
	query, args := qb.build(` GROUP BY status`)

	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "counting tickets by status")
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
