package dummydb

import (
	"sort"
	"strings"
	"time"

	"github.com/telepoint/backoffice/core/ticket"
)

type ticketRepository struct {
	db *ticketTable
}

var _ ticket.Repository = (*ticketRepository)(nil) // interface compliance check

func NewTicketRepository(db *DB) ticket.Repository {
	return &ticketRepository{db: db.ticket}
}

func (repo *ticketRepository) query() []ticket.Ticket {
	tickets := make([]ticket.Ticket, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		tickets = append(tickets, *t)
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID > tickets[j].ID })
	return tickets
}

func (repo *ticketRepository) CreateTicket(t ticket.Ticket) (ticket.Ticket, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.seq++
	t.ID = repo.db.seq
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *ticketRepository) GetTicketByID(id int) (ticket.Ticket, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return ticket.Ticket{}, ticket.ErrNotFound
}

func (repo *ticketRepository) FilterTickets(filter ticket.QueryFilter) ([]ticket.Ticket, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tickets := repo.query()

	if filter.Kind != "" {
		var filtered []ticket.Ticket
		for _, t := range tickets {
			if t.Kind == filter.Kind {
				filtered = append(filtered, t)
			}
		}
		tickets = filtered
	}
	if tickets != nil && filter.Status != "" {
		var filtered []ticket.Ticket
		for _, t := range tickets {
			if t.Status == filter.Status {
				filtered = append(filtered, t)
			}
		}
		tickets = filtered
	}
	if tickets != nil && filter.CustomerID > 0 {
		var filtered []ticket.Ticket
		for _, t := range tickets {
			if t.CustomerID != nil && *t.CustomerID == filter.CustomerID {
				filtered = append(filtered, t)
			}
		}
		tickets = filtered
	}
	if tickets != nil && filter.Search != "" {
		var filtered []ticket.Ticket
		search := strings.ToLower(filter.Search)
		for _, t := range tickets {
			if strings.Contains(strings.ToLower(t.Subject), search) ||
				strings.Contains(strings.ToLower(t.Body), search) {
				filtered = append(filtered, t)
			}
		}
		tickets = filtered
	}

	total := len(tickets)
	offset, limit := filter.Pagination.Offset(), filter.Pagination.Limit()
	if offset >= len(tickets) {
		return nil, total, nil
	}
	tickets = tickets[offset:]
	if limit > 0 && limit < len(tickets) {
		tickets = tickets[:limit]
	}
	return tickets, total, nil
}

func (repo *ticketRepository) UpdateTicketStatus(id int, status string) (ticket.Ticket, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t, ok := repo.db.table[id]
	if !ok {
		return ticket.Ticket{}, ticket.ErrNotFound
	}
	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	return *t, nil
}

func (repo *ticketRepository) AddTicketNote(n ticket.Note) (ticket.Note, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t, ok := repo.db.table[n.TicketID]
	if !ok {
		return ticket.Note{}, ticket.ErrNotFound
	}
	repo.db.noteSeq++
	n.ID = repo.db.noteSeq
	t.Notes = append(t.Notes, n)
	t.UpdatedAt = time.Now().UTC()
	return n, nil
}

func (repo *ticketRepository) CountTicketsByStatus(kind string) (map[string]int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := make(map[string]int)
	for _, t := range repo.db.table {
		if kind != "" && t.Kind != kind {
			continue
		}
		counts[t.Status]++
	}
	return counts, nil
}
