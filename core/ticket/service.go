package ticket

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/telepoint/backoffice/core"
)

var (
	ErrNotFound          = errors.New("ticket not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// next maps each status to the statuses it may move to. Closed is final.
var next = map[string][]string{
	StatusOpen:    {StatusWorking, StatusClosed},
	StatusWorking: {StatusClosed},
	StatusClosed:  {},
}

type (
	Repository interface {
		CreateTicket(t Ticket) (Ticket, error)
		GetTicketByID(id int) (Ticket, error)
		// FilterTickets returns the page of rows plus the unpaginated total.
		FilterTickets(filter QueryFilter) ([]Ticket, int, error)
		UpdateTicketStatus(id int, status string) (Ticket, error)
		AddTicketNote(n Note) (Note, error)
		CountTicketsByStatus(kind string) (map[string]int, error)
	}

	// Notifier is fed every ticket event so operators see a badge update.
	Notifier interface {
		Broadcast(title, message string) error
	}

	Service struct {
		repo     Repository
		notifier Notifier
		mailSvc  core.EmailService
	}
)

func NewService(repo Repository, notifier Notifier, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, notifier: notifier, mailSvc: mailSvc}
}

// Open records a new ticket, broadcasts it and, for product requests,
// mails the purchasing desk.
func (svc *Service) Open(operatorID int, nt NewTicket) (Ticket, error) {
	if err := nt.Validate(); err != nil {
		return Ticket{}, err
	}

	now := time.Now().UTC()
	t := Ticket{
		Kind:       nt.Kind,
		CustomerID: nt.CustomerID,
		OperatorID: operatorID,
		Subject:    nt.Subject,
		Body:       nt.Body,
		Status:     StatusOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	t, err := svc.repo.CreateTicket(t)
	if err != nil {
		return Ticket{}, err
	}

	if svc.notifier != nil {
		title := "Nuova richiesta di assistenza"
		if t.Kind == KindProduct {
			title = "Nuova richiesta prodotto"
		}
		_ = svc.notifier.Broadcast(title, t.Subject)
	}
	if t.Kind == KindProduct && svc.mailSvc != nil {
		svc.mailPurchasing(t)
	}
	return t, nil
}

func (svc *Service) GetByID(id int) (Ticket, error) {
	return svc.repo.GetTicketByID(id)
}

func (svc *Service) Filter(filter QueryFilter) ([]Ticket, int, error) {
	filter.Clean()
	return svc.repo.FilterTickets(filter)
}

// Transition moves a ticket along open -> working -> closed.
func (svc *Service) Transition(id int, status string) (Ticket, error) {
	status = core.CleanString(status, true /* lower */)
	t, err := svc.repo.GetTicketByID(id)
	if err != nil {
		return Ticket{}, err
	}
	allowed := false
	for _, s := range next[t.Status] {
		if s == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return Ticket{}, core.NewValidationError(ErrInvalidTransition, core.FieldError{
			Field: "status", Error: fmt.Sprintf("%s -> %s", t.Status, status),
		})
	}
	return svc.repo.UpdateTicketStatus(id, status)
}

// AddNote appends a follow-up entry to the ticket.
func (svc *Service) AddNote(ticketID, operatorID int, nn NewNote) (Note, error) {
	if err := nn.Validate(); err != nil {
		return Note{}, err
	}
	if _, err := svc.repo.GetTicketByID(ticketID); err != nil {
		return Note{}, err
	}
	n := Note{
		TicketID:   ticketID,
		OperatorID: operatorID,
		Body:       nn.Body,
		CreatedAt:  time.Now().UTC(),
	}
	return svc.repo.AddTicketNote(n)
}

func (svc *Service) CountsByStatus(kind string) (map[string]int, error) {
	return svc.repo.CountTicketsByStatus(kind)
}

func (svc *Service) mailPurchasing(t Ticket) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{core.Conf.PurchasingEmail},
		Subject:      fmt.Sprintf("%s - Richiesta prodotto: %s", core.Conf.AppName, t.Subject),
		TemplateName: "product-request",
		TemplateData: struct{ Ticket Ticket }{t},
	})
}
