package ticket

import (
	"time"

	"github.com/telepoint/backoffice/core"
)

// Ticket kinds
const (
	KindSupport = "support"
	KindProduct = "product" // product request: item a customer wants sourced
)

// Ticket statuses
const (
	StatusOpen    = "open"
	StatusWorking = "working"
	StatusClosed  = "closed"
)

var (
	Kinds    = []string{KindSupport, KindProduct}
	Statuses = []string{StatusOpen, StatusWorking, StatusClosed}
)

type (
	// Ticket is a support request or a product sourcing request.
	Ticket struct {
		ID         int       `json:"id"`
		Kind       string    `json:"kind"`
		CustomerID *int      `json:"customer_id,omitempty"`
		OperatorID int       `json:"operator_id"`
		Subject    string    `json:"subject"`
		Body       string    `json:"body"`
		Status     string    `json:"status"`
		Notes      []Note    `json:"notes,omitempty"`
		CreatedAt  time.Time `json:"created_at"` // UTC
		UpdatedAt  time.Time `json:"updated_at"` // UTC
	}

	// Note is one follow-up entry on a ticket.
	Note struct {
		ID         int       `json:"id"`
		TicketID   int       `json:"ticket_id"`
		OperatorID int       `json:"operator_id"`
		Body       string    `json:"body"`
		CreatedAt  time.Time `json:"created_at"` // UTC
	}
)

// NewTicket contains information needed to open a ticket.
type NewTicket struct {
	Kind       string `json:"kind" form:"kind" validate:"required,ticket_kind"`
	CustomerID *int   `json:"customer_id" form:"customer_id"`
	Subject    string `json:"subject" form:"subject" validate:"required"`
	Body       string `json:"body" form:"body" validate:"required"`
}

func (nt *NewTicket) Validate() error {
	nt.Kind = core.CleanString(nt.Kind, true /* lower */)
	nt.Subject = core.CleanString(nt.Subject)
	nt.Body = core.CleanString(nt.Body)
	return core.Validate.Struct(nt)
}

// NewNote contains a follow-up entry body.
type NewNote struct {
	Body string `json:"body" form:"body" validate:"required"`
}

func (nn *NewNote) Validate() error {
	nn.Body = core.CleanString(nn.Body)
	return core.Validate.Struct(nn)
}

type QueryFilter struct {
	Kind       string `query:"kind"`
	Status     string `query:"status"`
	CustomerID int    `query:"customer_id"`
	Search     string `query:"search"`

	Pagination core.Pagination
}

func (qf *QueryFilter) Clean() {
	qf.Kind = core.CleanString(qf.Kind, true)
	qf.Status = core.CleanString(qf.Status, true)
	qf.Search = core.CleanString(qf.Search)
}
