package echoweb

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/ticket"
)

func (s *server) productRequestsPage(ctx echo.Context) error {
	return s.ticketListPage(ctx, ticket.KindProduct, "product_requests", "Richieste prodotto")
}

func (s *server) supportRequestsPage(ctx echo.Context) error {
	return s.ticketListPage(ctx, ticket.KindSupport, "support_requests", "Richieste di assistenza")
}

func (s *server) ticketListPage(ctx echo.Context, kind, tmpl, title string) error {
	filter := ticket.QueryFilter{
		Kind:       kind,
		Status:     ctx.QueryParam("status"),
		Search:     ctx.QueryParam("search"),
		Pagination: bindPagination(ctx),
	}
	if id := optionalIntForm(ctx, "customer_id"); id != nil {
		filter.CustomerID = *id
	}

	rows, total, err := s.opts.TicketSvc.Filter(filter)
	if err != nil {
		return err
	}
	filter.Pagination.Total = total

	if isRefresh(ctx) {
		return respondRefresh(ctx, rows, filter.Pagination)
	}

	counts, err := s.opts.TicketSvc.CountsByStatus(kind)
	if err != nil {
		return err
	}
	return s.render(ctx, tmpl, title, echo.Map{
		"Tickets":    rows,
		"Counts":     counts,
		"Statuses":   ticket.Statuses,
		"Pagination": filter.Pagination,
		"Status":     filter.Status,
		"Search":     filter.Search,
	})
}

func (s *server) productRequestsAction(ctx echo.Context) error {
	return s.ticketOpenAction(ctx, ticket.KindProduct, "/product-requests")
}

func (s *server) supportRequestsAction(ctx echo.Context) error {
	return s.ticketOpenAction(ctx, ticket.KindSupport, "/support-requests")
}

func (s *server) ticketOpenAction(ctx echo.Context, kind, target string) error {
	if ctx.FormValue("action") != "create" {
		return s.unknownAction(ctx, target)
	}
	op, err := contextOperator(ctx)
	if err != nil {
		return err
	}

	nt := ticket.NewTicket{
		Kind:       kind,
		CustomerID: optionalIntForm(ctx, "customer_id"),
		Subject:    ctx.FormValue("subject"),
		Body:       ctx.FormValue("body"),
	}
	if err := nt.Validate(); err != nil {
		return s.redirectWithFeedback(ctx, target, core.FeedbackFromError(err))
	}

	t, err := s.opts.TicketSvc.Open(op.ID, nt)
	if err != nil {
		return err
	}
	return s.redirectWithFeedback(ctx, target+"/"+strconv.Itoa(t.ID),
		core.OKFeedback("Richiesta aperta."))
}

func (s *server) productRequestPage(ctx echo.Context) error {
	return s.ticketDetailPage(ctx, ticket.KindProduct, "product_request", "Richiesta prodotto")
}

func (s *server) supportRequestPage(ctx echo.Context) error {
	return s.ticketDetailPage(ctx, ticket.KindSupport, "support_request", "Richiesta di assistenza")
}

func (s *server) ticketDetailPage(ctx echo.Context, kind, tmpl, title string) error {
	t, err := s.ticketFromPath(ctx, kind)
	if err != nil {
		return err
	}

	var cust interface{}
	if t.CustomerID != nil {
		if c, cErr := s.opts.CustomerSvc.GetByID(*t.CustomerID); cErr == nil {
			cust = c
		}
	}
	return s.render(ctx, tmpl, title+" #"+strconv.Itoa(t.ID), echo.Map{
		"Ticket":   t,
		"Customer": cust,
		"Statuses": ticket.Statuses,
	})
}

// ticketDetailAction serves both detail pages; the kind is implied by the path.
func (s *server) ticketDetailAction(ctx echo.Context) error {
	kind := ticket.KindSupport
	if strings.HasPrefix(ctx.Path(), "/product-requests") {
		kind = ticket.KindProduct
	}
	t, err := s.ticketFromPath(ctx, kind)
	if err != nil {
		return err
	}
	target := ctx.Request().URL.Path

	switch ctx.FormValue("action") {
	case "add_note":
		op, err := contextOperator(ctx)
		if err != nil {
			return err
		}
		nn := ticket.NewNote{Body: ctx.FormValue("body")}
		if err := nn.Validate(); err != nil {
			return s.redirectWithFeedback(ctx, target, core.FeedbackFromError(err))
		}
		if _, err := s.opts.TicketSvc.AddNote(t.ID, op.ID, nn); err != nil {
			return err
		}
		return s.redirectWithFeedback(ctx, target, core.OKFeedback("Nota aggiunta."))

	case "transition":
		status := ctx.FormValue("status")
		if _, err := s.opts.TicketSvc.Transition(t.ID, status); err != nil {
			if vErr, ok := err.(*core.ValidationError); ok {
				return s.redirectWithFeedback(ctx, target, core.FeedbackFromError(vErr))
			}
			return err
		}
		return s.redirectWithFeedback(ctx, target, core.OKFeedback("Stato aggiornato."))
	}
	return s.unknownAction(ctx, target)
}

func (s *server) ticketFromPath(ctx echo.Context, kind string) (ticket.Ticket, error) {
	id, err := intParam(ctx, "id")
	if err != nil {
		return ticket.Ticket{}, err
	}
	t, err := s.opts.TicketSvc.GetByID(id)
	if err != nil {
		if err == ticket.ErrNotFound {
			return ticket.Ticket{}, errHTTPNotFound
		}
		return ticket.Ticket{}, err
	}
	if t.Kind != kind {
		return ticket.Ticket{}, errHTTPNotFound
	}
	return t, nil
}
