package echoweb

import (
	"github.com/labstack/echo/v4"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/customer"
)

func (s *server) customersPage(ctx echo.Context) error {
	filter := customer.QueryFilter{
		Search:     ctx.QueryParam("search"),
		Pagination: bindPagination(ctx),
	}
	rows, total, err := s.opts.CustomerSvc.Filter(filter)
	if err != nil {
		return err
	}
	filter.Pagination.Total = total

	if isRefresh(ctx) {
		return respondRefresh(ctx, rows, filter.Pagination)
	}
	return s.render(ctx, "customers", "Clienti", echo.Map{
		"Customers":  rows,
		"Pagination": filter.Pagination,
		"Search":     filter.Search,
	})
}

func (s *server) customersAction(ctx echo.Context) error {
	switch ctx.FormValue("action") {
	case "create":
		return s.customerCreate(ctx)
	case "update":
		return s.customerUpdate(ctx)
	case "delete":
		return s.customerDelete(ctx)
	}
	return s.unknownAction(ctx, "/customers")
}

func (s *server) customerCreate(ctx echo.Context) error {
	var nc customer.NewCustomer
	if err := bind(ctx, &nc); err != nil {
		return err
	}
	if err := nc.Validate(s.opts.CustomerSvc); err != nil {
		return s.redirectWithFeedback(ctx, "/customers", core.FeedbackFromError(err))
	}
	if _, err := s.opts.CustomerSvc.Create(nc); err != nil {
		return err
	}
	return s.redirectWithFeedback(ctx, "/customers", core.OKFeedback("Cliente registrato."))
}

func (s *server) customerUpdate(ctx echo.Context) error {
	id, err := intFormID(ctx)
	if err != nil {
		return err
	}
	orig, err := s.opts.CustomerSvc.GetByID(id)
	if err != nil {
		if err == customer.ErrNotFound {
			return errHTTPNotFound
		}
		return err
	}

	var uc customer.UpdateCustomer
	if err := bind(ctx, &uc); err != nil {
		return err
	}
	if err := uc.Validate(orig, s.opts.CustomerSvc); err != nil {
		return s.redirectWithFeedback(ctx, "/customers", core.FeedbackFromError(err))
	}
	if _, err := s.opts.CustomerSvc.Update(id, uc); err != nil {
		return err
	}
	return s.redirectWithFeedback(ctx, "/customers", core.OKFeedback("Cliente aggiornato."))
}

func (s *server) customerDelete(ctx echo.Context) error {
	ids := intsForm(ctx, "ids")
	if id := optionalIntForm(ctx, "id"); id != nil {
		ids = append(ids, *id)
	}
	if len(ids) == 0 {
		return s.redirectWithFeedback(ctx, "/customers", core.FailFeedback("Nessun cliente selezionato."))
	}
	if err := s.opts.CustomerSvc.Delete(ids...); err != nil {
		return err
	}
	return s.redirectWithFeedback(ctx, "/customers", core.OKFeedback("Cliente eliminato."))
}

func intFormID(ctx echo.Context) (int, error) {
	if id := optionalIntForm(ctx, "id"); id != nil {
		return *id, nil
	}
	return 0, errHTTPNotFound
}
