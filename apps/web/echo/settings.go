package echoweb

import (
	"github.com/labstack/echo/v4"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/operator"
)

func (s *server) settingsPage(ctx echo.Context) error {
	filter := operator.QueryFilter{Search: ctx.QueryParam("search")}
	filter.Clean()

	var (
		operators []operator.Operator
		err       error
	)
	if filter.IsEmpty() {
		operators, err = s.opts.OperatorSvc.QueryAll()
	} else {
		operators, err = s.opts.OperatorSvc.Filter(filter)
	}
	if err != nil {
		return err
	}

	return s.render(ctx, "settings", "Impostazioni", echo.Map{
		"Operators": operators,
		"Search":    filter.Search,
	})
}

func (s *server) settingsAction(ctx echo.Context) error {
	switch ctx.FormValue("action") {
	case "create":
		return s.operatorCreate(ctx)
	case "update":
		return s.operatorUpdate(ctx)
	case "delete":
		return s.operatorDelete(ctx)
	}
	return s.unknownAction(ctx, "/settings")
}

func (s *server) operatorCreate(ctx echo.Context) error {
	var no operator.NewOperator
	if err := bind(ctx, &no); err != nil {
		return err
	}
	if err := no.Validate(s.opts.OperatorSvc); err != nil {
		return s.redirectWithFeedback(ctx, "/settings", core.FeedbackFromError(err))
	}
	if _, err := s.opts.OperatorSvc.Create(no); err != nil {
		return err
	}
	return s.redirectWithFeedback(ctx, "/settings", core.OKFeedback("Operatore creato."))
}

func (s *server) operatorUpdate(ctx echo.Context) error {
	id, err := intFormID(ctx)
	if err != nil {
		return err
	}
	orig, err := s.opts.OperatorSvc.GetByID(id)
	if err != nil {
		if err == operator.ErrNotFound {
			return errHTTPNotFound
		}
		return err
	}

	var uo operator.UpdateOperator
	if err := bind(ctx, &uo); err != nil {
		return err
	}
	if err := uo.Validate(orig, s.opts.OperatorSvc); err != nil {
		return s.redirectWithFeedback(ctx, "/settings", core.FeedbackFromError(err))
	}
	if _, err := s.opts.OperatorSvc.Update(id, uo); err != nil {
		return err
	}
	return s.redirectWithFeedback(ctx, "/settings", core.OKFeedback("Operatore aggiornato."))
}

func (s *server) operatorDelete(ctx echo.Context) error {
	self, err := contextOperator(ctx)
	if err != nil {
		return err
	}
	ids := intsForm(ctx, "ids")
	if id := optionalIntForm(ctx, "id"); id != nil {
		ids = append(ids, *id)
	}
	kept := ids[:0]
	for _, id := range ids {
		if id != self.ID { // an admin cannot delete their own account
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 {
		return s.redirectWithFeedback(ctx, "/settings", core.FailFeedback("Nessun operatore selezionato."))
	}
	if err := s.opts.OperatorSvc.Delete(kept...); err != nil {
		return err
	}
	return s.redirectWithFeedback(ctx, "/settings", core.OKFeedback("Operatore eliminato."))
}
