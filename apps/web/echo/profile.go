package echoweb

import (
	"github.com/labstack/echo/v4"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/operator"
)

func (s *server) profilePage(ctx echo.Context) error {
	op, err := contextOperator(ctx)
	if err != nil {
		return err
	}
	return s.render(ctx, "profile", "Profilo", echo.Map{"Profile": op})
}

// profileAction lets an operator edit their own name, username and email.
// Password and MFA changes live on the security page.
func (s *server) profileAction(ctx echo.Context) error {
	if ctx.FormValue("action") != "update" {
		return s.unknownAction(ctx, "/profile")
	}
	op, err := contextOperator(ctx)
	if err != nil {
		return err
	}

	uo := operator.UpdateOperator{
		Name:     ctx.FormValue("name"),
		Username: ctx.FormValue("username"),
		Email:    ctx.FormValue("email"),
	}
	if err := uo.Validate(op, s.opts.OperatorSvc); err != nil {
		return s.redirectWithFeedback(ctx, "/profile", core.FeedbackFromError(err))
	}
	if _, err := s.opts.OperatorSvc.Update(op.ID, uo); err != nil {
		return err
	}
	return s.redirectWithFeedback(ctx, "/profile", core.OKFeedback("Profilo aggiornato."))
}
