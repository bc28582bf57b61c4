package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/operator"
)

func (s *server) securityPage(ctx echo.Context) error {
	op, err := contextOperator(ctx)
	if err != nil {
		return err
	}
	sess := s.sessions.Open(ctx)

	// all keys are always present: templates run with missingkey=error in DEV/TEST
	data := echo.Map{"MFAEnabled": op.MFAEnabled, "PendingSecret": "", "ProvisioningURI": ""}
	if !op.MFAEnabled && sess.PendingMFASecret != "" {
		data["PendingSecret"] = sess.PendingMFASecret
		data["ProvisioningURI"] = operator.TOTPProvisioningURI(op, sess.PendingMFASecret, core.Conf.AppName)
	}
	return s.render(ctx, "security", "Sicurezza", data)
}

func (s *server) securityAction(ctx echo.Context) error {
	op, err := contextOperator(ctx)
	if err != nil {
		return err
	}
	sess := s.sessions.Open(ctx)

	switch ctx.FormValue("action") {
	case "enroll_start":
		secret, err := operator.GenerateMFASecret()
		if err != nil {
			return err
		}
		sess.PendingMFASecret = secret
		return ctx.Redirect(http.StatusSeeOther, "/security")

	case "enroll_confirm":
		if sess.PendingMFASecret == "" {
			return s.redirectWithFeedback(ctx, "/security",
				core.FailFeedback("Nessuna attivazione in corso. Ripetere la procedura."))
		}
		if err := s.opts.OperatorSvc.EnableMFA(op.ID, sess.PendingMFASecret, ctx.FormValue("code")); err != nil {
			if err == operator.ErrInvalidMFACode {
				return s.redirectWithFeedback(ctx, "/security", core.FailFeedback(msgInvalidMFACode))
			}
			return err
		}
		sess.PendingMFASecret = ""
		return s.redirectWithFeedback(ctx, "/security",
			core.OKFeedback("Autenticazione a due fattori attivata."))

	case "disable":
		if err := op.CheckPassword(ctx.FormValue("password")); err != nil {
			return s.redirectWithFeedback(ctx, "/security", core.FailFeedback("Password errata."))
		}
		if err := s.opts.OperatorSvc.DisableMFA(op.ID); err != nil {
			return err
		}
		// force the enrollment prompt again on the next page
		sess.MFAPromptShown = false
		return s.redirectWithFeedback(ctx, "/security",
			core.OKFeedback("Autenticazione a due fattori disattivata."))

	case "change_password":
		if err := op.CheckPassword(ctx.FormValue("current_password")); err != nil {
			return s.redirectWithFeedback(ctx, "/security", core.FailFeedback("Password attuale errata."))
		}
		uo := operator.UpdateOperator{
			Password:        ctx.FormValue("password"),
			PasswordConfirm: ctx.FormValue("password_confirm"),
		}
		if uo.Password == "" {
			return s.redirectWithFeedback(ctx, "/security", core.FailFeedback("Indicare la nuova password."))
		}
		if err := uo.Validate(op, s.opts.OperatorSvc); err != nil {
			return s.redirectWithFeedback(ctx, "/security", core.FeedbackFromError(err))
		}
		if _, err := s.opts.OperatorSvc.Update(op.ID, uo); err != nil {
			return err
		}
		return s.redirectWithFeedback(ctx, "/security", core.OKFeedback("Password aggiornata."))
	}
	return s.unknownAction(ctx, "/security")
}
