package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/operator"
)

// user-facing auth sentences
const (
	msgUnauthorized      = "Operazione non autorizzata."
	msgBadCredentials    = "Credenziali non valide."
	msgAccountDisabled   = "Account disattivato."
	msgInvalidMFACode    = "Codice di verifica non valido."
	msgMFANotConfigured  = "Autenticazione a due fattori non attiva. Configurala dalla pagina Sicurezza per proteggere il tuo account."
	msgLoggedOut         = "Sessione terminata."
	msgSessionExpiredMFA = "Sessione di accesso scaduta. Ripetere il login."
)

// mfaExempt lists the paths an operator without MFA may still reach; everything
// else redirects to the security page until they enroll.
var mfaExempt = map[string]bool{
	"/security":               true,
	"/logout":                 true,
	"/notifications/stream":   true,
	"/notifications/read-all": true,
}

// authGate opens the session and resolves the logged-in operator. Anonymous
// visitors are redirected to the login page; operators without MFA are steered
// to the security page with a once-per-session warning.
func (s *server) authGate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			sess := s.sessions.Open(ctx)
			if !sess.Authenticated() {
				if isAJAX(ctx) {
					return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
				}
				return ctx.Redirect(http.StatusSeeOther, "/login")
			}

			op, err := s.opts.OperatorSvc.GetByID(sess.OperatorID)
			if err != nil || !op.IsActive {
				s.sessions.Destroy(ctx, sess)
				return ctx.Redirect(http.StatusSeeOther, "/login")
			}
			ctx.Set(contextOperatorKey, op)

			if !op.MFAEnabled && !mfaExempt[ctx.Path()] {
				if !sess.MFAPromptShown {
					sess.MFAPromptShown = true
					dismissible := false
					sess.PushNotice(core.NoticeFromFeedback(
						core.FailFeedback(msgMFANotConfigured),
						core.NoticeOverrides{Type: core.NoticeWarning, Dismissible: &dismissible},
					))
				}
				return ctx.Redirect(http.StatusSeeOther, "/security")
			}

			return next(ctx)
		}
	}
}

// adminRequired blocks non-admin operators from management pages.
func (s *server) adminRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		op, err := contextOperator(ctx)
		if err != nil {
			return err
		}
		if !op.IsAdmin {
			sess := s.sessions.Open(ctx)
			sess.PushNotice(core.NoticeFromFeedback(core.FailFeedback(msgUnauthorized)))
			return ctx.Redirect(http.StatusSeeOther, "/")
		}
		return next(ctx)
	}
}

func contextOperator(ctx echo.Context) (operator.Operator, error) {
	if op, ok := ctx.Get(contextOperatorKey).(operator.Operator); ok {
		return op, nil
	}
	return operator.Operator{}, errors.New("operator object not found in echo.Context")
}

func isAJAX(ctx echo.Context) bool {
	return ctx.Request().Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// Handlers

func (s *server) loginPage(ctx echo.Context) error {
	sess := s.sessions.Open(ctx)
	if sess.Authenticated() {
		return ctx.Redirect(http.StatusSeeOther, "/")
	}
	return s.renderBare(ctx, "login", echo.Map{"Title": "Accesso"})
}

func (s *server) login(ctx echo.Context) error {
	sess := s.sessions.Open(ctx)

	username := ctx.FormValue("username")
	password := ctx.FormValue("password")

	op, err := s.opts.OperatorSvc.Authenticate(username, password)
	if err != nil {
		msg := msgBadCredentials
		if err == operator.ErrAccountDeactivated {
			msg = msgAccountDisabled
		}
		sess.PushNotice(core.NoticeFromFeedback(core.FailFeedback(msg)))
		return ctx.Redirect(http.StatusSeeOther, "/login")
	}

	sess.OperatorID = op.ID
	sess.IsAdmin = op.IsAdmin
	sess.MFAPending = op.MFAEnabled
	s.sessions.Renew(ctx, sess)

	if sess.MFAPending {
		return ctx.Redirect(http.StatusSeeOther, "/login/mfa")
	}
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (s *server) loginMFAPage(ctx echo.Context) error {
	sess := s.sessions.Open(ctx)
	if !sess.MFAPending {
		return ctx.Redirect(http.StatusSeeOther, "/login")
	}
	return s.renderBare(ctx, "login_mfa", echo.Map{"Title": "Verifica in due passaggi"})
}

func (s *server) loginMFA(ctx echo.Context) error {
	sess := s.sessions.Open(ctx)
	if !sess.MFAPending {
		sess.PushNotice(core.NoticeFromFeedback(core.FailFeedback(msgSessionExpiredMFA)))
		return ctx.Redirect(http.StatusSeeOther, "/login")
	}

	op, err := s.opts.OperatorSvc.GetByID(sess.OperatorID)
	if err != nil {
		s.sessions.Destroy(ctx, sess)
		return ctx.Redirect(http.StatusSeeOther, "/login")
	}
	if err := s.opts.OperatorSvc.VerifyMFA(op, ctx.FormValue("code")); err != nil {
		sess.PushNotice(core.NoticeFromFeedback(core.FailFeedback(msgInvalidMFACode)))
		return ctx.Redirect(http.StatusSeeOther, "/login/mfa")
	}

	sess.MFAPending = false
	s.sessions.Renew(ctx, sess)
	return ctx.Redirect(http.StatusSeeOther, "/")
}

func (s *server) logout(ctx echo.Context) error {
	sess := s.sessions.Open(ctx)
	s.sessions.Destroy(ctx, sess)

	// queue the goodbye toast on the fresh anonymous session
	fresh := s.sessions.Open(ctx)
	fresh.PushNotice(core.NewNotice(core.NoticeInfo, msgLoggedOut))
	return ctx.Redirect(http.StatusSeeOther, "/login")
}
