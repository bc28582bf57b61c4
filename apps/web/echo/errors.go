package echoweb

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/operator"
	"github.com/telepoint/backoffice/core/sso"
)

var errHTTPNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

// newHTTPErrorHandler returns a custom echo.HTTPErrorHandler. Browser requests
// get a toast queued on their session followed by a redirect (or a bare error
// page when there is nowhere sensible to land); AJAX and SSO requests get JSON.
// signalShutdown is triggered whenever a core.shutdown error is caught.
func (s *server) newHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		var code int
		fb := core.Feedback{}

		switch origErr := errors.Cause(err).(type) {
		case *sso.Error:
			// token endpoint errors carry their own wire shape
			if jErr := ctx.JSON(http.StatusBadRequest, origErr); jErr != nil {
				ctx.Echo().Logger.Error(jErr)
			}
			return
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if msg, ok := origErr.Message.(string); ok {
				fb = core.FailFeedback(msg)
			} else {
				fb = core.FailFeedback(http.StatusText(code))
			}
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			fb = core.FeedbackFromError(origErr)
		case *core.ValidationError:
			code = http.StatusBadRequest
			fb = core.FeedbackFromError(origErr)
		default: // any other error is a server error
			code = http.StatusInternalServerError
			fb = core.Feedback{}

			msg := http.StatusText(code)
			var op operator.Operator
			if ctxOp, cErr := contextOperator(ctx); cErr == nil {
				op = ctxOp
			}
			s.opts.Logger.Error(msg, errors.Wrap(err, msg), op)

			// shutting down...
			if core.IsShutdown(err) {
				s.signalShutdown()
			}
		}

		if isAJAX(ctx) || wantsJSON(ctx) {
			if jErr := ctx.JSON(code, fb); jErr != nil {
				ctx.Echo().Logger.Error(jErr)
			}
			return
		}

		// missing pages get a bare 404, never a toast
		if code == http.StatusNotFound {
			if hErr := ctx.HTML(code, "<h1>404</h1><p>Pagina non trovata.</p>"); hErr != nil {
				ctx.Echo().Logger.Error(hErr)
			}
			return
		}

		sess := s.sessions.Open(ctx)
		sess.PushNotice(core.NoticeFromFeedback(fb))

		target := redirectTarget(ctx, code)
		if rErr := ctx.Redirect(http.StatusSeeOther, target); rErr != nil {
			ctx.Echo().Logger.Error(rErr)
		}
	}
}

func wantsJSON(ctx echo.Context) bool {
	return strings.HasPrefix(ctx.Request().URL.Path, "/sso/token") ||
		strings.Contains(ctx.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// redirectTarget picks where to land after an error: back where the user came
// from when known, the dashboard otherwise, the login page when not authed.
func redirectTarget(ctx echo.Context, code int) string {
	if code == http.StatusUnauthorized {
		return "/login"
	}
	if ref := ctx.Request().Header.Get("Referer"); ref != "" && strings.HasPrefix(ref, "/") {
		return ref
	}
	if ref := ctx.Request().Referer(); ref != "" {
		if i := strings.Index(ref, "//"); i >= 0 {
			if j := strings.Index(ref[i+2:], "/"); j >= 0 {
				return ref[i+2+j:]
			}
		}
	}
	return "/"
}
