package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/sso"
)

// ssoAuthorize hands an authenticated operator off to a partner portal with a
// single-use authorization code.
func (s *server) ssoAuthorize(ctx echo.Context) error {
	op, err := contextOperator(ctx)
	if err != nil {
		return err
	}

	var req sso.AuthorizeRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	redirect, err := s.opts.SSOSvc.Authorize(op.ID, req)
	if err != nil {
		if oErr, ok := err.(*sso.Error); ok {
			return s.redirectWithFeedback(ctx, "/", core.Feedback{
				Message: "Accesso al portale partner non riuscito.",
				Error:   oErr.Error(),
			})
		}
		return err
	}
	return ctx.Redirect(http.StatusFound, redirect)
}

// ssoToken is the machine-facing OAuth2 token endpoint; it always answers JSON.
func (s *server) ssoToken(ctx echo.Context) error {
	ctx.Response().Header().Set("Cache-Control", "no-store")

	var req sso.TokenRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, sso.NewError(sso.ErrCodeInvalidRequest, "malformed request body"))
	}

	token, err := s.opts.SSOSvc.Exchange(req)
	if err != nil {
		oErr, ok := err.(*sso.Error)
		if !ok {
			oErr = sso.NewError(sso.ErrCodeServerError, "")
		}
		return ctx.JSON(ssoErrorStatus(oErr), oErr)
	}
	return ctx.JSON(http.StatusOK, token)
}

// ssoErrorStatus maps OAuth2 error codes to the token endpoint's status codes.
func ssoErrorStatus(err *sso.Error) int {
	switch err.Code {
	case sso.ErrCodeInvalidClient:
		return http.StatusUnauthorized
	case sso.ErrCodeServerError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}
