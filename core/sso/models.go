package sso

import (
	"fmt"
	"time"
)

// OAuth2 error codes (RFC 6749 §4.1.2.1 / §5.2)
const (
	ErrCodeInvalidRequest          = "invalid_request"
	ErrCodeInvalidClient           = "invalid_client"
	ErrCodeInvalidGrant            = "invalid_grant"
	ErrCodeUnauthorizedClient      = "unauthorized_client"
	ErrCodeUnsupportedGrantType    = "unsupported_grant_type"
	ErrCodeUnsupportedResponseType = "unsupported_response_type"
	ErrCodeServerError             = "server_error"
)

// Error is an OAuth2 protocol error; it serializes to the wire shape
// token endpoints must return.
type Error struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

func (e *Error) Error() string {
	if e.Description == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func NewError(code, description string) *Error {
	return &Error{Code: code, Description: description}
}

type (
	// AuthCode is a short-lived single-use authorization code bound to the
	// client and redirect URI it was issued for.
	AuthCode struct {
		Code          string    `json:"code"`
		ClientID      string    `json:"client_id"`
		OperatorID    int       `json:"operator_id"`
		RedirectURI   string    `json:"redirect_uri"`
		CodeChallenge string    `json:"code_challenge,omitempty"` // S256, base64url no padding
		ExpiresAt     time.Time `json:"expires_at"`               // UTC
	}

	// AuthorizeRequest carries the query parameters of the authorize endpoint.
	AuthorizeRequest struct {
		ResponseType        string `query:"response_type" form:"response_type"`
		ClientID            string `query:"client_id" form:"client_id"`
		RedirectURI         string `query:"redirect_uri" form:"redirect_uri"`
		State               string `query:"state" form:"state"`
		CodeChallenge       string `query:"code_challenge" form:"code_challenge"`
		CodeChallengeMethod string `query:"code_challenge_method" form:"code_challenge_method"`
	}

	// TokenRequest carries the form body of the token endpoint.
	TokenRequest struct {
		GrantType    string `form:"grant_type"`
		Code         string `form:"code"`
		ClientID     string `form:"client_id"`
		ClientSecret string `form:"client_secret"`
		RedirectURI  string `form:"redirect_uri"`
		CodeVerifier string `form:"code_verifier"`
	}

	// Token is the token endpoint's success payload.
	Token struct {
		AccessToken string     `json:"access_token"`
		TokenType   string     `json:"token_type"`
		ExpiresIn   int        `json:"expires_in"`
		User        *TokenUser `json:"user,omitempty"`
	}

	// TokenUser is the operator profile embedded in the token response so the
	// portal can greet the operator without another round trip.
	TokenUser struct {
		ID       int    `json:"id"`
		Name     string `json:"name"`
		Username string `json:"username"`
		Email    string `json:"email"`
	}
)
