package sso

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/operator"
)

var ErrCodeNotFound = errors.New("authorization code not found")

// NowFunc is only mocked by tests.
var NowFunc func() time.Time = time.Now

type (
	// Repository stores pending authorization codes. ConsumeAuthCode must be
	// atomic: a code can be exchanged exactly once.
	Repository interface {
		CreateAuthCode(ac AuthCode) error
		ConsumeAuthCode(code string) (AuthCode, error)
	}

	// OperatorSource resolves the operator a code was issued for, so the token
	// response can embed their profile. May be nil; the user field is then omitted.
	OperatorSource interface {
		GetByID(id int) (operator.Operator, error)
	}

	Service struct {
		repo      Repository
		operators OperatorSource
		clients   []core.SSOClientConfig
	}
)

func NewService(repo Repository, operators OperatorSource) *Service {
	return &Service{repo: repo, operators: operators, clients: core.Conf.SSO.Clients}
}

func (svc *Service) client(id string) (core.SSOClientConfig, bool) {
	for _, c := range svc.clients {
		if c.ID == id {
			return c, true
		}
	}
	return core.SSOClientConfig{}, false
}

func allowedRedirect(c core.SSOClientConfig, uri string) bool {
	for _, u := range c.RedirectURIs {
		if u == uri {
			return true
		}
	}
	return false
}

// Authorize validates the request for an already-authenticated operator and
// returns the redirect URL carrying the authorization code.
func (svc *Service) Authorize(operatorID int, req AuthorizeRequest) (string, error) {
	c, ok := svc.client(req.ClientID)
	if !ok {
		return "", NewError(ErrCodeInvalidClient, "unknown client")
	}
	if !allowedRedirect(c, req.RedirectURI) {
		return "", NewError(ErrCodeInvalidRequest, "redirect_uri not registered for client")
	}
	if req.ResponseType != "code" {
		return "", NewError(ErrCodeUnsupportedResponseType, "only the authorization code flow is supported")
	}
	if req.CodeChallenge != "" && req.CodeChallengeMethod != "S256" {
		return "", NewError(ErrCodeInvalidRequest, "only the S256 code challenge method is supported")
	}

	code, err := randomCode()
	if err != nil {
		return "", NewError(ErrCodeServerError, err.Error())
	}
	ac := AuthCode{
		Code:          code,
		ClientID:      c.ID,
		OperatorID:    operatorID,
		RedirectURI:   req.RedirectURI,
		CodeChallenge: req.CodeChallenge,
		ExpiresAt:     NowFunc().UTC().Add(core.Conf.SSO.CodeTTL),
	}
	if err := svc.repo.CreateAuthCode(ac); err != nil {
		return "", NewError(ErrCodeServerError, err.Error())
	}

	loc, err := url.Parse(req.RedirectURI)
	if err != nil {
		return "", NewError(ErrCodeInvalidRequest, "malformed redirect_uri")
	}
	q := loc.Query()
	q.Set("code", code)
	if req.State != "" {
		q.Set("state", req.State)
	}
	loc.RawQuery = q.Encode()
	return loc.String(), nil
}

// Exchange swaps a valid single-use code for a signed bearer token.
func (svc *Service) Exchange(req TokenRequest) (Token, error) {
	if req.GrantType != "authorization_code" {
		return Token{}, NewError(ErrCodeUnsupportedGrantType, "only authorization_code is supported")
	}
	c, ok := svc.client(req.ClientID)
	if !ok || !hmac.Equal([]byte(c.Secret), []byte(req.ClientSecret)) {
		return Token{}, NewError(ErrCodeInvalidClient, "client authentication failed")
	}

	ac, err := svc.repo.ConsumeAuthCode(req.Code)
	if err != nil {
		return Token{}, NewError(ErrCodeInvalidGrant, "unknown or already used code")
	}
	now := NowFunc().UTC()
	switch {
	case now.After(ac.ExpiresAt):
		return Token{}, NewError(ErrCodeInvalidGrant, "code expired")
	case ac.ClientID != c.ID:
		return Token{}, NewError(ErrCodeInvalidGrant, "code was issued to another client")
	case ac.RedirectURI != req.RedirectURI:
		return Token{}, NewError(ErrCodeInvalidGrant, "redirect_uri mismatch")
	}
	if ac.CodeChallenge != "" {
		sum := sha256.Sum256([]byte(req.CodeVerifier))
		challenge := base64.RawURLEncoding.EncodeToString(sum[:])
		if !hmac.Equal([]byte(challenge), []byte(ac.CodeChallenge)) {
			return Token{}, NewError(ErrCodeInvalidGrant, "code verifier mismatch")
		}
	}

	ttl := core.Conf.SSO.TokenTTL
	claims := jwt.StandardClaims{
		Issuer:    core.Conf.AppName,
		Subject:   strconv.Itoa(ac.OperatorID),
		Audience:  c.ID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(ttl).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(core.Conf.SecretKey)
	if err != nil {
		return Token{}, NewError(ErrCodeServerError, err.Error())
	}

	tok := Token{AccessToken: signed, TokenType: "Bearer", ExpiresIn: int(ttl.Seconds())}
	if svc.operators != nil {
		if op, err := svc.operators.GetByID(ac.OperatorID); err == nil {
			tok.User = &TokenUser{ID: op.ID, Name: op.Name, Username: op.Username, Email: op.Email}
		}
	}
	return tok, nil
}

// VerifyToken parses a bearer token issued by Exchange and returns the
// operator ID it was issued for.
func (svc *Service) VerifyToken(tokenStr string) (int, error) {
	claims := jwt.StandardClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return core.Conf.SecretKey, nil
	})
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(claims.Subject)
}

func randomCode() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
