package sso_test

import (
	"crypto/sha256"
	"encoding/base64"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/sso"
	dummydb "github.com/telepoint/backoffice/storage/database/dummy"
)

var testClient = core.SSOClientConfig{
	ID:           "partner-portal",
	Name:         "Portale Partner",
	Secret:       "s3cret",
	RedirectURIs: []string{"https://partner.example.com/callback"},
}

func setup(t *testing.T) *sso.Service {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)

	// the service snapshots the client list at construction
	orig := core.Conf.SSO.Clients
	core.Conf.SSO.Clients = append([]core.SSOClientConfig{}, orig...)
	core.Conf.SSO.Clients = append(core.Conf.SSO.Clients, testClient)
	t.Cleanup(func() { core.Conf.SSO.Clients = orig })

	return sso.NewService(dummydb.NewSSORepository(db), nil)
}

func authorize(t *testing.T, svc *sso.Service, req sso.AuthorizeRequest) (code string) {
	t.Helper()
	loc, err := svc.Authorize(42, req)
	require.NoError(t, err)
	u, err := url.Parse(loc)
	require.NoError(t, err)
	code = u.Query().Get("code")
	require.NotEmpty(t, code)
	return code
}

func validAuthorizeRequest() sso.AuthorizeRequest {
	return sso.AuthorizeRequest{
		ResponseType: "code",
		ClientID:     testClient.ID,
		RedirectURI:  testClient.RedirectURIs[0],
		State:        "xyz",
	}
}

func TestService_Authorize(t *testing.T) {
	svc := setup(t)

	loc, err := svc.Authorize(42, validAuthorizeRequest())
	require.NoError(t, err)

	u, err := url.Parse(loc)
	require.NoError(t, err)
	assert.Equal(t, "partner.example.com", u.Host)
	assert.Equal(t, "/callback", u.Path)
	assert.NotEmpty(t, u.Query().Get("code"))
	assert.Equal(t, "xyz", u.Query().Get("state"))
}

func TestService_Authorize_rejections(t *testing.T) {
	svc := setup(t)

	tests := []struct {
		name     string
		mutate   func(*sso.AuthorizeRequest)
		wantCode string
	}{
		{"unknown client", func(r *sso.AuthorizeRequest) { r.ClientID = "nope" }, sso.ErrCodeInvalidClient},
		{"unregistered redirect", func(r *sso.AuthorizeRequest) { r.RedirectURI = "https://evil.example.com/cb" }, sso.ErrCodeInvalidRequest},
		{"implicit flow", func(r *sso.AuthorizeRequest) { r.ResponseType = "token" }, sso.ErrCodeUnsupportedResponseType},
		{"plain pkce", func(r *sso.AuthorizeRequest) {
			r.CodeChallenge = "abc"
			r.CodeChallengeMethod = "plain"
		}, sso.ErrCodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validAuthorizeRequest()
			tt.mutate(&req)
			_, err := svc.Authorize(42, req)
			var ssoErr *sso.Error
			require.ErrorAs(t, err, &ssoErr)
			assert.Equal(t, tt.wantCode, ssoErr.Code)
		})
	}
}

func TestService_Exchange(t *testing.T) {
	svc := setup(t)
	code := authorize(t, svc, validAuthorizeRequest())

	tok, err := svc.Exchange(sso.TokenRequest{
		GrantType:    "authorization_code",
		Code:         code,
		ClientID:     testClient.ID,
		ClientSecret: testClient.Secret,
		RedirectURI:  testClient.RedirectURIs[0],
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.Equal(t, int(core.Conf.SSO.TokenTTL.Seconds()), tok.ExpiresIn)
	assert.Nil(t, tok.User) // no operator source wired in this test

	opID, err := svc.VerifyToken(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, 42, opID)
}

func TestService_Exchange_codeIsSingleUse(t *testing.T) {
	svc := setup(t)
	code := authorize(t, svc, validAuthorizeRequest())

	req := sso.TokenRequest{
		GrantType:    "authorization_code",
		Code:         code,
		ClientID:     testClient.ID,
		ClientSecret: testClient.Secret,
		RedirectURI:  testClient.RedirectURIs[0],
	}
	_, err := svc.Exchange(req)
	require.NoError(t, err)

	_, err = svc.Exchange(req)
	var ssoErr *sso.Error
	require.ErrorAs(t, err, &ssoErr)
	assert.Equal(t, sso.ErrCodeInvalidGrant, ssoErr.Code)
}

func TestService_Exchange_expiredCode(t *testing.T) {
	svc := setup(t)
	code := authorize(t, svc, validAuthorizeRequest())

	sso.NowFunc = func() time.Time { return time.Now().Add(core.Conf.SSO.CodeTTL + time.Minute) }
	defer func() { sso.NowFunc = time.Now }()

	_, err := svc.Exchange(sso.TokenRequest{
		GrantType:    "authorization_code",
		Code:         code,
		ClientID:     testClient.ID,
		ClientSecret: testClient.Secret,
		RedirectURI:  testClient.RedirectURIs[0],
	})
	var ssoErr *sso.Error
	require.ErrorAs(t, err, &ssoErr)
	assert.Equal(t, sso.ErrCodeInvalidGrant, ssoErr.Code)
}

func TestService_Exchange_rejections(t *testing.T) {
	svc := setup(t)

	tests := []struct {
		name     string
		mutate   func(*sso.TokenRequest)
		wantCode string
	}{
		{"wrong grant type", func(r *sso.TokenRequest) { r.GrantType = "password" }, sso.ErrCodeUnsupportedGrantType},
		{"bad secret", func(r *sso.TokenRequest) { r.ClientSecret = "wrong" }, sso.ErrCodeInvalidClient},
		{"unknown client", func(r *sso.TokenRequest) { r.ClientID = "nope" }, sso.ErrCodeInvalidClient},
		{"redirect mismatch", func(r *sso.TokenRequest) { r.RedirectURI = "https://partner.example.com/other" }, sso.ErrCodeInvalidGrant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := authorize(t, svc, validAuthorizeRequest())
			req := sso.TokenRequest{
				GrantType:    "authorization_code",
				Code:         code,
				ClientID:     testClient.ID,
				ClientSecret: testClient.Secret,
				RedirectURI:  testClient.RedirectURIs[0],
			}
			tt.mutate(&req)
			_, err := svc.Exchange(req)
			var ssoErr *sso.Error
			require.ErrorAs(t, err, &ssoErr)
			assert.Equal(t, tt.wantCode, ssoErr.Code)
		})
	}
}

func TestService_Exchange_pkce(t *testing.T) {
	svc := setup(t)

	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	sum := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])

	req := validAuthorizeRequest()
	req.CodeChallenge = challenge
	req.CodeChallengeMethod = "S256"
	code := authorize(t, svc, req)

	tokReq := sso.TokenRequest{
		GrantType:    "authorization_code",
		Code:         code,
		ClientID:     testClient.ID,
		ClientSecret: testClient.Secret,
		RedirectURI:  testClient.RedirectURIs[0],
		CodeVerifier: "not-the-verifier",
	}
	_, err := svc.Exchange(tokReq)
	var ssoErr *sso.Error
	require.ErrorAs(t, err, &ssoErr)
	assert.Equal(t, sso.ErrCodeInvalidGrant, ssoErr.Code)

	code = authorize(t, svc, req)
	tokReq.Code = code
	tokReq.CodeVerifier = verifier
	tok, err := svc.Exchange(tokReq)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)
}

func TestService_VerifyToken_rejectsGarbage(t *testing.T) {
	svc := setup(t)
	_, err := svc.VerifyToken("not-a-jwt")
	require.Error(t, err)
}
