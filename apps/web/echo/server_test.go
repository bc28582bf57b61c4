package echoweb

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/catalog"
	"github.com/telepoint/backoffice/core/customer"
	"github.com/telepoint/backoffice/core/notification"
	"github.com/telepoint/backoffice/core/offer"
	"github.com/telepoint/backoffice/core/operator"
	"github.com/telepoint/backoffice/core/report"
	"github.com/telepoint/backoffice/core/sale"
	"github.com/telepoint/backoffice/core/sso"
	"github.com/telepoint/backoffice/core/ticket"
	dummydb "github.com/telepoint/backoffice/storage/database/dummy"
)

// base32 of the RFC 6238 reference key; at unix 59 the code is 287082
const (
	totpSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
	totpAt59   = "287082"
)

var ssoTestClient = core.SSOClientConfig{
	ID:           "partner-portal",
	Name:         "Portale Partner",
	Secret:       "s3cret",
	RedirectURIs: []string{"https://partner.example.com/callback"},
}

type testEnv struct {
	server *server

	operatorSvc *operator.Service
	customerSvc *customer.Service
	catalogSvc  *catalog.Service
	notifSvc    *notification.Service
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	// templates live relative to the repository root
	wd, err := os.Getwd()
	require.NoError(t, err)
	origWorkDir := core.Conf.WorkDir
	core.Conf.WorkDir = wd + "/../../.."
	origClients := core.Conf.SSO.Clients
	core.Conf.SSO.Clients = append(append([]core.SSOClientConfig{}, origClients...), ssoTestClient)
	t.Cleanup(func() {
		core.Conf.WorkDir = origWorkDir
		core.Conf.SSO.Clients = origClients
	})

	db, err := dummydb.Open()
	require.NoError(t, err)

	operatorSvc := operator.NewService(dummydb.NewOperatorRepository(db), nil)
	customerSvc := customer.NewService(dummydb.NewCustomerRepository(db))
	catalogSvc := catalog.NewService(dummydb.NewCatalogRepository(db))
	offerSvc := offer.NewService(dummydb.NewOfferRepository(db))
	notifSvc := notification.NewService(dummydb.NewNotificationRepository(db))
	saleSvc := sale.NewService(dummydb.NewSaleRepository(db), catalogSvc, offerSvc)
	ticketSvc := ticket.NewService(dummydb.NewTicketRepository(db), notifSvc, nil)
	ssoSvc := sso.NewService(dummydb.NewSSORepository(db), operatorSvc)
	reportSvc := report.NewService(dummydb.NewReportRepository(db))

	srv := NewServer(&Options{
		Addr:           ":0",
		DisableReqLogs: true,
		Logger:         core.NewStdLogger(log.New(os.Stderr, "TEST : ", log.LstdFlags)),

		OperatorSvc:     operatorSvc,
		CustomerSvc:     customerSvc,
		CatalogSvc:      catalogSvc,
		SaleSvc:         saleSvc,
		OfferSvc:        offerSvc,
		TicketSvc:       ticketSvc,
		NotificationSvc: notifSvc,
		SSOSvc:          ssoSvc,
		ReportSvc:       reportSvc,
	}).(*server)
	t.Cleanup(func() { srv.signalShutdown() })

	return &testEnv{
		server:      srv,
		operatorSvc: operatorSvc,
		customerSvc: customerSvc,
		catalogSvc:  catalogSvc,
		notifSvc:    notifSvc,
	}
}

func (env *testEnv) createOperator(t *testing.T, uname string, admin, mfa bool) operator.Operator {
	t.Helper()
	op, err := env.operatorSvc.Create(operator.NewOperator{
		Name: "Mario Rossi", Username: uname, Email: uname + "@example.com",
		Password: "Str0ng-pass!", IsAdmin: admin,
	})
	require.NoError(t, err)
	if mfa {
		operator.NowFunc = func() time.Time { return time.Unix(59, 0) }
		defer func() { operator.NowFunc = time.Now }()
		require.NoError(t, env.operatorSvc.EnableMFA(op.ID, totpSecret, totpAt59))
		op, err = env.operatorSvc.GetByID(op.ID)
		require.NoError(t, err)
	}
	return op
}

// do runs one request through the router, carrying the session cookie.
func (env *testEnv) do(method, path, cookie string, form url.Values, hdr http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: core.Conf.Session.CookieName, Value: cookie})
	}
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	return rec
}

// sessionCookie returns the last session cookie set on the response; the login
// handler may set two (anonymous create, then the post-auth renewal).
func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	value := ""
	for _, c := range rec.Result().Cookies() {
		if c.Name == core.Conf.Session.CookieName {
			value = c.Value
		}
	}
	return value
}

// login authenticates through the real login (and MFA) flow and returns the
// session cookie.
func (env *testEnv) login(t *testing.T, uname string, mfa bool) string {
	t.Helper()

	rec := env.do(http.MethodPost, "/login", "", url.Values{
		"username": {uname}, "password": {"Str0ng-pass!"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookie := sessionCookie(t, rec)
	require.NotEmpty(t, cookie)

	if !mfa {
		require.Equal(t, "/", rec.Header().Get("Location"))
		return cookie
	}
	require.Equal(t, "/login/mfa", rec.Header().Get("Location"))

	operator.NowFunc = func() time.Time { return time.Unix(59, 0) }
	defer func() { operator.NowFunc = time.Now }()

	rec = env.do(http.MethodPost, "/login/mfa", cookie, url.Values{"code": {totpAt59}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))
	return sessionCookie(t, rec)
}

func Test_anonymousVisitorsAreRedirected(t *testing.T) {
	env := setup(t)

	rec := env.do(http.MethodGet, "/customers", "", nil, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// AJAX callers get a bare 401 instead of a redirect
	rec = env.do(http.MethodGet, "/customers", "", nil, http.Header{"X-Requested-With": {"XMLHttpRequest"}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_loginFlow(t *testing.T) {
	env := setup(t)
	env.createOperator(t, "mario", false, true)

	// wrong password bounces back to the login page with a toast
	rec := env.do(http.MethodPost, "/login", "", url.Values{
		"username": {"mario"}, "password": {"wrong"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	cookie := sessionCookie(t, rec)

	rec = env.do(http.MethodGet, "/login", cookie, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgBadCredentials)

	// the toast is delivered exactly once
	rec = env.do(http.MethodGet, "/login", cookie, nil, nil)
	assert.NotContains(t, rec.Body.String(), msgBadCredentials)

	cookie = env.login(t, "mario", true)
	rec = env.do(http.MethodGet, "/", cookie, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cruscotto")
}

func Test_loginRenewsSessionID(t *testing.T) {
	env := setup(t)
	env.createOperator(t, "mario", false, false)

	// pick up an anonymous session first
	rec := env.do(http.MethodGet, "/login", "", nil, nil)
	anon := sessionCookie(t, rec)
	require.NotEmpty(t, anon)

	rec = env.do(http.MethodPost, "/login", anon, url.Values{
		"username": {"mario"}, "password": {"Str0ng-pass!"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	authed := sessionCookie(t, rec)
	require.NotEmpty(t, authed)
	assert.NotEqual(t, anon, authed)

	// the pre-login cookie no longer opens the session
	rec = env.do(http.MethodGet, "/security", anon, nil, nil)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func Test_mfaEnrollmentGate(t *testing.T) {
	env := setup(t)
	env.createOperator(t, "mario", false, false)
	cookie := env.login(t, "mario", false)

	// everything except the exempt pages steers to /security
	rec := env.do(http.MethodGet, "/customers", cookie, nil, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/security", rec.Header().Get("Location"))

	// the landing page itself renders before any enrollment is pending
	rec = env.do(http.MethodGet, "/security", cookie, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgMFANotConfigured)
	assert.Contains(t, rec.Body.String(), "Attiva")

	// the warning is queued once per session, not on every request
	rec = env.do(http.MethodGet, "/", cookie, nil, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = env.do(http.MethodGet, "/security", cookie, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), msgMFANotConfigured)
}

func Test_adminRequired(t *testing.T) {
	env := setup(t)
	env.createOperator(t, "mario", false, true)
	cookie := env.login(t, "mario", true)

	rec := env.do(http.MethodGet, "/settings", cookie, nil, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = env.do(http.MethodGet, "/", cookie, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), msgUnauthorized)
}

func Test_adminCanOpenSettings(t *testing.T) {
	env := setup(t)
	env.createOperator(t, "boss", true, true)
	cookie := env.login(t, "boss", true)

	rec := env.do(http.MethodGet, "/settings", cookie, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Operatori")
}

func Test_unknownActionToast(t *testing.T) {
	env := setup(t)
	env.createOperator(t, "mario", false, true)
	cookie := env.login(t, "mario", true)

	rec := env.do(http.MethodPost, "/customers", cookie, url.Values{"action": {"bogus"}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/customers", rec.Header().Get("Location"))

	rec = env.do(http.MethodGet, "/customers", cookie, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Azione non riconosciuta.")

	// drained by the render above
	rec = env.do(http.MethodGet, "/customers", cookie, nil, nil)
	assert.NotContains(t, rec.Body.String(), "Azione non riconosciuta.")
}

func Test_customerCreateThenListed(t *testing.T) {
	env := setup(t)
	env.createOperator(t, "mario", false, true)
	cookie := env.login(t, "mario", true)

	rec := env.do(http.MethodPost, "/customers", cookie, url.Values{
		"action": {"create"},
		"name":   {"Luigi Verdi"},
		"phone":  {"3331234567"},
	}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = env.do(http.MethodGet, "/customers", cookie, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cliente registrato.")
	assert.Contains(t, rec.Body.String(), "Luigi Verdi")
}

func Test_refreshClampsPagination(t *testing.T) {
	env := setup(t)
	env.createOperator(t, "mario", false, true)
	cookie := env.login(t, "mario", true)

	rec := env.do(http.MethodGet, "/customers?page=0&per_page=1000", cookie, nil,
		http.Header{"X-Requested-With": {"XMLHttpRequest"}})
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Success bool `json:"success"`
		Payload struct {
			Pagination core.Pagination `json:"pagination"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.True(t, payload.Success)
	assert.Equal(t, 1, payload.Payload.Pagination.Page)
	assert.Equal(t, core.MaxPerPage, payload.Payload.Pagination.PerPage)
}

func Test_logout(t *testing.T) {
	env := setup(t)
	env.createOperator(t, "mario", false, true)
	cookie := env.login(t, "mario", true)

	rec := env.do(http.MethodPost, "/logout", cookie, nil, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	fresh := sessionCookie(t, rec)

	// the old session is gone
	rec = env.do(http.MethodGet, "/", cookie, nil, nil)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	// the goodbye toast rides the fresh anonymous session
	if fresh != "" && fresh != cookie {
		rec = env.do(http.MethodGet, "/login", fresh, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), msgLoggedOut)
	}
}

func Test_notificationsStream(t *testing.T) {
	env := setup(t)
	env.createOperator(t, "mario", false, true)
	cookie := env.login(t, "mario", true)

	require.NoError(t, env.notifSvc.Broadcast("Nuova richiesta prodotto", "iPhone"))
	require.NoError(t, env.notifSvc.Broadcast("Nuova richiesta di assistenza", "Telefono rotto"))

	origPoll := core.Conf.Notifications.PollInterval
	core.Conf.Notifications.PollInterval = 5 * time.Millisecond
	defer func() { core.Conf.Notifications.PollInterval = origPoll }()

	// the first clock read computes the deadline; afterwards the clock jumps
	// past it so the stream closes on its first tick
	calls := 0
	env.server.nowFunc = func() time.Time {
		calls++
		if calls == 1 {
			return time.Now()
		}
		return time.Now().Add(core.Conf.Notifications.MaxStreamDuration + time.Minute)
	}

	rec := env.do(http.MethodGet, "/notifications/stream", cookie, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "event: notifications\n")
	assert.Contains(t, body, `"unread_count":2`)
	assert.Contains(t, body, `"last_id":2`)

	// the same iteration also carries a timestamped heartbeat, after the data event
	assert.Contains(t, body, "event: heartbeat\n")
	assert.Contains(t, body, `"time":"`)
	assert.Greater(t, strings.Index(body, "event: heartbeat\n"), strings.Index(body, "event: notifications\n"))
}

func Test_notificationsReadAll(t *testing.T) {
	env := setup(t)
	op := env.createOperator(t, "mario", false, true)
	cookie := env.login(t, "mario", true)

	require.NoError(t, env.notifSvc.Broadcast("Titolo", "messaggio"))

	rec := env.do(http.MethodPost, "/notifications/read-all", cookie, nil,
		http.Header{"X-Requested-With": {"XMLHttpRequest"}})
	require.Equal(t, http.StatusOK, rec.Code)

	unread, err := env.notifSvc.UnreadCount(op.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func Test_ssoAuthorizeAndExchange(t *testing.T) {
	env := setup(t)
	env.createOperator(t, "mario", false, true)
	cookie := env.login(t, "mario", true)

	rec := env.do(http.MethodGet,
		"/sso/authorize?response_type=code&client_id=partner-portal&redirect_uri="+
			url.QueryEscape(ssoTestClient.RedirectURIs[0])+"&state=abc",
		cookie, nil, nil)
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	code := loc.Query().Get("code")
	require.NotEmpty(t, code)
	assert.Equal(t, "abc", loc.Query().Get("state"))

	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"client_id":     {ssoTestClient.ID},
		"client_secret": {ssoTestClient.Secret},
		"redirect_uri":  {ssoTestClient.RedirectURIs[0]},
	}
	rec = env.do(http.MethodPost, "/sso/token", "", form, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tok sso.Token
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	assert.Equal(t, "Bearer", tok.TokenType)
	assert.NotEmpty(t, tok.AccessToken)
	require.NotNil(t, tok.User)
	assert.Equal(t, "mario", tok.User.Username)

	// codes are single use
	rec = env.do(http.MethodPost, "/sso/token", "", form, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), sso.ErrCodeInvalidGrant)

	// a bad client secret is a 401
	form.Set("client_secret", "wrong")
	rec = env.do(http.MethodPost, "/sso/token", "", form, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), sso.ErrCodeInvalidClient)
}

func Test_ssoErrorStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{sso.ErrCodeInvalidRequest, http.StatusBadRequest},
		{sso.ErrCodeInvalidGrant, http.StatusBadRequest},
		{sso.ErrCodeUnsupportedGrantType, http.StatusBadRequest},
		{sso.ErrCodeInvalidClient, http.StatusUnauthorized},
		{sso.ErrCodeServerError, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ssoErrorStatus(sso.NewError(tt.code, "")), tt.code)
	}
}

func Test_unknownPageIs404(t *testing.T) {
	env := setup(t)
	env.createOperator(t, "mario", false, true)
	cookie := env.login(t, "mario", true)

	rec := env.do(http.MethodGet, "/does-not-exist", cookie, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// a 404 leaves the toast queue alone
	rec = env.do(http.MethodGet, "/", cookie, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "initialToasts = null")
}

func TestSession_popNoticesDrainsOnce(t *testing.T) {
	sess := &Session{}
	sess.PushNotice(core.NewNotice(core.NoticeInfo, "uno"))
	sess.PushNotice(core.NewNotice(core.NoticeInfo, "due"))
	sess.PushNotice(core.NewNotice(core.NoticeInfo, "   ")) // dropped

	notices := sess.PopNotices()
	require.Len(t, notices, 2)
	assert.Empty(t, sess.PopNotices())
}
