package echoweb

import (
	"context"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

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
)

const (
	contextSessionKey  = "session"
	contextOperatorKey = "operator"
)

type (
	Options struct {
		Addr           string
		DisableReqLogs bool

		Logger core.Logger

		OperatorSvc     *operator.Service
		CustomerSvc     *customer.Service
		CatalogSvc      *catalog.Service
		SaleSvc         *sale.Service
		OfferSvc        *offer.Service
		TicketSvc       *ticket.Service
		NotificationSvc *notification.Service
		SSOSvc          *sso.Service
		ReportSvc       *report.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts         *Options
		app          *echo.Echo
		sessions     *SessionStore
		shutdown     chan struct{}
		shutdownOnce sync.Once

		// nowFunc is only mocked by tests (SSE stream clock).
		nowFunc func() time.Time
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		sessions: NewSessionStore(),
		shutdown: make(chan struct{}),
		nowFunc:  time.Now,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = s.newHTTPErrorHandler()
	s.app.Debug = core.Conf.Debug

	s.app.Static("/static", filepath.Join(core.Conf.WorkDir, "assets", "static"))

	gate := s.authGate()

	// un-authed endpoints
	s.app.GET("/login", s.loginPage)
	s.app.POST("/login", s.login)
	s.app.GET("/login/mfa", s.loginMFAPage)
	s.app.POST("/login/mfa", s.loginMFA)
	s.app.POST("/sso/token", s.ssoToken)

	// authed pages; the gate redirects anonymous visitors to /login
	g := s.app.Group("", gate)
	g.GET("/", s.dashboard)
	g.POST("/logout", s.logout)

	g.GET("/customers", s.customersPage)
	g.POST("/customers", s.customersAction)

	g.GET("/products", s.productsPage)
	g.POST("/products", s.productsAction)

	g.GET("/sim-stock", s.simStockPage)
	g.POST("/sim-stock", s.simStockAction)

	g.GET("/offers", s.offersPage)
	g.POST("/offers", s.offersAction)

	g.GET("/sales/new", s.saleCreatePage)
	g.POST("/sales/new", s.saleCreateAction)
	g.GET("/sales", s.salesPage)
	g.GET("/receipts/:id", s.receiptPage)

	g.GET("/product-requests", s.productRequestsPage)
	g.POST("/product-requests", s.productRequestsAction)
	g.GET("/product-requests/:id", s.productRequestPage)
	g.POST("/product-requests/:id", s.ticketDetailAction)

	g.GET("/support-requests", s.supportRequestsPage)
	g.POST("/support-requests", s.supportRequestsAction)
	g.GET("/support-requests/:id", s.supportRequestPage)
	g.POST("/support-requests/:id", s.ticketDetailAction)

	g.GET("/reports", s.reportsPage)

	g.GET("/settings", s.settingsPage, s.adminRequired)
	g.POST("/settings", s.settingsAction, s.adminRequired)

	g.GET("/security", s.securityPage)
	g.POST("/security", s.securityAction)

	g.GET("/profile", s.profilePage)
	g.POST("/profile", s.profileAction)

	g.GET("/notifications", s.notificationsPage)
	g.POST("/notifications/read-all", s.notificationsReadAll)
	g.GET("/notifications/stream", s.notificationsStream)

	g.GET("/sso/authorize", s.ssoAuthorize)

	go s.gcSessions()
}

func (s *server) gcSessions() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sessions.GC()
		case <-s.shutdown:
			return
		}
	}
}

func (s *server) Start() {
	go func() {
		<-s.shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.app.Shutdown(ctx); err != nil {
			s.app.Logger.Error(err)
		}
	}()
	s.app.Logger.Fatal(s.app.Start(s.opts.Addr))
}

// signalShutdown is called by the error handler when an unrecoverable
// (core.shutdown) error is caught.
func (s *server) signalShutdown() {
	s.shutdownOnce.Do(func() { close(s.shutdown) })
}

func (s *server) Stop(ctx context.Context) error {
	s.shutdownOnce.Do(func() { close(s.shutdown) })
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}
