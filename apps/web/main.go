package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoweb "github.com/telepoint/backoffice/apps/web/echo"
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
	emailsvc "github.com/telepoint/backoffice/services/email"
	logsvc "github.com/telepoint/backoffice/services/logger"
	"github.com/telepoint/backoffice/storage/database"
	sqlxrepos "github.com/telepoint/backoffice/storage/database/sqlx"
)

func main() {
	std := log.New(os.Stdout, "WEB : ", log.LstdFlags|log.Lshortfile)

	var logger core.Logger
	if core.Conf.Debug || core.Conf.TestMode {
		logger = core.NewStdLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	// set up DB
	db, err := database.Open(core.Conf)
	if err != nil {
		std.Fatal(err)
	}
	defer db.Close()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	opSvc := operator.NewService(sqlxrepos.NewOperatorRepository(db), mailSvc)
	custSvc := customer.NewService(sqlxrepos.NewCustomerRepository(db))
	catSvc := catalog.NewService(sqlxrepos.NewCatalogRepository(db))
	offerSvc := offer.NewService(sqlxrepos.NewOfferRepository(db))
	saleSvc := sale.NewService(sqlxrepos.NewSaleRepository(db), catSvc, offerSvc)
	notifSvc := notification.NewService(sqlxrepos.NewNotificationRepository(db))
	ticketSvc := ticket.NewService(sqlxrepos.NewTicketRepository(db), notifSvc, mailSvc)
	ssoSvc := sso.NewService(sqlxrepos.NewSSORepository(db), opSvc)
	reportSvc := report.NewService(sqlxrepos.NewReportRepository(db))

	// start web server
	app := echoweb.NewServer(
		&echoweb.Options{
			Addr:            core.Conf.Server.Addr,
			Logger:          logger,
			OperatorSvc:     opSvc,
			CustomerSvc:     custSvc,
			CatalogSvc:      catSvc,
			SaleSvc:         saleSvc,
			OfferSvc:        offerSvc,
			TicketSvc:       ticketSvc,
			NotificationSvc: notifSvc,
			SSOSvc:          ssoSvc,
			ReportSvc:       reportSvc,
		},
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-quit
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Stop(ctx); err != nil {
			logger.Error("server shutdown", err)
		}
	}()

	app.Start()
}
