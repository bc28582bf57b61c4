package echoweb

import (
	"github.com/labstack/echo/v4"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/report"
	"github.com/telepoint/backoffice/core/ticket"
)

func (s *server) dashboard(ctx echo.Context) error {
	today, err := s.opts.ReportSvc.Summary(report.PeriodToday)
	if err != nil {
		return err
	}
	customers, err := s.opts.CustomerSvc.Count()
	if err != nil {
		return err
	}
	simCounts, err := s.opts.CatalogSvc.SIMCountsByStatus()
	if err != nil {
		return err
	}
	lowStock, err := s.opts.CatalogSvc.LowStock(core.Conf.Alerts.LowStockThreshold)
	if err != nil {
		return err
	}
	supportCounts, err := s.opts.TicketSvc.CountsByStatus(ticket.KindSupport)
	if err != nil {
		return err
	}
	productCounts, err := s.opts.TicketSvc.CountsByStatus(ticket.KindProduct)
	if err != nil {
		return err
	}

	return s.render(ctx, "dashboard", "Cruscotto", echo.Map{
		"Today":         today,
		"CustomerCount": customers,
		"SIMCounts":     simCounts,
		"LowStock":      lowStock,
		"SupportCounts": supportCounts,
		"ProductCounts": productCounts,
	})
}
