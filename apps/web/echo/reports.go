package echoweb

import (
	"github.com/labstack/echo/v4"

	"github.com/telepoint/backoffice/core"
	"github.com/telepoint/backoffice/core/report"
)

func (s *server) reportsPage(ctx echo.Context) error {
	period := core.CleanString(ctx.QueryParam("period"), true /* lower */)
	valid := false
	for _, p := range report.Periods {
		if p == period {
			valid = true
			break
		}
	}
	if !valid {
		period = report.PeriodToday
	}

	summary, err := s.opts.ReportSvc.Summary(period)
	if err != nil {
		return err
	}
	byDay, err := s.opts.ReportSvc.RevenueByDay(period)
	if err != nil {
		return err
	}
	topProducts, err := s.opts.ReportSvc.TopProducts(period, 0 /* default */)
	if err != nil {
		return err
	}
	byPayment, err := s.opts.ReportSvc.RevenueByPaymentMethod(period)
	if err != nil {
		return err
	}

	return s.render(ctx, "reports", "Report", echo.Map{
		"Period":      period,
		"Periods":     report.Periods,
		"Summary":     summary,
		"ByDay":       byDay,
		"TopProducts": topProducts,
		"ByPayment":   byPayment,
	})
}
