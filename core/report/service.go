package report

import (
	"time"

	"github.com/telepoint/backoffice/core"
)

// NowFunc is only mocked by tests.
var NowFunc func() time.Time = time.Now

type (
	Repository interface {
		SalesSummary(from, to time.Time) (Summary, error)
		RevenueByDay(from, to time.Time) ([]DayRevenue, error)
		TopProducts(from, to time.Time, limit int) ([]ProductSales, error)
		RevenueByPaymentMethod(from, to time.Time) (map[string]float64, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Range resolves a named period to a [from, to) window in the business
// timezone. Unknown periods fall back to today.
func Range(period string) (time.Time, time.Time) {
	loc := core.Conf.Location()
	now := NowFunc().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch period {
	case PeriodWeek:
		// the week starts on Monday
		offset := (int(today.Weekday()) + 6) % 7
		from := today.AddDate(0, 0, -offset)
		return from, from.AddDate(0, 0, 7)
	case PeriodMonth:
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(0, 1, 0)
	case PeriodYear:
		from := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)
		return from, from.AddDate(1, 0, 0)
	default:
		return today, today.AddDate(0, 0, 1)
	}
}

func (svc *Service) Summary(period string) (Summary, error) {
	from, to := Range(period)
	return svc.repo.SalesSummary(from, to)
}

func (svc *Service) RevenueByDay(period string) ([]DayRevenue, error) {
	from, to := Range(period)
	return svc.repo.RevenueByDay(from, to)
}

func (svc *Service) TopProducts(period string, limit int) ([]ProductSales, error) {
	from, to := Range(period)
	if limit <= 0 {
		limit = 10
	}
	return svc.repo.TopProducts(from, to, limit)
}

func (svc *Service) RevenueByPaymentMethod(period string) (map[string]float64, error) {
	from, to := Range(period)
	return svc.repo.RevenueByPaymentMethod(from, to)
}
