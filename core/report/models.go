package report

import "time"

// Reporting periods
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

var Periods = []string{PeriodToday, PeriodWeek, PeriodMonth, PeriodYear}

type (
	// Summary aggregates the sales of a period.
	Summary struct {
		Count    int     `json:"count"`
		Revenue  float64 `json:"revenue"`
		Discount float64 `json:"discount"`
		Tax      float64 `json:"tax"`
	}

	// DayRevenue is one point on the revenue chart.
	DayRevenue struct {
		Day     time.Time `json:"day"`
		Count   int       `json:"count"`
		Revenue float64   `json:"revenue"`
	}

	// ProductSales ranks a product by units moved in the period.
	ProductSales struct {
		ProductID int     `json:"product_id"`
		Name      string  `json:"name"`
		Qty       int     `json:"qty"`
		Revenue   float64 `json:"revenue"`
	}
)
