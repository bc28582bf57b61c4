package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/telepoint/backoffice/core"
)

func mockNow(t *testing.T, at time.Time) {
	t.Helper()
	NowFunc = func() time.Time { return at }
	t.Cleanup(func() { NowFunc = time.Now })
}

func TestRange(t *testing.T) {
	loc := core.Conf.Location()
	// Wednesday
	mockNow(t, time.Date(2021, time.June, 16, 15, 4, 5, 0, loc))

	tests := []struct {
		period   string
		from, to time.Time
	}{
		{PeriodToday,
			time.Date(2021, time.June, 16, 0, 0, 0, 0, loc),
			time.Date(2021, time.June, 17, 0, 0, 0, 0, loc)},
		{PeriodWeek, // Monday through next Monday
			time.Date(2021, time.June, 14, 0, 0, 0, 0, loc),
			time.Date(2021, time.June, 21, 0, 0, 0, 0, loc)},
		{PeriodMonth,
			time.Date(2021, time.June, 1, 0, 0, 0, 0, loc),
			time.Date(2021, time.July, 1, 0, 0, 0, 0, loc)},
		{PeriodYear,
			time.Date(2021, time.January, 1, 0, 0, 0, 0, loc),
			time.Date(2022, time.January, 1, 0, 0, 0, 0, loc)},
		{"bogus", // unknown periods fall back to today
			time.Date(2021, time.June, 16, 0, 0, 0, 0, loc),
			time.Date(2021, time.June, 17, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			from, to := Range(tt.period)
			assert.True(t, from.Equal(tt.from), "from = %s", from)
			assert.True(t, to.Equal(tt.to), "to = %s", to)
		})
	}
}

func TestRange_weekStartsMondayOnSunday(t *testing.T) {
	loc := core.Conf.Location()
	// Sunday still belongs to the week that started the previous Monday
	mockNow(t, time.Date(2021, time.June, 20, 10, 0, 0, 0, loc))

	from, to := Range(PeriodWeek)
	assert.True(t, from.Equal(time.Date(2021, time.June, 14, 0, 0, 0, 0, loc)), "from = %s", from)
	assert.True(t, to.Equal(time.Date(2021, time.June, 21, 0, 0, 0, 0, loc)), "to = %s", to)
}
