package report_test

import (
	"testing"
	"time"

	"github.com/elle-sys/automated-attendance-tracking-system/internal/report"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 02:30 UTC on the 10th is still the 9th in New York.
	now := time.Date(2026, 3, 10, 2, 30, 0, 0, time.UTC)
	days := report.Window(now, loc)

	require.Len(t, days, report.TrendDays)

	labels := make([]string, 0, len(days))
	for _, d := range days {
		labels = append(labels, d.Label)
	}
	assert.Equal(t, []string{"03/03", "03/04", "03/05", "03/06", "03/07", "03/08", "03/09"}, labels)

	for i, d := range days {
		assert.Equal(t, 0, d.Start.Hour())
		assert.Equal(t, 0, d.Start.Minute())
		if i > 0 {
			assert.True(t, days[i-1].End.Equal(d.Start), "day %d does not start where day %d ends", i, i-1)
		}
	}

	// 03/08 is the spring-forward day.
	assert.Equal(t, 23*time.Hour, days[5].End.Sub(days[5].Start))
}

func TestWindow_NilLocationUsesLocal(t *testing.T) {
	now := time.Now()
	days := report.Window(now, nil)

	require.Len(t, days, report.TrendDays)
	last := days[len(days)-1]
	assert.Equal(t, now.In(time.Local).Format("01/02"), last.Label)
	assert.False(t, now.Before(last.Start))
	assert.True(t, now.Before(last.End))
}

func TestBucket(t *testing.T) {
	days := report.Window(time.Date(2026, 1, 7, 15, 0, 0, 0, time.UTC), time.UTC)
	from, to := report.Bounds(days)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC), to)

	times := []time.Time{
		from,                       // first instant of day 0
		from.Add(-time.Nanosecond), // before the window
		time.Date(2026, 1, 3, 23, 59, 59, 999_000_000, time.UTC),
		time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 7, 14, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 7, 18, 0, 0, 0, time.UTC),
		to, // after the window
	}

	counts := report.Bucket(days, times)
	assert.Equal(t, []int{1, 0, 1, 1, 0, 0, 2}, counts)

	total := 0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, 5, total)
}

func TestBuildTrend_NoTimes(t *testing.T) {
	days := report.Window(time.Date(2026, 12, 31, 12, 0, 0, 0, time.UTC), time.UTC)

	trend := report.BuildTrend(days, nil)

	assert.Equal(t, []string{"12/25", "12/26", "12/27", "12/28", "12/29", "12/30", "12/31"}, trend.Labels)
	require.Len(t, trend.Datasets, 1)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0}, trend.Datasets[0].Data)
}
