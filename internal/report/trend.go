package report

import "time"

const (
	TrendDays   = 7
	labelLayout = "01/02"
)

// Day is one local calendar day, [Start, End).
type Day struct {
	Start time.Time
	End   time.Time
	Label string
}

// Window returns the TrendDays local days ending with the day containing now,
// oldest first.
func Window(now time.Time, loc *time.Location) []Day {
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	days := make([]Day, 0, TrendDays)
	for i := TrendDays - 1; i >= 0; i-- {
		start := today.AddDate(0, 0, -i)
		days = append(days, Day{
			Start: start,
			End:   start.AddDate(0, 0, 1),
			Label: start.Format(labelLayout),
		})
	}
	return days
}

// Bounds is the half-open range covered by days.
func Bounds(days []Day) (time.Time, time.Time) {
	if len(days) == 0 {
		return time.Time{}, time.Time{}
	}
	return days[0].Start, days[len(days)-1].End
}

// Bucket counts times per day. Times outside the window are dropped.
func Bucket(days []Day, times []time.Time) []int {
	counts := make([]int, len(days))
	for _, t := range times {
		for i, d := range days {
			if !t.Before(d.Start) && t.Before(d.End) {
				counts[i]++
				break
			}
		}
	}
	return counts
}

type Dataset struct {
	Data        []int `json:"data"`
	StrokeWidth int   `json:"strokeWidth"`
}

// Trend is the chart payload the clients render.
type Trend struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

func BuildTrend(days []Day, times []time.Time) Trend {
	labels := make([]string, len(days))
	for i, d := range days {
		labels[i] = d.Label
	}
	return Trend{
		Labels:   labels,
		Datasets: []Dataset{{Data: Bucket(days, times), StrokeWidth: 2}},
	}
}
