package domain

import (
	"github.com/montanaflynn/stats"

	"quotawin/internal/platform/clock"
)

// RecommendedWindow covers the clock hours [StartHour, EndHour).
type RecommendedWindow struct {
	StartHour int
	EndHour   int
}

func (w RecommendedWindow) Start() string {
	return clock.FormatTimeFromHourMinute(w.StartHour, 0)
}

func (w RecommendedWindow) End() string {
	return clock.FormatTimeFromHourMinute(w.EndHour%24, 0)
}

func (w RecommendedWindow) Hours() int {
	return w.EndHour - w.StartHour
}

type DayRecommendation struct {
	Day                clock.Weekday
	Windows            []RecommendedWindow
	TotalExpectedHours int
	AvgUsage           float64
}

// FilterByWeekday keeps the days whose date falls on day. Entries without a
// parseable date are dropped.
func FilterByWeekday(day clock.Weekday, days []DailyUsage) []DailyUsage {
	out := []DailyUsage{}
	for _, d := range days {
		weekday, err := clock.DayOfDate(d.Date)
		if err != nil || weekday != day {
			continue
		}
		out = append(out, d)
	}
	return out
}

// CalculateDayRecommendation summarises every observed day that falls on
// day. Each maximal run of consecutive hours that saw usage on any of those
// days becomes one window.
func CalculateDayRecommendation(day clock.Weekday, days []DailyUsage) DayRecommendation {
	matched := FilterByWeekday(day, days)
	rec := DayRecommendation{Day: day, Windows: []RecommendedWindow{}}
	if len(matched) == 0 {
		return rec
	}

	var active [24]bool
	averages := make(stats.Float64Data, 0, len(matched))
	for _, d := range matched {
		rec.TotalExpectedHours += d.TotalActiveHours
		averages = append(averages, d.AvgUsage)
		for _, h := range d.Hours {
			if h.Hour >= 0 && h.Hour < 24 && h.UsagePct > 0 {
				active[h.Hour] = true
			}
		}
	}
	rec.Windows = contiguousRuns(active)
	if mean, err := stats.Mean(averages); err == nil {
		if rounded, err := stats.Round(mean, 2); err == nil {
			rec.AvgUsage = rounded
		}
	}
	return rec
}

func contiguousRuns(active [24]bool) []RecommendedWindow {
	runs := []RecommendedWindow{}
	start := -1
	for hour := 0; hour <= 24; hour++ {
		on := hour < 24 && active[hour]
		switch {
		case on && start < 0:
			start = hour
		case !on && start >= 0:
			runs = append(runs, RecommendedWindow{StartHour: start, EndHour: hour})
			start = -1
		}
	}
	return runs
}

type WeekdayPlan struct {
	DayRecommendation
	Start    StartTimeRecommendation
	HasStart bool
}

// CalculateWeek returns one plan per weekday, Monday first, each with the
// start time computed from that weekday's days alone.
func CalculateWeek(days []DailyUsage, p Params) []WeekdayPlan {
	week := make([]WeekdayPlan, 0, 7)
	for _, day := range clock.Weekdays() {
		plan := WeekdayPlan{DayRecommendation: CalculateDayRecommendation(day, days)}
		plan.Start, plan.HasStart = CalculateOptimalStartTime(FilterByWeekday(day, days), p)
		week = append(week, plan)
	}
	return week
}
