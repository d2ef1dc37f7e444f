package domain

import (
	"github.com/montanaflynn/stats"

	"quotawin/internal/platform/clock"
)

type Params struct {
	// LeadInMinutes is how long before the first active hour a window
	// should be triggered.
	LeadInMinutes int
	// SaturationDays is the number of distinct observed days at which
	// confidence reaches 1.
	SaturationDays int
}

func DefaultParams() Params {
	return Params{LeadInMinutes: 15, SaturationDays: 5}
}

type HourlyActivity struct {
	Hour     int
	UsagePct float64
}

type DailyUsage struct {
	Date             string
	Hours            []HourlyActivity
	PeakHour         int
	PeakUsage        float64
	TotalActiveHours int
	AvgUsage         float64
}

type StartTimeRecommendation struct {
	StartHour           int
	StartMinute         int
	EarliestActiveHour  int
	ExpectedUtilization float64
	Confidence          float64
	DaysObserved        int
}

func (r StartTimeRecommendation) Start() string {
	return clock.FormatTimeFromHourMinute(r.StartHour, r.StartMinute)
}

// CalculateOptimalStartTime recommends triggering the first window
// LeadInMinutes before the earliest hour that ever saw usage. It reports
// false when no day has a non-zero hour.
func CalculateOptimalStartTime(days []DailyUsage, p Params) (StartTimeRecommendation, bool) {
	earliest := -1
	active := stats.Float64Data{}
	for _, day := range days {
		for _, h := range day.Hours {
			if h.UsagePct <= 0 {
				continue
			}
			active = append(active, h.UsagePct)
			if earliest < 0 || h.Hour < earliest {
				earliest = h.Hour
			}
		}
	}
	if earliest < 0 {
		return StartTimeRecommendation{}, false
	}

	start := clock.NormalizeMinutes(earliest*60 - p.LeadInMinutes)
	utilization, _ := stats.Mean(active)
	observed := distinctDays(days)
	return StartTimeRecommendation{
		StartHour:           start / 60,
		StartMinute:         start % 60,
		EarliestActiveHour:  earliest,
		ExpectedUtilization: clamp(utilization, 0, 100),
		Confidence:          confidence(observed, p.SaturationDays),
		DaysObserved:        observed,
	}, true
}

func confidence(observed, saturation int) float64 {
	if saturation <= 0 {
		return 1
	}
	value := float64(observed) / float64(saturation)
	if value > 1 {
		return 1
	}
	return value
}

// distinctDays counts unique dates. Undated entries each count once.
func distinctDays(days []DailyUsage) int {
	seen := map[string]struct{}{}
	undated := 0
	for _, day := range days {
		if day.Date == "" {
			undated++
			continue
		}
		seen[day.Date] = struct{}{}
	}
	return len(seen) + undated
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
