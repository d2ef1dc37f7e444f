package domain

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"quotawin/internal/platform/clock"
	apperrors "quotawin/internal/platform/errors"
)

// Sample is one reading of the rolling quota percentage.
type Sample struct {
	Timestamp time.Time
	UsagePct  float64
	MachineID string
	Source    string
}

func (s Sample) Validate() error {
	if s.Timestamp.IsZero() {
		return fmt.Errorf("%w: sample timestamp is required", apperrors.ErrInvalidInput)
	}
	if err := validatePct(s.UsagePct); err != nil {
		return err
	}
	if s.MachineID == "" {
		return fmt.Errorf("%w: sample machine id is required", apperrors.ErrInvalidInput)
	}
	return nil
}

func (s Sample) HourStart() time.Time {
	return clock.StartOfHour(s.Timestamp)
}

// HourRecord is the persisted per-machine maximum for one clock hour.
type HourRecord struct {
	HourStart time.Time
	MachineID string
	UsagePct  float64
	Samples   int
	UpdatedAt time.Time
}

func (r HourRecord) Validate() error {
	if r.HourStart.IsZero() || !r.HourStart.Equal(clock.StartOfHour(r.HourStart)) {
		return fmt.Errorf("%w: hour start %v is not on the hour", apperrors.ErrInvalidInput, r.HourStart)
	}
	if r.MachineID == "" {
		return fmt.Errorf("%w: machine id is required", apperrors.ErrInvalidInput)
	}
	if r.Samples < 0 {
		return fmt.Errorf("%w: sample count must not be negative", apperrors.ErrInvalidInput)
	}
	return validatePct(r.UsagePct)
}

type MachineSummary struct {
	MachineID string
	Hours     int
	LastHour  time.Time
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

// NewDailyUsage derives the summary fields from hours, which must already
// be chronological and hour-unique.
func NewDailyUsage(date string, hours []HourlyActivity) DailyUsage {
	day := DailyUsage{Date: date, Hours: hours, TotalActiveHours: len(hours)}
	if len(hours) == 0 {
		day.Hours = []HourlyActivity{}
		return day
	}
	values := make(stats.Float64Data, 0, len(hours))
	day.PeakHour = hours[0].Hour
	day.PeakUsage = hours[0].UsagePct
	for _, h := range hours {
		values = append(values, h.UsagePct)
		if h.UsagePct > day.PeakUsage {
			day.PeakHour = h.Hour
			day.PeakUsage = h.UsagePct
		}
	}
	if mean, err := stats.Mean(values); err == nil {
		day.AvgUsage = mean
	}
	return day
}

// Aggregate folds hour records into one DailyUsage per UTC date, oldest
// first. Machines observe the same quota, so overlapping hours keep the
// highest reading.
func Aggregate(records []HourRecord) []DailyUsage {
	byDate := map[string]map[int]float64{}
	for _, r := range records {
		date := clock.FormatDate(r.HourStart)
		hours, ok := byDate[date]
		if !ok {
			hours = map[int]float64{}
			byDate[date] = hours
		}
		hour := r.HourStart.UTC().Hour()
		if current, seen := hours[hour]; !seen || r.UsagePct > current {
			hours[hour] = r.UsagePct
		}
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]DailyUsage, 0, len(dates))
	for _, date := range dates {
		hours := make([]HourlyActivity, 0, len(byDate[date]))
		for hour, pct := range byDate[date] {
			hours = append(hours, HourlyActivity{Hour: hour, UsagePct: pct})
		}
		sort.Slice(hours, func(i, j int) bool { return hours[i].Hour < hours[j].Hour })
		out = append(out, NewDailyUsage(date, hours))
	}
	return out
}

func validatePct(pct float64) error {
	if math.IsNaN(pct) || math.IsInf(pct, 0) || pct < 0 {
		return fmt.Errorf("%w: usage percentage %v must be a finite non-negative number", apperrors.ErrInvalidInput, pct)
	}
	return nil
}
