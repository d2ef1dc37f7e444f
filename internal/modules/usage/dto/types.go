package dto

import "time"

type SampleInput struct {
	Timestamp time.Time
	UsagePct  float64
	Source    string
}

type RecordOutput struct {
	MachineID string
	HourStart time.Time
}

type ImportOutput struct {
	Imported int
	Dates    []string
}

// MaxHistoryDays bounds every history range, about ten years.
const MaxHistoryDays = 3660

// HistoryInput selects whole UTC days. Days counts back from today and is
// used when From is zero.
type HistoryInput struct {
	From time.Time
	To   time.Time
	Days int
}

type HourlyActivityOutput struct {
	Hour     int     `json:"hour"`
	UsagePct float64 `json:"usage_pct"`
}

type DailyUsageOutput struct {
	Date             string                 `json:"date"`
	Hours            []HourlyActivityOutput `json:"hours"`
	PeakHour         int                    `json:"peak_hour"`
	PeakUsage        float64                `json:"peak_usage"`
	TotalActiveHours int                    `json:"total_active_hours"`
	AvgUsage         float64                `json:"avg_usage"`
}

type HourRecordOutput struct {
	HourStart time.Time `json:"hour_start"`
	MachineID string    `json:"machine_id"`
	UsagePct  float64   `json:"usage_pct"`
	Samples   int       `json:"samples"`
	UpdatedAt time.Time `json:"updated_at"`
}

type HourRecordInput struct {
	HourStart time.Time
	UsagePct  float64
	Samples   int
}

type MachineOutput struct {
	MachineID string    `json:"machine_id"`
	Hours     int       `json:"hours"`
	LastHour  time.Time `json:"last_hour"`
	Local     bool      `json:"local"`
}

type IdentityOutput struct {
	MachineID string
	Hostname  string
}
