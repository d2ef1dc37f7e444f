package dto

import "time"

type RecommendInput struct {
	Days int
}

type RecommendationOutput struct {
	Available           bool    `json:"available"`
	Start               string  `json:"start,omitempty"`
	StartHour           int     `json:"start_hour"`
	StartMinute         int     `json:"start_minute"`
	EarliestActiveHour  int     `json:"earliest_active_hour"`
	ExpectedUtilization float64 `json:"expected_utilization"`
	Confidence          float64 `json:"confidence"`
	DaysObserved        int     `json:"days_observed"`
	HistoryDays         int     `json:"history_days"`
}

type WeekInput struct {
	Days int
}

type DayInput struct {
	Day  string
	Days int
}

type WindowOutput struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
}

type DayOutput struct {
	Day                string         `json:"day"`
	Windows            []WindowOutput `json:"windows"`
	TotalExpectedHours int            `json:"total_expected_hours"`
	AvgUsage           float64        `json:"avg_usage"`
	Start              string         `json:"start,omitempty"`
	Confidence         float64        `json:"confidence"`
}

type WeekOutput struct {
	HistoryDays int         `json:"history_days"`
	Days        []DayOutput `json:"days"`
}

type ExportInput struct {
	Path string
	Days int
}

type ExportOutput struct {
	Path        string
	Start       string
	FromHistory bool
	StartTimes  []string
	GeneratedAt time.Time
}
