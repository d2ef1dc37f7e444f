package domain

import "time"

// DaySchedule is a window layout for one workday.
type DaySchedule struct {
	Start      string
	End        string
	StartTimes []string
	Windows    []ScheduledWindow
}

type ScheduledWindow struct {
	Start string
	End   string
}

// ExportedPlan is everything written to a plan note.
type ExportedPlan struct {
	GeneratedAt    time.Time
	HistoryDays    int
	Recommendation StartTimeRecommendation
	HasStart       bool
	Week           []WeekdayPlan
	Today          DaySchedule
}
