package dto

type PlanInput struct {
	Start string
	End   string
}

type WindowOutput struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	OffsetMinutes   int    `json:"offset_minutes"`
	DurationMinutes int    `json:"duration_minutes"`
}

type ScheduleOutput struct {
	Start         string         `json:"start"`
	End           string         `json:"end"`
	TotalMinutes  int            `json:"total_minutes"`
	StartTimes    []string       `json:"start_times"`
	Windows       []WindowOutput `json:"windows"`
	LeadingSlack  int            `json:"leading_slack_minutes"`
	TrailingSlack int            `json:"trailing_slack_minutes"`
	MinSlack      int            `json:"min_slack_minutes"`
}
