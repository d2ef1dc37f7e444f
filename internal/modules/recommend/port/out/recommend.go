package out

import (
	"context"

	"quotawin/internal/modules/recommend/domain"
)

// UsageHistory loads the per-day aggregates of the last days days.
type UsageHistory interface {
	LastDays(ctx context.Context, days int) ([]domain.DailyUsage, error)
}

type WindowPlanner interface {
	Plan(ctx context.Context, start, end string) (domain.DaySchedule, error)
}

type PlanWriter interface {
	Write(ctx context.Context, path string, plan domain.ExportedPlan) error
}
