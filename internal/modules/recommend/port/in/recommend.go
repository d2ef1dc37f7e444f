package in

import (
	"context"

	"quotawin/internal/modules/recommend/dto"
)

type Usecase interface {
	Recommend(ctx context.Context, input dto.RecommendInput) (dto.RecommendationOutput, error)
	Week(ctx context.Context, input dto.WeekInput) (dto.WeekOutput, error)
	Day(ctx context.Context, input dto.DayInput) (dto.DayOutput, error)
	ExportPlan(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error)
}
