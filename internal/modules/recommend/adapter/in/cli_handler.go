package in

import (
	"context"

	"quotawin/internal/modules/recommend/dto"
	recommendin "quotawin/internal/modules/recommend/port/in"
)

type CLIHandler struct {
	usecase recommendin.Usecase
}

func NewCLIHandler(usecase recommendin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Recommend(ctx context.Context, days int) (dto.RecommendationOutput, error) {
	return h.usecase.Recommend(ctx, dto.RecommendInput{Days: days})
}

func (h CLIHandler) Week(ctx context.Context, days int) (dto.WeekOutput, error) {
	return h.usecase.Week(ctx, dto.WeekInput{Days: days})
}

func (h CLIHandler) Day(ctx context.Context, day string, days int) (dto.DayOutput, error) {
	return h.usecase.Day(ctx, dto.DayInput{Day: day, Days: days})
}

func (h CLIHandler) Export(ctx context.Context, path string, days int) (dto.ExportOutput, error) {
	return h.usecase.ExportPlan(ctx, dto.ExportInput{Path: path, Days: days})
}
