package usecase

import (
	"context"

	"quotawin/internal/modules/recommend/dto"
	recommendin "quotawin/internal/modules/recommend/port/in"
	"quotawin/internal/modules/recommend/service"
)

type Interactor struct {
	svc *service.RecommendService
}

func NewInteractor(svc *service.RecommendService) recommendin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Recommend(ctx context.Context, input dto.RecommendInput) (dto.RecommendationOutput, error) {
	return i.svc.Recommend(ctx, input)
}

func (i *Interactor) Week(ctx context.Context, input dto.WeekInput) (dto.WeekOutput, error) {
	return i.svc.Week(ctx, input)
}

func (i *Interactor) Day(ctx context.Context, input dto.DayInput) (dto.DayOutput, error) {
	return i.svc.Day(ctx, input)
}

func (i *Interactor) ExportPlan(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error) {
	return i.svc.ExportPlan(ctx, input)
}
