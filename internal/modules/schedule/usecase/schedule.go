package usecase

import (
	"context"

	"quotawin/internal/modules/schedule/dto"
	schedulein "quotawin/internal/modules/schedule/port/in"
	"quotawin/internal/modules/schedule/service"
)

type Interactor struct {
	svc *service.ScheduleService
}

func NewInteractor(svc *service.ScheduleService) schedulein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Plan(ctx context.Context, input dto.PlanInput) (dto.ScheduleOutput, error) {
	return i.svc.Plan(ctx, input)
}
