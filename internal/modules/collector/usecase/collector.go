package usecase

import (
	"context"

	"quotawin/internal/modules/collector/dto"
	collectorin "quotawin/internal/modules/collector/port/in"
	"quotawin/internal/modules/collector/service"
)

type Interactor struct {
	svc *service.CollectorService
}

func NewInteractor(svc *service.CollectorService) collectorin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.CollectorInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Run(ctx context.Context, name string) ([]dto.RunResult, error) {
	return i.svc.Run(ctx, name)
}
