package usecase

import (
	"context"

	"quotawin/internal/modules/sync/dto"
	syncin "quotawin/internal/modules/sync/port/in"
	"quotawin/internal/modules/sync/service"
)

type Interactor struct {
	svc *service.SyncService
}

func NewInteractor(svc *service.SyncService) syncin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Push(ctx context.Context) (dto.PushOutput, error) {
	return i.svc.Push(ctx)
}

func (i *Interactor) Pull(ctx context.Context) (dto.PullOutput, error) {
	return i.svc.Pull(ctx)
}

func (i *Interactor) Status(ctx context.Context) (dto.StatusOutput, error) {
	return i.svc.Status(ctx)
}
