package usecase

import (
	"context"

	"quotawin/internal/modules/usage/dto"
	usagein "quotawin/internal/modules/usage/port/in"
	"quotawin/internal/modules/usage/service"
)

type Interactor struct {
	svc *service.UsageService
}

func NewInteractor(svc *service.UsageService) usagein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Record(ctx context.Context, input dto.SampleInput) (dto.RecordOutput, error) {
	return i.svc.Record(ctx, input)
}

func (i *Interactor) ImportFile(ctx context.Context, path string) (dto.ImportOutput, error) {
	return i.svc.ImportFile(ctx, path)
}

func (i *Interactor) ImportSamples(ctx context.Context, samples []dto.SampleInput) (dto.ImportOutput, error) {
	return i.svc.ImportSamples(ctx, samples)
}

func (i *Interactor) History(ctx context.Context, input dto.HistoryInput) ([]dto.DailyUsageOutput, error) {
	return i.svc.History(ctx, input)
}

func (i *Interactor) Hours(ctx context.Context, input dto.HistoryInput) ([]dto.HourRecordOutput, error) {
	return i.svc.Hours(ctx, input)
}

func (i *Interactor) Machines(ctx context.Context) ([]dto.MachineOutput, error) {
	return i.svc.Machines(ctx)
}

func (i *Interactor) LocalIdentity(ctx context.Context) (dto.IdentityOutput, error) {
	return i.svc.LocalIdentity(ctx)
}

func (i *Interactor) MachineHours(ctx context.Context, machineID string) ([]dto.HourRecordOutput, error) {
	return i.svc.MachineHours(ctx, machineID)
}

func (i *Interactor) ReplaceMachineHours(ctx context.Context, machineID string, hours []dto.HourRecordInput) error {
	return i.svc.ReplaceMachineHours(ctx, machineID, hours)
}
