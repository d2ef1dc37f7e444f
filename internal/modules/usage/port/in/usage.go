package in

import (
	"context"

	"quotawin/internal/modules/usage/dto"
)

type Usecase interface {
	Record(ctx context.Context, input dto.SampleInput) (dto.RecordOutput, error)
	ImportFile(ctx context.Context, path string) (dto.ImportOutput, error)
	ImportSamples(ctx context.Context, samples []dto.SampleInput) (dto.ImportOutput, error)
	History(ctx context.Context, input dto.HistoryInput) ([]dto.DailyUsageOutput, error)
	Hours(ctx context.Context, input dto.HistoryInput) ([]dto.HourRecordOutput, error)
	Machines(ctx context.Context) ([]dto.MachineOutput, error)
	LocalIdentity(ctx context.Context) (dto.IdentityOutput, error)
	MachineHours(ctx context.Context, machineID string) ([]dto.HourRecordOutput, error)
	ReplaceMachineHours(ctx context.Context, machineID string, hours []dto.HourRecordInput) error
}
