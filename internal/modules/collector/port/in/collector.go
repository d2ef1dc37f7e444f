package in

import (
	"context"

	"quotawin/internal/modules/collector/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.CollectorInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	// Run drains one collector by name, or every enabled collector when
	// name is empty.
	Run(ctx context.Context, name string) ([]dto.RunResult, error)
}
