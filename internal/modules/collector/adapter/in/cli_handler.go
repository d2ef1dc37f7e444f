package in

import (
	"context"

	"quotawin/internal/modules/collector/dto"
	collectorin "quotawin/internal/modules/collector/port/in"
)

type CLIHandler struct {
	usecase collectorin.Usecase
}

func NewCLIHandler(usecase collectorin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.CollectorInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) Run(ctx context.Context, name string) ([]dto.RunResult, error) {
	return h.usecase.Run(ctx, name)
}
