package in

import (
	"context"
	"time"

	"quotawin/internal/modules/usage/dto"
	usagein "quotawin/internal/modules/usage/port/in"
)

type CLIHandler struct {
	usecase usagein.Usecase
}

func NewCLIHandler(usecase usagein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Record(ctx context.Context, at time.Time, pct float64, source string) (dto.RecordOutput, error) {
	return h.usecase.Record(ctx, dto.SampleInput{Timestamp: at, UsagePct: pct, Source: source})
}

func (h CLIHandler) Import(ctx context.Context, path string) (dto.ImportOutput, error) {
	return h.usecase.ImportFile(ctx, path)
}

func (h CLIHandler) History(ctx context.Context, days int) ([]dto.DailyUsageOutput, error) {
	return h.usecase.History(ctx, dto.HistoryInput{Days: days})
}

func (h CLIHandler) Machines(ctx context.Context) ([]dto.MachineOutput, error) {
	return h.usecase.Machines(ctx)
}
