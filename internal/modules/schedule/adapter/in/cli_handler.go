package in

import (
	"context"

	"quotawin/internal/modules/schedule/dto"
	schedulein "quotawin/internal/modules/schedule/port/in"
)

type CLIHandler struct {
	usecase schedulein.Usecase
}

func NewCLIHandler(usecase schedulein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Plan(ctx context.Context, start, end string) (dto.ScheduleOutput, error) {
	return h.usecase.Plan(ctx, dto.PlanInput{Start: start, End: end})
}
