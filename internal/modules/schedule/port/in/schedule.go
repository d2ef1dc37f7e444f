package in

import (
	"context"

	"quotawin/internal/modules/schedule/dto"
)

type Usecase interface {
	Plan(ctx context.Context, input dto.PlanInput) (dto.ScheduleOutput, error)
}
