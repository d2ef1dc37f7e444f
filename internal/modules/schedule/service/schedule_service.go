package service

import (
	"context"

	"quotawin/internal/modules/schedule/domain"
	"quotawin/internal/modules/schedule/dto"
)

type ScheduleService struct {
	params       domain.Params
	workdayStart string
	workdayEnd   string
}

func NewScheduleService(params domain.Params, workdayStart, workdayEnd string) *ScheduleService {
	return &ScheduleService{params: params, workdayStart: workdayStart, workdayEnd: workdayEnd}
}

// Plan fills a missing bound from the configured workday.
func (s *ScheduleService) Plan(_ context.Context, input dto.PlanInput) (dto.ScheduleOutput, error) {
	start := input.Start
	if start == "" {
		start = s.workdayStart
	}
	end := input.End
	if end == "" {
		end = s.workdayEnd
	}
	schedule, err := domain.Plan(start, end, s.params)
	if err != nil {
		return dto.ScheduleOutput{}, err
	}
	return toOutput(schedule), nil
}

func toOutput(schedule domain.Schedule) dto.ScheduleOutput {
	windows := make([]dto.WindowOutput, 0, len(schedule.Windows))
	for _, w := range schedule.Windows {
		windows = append(windows, dto.WindowOutput{
			Start:           w.StartClock(schedule.StartMinute),
			End:             w.EndClock(schedule.StartMinute),
			OffsetMinutes:   w.StartMinute,
			DurationMinutes: w.DurationMinutes,
		})
	}
	return dto.ScheduleOutput{
		Start:         schedule.Start,
		End:           schedule.End,
		TotalMinutes:  schedule.TotalMinutes,
		StartTimes:    schedule.StartTimes(),
		Windows:       windows,
		LeadingSlack:  schedule.LeadingSlack,
		TrailingSlack: schedule.TrailingSlack,
		MinSlack:      schedule.MinSlack,
	}
}
