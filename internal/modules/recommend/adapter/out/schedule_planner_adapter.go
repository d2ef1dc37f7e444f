package out

import (
	"context"

	"quotawin/internal/modules/recommend/domain"
	scheduledto "quotawin/internal/modules/schedule/dto"
	schedulein "quotawin/internal/modules/schedule/port/in"
)

type SchedulePlannerAdapter struct {
	schedule schedulein.Usecase
}

func NewSchedulePlannerAdapter(schedule schedulein.Usecase) SchedulePlannerAdapter {
	return SchedulePlannerAdapter{schedule: schedule}
}

func (a SchedulePlannerAdapter) Plan(ctx context.Context, start, end string) (domain.DaySchedule, error) {
	out, err := a.schedule.Plan(ctx, scheduledto.PlanInput{Start: start, End: end})
	if err != nil {
		return domain.DaySchedule{}, err
	}
	windows := make([]domain.ScheduledWindow, 0, len(out.Windows))
	for _, w := range out.Windows {
		windows = append(windows, domain.ScheduledWindow{Start: w.Start, End: w.End})
	}
	return domain.DaySchedule{
		Start:      out.Start,
		End:        out.End,
		StartTimes: out.StartTimes,
		Windows:    windows,
	}, nil
}
