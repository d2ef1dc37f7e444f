package service

import (
	"context"
	"fmt"

	"quotawin/internal/modules/recommend/domain"
	"quotawin/internal/modules/recommend/dto"
	recommendout "quotawin/internal/modules/recommend/port/out"
	"quotawin/internal/platform/clock"
	apperrors "quotawin/internal/platform/errors"
)

type Options struct {
	Params       domain.Params
	HistoryDays  int
	WorkdayStart string
	WorkdayEnd   string
}

type RecommendService struct {
	history recommendout.UsageHistory
	planner recommendout.WindowPlanner
	writer  recommendout.PlanWriter
	clock   clock.Clock
	opts    Options
}

func NewRecommendService(history recommendout.UsageHistory, planner recommendout.WindowPlanner, writer recommendout.PlanWriter, clk clock.Clock, opts Options) *RecommendService {
	return &RecommendService{history: history, planner: planner, writer: writer, clock: clk, opts: opts}
}

func (s *RecommendService) Recommend(ctx context.Context, input dto.RecommendInput) (dto.RecommendationOutput, error) {
	days := s.historyDays(input.Days)
	history, err := s.history.LastDays(ctx, days)
	if err != nil {
		return dto.RecommendationOutput{}, err
	}
	rec, ok := domain.CalculateOptimalStartTime(history, s.opts.Params)
	if !ok {
		return dto.RecommendationOutput{HistoryDays: days}, nil
	}
	return toRecommendationOutput(rec, days), nil
}

func (s *RecommendService) Week(ctx context.Context, input dto.WeekInput) (dto.WeekOutput, error) {
	days := s.historyDays(input.Days)
	history, err := s.history.LastDays(ctx, days)
	if err != nil {
		return dto.WeekOutput{}, err
	}
	week := domain.CalculateWeek(history, s.opts.Params)
	out := dto.WeekOutput{HistoryDays: days, Days: make([]dto.DayOutput, 0, len(week))}
	for _, plan := range week {
		out.Days = append(out.Days, toDayOutput(plan))
	}
	return out, nil
}

func (s *RecommendService) Day(ctx context.Context, input dto.DayInput) (dto.DayOutput, error) {
	day, err := clock.ParseWeekday(input.Day)
	if err != nil {
		return dto.DayOutput{}, err
	}
	history, err := s.history.LastDays(ctx, s.historyDays(input.Days))
	if err != nil {
		return dto.DayOutput{}, err
	}
	plan := domain.WeekdayPlan{DayRecommendation: domain.CalculateDayRecommendation(day, history)}
	plan.Start, plan.HasStart = domain.CalculateOptimalStartTime(domain.FilterByWeekday(day, history), s.opts.Params)
	return toDayOutput(plan), nil
}

// ExportPlan writes the weekly plan and today's window layout. Without
// history today's layout starts at the configured workday start.
func (s *RecommendService) ExportPlan(ctx context.Context, input dto.ExportInput) (dto.ExportOutput, error) {
	if input.Path == "" {
		return dto.ExportOutput{}, fmt.Errorf("%w: export path is required", apperrors.ErrInvalidInput)
	}
	days := s.historyDays(input.Days)
	history, err := s.history.LastDays(ctx, days)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	rec, ok := domain.CalculateOptimalStartTime(history, s.opts.Params)
	start := s.opts.WorkdayStart
	if ok {
		start = rec.Start()
	}
	today, err := s.planner.Plan(ctx, start, s.opts.WorkdayEnd)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	plan := domain.ExportedPlan{
		GeneratedAt:    clock.Now(s.clock),
		HistoryDays:    days,
		Recommendation: rec,
		HasStart:       ok,
		Week:           domain.CalculateWeek(history, s.opts.Params),
		Today:          today,
	}
	if err := s.writer.Write(ctx, input.Path, plan); err != nil {
		return dto.ExportOutput{}, err
	}
	return dto.ExportOutput{
		Path:        input.Path,
		Start:       today.Start,
		FromHistory: ok,
		StartTimes:  today.StartTimes,
		GeneratedAt: plan.GeneratedAt,
	}, nil
}

func (s *RecommendService) historyDays(requested int) int {
	if requested > 0 {
		return requested
	}
	return s.opts.HistoryDays
}

func toRecommendationOutput(rec domain.StartTimeRecommendation, days int) dto.RecommendationOutput {
	return dto.RecommendationOutput{
		Available:           true,
		Start:               rec.Start(),
		StartHour:           rec.StartHour,
		StartMinute:         rec.StartMinute,
		EarliestActiveHour:  rec.EarliestActiveHour,
		ExpectedUtilization: rec.ExpectedUtilization,
		Confidence:          rec.Confidence,
		DaysObserved:        rec.DaysObserved,
		HistoryDays:         days,
	}
}

func toDayOutput(plan domain.WeekdayPlan) dto.DayOutput {
	windows := make([]dto.WindowOutput, 0, len(plan.Windows))
	for _, w := range plan.Windows {
		windows = append(windows, dto.WindowOutput{Start: w.Start(), End: w.End(), StartHour: w.StartHour, EndHour: w.EndHour})
	}
	out := dto.DayOutput{
		Day:                plan.Day.String(),
		Windows:            windows,
		TotalExpectedHours: plan.TotalExpectedHours,
		AvgUsage:           plan.AvgUsage,
	}
	if plan.HasStart {
		out.Start = plan.Start.Start()
		out.Confidence = plan.Start.Confidence
	}
	return out
}
