package out

import (
	"context"

	"quotawin/internal/modules/recommend/domain"
	usagedto "quotawin/internal/modules/usage/dto"
	usagein "quotawin/internal/modules/usage/port/in"
)

type UsageHistoryAdapter struct {
	usage usagein.Usecase
}

func NewUsageHistoryAdapter(usage usagein.Usecase) UsageHistoryAdapter {
	return UsageHistoryAdapter{usage: usage}
}

func (a UsageHistoryAdapter) LastDays(ctx context.Context, days int) ([]domain.DailyUsage, error) {
	history, err := a.usage.History(ctx, usagedto.HistoryInput{Days: days})
	if err != nil {
		return nil, err
	}
	out := make([]domain.DailyUsage, 0, len(history))
	for _, day := range history {
		hours := make([]domain.HourlyActivity, 0, len(day.Hours))
		for _, h := range day.Hours {
			hours = append(hours, domain.HourlyActivity{Hour: h.Hour, UsagePct: h.UsagePct})
		}
		out = append(out, domain.DailyUsage{
			Date:             day.Date,
			Hours:            hours,
			PeakHour:         day.PeakHour,
			PeakUsage:        day.PeakUsage,
			TotalActiveHours: day.TotalActiveHours,
			AvgUsage:         day.AvgUsage,
		})
	}
	return out, nil
}
