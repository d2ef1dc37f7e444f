package out

import (
	"context"

	"quotawin/internal/modules/sync/domain"
	syncout "quotawin/internal/modules/sync/port/out"
	usagedto "quotawin/internal/modules/usage/dto"
	usagein "quotawin/internal/modules/usage/port/in"
)

type UsageAdapter struct {
	usage usagein.Usecase
}

func NewUsageAdapter(usage usagein.Usecase) UsageAdapter {
	return UsageAdapter{usage: usage}
}

func (a UsageAdapter) Identity(ctx context.Context) (syncout.Identity, error) {
	identity, err := a.usage.LocalIdentity(ctx)
	if err != nil {
		return syncout.Identity{}, err
	}
	return syncout.Identity{MachineID: identity.MachineID, Hostname: identity.Hostname}, nil
}

func (a UsageAdapter) MachineHours(ctx context.Context, machineID string) ([]domain.HourEntry, error) {
	records, err := a.usage.MachineHours(ctx, machineID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.HourEntry, 0, len(records))
	for _, r := range records {
		out = append(out, domain.HourEntry{HourStart: r.HourStart.UTC(), UsagePct: r.UsagePct, Samples: r.Samples})
	}
	return out, nil
}

func (a UsageAdapter) ReplaceMachineHours(ctx context.Context, machineID string, hours []domain.HourEntry) error {
	in := make([]usagedto.HourRecordInput, 0, len(hours))
	for _, h := range hours {
		in = append(in, usagedto.HourRecordInput{HourStart: h.HourStart, UsagePct: h.UsagePct, Samples: h.Samples})
	}
	return a.usage.ReplaceMachineHours(ctx, machineID, in)
}
