package out

import (
	"context"
	"time"

	"quotawin/internal/modules/usage/domain"
)

type HourStore interface {
	UpsertSample(ctx context.Context, sample domain.Sample, updatedAt time.Time) error
	ListHours(ctx context.Context, from, to time.Time) ([]domain.HourRecord, error)
	ListMachineHours(ctx context.Context, machineID string) ([]domain.HourRecord, error)
	ReplaceMachineHours(ctx context.Context, machineID string, records []domain.HourRecord) error
	Machines(ctx context.Context) ([]domain.MachineSummary, error)
}

// SampleReader parses an exported sample log. Machine ids are left empty.
type SampleReader interface {
	ReadSamples(ctx context.Context, path string) ([]domain.Sample, error)
}

type Identity struct {
	MachineID string
	Hostname  string
}

type IdentityProvider interface {
	Local(ctx context.Context) (Identity, error)
}
