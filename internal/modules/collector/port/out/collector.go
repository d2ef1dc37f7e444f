package out

import (
	"context"
	"time"

	"quotawin/internal/modules/collector/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	Collect(ctx context.Context, manifest domain.Manifest, req domain.CollectRequest) ([]domain.Sample, error)
}

type CursorStore interface {
	Load(ctx context.Context, name string) (time.Time, error)
	Save(ctx context.Context, name string, lastSeen time.Time) error
}

type SampleSink interface {
	Import(ctx context.Context, samples []domain.Sample) (int, error)
}
