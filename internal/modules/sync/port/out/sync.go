package out

import (
	"context"

	"quotawin/internal/modules/sync/domain"
)

// VersionedDocument is a raw document with the opaque version tag the store
// expects back on a conditional write.
type VersionedDocument struct {
	Raw  []byte
	ETag string
}

type DocumentStore interface {
	// Fetch returns domain.ErrDocumentNotFound when nothing was pushed yet.
	Fetch(ctx context.Context) (VersionedDocument, error)
	// Put writes raw only if the stored version still matches ifMatch. An
	// empty ifMatch means the document must not exist yet. A lost race is
	// reported as domain.ErrVersionConflict.
	Put(ctx context.Context, raw []byte, ifMatch string) (string, error)
	Location() string
}

type SchemaValidator interface {
	Validate(raw []byte) error
}

type Identity struct {
	MachineID string
	Hostname  string
}

type LocalUsage interface {
	Identity(ctx context.Context) (Identity, error)
	MachineHours(ctx context.Context, machineID string) ([]domain.HourEntry, error)
	ReplaceMachineHours(ctx context.Context, machineID string, hours []domain.HourEntry) error
}
