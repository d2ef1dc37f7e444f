package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/rs/zerolog"

	"quotawin/internal/modules/sync/domain"
	"quotawin/internal/modules/sync/dto"
	syncout "quotawin/internal/modules/sync/port/out"
	"quotawin/internal/platform/clock"
)

type RetryPolicy struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 5, Delay: 200 * time.Millisecond, MaxDelay: 5 * time.Second}
}

type SyncService struct {
	store     syncout.DocumentStore
	validator syncout.SchemaValidator
	usage     syncout.LocalUsage
	clock     clock.Clock
	retry     RetryPolicy
	logger    zerolog.Logger
}

func NewSyncService(store syncout.DocumentStore, validator syncout.SchemaValidator, usage syncout.LocalUsage, clk clock.Clock, policy RetryPolicy, logger zerolog.Logger) *SyncService {
	return &SyncService{
		store:     store,
		validator: validator,
		usage:     usage,
		clock:     clk,
		retry:     policy,
		logger:    logger.With().Str("component", "sync").Str("location", store.Location()).Logger(),
	}
}

// Push publishes this machine's rows under its own key. A concurrent writer
// causes the fetch, merge and conditional put to start over. A remote entry
// for this machine with a later UpdatedAt wins and nothing is written.
func (s *SyncService) Push(ctx context.Context) (dto.PushOutput, error) {
	identity, err := s.usage.Identity(ctx)
	if err != nil {
		return dto.PushOutput{}, err
	}
	hours, err := s.usage.MachineHours(ctx, identity.MachineID)
	if err != nil {
		return dto.PushOutput{}, err
	}
	snapshot := domain.MachineSnapshot{
		MachineID: identity.MachineID,
		Hostname:  identity.Hostname,
		UpdatedAt: clock.Now(s.clock),
		Hours:     hours,
	}

	out := dto.PushOutput{MachineID: identity.MachineID, Location: s.store.Location(), Hours: len(hours)}
	err = retry.Do(
		func() error {
			out.Attempts++
			current, etag, err := s.fetch(ctx)
			if errors.Is(err, domain.ErrDocumentNotFound) {
				current, etag = domain.NewDocument(), ""
			} else if err != nil {
				return err
			}
			// Ours goes first so a tie keeps the fresh snapshot.
			next := domain.Merge(domain.NewDocument().WithMachine(snapshot), current)
			if kept := next.Machines[snapshot.MachineID]; !kept.UpdatedAt.Equal(snapshot.UpdatedAt) {
				out.Stale = true
				out.Machines = len(next.Machines)
				return nil
			}
			raw, err := domain.Encode(next)
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrInvalidDocument, err)
			}
			if _, err := s.store.Put(ctx, raw, etag); err != nil {
				return err
			}
			out.Machines = len(next.Machines)
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(s.retry.Attempts),
		retry.Delay(s.retry.Delay),
		retry.MaxDelay(s.retry.MaxDelay),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Warn().Err(err).Uint("attempt", n+1).Msg("retrying sync push")
		}),
	)
	if err != nil {
		return dto.PushOutput{}, err
	}
	if out.Stale {
		s.logger.Warn().Str("machine", out.MachineID).Msg("remote snapshot is newer than local clock, push skipped")
		return out, nil
	}
	s.logger.Info().Str("machine", out.MachineID).Int("hours", out.Hours).Int("attempts", out.Attempts).Msg("pushed snapshot")
	return out, nil
}

// Pull replaces the local copy of every other machine's rows. The local
// machine's own entry is never imported.
func (s *SyncService) Pull(ctx context.Context) (dto.PullOutput, error) {
	identity, err := s.usage.Identity(ctx)
	if err != nil {
		return dto.PullOutput{}, err
	}
	out := dto.PullOutput{Location: s.store.Location(), Imported: []dto.MachineImport{}}
	doc, _, err := s.fetch(ctx)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		s.logger.Info().Msg("no sync document yet")
		return out, nil
	}
	if err != nil {
		return dto.PullOutput{}, err
	}
	out.RemoteFound = true
	for _, id := range doc.MachineIDs() {
		if id == identity.MachineID {
			continue
		}
		snapshot := doc.Machines[id]
		if err := s.usage.ReplaceMachineHours(ctx, id, snapshot.Hours); err != nil {
			return dto.PullOutput{}, err
		}
		out.Imported = append(out.Imported, dto.MachineImport{
			MachineID: id,
			Hostname:  snapshot.Hostname,
			Hours:     len(snapshot.Hours),
			UpdatedAt: snapshot.UpdatedAt,
		})
		s.logger.Debug().Str("machine", id).Int("hours", len(snapshot.Hours)).Msg("imported machine rows")
	}
	return out, nil
}

func (s *SyncService) Status(ctx context.Context) (dto.StatusOutput, error) {
	identity, err := s.usage.Identity(ctx)
	if err != nil {
		return dto.StatusOutput{}, err
	}
	out := dto.StatusOutput{Location: s.store.Location(), LocalMachineID: identity.MachineID, Machines: []dto.MachineStatus{}}
	doc, _, err := s.fetch(ctx)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		return out, nil
	}
	if err != nil {
		return dto.StatusOutput{}, err
	}
	out.RemoteFound = true
	for _, id := range doc.MachineIDs() {
		snapshot := doc.Machines[id]
		out.Machines = append(out.Machines, dto.MachineStatus{
			MachineID: id,
			Hostname:  snapshot.Hostname,
			UpdatedAt: snapshot.UpdatedAt,
			Hours:     len(snapshot.Hours),
			Local:     id == identity.MachineID,
		})
	}
	return out, nil
}

func (s *SyncService) fetch(ctx context.Context) (domain.Document, string, error) {
	versioned, err := s.store.Fetch(ctx)
	if err != nil {
		return domain.Document{}, "", err
	}
	if err := s.validator.Validate(versioned.Raw); err != nil {
		return domain.Document{}, "", err
	}
	doc, err := domain.Decode(versioned.Raw)
	if err != nil {
		return domain.Document{}, "", err
	}
	return doc, versioned.ETag, nil
}

// retryable reports conflicts and store failures. A malformed remote
// document or a cancelled context will not fix itself.
func retryable(err error) bool {
	switch {
	case errors.Is(err, domain.ErrInvalidDocument):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	default:
		return true
	}
}
