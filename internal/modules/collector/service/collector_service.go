package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"quotawin/internal/modules/collector/domain"
	"quotawin/internal/modules/collector/dto"
	collectorout "quotawin/internal/modules/collector/port/out"
)

type CollectorService struct {
	store   collectorout.ManifestStore
	host    collectorout.Host
	cursors collectorout.CursorStore
	sink    collectorout.SampleSink
	limit   int
	logger  zerolog.Logger
}

func NewCollectorService(store collectorout.ManifestStore, host collectorout.Host, cursors collectorout.CursorStore, sink collectorout.SampleSink, logger zerolog.Logger) *CollectorService {
	return &CollectorService{
		store:   store,
		host:    host,
		cursors: cursors,
		sink:    sink,
		limit:   domain.DefaultLimit,
		logger:  logger.With().Str("component", "collector").Logger(),
	}
}

func (s *CollectorService) List(ctx context.Context) ([]dto.CollectorInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CollectorInfo, 0, len(manifests))
	for _, m := range manifests {
		out = append(out, dto.CollectorInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary})
	}
	return out, nil
}

func (s *CollectorService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		binaryOK := fileExists(m.Binary)
		result.BinaryReachable = binaryOK
		checksumOK := false
		if binaryOK {
			checksumOK = checksumMatches(m.Binary, m.SHA256) == nil
		}
		result.ChecksumValid = checksumOK
		if binaryOK && checksumOK && m.Enabled && s.host != nil {
			meta, err := s.host.GetMetadata(ctx, m)
			if err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
				result.Source = meta.Source
			}
		}
		if !binaryOK {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		}
		if binaryOK && !checksumOK {
			result.Error = "checksum mismatch"
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *CollectorService) Run(ctx context.Context, name string) ([]dto.RunResult, error) {
	if name != "" {
		manifest, err := s.getRunnableManifest(ctx, name)
		if err != nil {
			return nil, err
		}
		result, err := s.drain(ctx, manifest)
		if err != nil {
			return nil, err
		}
		return []dto.RunResult{result}, nil
	}

	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.RunResult, 0, len(manifests))
	for _, m := range manifests {
		if !m.Enabled {
			continue
		}
		if err := checksumMatches(m.Binary, m.SHA256); err != nil {
			results = append(results, dto.RunResult{Name: m.Name, Error: err.Error()})
			continue
		}
		result, err := s.drain(ctx, m)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			s.logger.Warn().Err(err).Str("collector", m.Name).Msg("collector run failed")
			result.Name = m.Name
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results, nil
}

// drain records everything newer than the collector's cursor. The cursor
// only advances after the samples are stored.
func (s *CollectorService) drain(ctx context.Context, manifest domain.Manifest) (dto.RunResult, error) {
	since, err := s.cursors.Load(ctx, manifest.Name)
	if err != nil {
		return dto.RunResult{}, err
	}
	result := dto.RunResult{Name: manifest.Name, Since: since, LastSeen: since}
	samples, err := s.host.Collect(ctx, manifest, domain.CollectRequest{Since: since, Limit: s.limit})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return result, fmt.Errorf("%w: %s", domain.ErrCollectorTimeout, manifest.Name)
		}
		return result, err
	}
	result.Collected = len(samples)
	fresh := domain.Fresh(samples, since)
	if len(fresh) == 0 {
		return result, nil
	}
	for i := range fresh {
		if fresh[i].Source == "" {
			fresh[i].Source = manifest.Name
		}
	}
	imported, err := s.sink.Import(ctx, fresh)
	if err != nil {
		return result, fmt.Errorf("record samples from %s: %w", manifest.Name, err)
	}
	next := domain.Advance(since, fresh)
	if err := s.cursors.Save(ctx, manifest.Name, next); err != nil {
		return result, err
	}
	result.Imported = imported
	result.LastSeen = next
	s.logger.Info().Str("collector", manifest.Name).Int("imported", imported).Time("last_seen", next).Msg("collector drained")
	return result, nil
}

func (s *CollectorService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate collector name: %s", manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

func (s *CollectorService) getRunnableManifest(ctx context.Context, name string) (domain.Manifest, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}
	for _, item := range manifests {
		if item.Name != name {
			continue
		}
		if !item.Enabled {
			return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrCollectorDisabled, name)
		}
		if err := checksumMatches(item.Binary, item.SHA256); err != nil {
			return domain.Manifest{}, err
		}
		return item, nil
	}
	return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrCollectorNotFound, name)
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read collector binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	actual := hex.EncodeToString(hash[:])
	if actual != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
