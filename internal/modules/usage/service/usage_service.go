package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/maypok86/otter/v2"

	"quotawin/internal/modules/usage/domain"
	"quotawin/internal/modules/usage/dto"
	usageout "quotawin/internal/modules/usage/port/out"
	"quotawin/internal/platform/clock"
	apperrors "quotawin/internal/platform/errors"
)

const closedDayCacheSize = 4096

type UsageService struct {
	store    usageout.HourStore
	reader   usageout.SampleReader
	identity usageout.IdentityProvider
	clock    clock.Clock
	// closed holds aggregates of days before today keyed by date. A day
	// with no rows is cached as the zero DailyUsage with an empty Date.
	closed *otter.Cache[string, domain.DailyUsage]
}

func NewUsageService(store usageout.HourStore, reader usageout.SampleReader, identity usageout.IdentityProvider, clk clock.Clock) *UsageService {
	return &UsageService{
		store:    store,
		reader:   reader,
		identity: identity,
		clock:    clk,
		closed: otter.Must(&otter.Options[string, domain.DailyUsage]{
			MaximumSize: closedDayCacheSize,
		}),
	}
}

func (s *UsageService) Record(ctx context.Context, input dto.SampleInput) (dto.RecordOutput, error) {
	local, err := s.identity.Local(ctx)
	if err != nil {
		return dto.RecordOutput{}, err
	}
	sample := domain.Sample{
		Timestamp: input.Timestamp,
		UsagePct:  input.UsagePct,
		MachineID: local.MachineID,
		Source:    input.Source,
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = clock.Now(s.clock)
	}
	if err := sample.Validate(); err != nil {
		return dto.RecordOutput{}, err
	}
	if err := s.store.UpsertSample(ctx, sample, clock.Now(s.clock)); err != nil {
		return dto.RecordOutput{}, err
	}
	s.closed.Invalidate(clock.FormatDate(sample.Timestamp))
	return dto.RecordOutput{MachineID: local.MachineID, HourStart: sample.HourStart()}, nil
}

func (s *UsageService) ImportFile(ctx context.Context, path string) (dto.ImportOutput, error) {
	samples, err := s.reader.ReadSamples(ctx, path)
	if err != nil {
		return dto.ImportOutput{}, err
	}
	return s.importSamples(ctx, samples)
}

func (s *UsageService) ImportSamples(ctx context.Context, inputs []dto.SampleInput) (dto.ImportOutput, error) {
	samples := make([]domain.Sample, 0, len(inputs))
	for _, input := range inputs {
		samples = append(samples, domain.Sample{Timestamp: input.Timestamp, UsagePct: input.UsagePct, Source: input.Source})
	}
	return s.importSamples(ctx, samples)
}

// importSamples validates everything before writing anything.
func (s *UsageService) importSamples(ctx context.Context, samples []domain.Sample) (dto.ImportOutput, error) {
	local, err := s.identity.Local(ctx)
	if err != nil {
		return dto.ImportOutput{}, err
	}
	for i := range samples {
		samples[i].MachineID = local.MachineID
		if err := samples[i].Validate(); err != nil {
			return dto.ImportOutput{}, fmt.Errorf("sample %d: %w", i+1, err)
		}
	}
	now := clock.Now(s.clock)
	dates := map[string]struct{}{}
	for _, sample := range samples {
		if err := s.store.UpsertSample(ctx, sample, now); err != nil {
			return dto.ImportOutput{}, err
		}
		date := clock.FormatDate(sample.Timestamp)
		if _, ok := dates[date]; !ok {
			dates[date] = struct{}{}
			s.closed.Invalidate(date)
		}
	}
	out := dto.ImportOutput{Imported: len(samples), Dates: make([]string, 0, len(dates))}
	for date := range dates {
		out.Dates = append(out.Dates, date)
	}
	sort.Strings(out.Dates)
	return out, nil
}

func (s *UsageService) History(ctx context.Context, input dto.HistoryInput) ([]dto.DailyUsageOutput, error) {
	from, to, err := s.resolveRange(input)
	if err != nil {
		return nil, err
	}
	today := clock.StartOfDay(clock.Now(s.clock))

	days := map[string]domain.DailyUsage{}
	var missFrom, missTo time.Time
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		date := clock.FormatDate(day)
		if day.Before(today) {
			if cached, ok := s.closed.GetIfPresent(date); ok {
				if cached.Date != "" {
					days[date] = cached
				}
				continue
			}
		}
		if missFrom.IsZero() {
			missFrom = day
		}
		missTo = day
	}

	if !missFrom.IsZero() {
		records, err := s.store.ListHours(ctx, missFrom, missTo.AddDate(0, 0, 1))
		if err != nil {
			return nil, err
		}
		fresh := map[string]domain.DailyUsage{}
		for _, day := range domain.Aggregate(records) {
			fresh[day.Date] = day
		}
		for day := missFrom; !day.After(missTo); day = day.AddDate(0, 0, 1) {
			date := clock.FormatDate(day)
			aggregate, ok := fresh[date]
			if ok {
				days[date] = aggregate
			}
			if day.Before(today) {
				s.closed.Set(date, aggregate)
			}
		}
	}

	dates := make([]string, 0, len(days))
	for date := range days {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	out := make([]dto.DailyUsageOutput, 0, len(dates))
	for _, date := range dates {
		out = append(out, toDailyOutput(days[date]))
	}
	return out, nil
}

func (s *UsageService) Hours(ctx context.Context, input dto.HistoryInput) ([]dto.HourRecordOutput, error) {
	from, to, err := s.resolveRange(input)
	if err != nil {
		return nil, err
	}
	records, err := s.store.ListHours(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return toHourOutputs(records), nil
}

func (s *UsageService) Machines(ctx context.Context) ([]dto.MachineOutput, error) {
	local, err := s.identity.Local(ctx)
	if err != nil {
		return nil, err
	}
	summaries, err := s.store.Machines(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MachineOutput, 0, len(summaries))
	for _, m := range summaries {
		out = append(out, dto.MachineOutput{
			MachineID: m.MachineID,
			Hours:     m.Hours,
			LastHour:  m.LastHour,
			Local:     m.MachineID == local.MachineID,
		})
	}
	return out, nil
}

func (s *UsageService) LocalIdentity(ctx context.Context) (dto.IdentityOutput, error) {
	local, err := s.identity.Local(ctx)
	if err != nil {
		return dto.IdentityOutput{}, err
	}
	return dto.IdentityOutput{MachineID: local.MachineID, Hostname: local.Hostname}, nil
}

func (s *UsageService) MachineHours(ctx context.Context, machineID string) ([]dto.HourRecordOutput, error) {
	if machineID == "" {
		return nil, fmt.Errorf("%w: machine id is required", apperrors.ErrInvalidInput)
	}
	records, err := s.store.ListMachineHours(ctx, machineID)
	if err != nil {
		return nil, err
	}
	return toHourOutputs(records), nil
}

// ReplaceMachineHours swaps every row of a remote machine. Local rows are
// only ever written by Record and Import.
func (s *UsageService) ReplaceMachineHours(ctx context.Context, machineID string, hours []dto.HourRecordInput) error {
	local, err := s.identity.Local(ctx)
	if err != nil {
		return err
	}
	if machineID == "" {
		return fmt.Errorf("%w: machine id is required", apperrors.ErrInvalidInput)
	}
	if machineID == local.MachineID {
		return fmt.Errorf("%w: refusing to overwrite rows of the local machine %s", apperrors.ErrInvalidInput, machineID)
	}
	now := clock.Now(s.clock)
	records := make([]domain.HourRecord, 0, len(hours))
	for _, h := range hours {
		record := domain.HourRecord{
			HourStart: h.HourStart.UTC(),
			MachineID: machineID,
			UsagePct:  h.UsagePct,
			Samples:   h.Samples,
			UpdatedAt: now,
		}
		if err := record.Validate(); err != nil {
			return err
		}
		records = append(records, record)
	}
	if err := s.store.ReplaceMachineHours(ctx, machineID, records); err != nil {
		return err
	}
	s.closed.InvalidateAll()
	return nil
}

func (s *UsageService) resolveRange(input dto.HistoryInput) (time.Time, time.Time, error) {
	to := input.To
	if to.IsZero() {
		to = clock.Now(s.clock)
	}
	to = clock.StartOfDay(to)
	from := input.From
	if from.IsZero() {
		if input.Days <= 0 {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: history needs a start date or a positive day count", apperrors.ErrInvalidInput)
		}
		if input.Days > dto.MaxHistoryDays {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: history is limited to %d days", apperrors.ErrInvalidInput, dto.MaxHistoryDays)
		}
		from = to.AddDate(0, 0, -(input.Days - 1))
	}
	from = clock.StartOfDay(from)
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: history range starts after it ends", apperrors.ErrInvalidInput)
	}
	if from.Before(to.AddDate(0, 0, -(dto.MaxHistoryDays - 1))) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: history is limited to %d days", apperrors.ErrInvalidInput, dto.MaxHistoryDays)
	}
	return from, to, nil
}

func toDailyOutput(day domain.DailyUsage) dto.DailyUsageOutput {
	hours := make([]dto.HourlyActivityOutput, 0, len(day.Hours))
	for _, h := range day.Hours {
		hours = append(hours, dto.HourlyActivityOutput{Hour: h.Hour, UsagePct: h.UsagePct})
	}
	return dto.DailyUsageOutput{
		Date:             day.Date,
		Hours:            hours,
		PeakHour:         day.PeakHour,
		PeakUsage:        day.PeakUsage,
		TotalActiveHours: day.TotalActiveHours,
		AvgUsage:         day.AvgUsage,
	}
}

func toHourOutputs(records []domain.HourRecord) []dto.HourRecordOutput {
	out := make([]dto.HourRecordOutput, 0, len(records))
	for _, r := range records {
		out = append(out, dto.HourRecordOutput{
			HourStart: r.HourStart,
			MachineID: r.MachineID,
			UsagePct:  r.UsagePct,
			Samples:   r.Samples,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return out
}
