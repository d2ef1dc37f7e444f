package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"quotawin/internal/modules/usage/domain"
	"quotawin/internal/modules/usage/dto"
	usageout "quotawin/internal/modules/usage/port/out"
	"quotawin/internal/modules/usage/service"
	"quotawin/internal/platform/clock"
	apperrors "quotawin/internal/platform/errors"
)

type memoryStore struct {
	records   map[string]domain.HourRecord
	listCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{records: map[string]domain.HourRecord{}}
}

func key(hourStart time.Time, machineID string) string {
	return hourStart.UTC().Format(time.RFC3339) + "|" + machineID
}

func (m *memoryStore) UpsertSample(_ context.Context, sample domain.Sample, updatedAt time.Time) error {
	k := key(sample.HourStart(), sample.MachineID)
	current, ok := m.records[k]
	if !ok {
		current = domain.HourRecord{HourStart: sample.HourStart(), MachineID: sample.MachineID}
	}
	if sample.UsagePct > current.UsagePct {
		current.UsagePct = sample.UsagePct
	}
	current.Samples++
	current.UpdatedAt = updatedAt
	m.records[k] = current
	return nil
}

func (m *memoryStore) ListHours(_ context.Context, from, to time.Time) ([]domain.HourRecord, error) {
	m.listCalls++
	out := []domain.HourRecord{}
	for _, r := range m.records {
		if !r.HourStart.Before(from) && r.HourStart.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryStore) ListMachineHours(_ context.Context, machineID string) ([]domain.HourRecord, error) {
	out := []domain.HourRecord{}
	for _, r := range m.records {
		if r.MachineID == machineID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryStore) ReplaceMachineHours(_ context.Context, machineID string, records []domain.HourRecord) error {
	for k, r := range m.records {
		if r.MachineID == machineID {
			delete(m.records, k)
		}
	}
	for _, r := range records {
		m.records[key(r.HourStart, r.MachineID)] = r
	}
	return nil
}

func (m *memoryStore) Machines(context.Context) ([]domain.MachineSummary, error) {
	byMachine := map[string]domain.MachineSummary{}
	for _, r := range m.records {
		s := byMachine[r.MachineID]
		s.MachineID = r.MachineID
		s.Hours++
		if r.HourStart.After(s.LastHour) {
			s.LastHour = r.HourStart
		}
		byMachine[r.MachineID] = s
	}
	out := []domain.MachineSummary{}
	for _, s := range byMachine {
		out = append(out, s)
	}
	return out, nil
}

type staticReader struct {
	samples []domain.Sample
}

func (r staticReader) ReadSamples(context.Context, string) ([]domain.Sample, error) {
	return append([]domain.Sample(nil), r.samples...), nil
}

type staticIdentity struct{}

func (staticIdentity) Local(context.Context) (usageout.Identity, error) {
	return usageout.Identity{MachineID: "local", Hostname: "laptop"}, nil
}

var now = time.Date(2025, 3, 6, 15, 30, 0, 0, time.UTC)

func newService(store *memoryStore, reader staticReader) *service.UsageService {
	return service.NewUsageService(store, reader, staticIdentity{}, clock.Fixed{At: now})
}

func TestRecordTagsLocalMachine(t *testing.T) {
	t.Parallel()
	store := newMemoryStore()
	svc := newService(store, staticReader{})

	out, err := svc.Record(context.Background(), dto.SampleInput{UsagePct: 12})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if out.MachineID != "local" || !out.HourStart.Equal(time.Date(2025, 3, 6, 15, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected record output: %+v", out)
	}
	if _, err := svc.Record(context.Background(), dto.SampleInput{UsagePct: -3}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestImportFileIsAllOrNothing(t *testing.T) {
	t.Parallel()
	store := newMemoryStore()
	svc := newService(store, staticReader{samples: []domain.Sample{
		{Timestamp: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), UsagePct: 10},
		{Timestamp: time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC), UsagePct: -1},
	}})
	if _, err := svc.ImportFile(context.Background(), "samples.jsonl"); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if len(store.records) != 0 {
		t.Fatalf("expected nothing written, got %d rows", len(store.records))
	}
}

func TestImportSamplesReportsDates(t *testing.T) {
	t.Parallel()
	store := newMemoryStore()
	svc := newService(store, staticReader{})
	out, err := svc.ImportSamples(context.Background(), []dto.SampleInput{
		{Timestamp: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC), UsagePct: 10},
		{Timestamp: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), UsagePct: 20},
		{Timestamp: time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC), UsagePct: 15},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if diff := cmp.Diff(dto.ImportOutput{Imported: 3, Dates: []string{"2025-03-03", "2025-03-04"}}, out); diff != "" {
		t.Fatalf("import mismatch (-want +got):\n%s", diff)
	}
	if len(store.records) != 2 {
		t.Fatalf("expected 2 hour rows, got %d", len(store.records))
	}
}

func TestHistoryCachesClosedDays(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemoryStore()
	svc := newService(store, staticReader{})
	if _, err := svc.ImportSamples(ctx, []dto.SampleInput{
		{Timestamp: time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC), UsagePct: 40},
		{Timestamp: time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC), UsagePct: 60},
		{Timestamp: time.Date(2025, 3, 6, 8, 0, 0, 0, time.UTC), UsagePct: 5},
	}); err != nil {
		t.Fatalf("import: %v", err)
	}

	first, err := svc.History(ctx, dto.HistoryInput{Days: 3})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	want := []dto.DailyUsageOutput{
		{Date: "2025-03-04", Hours: []dto.HourlyActivityOutput{{Hour: 9, UsagePct: 40}, {Hour: 10, UsagePct: 60}}, PeakHour: 10, PeakUsage: 60, TotalActiveHours: 2, AvgUsage: 50},
		{Date: "2025-03-06", Hours: []dto.HourlyActivityOutput{{Hour: 8, UsagePct: 5}}, PeakHour: 8, PeakUsage: 5, TotalActiveHours: 1, AvgUsage: 5},
	}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
	if store.listCalls != 1 {
		t.Fatalf("expected one store query, got %d", store.listCalls)
	}

	// Closed days come from the cache; only today is queried again.
	store.records[key(time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), "sneaky")] = domain.HourRecord{
		HourStart: time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), MachineID: "sneaky", UsagePct: 99,
	}
	second, err := svc.History(ctx, dto.HistoryInput{Days: 3})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if diff := cmp.Diff(want, second); diff != "" {
		t.Fatalf("cached history mismatch (-want +got):\n%s", diff)
	}

	// Recording into a closed day invalidates it.
	if _, err := svc.Record(ctx, dto.SampleInput{Timestamp: time.Date(2025, 3, 5, 11, 0, 0, 0, time.UTC), UsagePct: 1}); err != nil {
		t.Fatalf("record: %v", err)
	}
	third, err := svc.History(ctx, dto.HistoryInput{Days: 3})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(third) != 3 || third[1].Date != "2025-03-05" || third[1].TotalActiveHours != 2 {
		t.Fatalf("expected invalidated day to reload, got %+v", third)
	}
}

func TestHistoryRejectsBadRange(t *testing.T) {
	t.Parallel()
	svc := newService(newMemoryStore(), staticReader{})
	if _, err := svc.History(context.Background(), dto.HistoryInput{}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	_, err := svc.History(context.Background(), dto.HistoryInput{From: now, To: now.AddDate(0, 0, -2)})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestHistoryRejectsOversizedRange(t *testing.T) {
	t.Parallel()
	svc := newService(newMemoryStore(), staticReader{})
	if _, err := svc.History(context.Background(), dto.HistoryInput{Days: dto.MaxHistoryDays + 1}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for day count, got %v", err)
	}
	_, err := svc.History(context.Background(), dto.HistoryInput{From: now.AddDate(-20, 0, 0), To: now})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for explicit range, got %v", err)
	}
	if _, err := svc.History(context.Background(), dto.HistoryInput{Days: dto.MaxHistoryDays}); err != nil {
		t.Fatalf("history at the cap: %v", err)
	}
}

func TestReplaceMachineHoursRefusesLocalMachine(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemoryStore()
	svc := newService(store, staticReader{})
	hours := []dto.HourRecordInput{{HourStart: time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC), UsagePct: 30, Samples: 2}}

	if err := svc.ReplaceMachineHours(ctx, "local", hours); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected local overwrite to be refused, got %v", err)
	}
	if err := svc.ReplaceMachineHours(ctx, "remote", hours); err != nil {
		t.Fatalf("replace remote: %v", err)
	}
	remote, err := svc.MachineHours(ctx, "remote")
	if err != nil {
		t.Fatalf("machine hours: %v", err)
	}
	if len(remote) != 1 || remote[0].UsagePct != 30 || !remote[0].UpdatedAt.Equal(now) {
		t.Fatalf("unexpected remote rows: %+v", remote)
	}
	machines, err := svc.Machines(ctx)
	if err != nil {
		t.Fatalf("machines: %v", err)
	}
	if len(machines) != 1 || machines[0].Local {
		t.Fatalf("unexpected machines: %+v", machines)
	}
	if err := svc.ReplaceMachineHours(ctx, "remote", []dto.HourRecordInput{{HourStart: time.Date(2025, 3, 5, 9, 30, 0, 0, time.UTC)}}); err == nil {
		t.Fatalf("expected off-hour rejection")
	}
}
