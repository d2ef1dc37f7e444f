package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	recommenddto "quotawin/internal/modules/recommend/dto"
	scheduledto "quotawin/internal/modules/schedule/dto"
	scheduledomain "quotawin/internal/modules/schedule/domain"
	scheduleservice "quotawin/internal/modules/schedule/service"
	scheduleusecase "quotawin/internal/modules/schedule/usecase"
	usagedto "quotawin/internal/modules/usage/dto"
	apperrors "quotawin/internal/platform/errors"
	"quotawin/internal/server"
)

type fakeRecommend struct {
	days int
}

func (f *fakeRecommend) Recommend(_ context.Context, in recommenddto.RecommendInput) (recommenddto.RecommendationOutput, error) {
	f.days = in.Days
	return recommenddto.RecommendationOutput{Available: true, Start: "08:45", StartHour: 8, StartMinute: 45, Confidence: 0.6, DaysObserved: 3, HistoryDays: 14}, nil
}

func (f *fakeRecommend) Week(context.Context, recommenddto.WeekInput) (recommenddto.WeekOutput, error) {
	return recommenddto.WeekOutput{HistoryDays: 14, Days: []recommenddto.DayOutput{{Day: "monday", Windows: []recommenddto.WindowOutput{}}}}, nil
}

func (f *fakeRecommend) Day(context.Context, recommenddto.DayInput) (recommenddto.DayOutput, error) {
	return recommenddto.DayOutput{}, nil
}

func (f *fakeRecommend) ExportPlan(context.Context, recommenddto.ExportInput) (recommenddto.ExportOutput, error) {
	return recommenddto.ExportOutput{}, nil
}

type fakeUsage struct {
	usageStub
	days int
}

func (f *fakeUsage) History(_ context.Context, in usagedto.HistoryInput) ([]usagedto.DailyUsageOutput, error) {
	f.days = in.Days
	if in.Days > 365 {
		return nil, fmt.Errorf("%w: too many days", apperrors.ErrInvalidInput)
	}
	return []usagedto.DailyUsageOutput{{Date: "2025-03-03", Hours: []usagedto.HourlyActivityOutput{{Hour: 9, UsagePct: 40}}, PeakHour: 9, PeakUsage: 40, TotalActiveHours: 1, AvgUsage: 40}}, nil
}

type usageStub struct{}

func (usageStub) Record(context.Context, usagedto.SampleInput) (usagedto.RecordOutput, error) {
	return usagedto.RecordOutput{}, nil
}
func (usageStub) ImportFile(context.Context, string) (usagedto.ImportOutput, error) {
	return usagedto.ImportOutput{}, nil
}
func (usageStub) ImportSamples(context.Context, []usagedto.SampleInput) (usagedto.ImportOutput, error) {
	return usagedto.ImportOutput{}, nil
}
func (usageStub) Hours(context.Context, usagedto.HistoryInput) ([]usagedto.HourRecordOutput, error) {
	return nil, nil
}
func (usageStub) Machines(context.Context) ([]usagedto.MachineOutput, error) { return nil, nil }
func (usageStub) LocalIdentity(context.Context) (usagedto.IdentityOutput, error) {
	return usagedto.IdentityOutput{}, nil
}
func (usageStub) MachineHours(context.Context, string) ([]usagedto.HourRecordOutput, error) {
	return nil, nil
}
func (usageStub) ReplaceMachineHours(context.Context, string, []usagedto.HourRecordInput) error {
	return nil
}

func newTestServer() (*server.Server, *fakeRecommend, *fakeUsage) {
	rec := &fakeRecommend{}
	usage := &fakeUsage{}
	schedule := scheduleusecase.NewInteractor(scheduleservice.NewScheduleService(scheduledomain.DefaultParams(), "09:00", "17:00"))
	srv := server.New(server.Options{Usage: usage, Schedule: schedule, Recommend: rec, Logger: zerolog.Nop()})
	return srv, rec, usage
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestHealth(t *testing.T) {
	t.Parallel()
	srv, _, _ := newTestServer()
	rr := get(t, srv.Handler(), "/health")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response: %d %s", rr.Code, rr.Body.String())
	}
}

func TestScheduleUsesWorkdayDefaults(t *testing.T) {
	t.Parallel()
	srv, _, _ := newTestServer()
	rr := get(t, srv.Handler(), "/api/schedule")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var out scheduledto.ScheduleOutput
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode schedule: %v", err)
	}
	if strings.Join(out.StartTimes, ",") != "09:50,15:40" {
		t.Fatalf("unexpected start times: %v", out.StartTimes)
	}
}

func TestScheduleRejectsBadTime(t *testing.T) {
	t.Parallel()
	srv, _, _ := newTestServer()
	rr := get(t, srv.Handler(), "/api/schedule?start=9am&end=17:00")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRecommendationPassesDaysAndSetsGauge(t *testing.T) {
	t.Parallel()
	srv, rec, _ := newTestServer()
	rr := get(t, srv.Handler(), "/api/recommendation?days=21")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rec.days != 21 {
		t.Fatalf("expected days=21 to reach the usecase, got %d", rec.days)
	}
	var out recommenddto.RecommendationOutput
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode recommendation: %v", err)
	}
	if out.Start != "08:45" {
		t.Fatalf("unexpected start %q", out.Start)
	}

	metrics := get(t, srv.Handler(), "/metrics")
	body, _ := io.ReadAll(metrics.Body)
	if !strings.Contains(string(body), "quotawin_recommendation_confidence 0.6") {
		t.Fatalf("confidence gauge missing:\n%s", body)
	}
	if !strings.Contains(string(body), `quotawin_http_requests_total{route="/api/recommendation",status="200"} 1`) {
		t.Fatalf("request counter missing:\n%s", body)
	}
}

func TestHistoryDefaultsAndValidation(t *testing.T) {
	t.Parallel()
	srv, _, usage := newTestServer()
	rr := get(t, srv.Handler(), "/api/history")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if usage.days != 7 {
		t.Fatalf("expected default of 7 days, got %d", usage.days)
	}
	if rr := get(t, srv.Handler(), "/api/history?days=-2"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative days, got %d", rr.Code)
	}
	if rr := get(t, srv.Handler(), "/api/history?days=1000"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid input error, got %d", rr.Code)
	}
	usage.days = 0
	if rr := get(t, srv.Handler(), "/api/history?days=100000000"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 above the history cap, got %d", rr.Code)
	}
	if usage.days != 0 {
		t.Fatalf("oversized range reached the usage port with %d days", usage.days)
	}
}

func TestWeek(t *testing.T) {
	t.Parallel()
	srv, _, _ := newTestServer()
	rr := get(t, srv.Handler(), "/api/week")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"monday"`) {
		t.Fatalf("unexpected week response: %d %s", rr.Code, rr.Body.String())
	}
}
