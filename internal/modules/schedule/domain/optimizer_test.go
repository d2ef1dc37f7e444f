package domain_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"quotawin/internal/modules/schedule/domain"
	"quotawin/internal/platform/clock"
	apperrors "quotawin/internal/platform/errors"
)

func TestOptimalStartTimesCalibration(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		start string
		end   string
		want  []string
	}{
		{name: "eight hour day", start: "09:00", end: "17:00", want: []string{"09:50", "15:40"}},
		{name: "twelve hour day", start: "06:00", end: "18:00", want: []string{"06:22", "11:45", "17:08"}},
		{name: "shorter than a window", start: "09:00", end: "12:00", want: []string{"09:00"}},
		{name: "exactly one window", start: "09:00", end: "14:00", want: []string{"11:15"}},
		{name: "overnight", start: "22:00", end: "06:00", want: []string{"22:50", "04:40"}},
		{name: "empty interval", start: "10:00", end: "10:00", want: []string{"10:00"}},
		{name: "single digit hour", start: "6:00", end: "18:00", want: []string{"06:22", "11:45", "17:08"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := domain.OptimalStartTimes(tc.start, tc.end, domain.DefaultParams())
			if err != nil {
				t.Fatalf("optimal start times: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("start times mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlanRespectsValidity(t *testing.T) {
	t.Parallel()
	p := domain.DefaultParams()
	for start := 0; start < clock.MinutesPerDay; start += 97 {
		for length := p.WindowMinutes; length < clock.MinutesPerDay; length += 53 {
			startText := clock.MinutesToTimeString(start)
			endText := clock.MinutesToTimeString(clock.NormalizeMinutes(start + length))
			schedule, err := domain.Plan(startText, endText, p)
			if err != nil {
				t.Fatalf("plan %s-%s: %v", startText, endText, err)
			}
			wantCount := (length-p.MinUsefulMinutes)/p.WindowMinutes + 1
			if len(schedule.Windows) != wantCount {
				t.Fatalf("plan %s-%s: expected %d windows, got %d", startText, endText, wantCount, len(schedule.Windows))
			}
			for i, w := range schedule.Windows {
				if w.StartMinute < 0 || w.StartMinute > length-p.MinUsefulMinutes {
					t.Fatalf("plan %s-%s: window %d at offset %d is outside the valid range", startText, endText, i, w.StartMinute)
				}
				if i > 0 && w.StartMinute-schedule.Windows[i-1].StartMinute < p.WindowMinutes {
					t.Fatalf("plan %s-%s: windows %d and %d overlap", startText, endText, i-1, i)
				}
			}
			if schedule.LeadingSlack > schedule.MinSlack+1 || schedule.TrailingSlack > schedule.MinSlack+1 {
				t.Fatalf("plan %s-%s: uneven slack %+v", startText, endText, schedule)
			}
			if schedule.LeadingSlack != schedule.MinSlack {
				t.Fatalf("plan %s-%s: leading slack %d exceeds minimum %d", startText, endText, schedule.LeadingSlack, schedule.MinSlack)
			}
		}
	}
}

func TestPlanReportsSlack(t *testing.T) {
	t.Parallel()
	schedule, err := domain.Plan("06:00", "18:00", domain.DefaultParams())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if schedule.TotalMinutes != 720 || schedule.LeadingSlack != 22 || schedule.TrailingSlack != 22 || schedule.MinSlack != 22 {
		t.Fatalf("unexpected slack: %+v", schedule)
	}
	if got := schedule.Windows[2].EndClock(schedule.StartMinute); got != "22:08" {
		t.Fatalf("expected last window to end at 22:08, got %s", got)
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	t.Parallel()
	first, err := domain.Plan("07:30", "19:15", domain.DefaultParams())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	second, err := domain.Plan("07:30", "19:15", domain.DefaultParams())
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("plan not deterministic:\n%s", diff)
	}
}

func TestPlanWithCustomParams(t *testing.T) {
	t.Parallel()
	got, err := domain.OptimalStartTimes("00:00", "04:00", domain.Params{WindowMinutes: 60, MinUsefulMinutes: 1})
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if diff := cmp.Diff([]string{"00:11", "01:23", "02:35", "03:47"}, got); diff != "" {
		t.Fatalf("start times mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanRejectsZeroUsefulCoverage(t *testing.T) {
	t.Parallel()
	_, err := domain.Plan("09:00", "19:00", domain.Params{WindowMinutes: 300, MinUsefulMinutes: 0})
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestPlanLastTriggerStartsBeforeEnd(t *testing.T) {
	t.Parallel()
	for _, p := range []domain.Params{
		{WindowMinutes: 300, MinUsefulMinutes: 1},
		{WindowMinutes: 60, MinUsefulMinutes: 1},
		{WindowMinutes: 60, MinUsefulMinutes: 60},
		domain.DefaultParams(),
	} {
		for _, span := range [][2]string{{"09:00", "19:00"}, {"00:00", "04:00"}, {"22:00", "06:00"}, {"06:00", "18:00"}} {
			schedule, err := domain.Plan(span[0], span[1], p)
			if err != nil {
				t.Fatalf("plan %v %v: %v", span, p, err)
			}
			last := schedule.Windows[len(schedule.Windows)-1]
			if schedule.TotalMinutes > 0 && last.StartMinute >= schedule.TotalMinutes {
				t.Fatalf("plan %v %v: trigger at offset %d is outside the workday of %d minutes", span, p, last.StartMinute, schedule.TotalMinutes)
			}
		}
	}
}

func TestPlanRejectsMalformedInput(t *testing.T) {
	t.Parallel()
	if _, err := domain.OptimalStartTimes("9:5", "17:00", domain.DefaultParams()); !errors.Is(err, apperrors.ErrInvalidTimeFormat) {
		t.Fatalf("expected invalid time format, got %v", err)
	}
	if _, err := domain.OptimalStartTimes("09:00", "25:00", domain.DefaultParams()); !errors.Is(err, apperrors.ErrInvalidTimeFormat) {
		t.Fatalf("expected invalid time format, got %v", err)
	}
	if _, err := domain.Plan("09:00", "17:00", domain.Params{}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid params, got %v", err)
	}
}
