package bootstrap_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"quotawin/internal/bootstrap"
	"quotawin/internal/platform/config"
)

func TestAppWiresModulesEndToEnd(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	ctx := context.Background()
	app, err := bootstrap.New(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	schedule, err := app.ScheduleCLI.Plan(ctx, "", "")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if strings.Join(schedule.StartTimes, ",") != "09:50,15:40" {
		t.Fatalf("unexpected default schedule: %v", schedule.StartTimes)
	}

	at := time.Now().UTC().Add(-time.Hour)
	if _, err := app.UsageCLI.Record(ctx, at, 42, "test"); err != nil {
		t.Fatalf("record: %v", err)
	}
	history, err := app.UsageCLI.History(ctx, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) == 0 {
		t.Fatalf("expected recorded usage in history")
	}

	push, err := app.SyncCLI.Push(ctx)
	if err != nil {
		t.Fatalf("push: %v", err)
	}
	if push.Location != filepath.Join(dir, "sync", config.DefaultSyncDocument) {
		t.Fatalf("unexpected sync location %s", push.Location)
	}
	status, err := app.SyncCLI.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.RemoteFound || len(status.Machines) != 1 || !status.Machines[0].Local {
		t.Fatalf("unexpected sync status: %+v", status)
	}

	collectors, err := app.CollectorCLI.List(ctx)
	if err != nil {
		t.Fatalf("collector list: %v", err)
	}
	if len(collectors) != 0 {
		t.Fatalf("expected no collectors, got %+v", collectors)
	}

	export, err := app.RecommendCLI.Export(ctx, filepath.Join(dir, "plan.md"), 0)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(export.StartTimes) == 0 {
		t.Fatalf("expected exported start times")
	}
}
