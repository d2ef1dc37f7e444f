package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	collectorinadapter "quotawin/internal/modules/collector/adapter/in"
	collectoroutadapter "quotawin/internal/modules/collector/adapter/out"
	collectorin "quotawin/internal/modules/collector/port/in"
	collectorservice "quotawin/internal/modules/collector/service"
	collectorusecase "quotawin/internal/modules/collector/usecase"
	recommendinadapter "quotawin/internal/modules/recommend/adapter/in"
	recommendoutadapter "quotawin/internal/modules/recommend/adapter/out"
	recommenddomain "quotawin/internal/modules/recommend/domain"
	recommendin "quotawin/internal/modules/recommend/port/in"
	recommendservice "quotawin/internal/modules/recommend/service"
	recommendusecase "quotawin/internal/modules/recommend/usecase"
	scheduleinadapter "quotawin/internal/modules/schedule/adapter/in"
	scheduledomain "quotawin/internal/modules/schedule/domain"
	schedulein "quotawin/internal/modules/schedule/port/in"
	scheduleservice "quotawin/internal/modules/schedule/service"
	scheduleusecase "quotawin/internal/modules/schedule/usecase"
	syncinadapter "quotawin/internal/modules/sync/adapter/in"
	syncoutadapter "quotawin/internal/modules/sync/adapter/out"
	syncin "quotawin/internal/modules/sync/port/in"
	syncout "quotawin/internal/modules/sync/port/out"
	syncservice "quotawin/internal/modules/sync/service"
	syncusecase "quotawin/internal/modules/sync/usecase"
	usageinadapter "quotawin/internal/modules/usage/adapter/in"
	usageoutadapter "quotawin/internal/modules/usage/adapter/out"
	usagein "quotawin/internal/modules/usage/port/in"
	usageservice "quotawin/internal/modules/usage/service"
	usageusecase "quotawin/internal/modules/usage/usecase"
	"quotawin/internal/platform/clock"
	"quotawin/internal/platform/config"
	"quotawin/internal/platform/id"
	"quotawin/internal/platform/machine"
	"quotawin/internal/server"
	uiapp "quotawin/internal/ui/app"
)

type App struct {
	UsageCLI     usageinadapter.CLIHandler
	ScheduleCLI  scheduleinadapter.CLIHandler
	RecommendCLI recommendinadapter.CLIHandler
	SyncCLI      syncinadapter.CLIHandler
	CollectorCLI collectorinadapter.CLIHandler

	cfg       config.Config
	logger    zerolog.Logger
	usage     usagein.Usecase
	schedule  schedulein.Usecase
	recommend recommendin.Usecase
	syncUC    syncin.Usecase
	collector collectorin.Usecase
	hours     *usageoutadapter.SQLHourStore
}

func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	clk := clock.SystemClock{}
	identities := machine.NewFileStore(cfg.DataDir, id.UUID{}, clk)

	hours, err := usageoutadapter.NewSQLHourStore(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("open hour store: %w", err)
	}
	usageUC := usageusecase.NewInteractor(usageservice.NewUsageService(
		hours,
		usageoutadapter.NewJSONLSampleReader(),
		usageoutadapter.NewMachineIdentity(identities),
		clk,
	))

	scheduleUC := scheduleusecase.NewInteractor(scheduleservice.NewScheduleService(
		scheduledomain.Params{WindowMinutes: cfg.Window.DurationMinutes, MinUsefulMinutes: cfg.Window.MinUsefulMinutes},
		cfg.Workday.Start,
		cfg.Workday.End,
	))

	recommendUC := recommendusecase.NewInteractor(recommendservice.NewRecommendService(
		recommendoutadapter.NewUsageHistoryAdapter(usageUC),
		recommendoutadapter.NewSchedulePlannerAdapter(scheduleUC),
		recommendoutadapter.NewMarkdownPlanWriter(),
		clk,
		recommendservice.Options{
			Params:       recommenddomain.Params{LeadInMinutes: cfg.Recommend.LeadInMinutes, SaturationDays: cfg.Recommend.SaturationDays},
			HistoryDays:  cfg.Recommend.HistoryDays,
			WorkdayStart: cfg.Workday.Start,
			WorkdayEnd:   cfg.Workday.End,
		},
	))

	documents, err := newDocumentStore(ctx, cfg.Sync)
	if err != nil {
		_ = hours.Close()
		return nil, err
	}
	validator, err := syncoutadapter.NewJSONSchemaValidator()
	if err != nil {
		_ = hours.Close()
		return nil, err
	}
	syncUC := syncusecase.NewInteractor(syncservice.NewSyncService(
		documents,
		validator,
		syncoutadapter.NewUsageAdapter(usageUC),
		clk,
		syncservice.DefaultRetryPolicy(),
		logger,
	))

	collectorUC := collectorusecase.NewInteractor(collectorservice.NewCollectorService(
		collectoroutadapter.NewFileManifestStore(cfg.DataDir),
		collectoroutadapter.NewGRPCHost(),
		collectoroutadapter.NewFileCursorStore(cfg.DataDir),
		collectoroutadapter.NewUsageSink(usageUC),
		logger,
	))

	return &App{
		UsageCLI:     usageinadapter.NewCLIHandler(usageUC),
		ScheduleCLI:  scheduleinadapter.NewCLIHandler(scheduleUC),
		RecommendCLI: recommendinadapter.NewCLIHandler(recommendUC),
		SyncCLI:      syncinadapter.NewCLIHandler(syncUC),
		CollectorCLI: collectorinadapter.NewCLIHandler(collectorUC),
		cfg:          cfg,
		logger:       logger,
		usage:        usageUC,
		schedule:     scheduleUC,
		recommend:    recommendUC,
		syncUC:       syncUC,
		collector:    collectorUC,
		hours:        hours,
	}, nil
}

func newDocumentStore(ctx context.Context, cfg config.SyncConfig) (syncout.DocumentStore, error) {
	switch cfg.Backend {
	case config.SyncBackendS3:
		client, err := syncoutadapter.NewS3Client(ctx, syncoutadapter.S3Options{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			Prefix:          cfg.S3.Prefix,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("new s3 client: %w", err)
		}
		return syncoutadapter.NewS3DocumentStore(client, cfg.S3.Bucket, cfg.S3.Prefix, cfg.Document), nil
	case config.SyncBackendFile:
		return syncoutadapter.NewFileDocumentStore(cfg.Dir, cfg.Document), nil
	default:
		return nil, errors.New("unknown sync backend: " + cfg.Backend)
	}
}

func (a *App) Close() error {
	if a.hours == nil {
		return nil
	}
	return a.hours.Close()
}

// NewServer builds the HTTP surface. An empty addr uses the configured one.
func (a *App) NewServer(addr string) *server.Server {
	if addr == "" {
		addr = a.cfg.Serve.Addr
	}
	return server.New(server.Options{
		Addr:      addr,
		Usage:     a.usage,
		Schedule:  a.schedule,
		Recommend: a.recommend,
		Logger:    a.logger,
	})
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(uiapp.Ports{
		Recommend: app.recommend,
		Schedule:  app.schedule,
		Usage:     app.usage,
		Sync:      app.syncUC,
		Collector: app.collector,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
