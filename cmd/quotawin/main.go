package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"quotawin/internal/bootstrap"
	"quotawin/internal/platform/clock"
	"quotawin/internal/platform/config"
	"quotawin/internal/platform/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type globalOptions struct {
	dataDir  string
	noColor  bool
	logLevel string
	jsonOut  bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "quotawin",
		Short:         "Plan rolling quota windows around your workday",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", defaultDataDir(), "data directory")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log level (debug|info|warn|error)")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print JSON instead of tables")

	root.AddCommand(newRecordCmd(opts))
	root.AddCommand(newImportCmd(opts))
	root.AddCommand(newHistoryCmd(opts))
	root.AddCommand(newMachinesCmd(opts))
	root.AddCommand(newRecommendCmd(opts))
	root.AddCommand(newWeekCmd(opts))
	root.AddCommand(newScheduleCmd(opts))
	root.AddCommand(newExportCmd(opts))
	root.AddCommand(newSyncCmd(opts))
	root.AddCommand(newCollectorCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newTUICmd(opts))
	return root
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quotawin"
	}
	return filepath.Join(home, ".quotawin")
}

// withApp loads config, builds the app and closes it after fn returns.
func withApp(opts *globalOptions, fn func(app *bootstrap.App) error) error {
	cfg, err := config.New(opts.dataDir)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	logger, err := logging.New(logging.Options{Level: level, Format: cfg.Log.Format, Out: os.Stderr})
	if err != nil {
		return err
	}
	app, err := bootstrap.New(context.Background(), cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRecordCmd(opts *globalOptions) *cobra.Command {
	var at, source string
	cmd := &cobra.Command{
		Use:   "record <usage-pct>",
		Short: "Record one usage sample for this machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pct, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("usage-pct must be a number: %w", err)
			}
			when := time.Now().UTC()
			if at != "" {
				when, err = clock.FromISO(at)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
			}
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.UsageCLI.Record(context.Background(), when, pct, source)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "recorded %.1f%% for hour %s (machine %s)\n", pct, clock.ToISO(out.HourStart), out.MachineID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "sample time as RFC3339 (default now)")
	cmd.Flags().StringVar(&source, "source", "cli", "sample source label")
	return cmd
}

func newImportCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <samples.jsonl>",
		Short: "Import usage samples from a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.UsageCLI.Import(context.Background(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d samples across %d days\n", out.Imported, len(out.Dates))
				return nil
			})
		},
	}
}

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show daily usage for the last days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.UsageCLI.History(context.Background(), days)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd, out)
				}
				renderHistory(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "number of days to show")
	return cmd
}

func newMachinesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "machines",
		Short: "List machines with recorded usage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.UsageCLI.Machines(context.Background())
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd, out)
				}
				renderMachines(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newRecommendCmd(opts *globalOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend when to trigger the first window of the day",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.RecommendCLI.Recommend(context.Background(), days)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd, out)
				}
				renderRecommendation(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "history days to analyze (default from config)")
	return cmd
}

func newWeekCmd(opts *globalOptions) *cobra.Command {
	var days int
	var day string
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show active windows per weekday",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				if day != "" {
					out, err := app.RecommendCLI.Day(context.Background(), day, days)
					if err != nil {
						return err
					}
					if opts.jsonOut {
						return printJSON(cmd, out)
					}
					renderDay(cmd.OutOrStdout(), out)
					return nil
				}
				out, err := app.RecommendCLI.Week(context.Background(), days)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd, out)
				}
				renderWeek(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "history days to analyze (default from config)")
	cmd.Flags().StringVar(&day, "day", "", "only this weekday (monday..sunday)")
	return cmd
}

func newScheduleCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule [start HH:MM] [end HH:MM]",
		Short: "Lay out window start times across a working interval",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end := "", ""
			if len(args) > 0 {
				start = args[0]
			}
			if len(args) > 1 {
				end = args[1]
			}
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.ScheduleCLI.Plan(context.Background(), start, end)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd, out)
				}
				renderSchedule(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}

func newExportCmd(opts *globalOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "export <note.md>",
		Short: "Write today's plan and the week into a markdown note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.RecommendCLI.Export(context.Background(), args[0], days)
				if err != nil {
					return err
				}
				origin := "workday default"
				if out.FromHistory {
					origin = "history"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote %s start=%s (%s) windows=%v\n", out.Path, out.Start, origin, out.StartTimes)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "history days to analyze (default from config)")
	return cmd
}

func newSyncCmd(opts *globalOptions) *cobra.Command {
	syncCmd := &cobra.Command{Use: "sync", Short: "Share usage with other machines"}

	syncCmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Publish this machine's usage to the sync document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.SyncCLI.Push(context.Background())
				if err != nil {
					return err
				}
				if out.Stale {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "skipped push: %s already holds a newer snapshot of %s\n", out.Location, out.MachineID)
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pushed %d hours for %s to %s (machines=%d attempts=%d)\n", out.Hours, out.MachineID, out.Location, out.Machines, out.Attempts)
				return nil
			})
		},
	})
	syncCmd.AddCommand(&cobra.Command{
		Use:   "pull",
		Short: "Import other machines' usage from the sync document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.SyncCLI.Pull(context.Background())
				if err != nil {
					return err
				}
				if !out.RemoteFound {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "no sync document at %s\n", out.Location)
					return nil
				}
				for _, m := range out.Imported {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%s) hours=%d updated=%s\n", m.MachineID, m.Hostname, m.Hours, clock.ToISO(m.UpdatedAt))
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "pulled %d machines from %s\n", len(out.Imported), out.Location)
				return nil
			})
		},
	})
	syncCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show machines present in the sync document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.SyncCLI.Status(context.Background())
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd, out)
				}
				renderSyncStatus(cmd.OutOrStdout(), out)
				return nil
			})
		},
	})
	return syncCmd
}

func newCollectorCmd(opts *globalOptions) *cobra.Command {
	collector := &cobra.Command{Use: "collector", Short: "Manage external sample collectors"}

	collector.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured collectors",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				items, err := app.CollectorCLI.List(context.Background())
				if err != nil {
					return err
				}
				if len(items) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no collectors")
					return nil
				}
				for _, item := range items {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s version=%s enabled=%t binary=%s\n", item.Name, item.Version, item.Enabled, item.Binary)
				}
				return nil
			})
		},
	})
	collector.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Check collector binaries, checksums and handshakes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				results, err := app.CollectorCLI.Doctor(context.Background())
				if err != nil {
					return err
				}
				if len(results) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no collectors")
					return nil
				}
				for _, r := range results {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
					if r.Error != "" {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			})
		},
	})
	collector.AddCommand(&cobra.Command{
		Use:   "run [name]",
		Short: "Drain new samples from one or all enabled collectors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return withApp(opts, func(app *bootstrap.App) error {
				results, err := app.CollectorCLI.Run(context.Background(), name)
				if err != nil {
					return err
				}
				if len(results) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no enabled collectors")
					return nil
				}
				for _, r := range results {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s collected=%d imported=%d last_seen=%s", r.Name, r.Collected, r.Imported, clock.ToISO(r.LastSeen))
					if r.Error != "" {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			})
		},
	})
	return collector
}

func newServeCmd(opts *globalOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recommendations and metrics over HTTP",
		RunE: func(_ *cobra.Command, _ []string) error {
			if opts.logLevel == "" {
				opts.logLevel = "info"
			}
			return withApp(opts, func(app *bootstrap.App) error {
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return app.NewServer(addr).Run(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func newTUICmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the quotawin terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(opts, bootstrap.RunTUI)
		},
	}
}
