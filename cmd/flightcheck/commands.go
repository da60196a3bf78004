package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skylane-qa/flightcheck/internal/config"
	"github.com/skylane-qa/flightcheck/internal/report"
	"github.com/skylane-qa/flightcheck/internal/runner"
	"github.com/skylane-qa/flightcheck/internal/scenario"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run [filter]",
		Short: "Run the selected test cases",
		Long: `Run executes the selected cases, each on a fresh browser, and writes the
HTML report (plus XLSX and metrics when enabled).

Exit status is 0 when every case passed, 1 when any failed and 2 for
configuration or data file errors.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			filter := filterArg(args)
			cases, err := a.selectCases(cfg, filter)
			if err != nil {
				return err
			}

			logger, logPath, cleanup, err := a.runLogger(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			run, err := a.execute(ctx, cfg, logger, logPath, cases, filter, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return verdict(run)
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [filter]",
		Short: "List the selected test cases",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			cases, err := a.selectCases(cfg, filterArg(args))
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CASE\tFILE\tTAGS\tSCENARIO")
			for _, c := range cases {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Name, c.File, strings.Join(c.Tags, ","), c.Scenario)
			}
			return w.Flush()
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate the configuration and the scenario data file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			path := cfg.Data.Path
			if len(args) == 1 {
				path = args[0]
			}

			set, err := scenario.Load(path, a.now())
			if err != nil {
				return withCode(exitConfig, err)
			}
			if _, err := runner.Expand(set); err != nil {
				return withCode(exitConfig, err)
			}

			out := cmd.OutOrStdout()
			if file := loader.ConfigFile(); file != "" {
				fmt.Fprintf(out, "config %s: ok\n", file)
			}
			v := config.NewValidator(cfg)
			if v.Validate() == nil {
				for _, w := range v.Warnings() {
					fmt.Fprintf(out, "warning: %s\n", w)
				}
			}
			fmt.Fprintf(out, "%s: %d scenarios ok\n", path, set.Len())
			return nil
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	var now bool
	cmd := &cobra.Command{
		Use:   "watch [filter]",
		Short: "Re-run the selected cases on a cron schedule",
		Long: `Watch runs the selection on the configured cron schedule (seconds field
first) until interrupted. Edits to the config file apply from the next run;
the data file is re-read on every run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			filter := filterArg(args)
			if _, err := a.selectCases(cfg, filter); err != nil {
				return err
			}

			logger, logPath, cleanup, err := a.runLogger(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			var current atomic.Pointer[config.Config]
			current.Store(cfg)
			loader.Watch(func(c *config.Config) {
				current.Store(c)
				logger.Info("configuration reloaded", zap.String("file", loader.ConfigFile()))
			}, func(err error) {
				logger.Warn("configuration change ignored", zap.Error(err))
			})

			registry := runner.NewTaskRegistry()
			if err := registry.Register(&runner.FuncTask{
				TaskName:     "suite",
				CronSchedule: cfg.Runner.Schedule,
				Fn: func(ctx context.Context) error {
					c := current.Load()
					cases, err := a.selectCases(c, filter)
					if err != nil {
						return err
					}
					run, err := a.execute(ctx, c, logger, logPath, cases, filter, cmd.OutOrStdout())
					if err != nil {
						return err
					}
					return verdict(run)
				},
			}); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			scheduler := runner.NewScheduler(registry, logger)
			if now {
				_ = scheduler.RunNow(ctx, "suite")
			}
			if err := scheduler.Start(ctx); err != nil {
				return withCode(exitConfig, err)
			}
			return nil
		},
	}
	cmd.Flags().String("schedule", "0 0 */6 * * *", "cron schedule with seconds field")
	cmd.Flags().BoolVar(&now, "now", false, "run once immediately before waiting for the schedule")
	return cmd
}

func newReportsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List report files, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			entries, err := report.List(cfg.Report.Dir, a.now())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no reports in %s\n", cfg.Report.Dir)
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%d bytes\n", e.Path, e.Age, e.Size)
			}
			return w.Flush()
		},
	}
}
