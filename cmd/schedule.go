package cmd

import (
	"time"

	"github.com/khrees2412/jobmatch/internal/scheduler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Periodically rescore every active candidate",
	Long:  "Runs a rematch cycle immediately and then on the configured cron spec until interrupted",
	Example: `  jobmatch schedule
  jobmatch schedule --spec "@every 6h" --once`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := appFrom(cmd)
		if err != nil {
			return err
		}

		spec := application.Config.Schedule.Spec
		if cmd.Flags().Changed("spec") {
			spec, _ = cmd.Flags().GetString("spec")
		}
		limit := application.Config.Schedule.Limit
		if limit <= 0 {
			limit = application.DefaultLimit()
		}

		s := scheduler.New(application.Store, application.Engine, application.Logger, spec, limit)

		if once, _ := cmd.Flags().GetBool("once"); once {
			report := s.RunOnce(cmd.Context())
			cmd.Printf("✓ Rescored %d candidates: %d matches, %d failures in %s\n",
				report.Candidates, report.Matches, report.Failures, report.Took.Round(time.Millisecond))
			return nil
		}

		s.OnCycle(func(r scheduler.CycleReport) {
			cmd.Printf("✓ Cycle finished: %d candidates, %d matches\n", r.Candidates, r.Matches)
		})
		if err := s.Start(cmd.Context()); err != nil {
			return err
		}
		<-cmd.Context().Done()
		application.Logger.Info("shutting down", zap.Error(cmd.Context().Err()))
		s.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.Flags().String("spec", scheduler.DefaultSpec, "Cron spec, overrides schedule.spec")
	scheduleCmd.Flags().Bool("once", false, "Run a single cycle and exit")
}
