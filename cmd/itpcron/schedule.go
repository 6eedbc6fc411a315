package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/itprism/itpcron/internal/constants"
	"github.com/itprism/itpcron/internal/logger"
)

// scheduleCmd runs [[schedule]] entries until interrupted
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the configured schedule",
	Long: `Keep running and fire every [[schedule]] entry of the configuration on
its cron expression. Each firing is a full run with its own report.
Stops on SIGINT or SIGTERM after running entries finish.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}

	entries := len(a.Config().Schedule)
	if entries == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), constants.MsgScheduleNone)
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), constants.MsgScheduleStarted, entries)
	log.Info("scheduler running", logger.Field{Key: "entries", Value: entries})

	return a.Schedule(ctx)
}
