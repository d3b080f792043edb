package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kebairia/backupwatch/internal/monitor"
)

var runNow bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Check the backup on a cron schedule until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		m, closeSrc, err := newMonitor(ctx, nil)
		if err != nil {
			return err
		}
		defer closeSrc()

		return monitor.Watch(ctx, m, cfg.Watch.Schedule, runNow)
	},
}

func init() {
	watchCmd.Flags().
		String("container", "", "backup container name (default nextcloud-aio-borgbackup)")
	watchCmd.Flags().
		String("log-file", "", "read the log from a file (.zst supported) instead of the container")
	watchCmd.Flags().
		String("schedule", "", `five-field cron schedule (default "0 4 * * *")`)
	watchCmd.Flags().
		BoolVar(&runNow, "now", false, "run one check immediately")
}
