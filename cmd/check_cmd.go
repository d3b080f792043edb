package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

var dryRun bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the last backup once and send a notification",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var dryOut io.Writer
		if dryRun {
			dryOut = os.Stdout
		}
		m, closeSrc, err := newMonitor(cmd.Context(), dryOut)
		if err != nil {
			return err
		}
		defer closeSrc()

		m.Run(cmd.Context())
		return nil
	},
}

func init() {
	checkCmd.Flags().
		String("container", "", "backup container name (default nextcloud-aio-borgbackup)")
	checkCmd.Flags().
		String("log-file", "", "read the log from a file (.zst supported) instead of the container")
	checkCmd.Flags().
		BoolVar(&dryRun, "dry-run", false, "print the message instead of sending it")
}
