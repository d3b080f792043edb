package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kebairia/backupwatch/internal/logsource"
)

var (
	captureOut      string
	captureCompress bool
)

// captureCmd saves the current container log so it can be replayed with
// `check --log-file` or `parse`.
var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Save the backup container's current log to a file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := logsource.NewDocker(
			logsource.WithTimeout(cfg.Container.Timeout),
			logsource.WithLogger(log),
		)
		if err != nil {
			return err
		}
		defer d.Close()

		text, err := d.Fetch(cmd.Context(), cfg.Container.Name)
		if err != nil {
			return err
		}
		if err := logsource.Save(captureOut, text); err != nil {
			return err
		}

		path := captureOut
		if captureCompress {
			if path, err = logsource.CompressZstd(captureOut); err != nil {
				return err
			}
		}
		log.Info("container log captured",
			"container", cfg.Container.Name,
			"path", path,
			"bytes", len(text),
		)
		return nil
	},
}

func init() {
	captureCmd.Flags().
		String("container", "", "backup container name (default nextcloud-aio-borgbackup)")
	captureCmd.Flags().
		StringVarP(&captureOut, "out", "o", "backup.log", "output file")
	captureCmd.Flags().
		BoolVar(&captureCompress, "compress", false, "compress the file with zstd (.zst)")
}
