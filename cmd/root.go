package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kebairia/backupwatch/internal/config"
	"github.com/kebairia/backupwatch/internal/logger"
)

var (
	// ConfigFile is the path to the optional YAML configuration.
	ConfigFile string
	LogLevel   string

	// cfg is loaded once per process in PersistentPreRunE.
	cfg config.Config
	log logger.Logger = logger.Global()

	// rootCmd is the base command for backupwatch.
	rootCmd = &cobra.Command{
		Use:   "backupwatch",
		Short: "Watch a backup container's log and push the result",
		Long: `backupwatch reads the log of a backup container (nextcloud-aio-borgbackup
by default), decides whether the last backup succeeded and pushes a summary
to PushPlus or Slack.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
	}
)

// flagKeys maps CLI flags onto configuration keys.
var flagKeys = map[string]string{
	"log-level": "log.level",
	"container": "container.name",
	"log-file":  "container.log_file",
	"schedule":  "watch.schedule",
}

// Execute runs the root command.
func Execute() {
	defer logger.Cleanup()
	if err := rootCmd.Execute(); err != nil {
		log.Error("command failed", "error", err)
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		logger.Cleanup()
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	v := config.New()
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	if err := cfg.Load(v, ConfigFile); err != nil {
		return err
	}

	l, err := logger.Init(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	log = l
	log.Debug("configuration loaded",
		"config_file", ConfigFile,
		"container", cfg.Container.Name,
		"driver", cfg.Notify.Driver,
	)
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("%w: bind flag --%s: %v", config.ErrLoadConfig, name, err)
		}
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().
		StringVarP(&ConfigFile, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().
		StringVar(&LogLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(captureCmd)
}
