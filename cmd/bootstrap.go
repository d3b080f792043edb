package cmd

import (
	"context"
	"io"

	"github.com/kebairia/backupwatch/internal/logsource"
	"github.com/kebairia/backupwatch/internal/monitor"
	"github.com/kebairia/backupwatch/internal/notifier/console"
	"github.com/kebairia/backupwatch/internal/notifier/factory"
	"github.com/kebairia/backupwatch/internal/vault"
)

// newMonitor validates the configuration and wires the pipeline. With
// dryOut set, messages are printed there instead of delivered, and no
// delivery token is required.
func newMonitor(ctx context.Context, dryOut io.Writer) (*monitor.Monitor, func(), error) {
	if dryOut == nil {
		if err := vault.ResolveDeliveryToken(ctx, &cfg); err != nil {
			log.Warn("vault lookup failed", "error", err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}

	n, err := factory.New(cfg.Notify, log)
	if err != nil {
		return nil, nil, err
	}
	if dryOut != nil {
		n = console.New(dryOut, n.Format())
	}

	src, closeSrc := newSource()
	m, err := monitor.New(cfg, src, n, log)
	if err != nil {
		closeSrc()
		return nil, nil, err
	}
	return m, closeSrc, nil
}

// newSource picks the log file when one is configured, the container
// runtime otherwise. A runtime client that cannot be created degrades to a
// source that always fails, so the check still reports an unknown status.
func newSource() (logsource.Source, func()) {
	if cfg.Container.LogFile != "" {
		return &logsource.File{Path: cfg.Container.LogFile}, func() {}
	}
	d, err := logsource.NewDocker(
		logsource.WithTimeout(cfg.Container.Timeout),
		logsource.WithLogger(log),
	)
	if err != nil {
		log.Warn("container runtime unavailable", "error", err)
		return logsource.Unavailable(err), func() {}
	}
	return d, func() { _ = d.Close() }
}
