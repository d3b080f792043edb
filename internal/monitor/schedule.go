package monitor

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/kebairia/backupwatch/internal/logger"
)

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct {
	log logger.Logger
}

var _ cron.Logger = cronLogger{}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.log.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.log.Error(msg, append(keysAndValues, "error", err)...)
}

// Watch runs m on the five-field cron schedule until ctx is cancelled.
// A run still in progress when the next one is due causes that one to be
// skipped. With runNow, one check runs before the schedule starts.
func Watch(ctx context.Context, m *Monitor, schedule string, runNow bool) error {
	cl := cronLogger{log: m.log}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(schedule, func() { m.Run(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	if runNow {
		m.Run(ctx)
	}

	c.Start()
	m.log.Info("watching backup container", "container", m.container, "schedule", schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	m.log.Info("watch stopped")
	return nil
}
