package monitor

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/kebairia/backupwatch/internal/config"
	"github.com/kebairia/backupwatch/internal/logger"
	"github.com/kebairia/backupwatch/internal/logsource"
	"github.com/kebairia/backupwatch/internal/notifier"
	"github.com/kebairia/backupwatch/internal/report"
)

// errEmptyLog treats a container without output like one whose logs could
// not be read.
var errEmptyLog = errors.New("container log is empty")

// Status is the outcome class of one check.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusUnknown Status = "unknown"
)

// Result describes what a check found and whether it was delivered.
type Result struct {
	RunID     string
	Status    Status
	Report    report.Report
	Message   report.Message
	Delivered bool
}

// Monitor runs the fetch, extract, render and notify pipeline for one
// container.
type Monitor struct {
	container string
	source    logsource.Source
	renderer  *report.Renderer
	notifier  notifier.Notifier
	log       logger.Logger
	newRunID  func() string
}

// New wires a Monitor from cfg. The message format follows the notifier.
func New(cfg config.Config, src logsource.Source, n notifier.Notifier, log logger.Logger) (*Monitor, error) {
	renderer, err := report.NewRenderer(report.RenderOptions{
		Label:       cfg.Report.Label,
		Format:      n.Format(),
		MaxLogBytes: cfg.Report.MaxLogBytes,
	})
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Global()
	}
	return &Monitor{
		container: cfg.Container.Name,
		source:    src,
		renderer:  renderer,
		notifier:  n,
		log:       log,
		newRunID:  uuid.NewString,
	}, nil
}

// Run performs one check. It never fails: an unreadable log degrades to
// the unknown-status message and delivery errors are only logged.
func (m *Monitor) Run(ctx context.Context) Result {
	res := Result{RunID: m.newRunID()}
	log := m.log.With("run_id", res.RunID, "container", m.container)
	log.Info("check started")

	text, err := m.source.Fetch(ctx, m.container)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptyLog
	}
	if err != nil {
		log.Warn("container logs unavailable", "error", err)
		res.Status = StatusUnknown
		msg, err := m.renderer.RenderUnknown()
		if err != nil {
			log.Error("failed to render message", "error", err)
			return res
		}
		res.Message = msg
		res.Delivered = m.deliver(ctx, log, msg)
		m.finish(log, res)
		return res
	}

	res.Report = report.Extract(text)
	raw := ""
	res.Status = StatusSuccess
	if !res.Report.Succeeded {
		res.Status = StatusFailure
		raw = text
	}
	log.Debug("backup report extracted", "report", res.Report)

	msg, err := m.renderer.Render(res.Report, raw)
	if err != nil {
		log.Error("failed to render message", "error", err)
		return res
	}
	res.Message = msg
	res.Delivered = m.deliver(ctx, log, msg)
	m.finish(log, res)
	return res
}

func (m *Monitor) deliver(ctx context.Context, log logger.Logger, msg report.Message) bool {
	if err := m.notifier.Notify(ctx, msg); err != nil {
		log.Error("notification failed",
			"driver", m.notifier.Name(),
			"title", msg.Title,
			"error", err,
		)
		return false
	}
	return true
}

func (m *Monitor) finish(log logger.Logger, res Result) {
	log.Info("check finished",
		"status", string(res.Status),
		"archive", res.Report.ArchiveName,
		"delivered", res.Delivered,
	)
}
