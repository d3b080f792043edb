package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kebairia/backupwatch/internal/config"
	"github.com/kebairia/backupwatch/internal/logger"
	"github.com/kebairia/backupwatch/internal/logsource"
	"github.com/kebairia/backupwatch/internal/notifier"
	"github.com/kebairia/backupwatch/internal/report"
)

type fakeSource struct {
	text string
	err  error
	got  string
}

func (f *fakeSource) Fetch(_ context.Context, name string) (string, error) {
	f.got = name
	return f.text, f.err
}

type fakeNotifier struct {
	mu     sync.Mutex
	err    error
	format report.Format
	sent   []report.Message
	notify chan struct{}
}

func (f *fakeNotifier) Name() string { return "fake" }

func (f *fakeNotifier) Format() report.Format {
	if f.format == "" {
		return report.FormatHTML
	}
	return f.format
}

func (f *fakeNotifier) Notify(_ context.Context, msg report.Message) error {
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()
	if f.notify != nil {
		select {
		case f.notify <- struct{}{}:
		default:
		}
	}
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func testConfig() config.Config {
	return config.Config{
		Container: config.ContainerConfig{Name: "nextcloud-aio-borgbackup"},
		Report:    config.ReportConfig{Label: "Nextcloud", MaxLogBytes: 20000},
	}
}

func newTestMonitor(t *testing.T, src logsource.Source, n notifier.Notifier) *Monitor {
	t.Helper()
	m, err := New(testConfig(), src, n, logger.Nop())
	require.NoError(t, err)
	m.newRunID = func() string { return "run-1" }
	return m
}

func TestRun_Success(t *testing.T) {
	src := &fakeSource{text: "Archive name: a-1\nThis archive: 1 GB 2 GB 3 GB\nBackup finished successfully\n"}
	n := &fakeNotifier{}

	res := newTestMonitor(t, src, n).Run(context.Background())

	assert.Equal(t, "nextcloud-aio-borgbackup", src.got)
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.True(t, res.Delivered)
	assert.Equal(t, "a-1", res.Report.ArchiveName)
	require.Len(t, n.sent, 1)
	assert.Equal(t, "✅ Nextcloud backup succeeded", n.sent[0].Title)
	assert.NotContains(t, n.sent[0].Body, "This archive:")
}

func TestRun_FailureIncludesRawLog(t *testing.T) {
	src := &fakeSource{text: "Creating archive\nError: repository locked\n"}
	n := &fakeNotifier{}

	res := newTestMonitor(t, src, n).Run(context.Background())

	assert.Equal(t, StatusFailure, res.Status)
	assert.Equal(t, "Error: repository locked", res.Report.ErrorExcerpt)
	require.Len(t, n.sent, 1)
	assert.Equal(t, "❌ Nextcloud backup failed", n.sent[0].Title)
	assert.Contains(t, n.sent[0].Body, "Creating archive")
}

func TestRun_FetchFailureIsUnknown(t *testing.T) {
	for _, err := range []error{logsource.ErrContainerNotFound, logsource.ErrLogsUnavailable, errors.New("boom")} {
		n := &fakeNotifier{}

		res := newTestMonitor(t, &fakeSource{err: err}, n).Run(context.Background())

		assert.Equal(t, StatusUnknown, res.Status)
		assert.Equal(t, report.Report{}, res.Report)
		require.Len(t, n.sent, 1)
		assert.Equal(t, "⚠️ Nextcloud backup status unknown", n.sent[0].Title)
	}
}

func TestRun_EmptyLogIsUnknown(t *testing.T) {
	n := &fakeNotifier{}

	res := newTestMonitor(t, &fakeSource{text: " \n\t"}, n).Run(context.Background())

	assert.Equal(t, StatusUnknown, res.Status)
	require.Len(t, n.sent, 1)
	assert.Equal(t, "⚠️ Nextcloud backup status unknown", n.sent[0].Title)
}

func TestRun_DeliveryFailureIsNotFatal(t *testing.T) {
	n := &fakeNotifier{err: notifier.ErrDeliveryFailed}

	res := newTestMonitor(t, &fakeSource{text: "Backup finished successfully"}, n).Run(context.Background())

	assert.Equal(t, StatusSuccess, res.Status)
	assert.False(t, res.Delivered)
	assert.Equal(t, 1, n.count(), "no retry")
}

func TestNew_FormatFollowsNotifier(t *testing.T) {
	n := &fakeNotifier{format: report.FormatMarkdown}

	res := newTestMonitor(t, &fakeSource{text: "Backup finished successfully"}, n).Run(context.Background())

	assert.Equal(t, report.FormatMarkdown, res.Message.Format)
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	_, err := New(testConfig(), &fakeSource{}, &fakeNotifier{format: "pdf"}, logger.Nop())
	assert.Error(t, err)
}

func TestWatch_InvalidSchedule(t *testing.T) {
	m := newTestMonitor(t, &fakeSource{}, &fakeNotifier{})
	err := Watch(context.Background(), m, "not a schedule", false)
	assert.Error(t, err)
}

func TestWatch_RunsUntilCancelled(t *testing.T) {
	n := &fakeNotifier{notify: make(chan struct{}, 1)}
	m := newTestMonitor(t, &fakeSource{text: "Backup finished successfully"}, n)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, m, "@every 1s", false) }()

	select {
	case <-n.notify:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled check did not run")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.GreaterOrEqual(t, n.count(), 1)
}

func TestWatch_RunNow(t *testing.T) {
	n := &fakeNotifier{}
	m := newTestMonitor(t, &fakeSource{err: logsource.ErrContainerNotFound}, n)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, Watch(ctx, m, "0 4 * * *", true))
	assert.Equal(t, 1, n.count())
}
