package slack

import (
	"context"
	"fmt"
	"net/http"

	"github.com/slack-go/slack"

	"github.com/kebairia/backupwatch/internal/config"
	"github.com/kebairia/backupwatch/internal/logger"
	"github.com/kebairia/backupwatch/internal/notifier"
	"github.com/kebairia/backupwatch/internal/report"
)

const Driver = config.DriverSlack

type SlackNotifier struct {
	config *config.SlackConfig
	client *slack.Client
	log    logger.Logger
}

var _ notifier.Notifier = (*SlackNotifier)(nil)

// New returns a Slack notifier. httpClient may be nil to use the default.
func New(cfg *config.SlackConfig, httpClient *http.Client, log logger.Logger) *SlackNotifier {
	var opts []slack.Option
	if httpClient != nil {
		opts = append(opts, slack.OptionHTTPClient(httpClient))
	}
	if log == nil {
		log = logger.Global()
	}
	return &SlackNotifier{
		config: cfg,
		client: slack.New(cfg.Token, opts...),
		log:    log,
	}
}

func (s *SlackNotifier) Name() string { return Driver }

func (s *SlackNotifier) Format() report.Format { return report.FormatMarkdown }

func (s *SlackNotifier) Notify(ctx context.Context, msg report.Message) error {
	text := "*" + msg.Title + "*\n" + msg.Body
	channel, ts, err := s.client.PostMessageContext(ctx, s.config.Channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("%w: %v", notifier.ErrDeliveryFailed, err)
	}
	s.log.Info("notification sent",
		"driver", Driver,
		"title", msg.Title,
		"channel", channel,
		"ts", ts,
	)
	return nil
}
