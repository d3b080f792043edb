package factory

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kebairia/backupwatch/internal/config"
	"github.com/kebairia/backupwatch/internal/logger"
	"github.com/kebairia/backupwatch/internal/notifier"
	"github.com/kebairia/backupwatch/internal/notifier/pushplus"
	"github.com/kebairia/backupwatch/internal/notifier/slack"
)

// ErrUnknownDriver is returned for a notify.driver no notifier implements.
var ErrUnknownDriver = errors.New("unknown notification driver")

// New builds the notifier selected by cfg.Driver.
func New(cfg config.NotifyConfig, log logger.Logger) (notifier.Notifier, error) {
	switch driver := strings.ToLower(cfg.Driver); driver {
	case config.DriverPushPlus, "":
		return pushplus.New(cfg.PushPlus,
			pushplus.WithTimeout(cfg.Timeout),
			pushplus.WithLogger(log),
		), nil
	case config.DriverSlack:
		slackCfg := cfg.Slack
		return slack.New(&slackCfg, &http.Client{Timeout: cfg.Timeout}, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
