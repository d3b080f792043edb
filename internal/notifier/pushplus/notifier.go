package pushplus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/kebairia/backupwatch/internal/config"
	"github.com/kebairia/backupwatch/internal/logger"
	"github.com/kebairia/backupwatch/internal/notifier"
	"github.com/kebairia/backupwatch/internal/report"
)

const (
	Driver = config.DriverPushPlus

	DefaultTimeout = 15 * time.Second

	// codeOK is the service-level success code in the response body.
	codeOK = 200
	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 1 << 20
)

type payload struct {
	Token    string  `json:"token"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	Template string  `json:"template"`
	Topic    *string `json:"topic"`
}

// response is the PushPlus reply envelope. code arrives as a number but is
// decoded weakly so a quoted code is tolerated as well.
type response struct {
	Code int    `mapstructure:"code"`
	Msg  string `mapstructure:"msg"`
	Data any    `mapstructure:"data"`
}

// Option lets you override default settings on a Notifier.
type Option func(*Notifier)

// Notifier sends messages through the PushPlus HTTP API.
type Notifier struct {
	cfg     config.PushPlusConfig
	client  *http.Client
	timeout time.Duration
	log     logger.Logger
}

var _ notifier.Notifier = (*Notifier)(nil)

// WithHTTPClient replaces the default client, e.g. to stub the endpoint.
// The client is used as is; WithTimeout does not apply to it.
func WithHTTPClient(c *http.Client) Option {
	return func(n *Notifier) {
		if c != nil {
			n.client = c
		}
	}
}

// WithTimeout bounds each request made by the default client.
func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(n *Notifier) {
		if l != nil {
			n.log = l
		}
	}
}

// New returns a PushPlus Notifier configured from cfg plus any overrides.
func New(cfg config.PushPlusConfig, opts ...Option) *Notifier {
	if cfg.Endpoint == "" {
		cfg.Endpoint = config.DefaultPushPlusEndpoint
	}
	n := &Notifier{
		cfg:     cfg,
		timeout: DefaultTimeout,
		log:     logger.Global(),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.client == nil {
		n.client = &http.Client{Timeout: n.timeout}
	}
	return n
}

func (n *Notifier) Name() string { return Driver }

func (n *Notifier) Format() report.Format { return report.FormatHTML }

// Notify posts msg once. Delivery succeeds only on HTTP 200 with a body
// whose code is 200.
func (n *Notifier) Notify(ctx context.Context, msg report.Message) error {
	template := string(msg.Format)
	if template == "" {
		template = string(report.FormatHTML)
	}
	// An unset topic goes out as null.
	var topic *string
	if n.cfg.Topic != "" {
		topic = &n.cfg.Topic
	}
	body, err := json.Marshal(payload{
		Token:    n.cfg.Token,
		Title:    msg.Title,
		Content:  msg.Body,
		Template: template,
		Topic:    topic,
	})
	if err != nil {
		return fmt.Errorf("encode pushplus payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build pushplus request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", notifier.ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status code %d", notifier.ErrDeliveryFailed, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", notifier.ErrDeliveryFailed, err)
	}
	result, err := decodeResponse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", notifier.ErrDeliveryFailed, err)
	}
	if result.Code != codeOK {
		reason := result.Msg
		if reason == "" {
			reason = "unknown error"
		}
		return fmt.Errorf("%w: code %d: %s", notifier.ErrDeliveryFailed, result.Code, reason)
	}

	n.log.Info("notification sent",
		"driver", Driver,
		"title", msg.Title,
		"msg", result.Msg,
	)
	return nil
}

func decodeResponse(raw []byte) (response, error) {
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return response{}, fmt.Errorf("decode response: %w", err)
	}

	var out response
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return response{}, err
	}
	if err := dec.Decode(generic); err != nil {
		return response{}, fmt.Errorf("decode response: %w", err)
	}
	return out, nil
}
