package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrLoadConfig indicates a failure to read or parse the configuration.
var ErrLoadConfig = errors.New("config load failed")

// ErrValidateConfig indicates that the loaded configuration is invalid.
var ErrValidateConfig = errors.New("configuration validation failed")

const (
	DriverPushPlus = "pushplus"
	DriverSlack    = "slack"

	DefaultContainer        = "nextcloud-aio-borgbackup"
	DefaultPushPlusEndpoint = "https://www.pushplus.plus/send"
)

// Config is the process-wide configuration, built once at startup and
// handed to each component.
type Config struct {
	Include   []string        `mapstructure:"include"   yaml:"include,omitempty"`
	Container ContainerConfig `mapstructure:"container" yaml:"container"`
	Notify    NotifyConfig    `mapstructure:"notify"    yaml:"notify"`
	Report    ReportConfig    `mapstructure:"report"    yaml:"report"`
	Vault     VaultConfig     `mapstructure:"vault"     yaml:"vault"`
	Watch     WatchConfig     `mapstructure:"watch"     yaml:"watch"`
	Log       LogConfig       `mapstructure:"log"       yaml:"log"`
}

// ContainerConfig selects where the backup log is read from.
type ContainerConfig struct {
	Name    string        `mapstructure:"name"     yaml:"name"`
	LogFile string        `mapstructure:"log_file" yaml:"log_file,omitempty"`
	Timeout time.Duration `mapstructure:"timeout"  yaml:"timeout"`
}

// NotifyConfig holds the delivery driver and its settings.
type NotifyConfig struct {
	Driver   string         `mapstructure:"driver"   yaml:"driver"`
	Timeout  time.Duration  `mapstructure:"timeout"  yaml:"timeout"`
	PushPlus PushPlusConfig `mapstructure:"pushplus" yaml:"pushplus"`
	Slack    SlackConfig    `mapstructure:"slack"    yaml:"slack"`
}

type PushPlusConfig struct {
	Token    string `mapstructure:"token"    yaml:"token"`
	Topic    string `mapstructure:"topic"    yaml:"topic,omitempty"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}

type SlackConfig struct {
	Token   string `mapstructure:"token"   yaml:"token"`
	Channel string `mapstructure:"channel" yaml:"channel"`
}

// ReportConfig controls message rendering.
type ReportConfig struct {
	Label       string `mapstructure:"label"         yaml:"label"`
	MaxLogBytes int    `mapstructure:"max_log_bytes" yaml:"max_log_bytes"`
}

// VaultConfig holds connection settings for HashiCorp Vault. When Address
// and TokenPath are set, an empty delivery token is looked up there.
type VaultConfig struct {
	Address     string `mapstructure:"address"      yaml:"address"`
	Token       string `mapstructure:"token"        yaml:"token,omitempty"`
	RoleID      string `mapstructure:"role_id"      yaml:"role_id,omitempty"`
	ApproleName string `mapstructure:"approle_name" yaml:"approle_name,omitempty"`
	TokenPath   string `mapstructure:"token_path"   yaml:"token_path"`
	TokenKey    string `mapstructure:"token_key"    yaml:"token_key"`
}

// Enabled reports whether a Vault lookup is configured.
func (v VaultConfig) Enabled() bool {
	return v.Address != "" && v.TokenPath != ""
}

type WatchConfig struct {
	Schedule string `mapstructure:"schedule" yaml:"schedule"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// envBindings maps config keys to the environment variables that feed them.
var envBindings = map[string]string{
	"container.name":           "DOCKER_CONTAINER",
	"container.log_file":       "BACKUP_LOG_FILE",
	"notify.driver":            "NOTIFY_DRIVER",
	"notify.pushplus.token":    "PUSHPLUS_TOKEN",
	"notify.pushplus.topic":    "PUSHPLUS_TOPIC",
	"notify.pushplus.endpoint": "PUSHPLUS_URL",
	"notify.slack.token":       "SLACK_TOKEN",
	"notify.slack.channel":     "SLACK_CHANNEL",
	"report.label":             "REPORT_LABEL",
	"vault.address":            "VAULT_ADDR",
	"vault.token":              "VAULT_TOKEN",
	"vault.role_id":            "VAULT_ROLE_ID",
	"watch.schedule":           "WATCH_SCHEDULE",
	"log.level":                "LOG_LEVEL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("container.name", DefaultContainer)
	v.SetDefault("container.timeout", 30*time.Second)
	v.SetDefault("notify.driver", DriverPushPlus)
	v.SetDefault("notify.timeout", 15*time.Second)
	v.SetDefault("notify.pushplus.endpoint", DefaultPushPlusEndpoint)
	v.SetDefault("report.label", "Nextcloud")
	v.SetDefault("report.max_log_bytes", 20000)
	v.SetDefault("vault.token_key", "token")
	v.SetDefault("watch.schedule", "0 4 * * *")
	v.SetDefault("log.level", "info")
}

// New returns a Viper instance with defaults and environment bindings, but
// no file read yet. Callers bind CLI flags onto it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		// BindEnv only fails on an empty key.
		_ = v.BindEnv(key, env)
	}
	return v
}

// Load reads the optional YAML file at path (merging any included files)
// on top of the defaults and environment held by v, then unmarshals into c.
// A .env file in the working directory fills environment variables that
// are not already set.
func (c *Config) Load(v *viper.Viper, path string) error {
	if err := loadDotEnv(".env"); err != nil {
		return err
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("%w: read base config %s: %v", ErrLoadConfig, path, err)
		}

		for _, inc := range v.GetStringSlice("include") {
			data, err := os.ReadFile(inc)
			if err != nil {
				return fmt.Errorf("%w: read include %s: %v", ErrLoadConfig, inc, err)
			}
			if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
				return fmt.Errorf("%w: merge include %s: %v", ErrLoadConfig, inc, err)
			}
		}
	}

	if err := v.UnmarshalExact(c); err != nil {
		return fmt.Errorf("%w: unmarshal config: %v", ErrLoadConfig, err)
	}
	c.Notify.Driver = strings.ToLower(strings.TrimSpace(c.Notify.Driver))

	return nil
}

// loadDotEnv exports KEY=VALUE pairs from path into the process
// environment, never overriding variables that are already set.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	env := viper.New()
	env.SetConfigFile(path)
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrLoadConfig, path, err)
	}
	for _, key := range env.AllKeys() {
		name := strings.ToUpper(key)
		if _, ok := os.LookupEnv(name); ok {
			continue
		}
		if err := os.Setenv(name, env.GetString(key)); err != nil {
			return fmt.Errorf("%w: export %s: %v", ErrLoadConfig, name, err)
		}
	}
	return nil
}

// Validate checks the preconditions a check run cannot proceed without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Container.Name) == "" && c.Container.LogFile == "" {
		return fmt.Errorf("%w: container.name is empty", ErrValidateConfig)
	}
	switch c.Notify.Driver {
	case DriverPushPlus:
		if c.Notify.PushPlus.Token == "" {
			return fmt.Errorf("%w: PUSHPLUS_TOKEN (notify.pushplus.token) is not set", ErrValidateConfig)
		}
		if c.Notify.PushPlus.Endpoint == "" {
			return fmt.Errorf("%w: notify.pushplus.endpoint is empty", ErrValidateConfig)
		}
	case DriverSlack:
		if c.Notify.Slack.Token == "" {
			return fmt.Errorf("%w: SLACK_TOKEN (notify.slack.token) is not set", ErrValidateConfig)
		}
		if c.Notify.Slack.Channel == "" {
			return fmt.Errorf("%w: SLACK_CHANNEL (notify.slack.channel) is not set", ErrValidateConfig)
		}
	default:
		return fmt.Errorf("%w: unknown notify.driver %q", ErrValidateConfig, c.Notify.Driver)
	}
	if c.Report.MaxLogBytes < 0 {
		return fmt.Errorf("%w: report.max_log_bytes must not be negative", ErrValidateConfig)
	}
	return nil
}

// DeliveryToken returns the token of the selected driver.
func (c *Config) DeliveryToken() string {
	if c.Notify.Driver == DriverSlack {
		return c.Notify.Slack.Token
	}
	return c.Notify.PushPlus.Token
}

// SetDeliveryToken stores a token resolved from an external secret store.
func (c *Config) SetDeliveryToken(token string) {
	if c.Notify.Driver == DriverSlack {
		c.Notify.Slack.Token = token
		return
	}
	c.Notify.PushPlus.Token = token
}
