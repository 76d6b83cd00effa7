package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/newthinker/cryptosignals/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Feed    FeedConfig    `mapstructure:"feed"`
	Refresh RefreshConfig `mapstructure:"refresh"`
	Server  ServerConfig  `mapstructure:"server"`
	Push    PushConfig    `mapstructure:"push"`
	History HistoryConfig `mapstructure:"history"`
	Archive ArchiveConfig `mapstructure:"archive"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Chart   ChartConfig   `mapstructure:"chart"`
}

// FeedConfig describes the remote signals endpoint.
type FeedConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Path      string        `mapstructure:"path"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// RefreshConfig controls when and how the list is reloaded.
type RefreshConfig struct {
	// Overlap is one of "ignore", "queue" or "race".
	Overlap  string `mapstructure:"overlap"`
	Schedule string `mapstructure:"schedule"` // cron spec, empty disables
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

// PushConfig holds topic subscription settings.
type PushConfig struct {
	Enabled    bool              `mapstructure:"enabled"`
	GatewayURL string            `mapstructure:"gateway_url"`
	Headers    map[string]string `mapstructure:"headers"`
	Language   string            `mapstructure:"language"` // empty uses $LANG
}

type HistoryConfig struct {
	Driver  string `mapstructure:"driver"` // "memory" or "sqlite"
	DSN     string `mapstructure:"dsn"`
	MaxSize int    `mapstructure:"max_size"`
}

type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ChartConfig parameterizes the embedded chart widget.
type ChartConfig struct {
	Exchange    string `mapstructure:"exchange"`
	DefaultPair string `mapstructure:"default_pair"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	// Support environment variable overrides
	v.SetEnvPrefix("SIGNALS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults mirrors Defaults so partial files stay usable.
func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("feed.base_url", d.Feed.BaseURL)
	v.SetDefault("feed.path", d.Feed.Path)
	v.SetDefault("feed.timeout", d.Feed.Timeout)
	v.SetDefault("feed.user_agent", d.Feed.UserAgent)
	v.SetDefault("refresh.overlap", d.Refresh.Overlap)
	v.SetDefault("refresh.schedule", d.Refresh.Schedule)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("history.driver", d.History.Driver)
	v.SetDefault("history.max_size", d.History.MaxSize)
	v.SetDefault("archive.type", d.Archive.Type)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("chart.exchange", d.Chart.Exchange)
	v.SetDefault("chart.default_pair", d.Chart.DefaultPair)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Feed: FeedConfig{
			BaseURL:   "http://127.0.0.1:8000",
			Path:      "/signals",
			Timeout:   30 * time.Second,
			UserAgent: "cryptosignals",
		},
		Refresh: RefreshConfig{
			Overlap:  "ignore",
			Schedule: "",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8090,
		},
		History: HistoryConfig{
			Driver:  "memory",
			MaxSize: 200,
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Type:    "localfs",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Chart: ChartConfig{
			Exchange:    "BINANCE",
			DefaultPair: "BTC/USDT",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Feed validation
	if c.Feed.BaseURL == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("feed.base_url is required"))
	}
	u, err := url.Parse(c.Feed.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("feed.base_url must be an absolute URL, got %q", c.Feed.BaseURL))
	}
	if c.Feed.Timeout < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("feed.timeout cannot be negative, got %s", c.Feed.Timeout))
	}

	switch c.Refresh.Overlap {
	case "", "ignore", "queue", "race":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("refresh.overlap must be ignore, queue or race, got %q", c.Refresh.Overlap))
	}

	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Push.Enabled && c.Push.GatewayURL == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("push.gateway_url required when push is enabled"))
	}

	switch c.History.Driver {
	case "", "memory":
	case "sqlite":
		if c.History.DSN == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("history.dsn required when driver is sqlite"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown history driver: %s", c.History.Driver))
	}

	if c.Archive.Enabled {
		switch c.Archive.Type {
		case "localfs":
			if c.Archive.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("archive.path required when type is localfs"))
			}
		case "s3":
			if c.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("archive.s3.bucket required when type is s3"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown archive type: %s", c.Archive.Type))
		}
	}

	return nil
}
