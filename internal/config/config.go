package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/rafbgarcia/counterpage/internal/conventions"
)

const defaultConfigName = "counterpage"

type Config struct {
	Port int

	// APIOrigin is the normalized upstream origin, without trailing slash.
	APIOrigin string

	// Hostname is the display string embedded in the page. Empty is valid.
	Hostname string

	// UpstreamTimeout bounds each counter fetch. Zero disables the timeout.
	UpstreamTimeout time.Duration

	// MetricsAddr enables the Prometheus listener when set.
	MetricsAddr string

	LogLevel slog.Level

	// TemplatesDir serves templates from disk instead of the embedded set.
	TemplatesDir string

	ShutdownTimeout time.Duration
}

// Options controls where Load looks for values.
type Options struct {
	// File is an explicit config file path. Empty searches . and config/.
	File string

	// Flags are bound over every other source. Flag names use dashes
	// (api-origin) and map to keys with underscores (api_origin).
	Flags *pflag.FlagSet
}

func Load(opts Options) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(defaultConfigName)
		v.AddConfigPath(".")
		v.AddConfigPath("config")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", 3000)
	v.SetDefault("api_origin", conventions.DefaultOrigin)
	v.SetDefault("hostname", "")
	v.SetDefault("upstream.timeout", 10*time.Second)
	v.SetDefault("metrics.addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("templates.dir", "")
	v.SetDefault("shutdown.timeout", 10*time.Second)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if opts.Flags != nil {
		var bindErr error
		opts.Flags.VisitAll(func(f *pflag.Flag) {
			key := flagKey(f.Name)
			if key == "" || bindErr != nil {
				return
			}
			// A flag's own default replaces the built-in one but still
			// loses to env and file values.
			if !f.Changed && f.DefValue != "" {
				v.SetDefault(key, f.DefValue)
			}
			bindErr = v.BindPFlag(key, f)
		})
		if bindErr != nil {
			return Config{}, fmt.Errorf("bind flags: %w", bindErr)
		}
	}

	cfg := Config{
		Port:            v.GetInt("port"),
		Hostname:        v.GetString("hostname"),
		UpstreamTimeout: v.GetDuration("upstream.timeout"),
		MetricsAddr:     strings.TrimSpace(v.GetString("metrics.addr")),
		TemplatesDir:    strings.TrimSpace(v.GetString("templates.dir")),
		ShutdownTimeout: v.GetDuration("shutdown.timeout"),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	origin, err := conventions.NormalizeOrigin(v.GetString("api_origin"))
	if err != nil {
		return Config{}, fmt.Errorf("api_origin: %w", err)
	}
	cfg.APIOrigin = origin
	if cfg.UpstreamTimeout < 0 {
		return Config{}, fmt.Errorf("upstream.timeout must not be negative")
	}
	if cfg.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("shutdown.timeout must be positive")
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log.level"))); err != nil {
		return Config{}, fmt.Errorf("log.level: %w", err)
	}
	return cfg, nil
}

// flagKey maps a flag name to its config key. Flags without a key (such as
// --config) return "".
func flagKey(name string) string {
	switch name {
	case "port":
		return "port"
	case "api-origin":
		return "api_origin"
	case "hostname":
		return "hostname"
	case "templates":
		return "templates.dir"
	case "metrics-addr":
		return "metrics.addr"
	case "log-level":
		return "log.level"
	}
	return ""
}
