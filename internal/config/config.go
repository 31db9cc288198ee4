// Package config loads server settings with viper: a YAML file selected by
// CONFIG_ENV, defaults for every key and DUEL_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const EnvPrefix = "DUEL"

type Config struct {
	Mode            string        `mapstructure:"mode"`
	Port            int           `mapstructure:"port"`
	Secret          string        `mapstructure:"secret"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
	Signal          SignalConfig  `mapstructure:"signal"`
	Log             LogConfig     `mapstructure:"log"`
}

type CORSConfig struct {
	// AllowedOrigins lists browser origins; "*" allows any.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AllowAll reports whether the wildcard origin is configured.
func (c CORSConfig) AllowAll() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

// SignalConfig tunes the WebSocket transport.
type SignalConfig struct {
	ReadLimit    int64         `mapstructure:"read_limit"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	PongWait     time.Duration `mapstructure:"pong_wait"`
	WriteWait    time.Duration `mapstructure:"write_wait"`
	SlowPolicy   string        `mapstructure:"slow_policy"`
	RateLimit    int           `mapstructure:"rate_limit"`
	RateInterval time.Duration `mapstructure:"rate_interval"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads config/config.<CONFIG_ENV>.yaml (CONFIG_ENV defaults to "dev").
func Load() (*Config, error) {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return LoadFile(fmt.Sprintf("config/config.%s.yaml", env))
}

// LoadFile reads fileName on top of the defaults. A missing file is not an
// error; a malformed one is.
func LoadFile(fileName string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("module", "config").Msg("failed to read .env")
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(fileName)
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config %s: %w", fileName, err)
		}
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Strs("origins", cfg.CORS.AllowedOrigins).Msg("config ready")
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", "release")
	v.SetDefault("port", 3001)
	v.SetDefault("secret", "duel-dev-secret")
	v.SetDefault("shutdown_timeout", "5s")
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("signal.read_limit", 32768)
	v.SetDefault("signal.send_buffer", 64)
	v.SetDefault("signal.ping_period", "54s")
	v.SetDefault("signal.pong_wait", "60s")
	v.SetDefault("signal.write_wait", "10s")
	v.SetDefault("signal.slow_policy", "kick")
	v.SetDefault("signal.rate_limit", 50)
	v.SetDefault("signal.rate_interval", "1s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Validate reports every violated setting at once.
func (c Config) Validate() error {
	var errs []string

	switch c.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Sprintf("mode must be one of [debug, release, test], got %q", c.Mode))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port must be 1-65535, got %d", c.Port))
	}
	if c.Secret == "" {
		errs = append(errs, "secret must not be empty")
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, "shutdown_timeout must be positive")
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		errs = append(errs, "cors.allowed_origins must not be empty")
	}
	for _, o := range c.CORS.AllowedOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			errs = append(errs, fmt.Sprintf("cors.allowed_origins: bad origin %q", o))
		}
	}
	errs = append(errs, c.Signal.validate()...)
	errs = append(errs, c.Log.validate()...)

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (s SignalConfig) validate() []string {
	var errs []string
	if s.ReadLimit <= 0 {
		errs = append(errs, "signal.read_limit must be positive")
	}
	if s.SendBuffer <= 0 {
		errs = append(errs, "signal.send_buffer must be positive")
	}
	if s.PongWait <= 0 || s.WriteWait <= 0 {
		errs = append(errs, "signal.pong_wait and signal.write_wait must be positive")
	}
	if s.PingPeriod <= 0 || s.PingPeriod >= s.PongWait {
		errs = append(errs, "signal.ping_period must be positive and shorter than signal.pong_wait")
	}
	if s.SlowPolicy != "kick" && s.SlowPolicy != "drop" {
		errs = append(errs, fmt.Sprintf("signal.slow_policy must be kick or drop, got %q", s.SlowPolicy))
	}
	if s.RateLimit < 0 {
		errs = append(errs, "signal.rate_limit must not be negative")
	}
	if s.RateLimit > 0 && s.RateInterval <= 0 {
		errs = append(errs, "signal.rate_interval must be positive when rate_limit is set")
	}
	return errs
}

func (l LogConfig) validate() []string {
	var errs []string
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("log.level must be one of [debug, info, warn, error], got %q", l.Level))
	}
	if l.Format != "console" && l.Format != "json" {
		errs = append(errs, fmt.Sprintf("log.format must be console or json, got %q", l.Format))
	}
	return errs
}
