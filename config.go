package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"perio_dictation/internal/voice"
)

// Config is the service configuration, read from an optional YAML file and
// PERIO_* environment variables.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Vocabulary VocabularyConfig `mapstructure:"vocabulary"`
	Parser     ParserConfig     `mapstructure:"parser"`
	Log        LogConfig        `mapstructure:"log"`
	Session    SessionConfig    `mapstructure:"session"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// VocabularyConfig points at the directory of per-clinic trigger files.
type VocabularyConfig struct {
	Dir string `mapstructure:"dir"`
}

type ParserConfig struct {
	// DefaultConfidence is used when a request carries no ASR confidence.
	DefaultConfidence float64 `mapstructure:"default_confidence"`

	// MinConfidence enables the confidence filter when > 0.
	MinConfidence float64 `mapstructure:"min_confidence"`

	Thresholds voice.Thresholds `mapstructure:"thresholds"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SessionConfig struct {
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

func setDefaults(v *viper.Viper) {
	th := voice.DefaultThresholds()
	v.SetDefault("server.port", "8050")
	v.SetDefault("vocabulary.dir", "vocabularies")
	v.SetDefault("parser.default_confidence", voice.DefaultConfidence)
	v.SetDefault("parser.min_confidence", 0.0)
	v.SetDefault("parser.thresholds.eleven_literal", th.ElevenLiteral)
	v.SetDefault("parser.thresholds.double_repeat", th.DoubleRepeat)
	v.SetDefault("parser.thresholds.triple_repeat", th.TripleRepeat)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("session.idle_timeout", 30*time.Minute)
}

// LoadConfig reads configuration. When cfgFile is empty, config.yaml is
// searched for in the working directory and $HOME/.perio; a missing file is
// not an error.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PERIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.perio")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate returns every problem found in c, joined.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	checkUnit := func(name string, val float64) {
		if val < 0 || val > 1 {
			errs = append(errs, fmt.Errorf("%s %.2f is out of range [0, 1]", name, val))
		}
	}
	checkUnit("parser.default_confidence", c.Parser.DefaultConfidence)
	checkUnit("parser.min_confidence", c.Parser.MinConfidence)
	checkUnit("parser.thresholds.eleven_literal", c.Parser.Thresholds.ElevenLiteral)
	checkUnit("parser.thresholds.double_repeat", c.Parser.Thresholds.DoubleRepeat)
	checkUnit("parser.thresholds.triple_repeat", c.Parser.Thresholds.TripleRepeat)

	if _, err := parseLogLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is invalid; valid values: text, json", c.Log.Format))
	}
	if c.Session.IdleTimeout < 0 {
		errs = append(errs, fmt.Errorf("session.idle_timeout %s must not be negative", c.Session.IdleTimeout))
	}
	return errors.Join(errs...)
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log.level %q is invalid; valid values: debug, info, warn, error", s)
}

// newLogger builds the process logger from c.
func (c LogConfig) newLogger() *slog.Logger {
	level, err := parseLogLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// parserOptions returns the options shared by every clinic's parser.
func (c ParserConfig) parserOptions(logger *slog.Logger) []voice.Option {
	return []voice.Option{
		voice.WithThresholds(c.Thresholds),
		voice.WithMinConfidence(c.MinConfidence),
		voice.WithLogger(logger),
	}
}
