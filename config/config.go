package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. EDMO_PATHS_OUTPUTS.
const EnvPrefix = "EDMO"

type Service struct {
	URL string `mapstructure:"url"`
}
type Services struct {
	ASR           Service `mapstructure:"asr"`
	Emotion       Service `mapstructure:"emotion"`
	Visualization Service `mapstructure:"visualization"`
	// Timeout is the per-request HTTP timeout in seconds.
	Timeout int `mapstructure:"timeout"`
}
type Analysis struct {
	MaxPause            float64 `mapstructure:"max_pause"`
	MatchTolerance      float64 `mapstructure:"match_tolerance"`
	SyncWindow          float64 `mapstructure:"sync_window"`
	ResponseWindow      float64 `mapstructure:"response_window"`
	MinKeywordFrequency int     `mapstructure:"min_keyword_frequency"`
	// Lexicon is an optional YAML word-list file.
	Lexicon string `mapstructure:"lexicon"`
}
type Messaging struct {
	AMQPURL string `mapstructure:"amqp_url"`
	Queue   string `mapstructure:"queue"`
}
type Root struct {
	Pipeline struct {
		Name      string `mapstructure:"name"`
		Version   string `mapstructure:"version"`
		LogLvl    string `mapstructure:"log_level"`
		LogFormat string `mapstructure:"log_format"`
	} `mapstructure:"pipeline"`
	Services Services `mapstructure:"services"`
	Analysis Analysis `mapstructure:"analysis"`
	Paths    struct {
		Outputs string `mapstructure:"outputs"`
	} `mapstructure:"paths"`
	Output struct {
		YAML bool `mapstructure:"yaml"`
	} `mapstructure:"output"`
	Messaging Messaging `mapstructure:"messaging"`
	Metrics   struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"metrics"`
	Batch struct {
		Workers int `mapstructure:"workers"`
	} `mapstructure:"batch"`

	// File is the config file that was read, empty when running on
	// defaults and environment only.
	File string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.name", "edmo-interaction")
	v.SetDefault("pipeline.version", "dev")
	v.SetDefault("pipeline.log_level", "info")
	v.SetDefault("pipeline.log_format", "text")
	v.SetDefault("services.asr.url", "")
	v.SetDefault("services.emotion.url", "")
	v.SetDefault("services.visualization.url", "")
	v.SetDefault("services.timeout", 60)
	v.SetDefault("analysis.max_pause", 0.0)
	v.SetDefault("analysis.match_tolerance", 0.5)
	v.SetDefault("analysis.sync_window", 2.0)
	v.SetDefault("analysis.response_window", 2.0)
	v.SetDefault("analysis.min_keyword_frequency", 2)
	v.SetDefault("analysis.lexicon", "")
	v.SetDefault("paths.outputs", "outputs")
	v.SetDefault("output.yaml", false)
	v.SetDefault("messaging.amqp_url", "")
	v.SetDefault("messaging.queue", "edmo.reports")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("batch.workers", 4)
}

// guess lists the config files tried when no explicit path is given.
func guess() []string {
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	return []string{
		filepath.Join("config", env, "config.yaml"),
		filepath.Join("src", "shared", "config.yaml"),
	}
}

// Load reads configuration from path, or from the first guessed location
// that exists, layering EDMO_* environment variables (optionally from a .env
// file) over file values and defaults. A missing guessed file is not an
// error; a missing explicit path is.
func Load(path string, logger *logrus.Logger) (*Root, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("config: load .env: %w", err)
		}
		logger.Debug("loaded .env")
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file := path
	if file == "" {
		for _, p := range guess() {
			if _, err := os.Stat(p); err == nil {
				file = p
				break
			}
		}
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	} else {
		logger.Debug("no config file found, using defaults and environment")
	}

	var cfg Root
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.File = file
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the pipeline cannot run with.
func (c *Root) Validate() error {
	var errs []error
	if _, err := logrus.ParseLevel(c.Pipeline.LogLvl); err != nil {
		errs = append(errs, fmt.Errorf("pipeline.log_level: %w", err))
	}
	switch c.Pipeline.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("pipeline.log_format: want text or json, got %q", c.Pipeline.LogFormat))
	}
	if c.Services.Timeout <= 0 {
		errs = append(errs, errors.New("services.timeout: must be positive"))
	}
	a := c.Analysis
	if a.MaxPause < 0 || a.MatchTolerance < 0 || a.SyncWindow < 0 || a.ResponseWindow < 0 || a.MinKeywordFrequency < 0 {
		errs = append(errs, errors.New("analysis: thresholds must not be negative"))
	}
	if c.Paths.Outputs == "" {
		errs = append(errs, errors.New("paths.outputs: must be set"))
	}
	if c.Batch.Workers < 1 {
		errs = append(errs, errors.New("batch.workers: must be at least 1"))
	}
	if c.Messaging.AMQPURL != "" && c.Messaging.Queue == "" {
		errs = append(errs, errors.New("messaging.queue: required with messaging.amqp_url"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Logger builds the process logger from the pipeline section.
func (c *Root) Logger() *logrus.Logger {
	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(c.Pipeline.LogLvl); err == nil {
		logger.SetLevel(lvl)
	}
	if c.Pipeline.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}

func DurSeconds(n int) time.Duration { return time.Duration(n) * time.Second }
