// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package config loads dispatcher settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// DefaultPrefix is the environment variable prefix used by Load when
// given an empty prefix.
const DefaultPrefix = "HYDRA"

// Config holds the settings hydra.New assembles a dispatcher from.
type Config struct {
	MaxConcurrency int           `envconfig:"MAX_CONCURRENCY" default:"200" validate:"gte=1"`
	Transport      string        `envconfig:"TRANSPORT" default:"http" validate:"oneof=http resty"`
	RateLimit      float64       `envconfig:"RATE_LIMIT" default:"0" validate:"gte=0"`
	RateBurst      int           `envconfig:"RATE_BURST" default:"1" validate:"gte=1"`
	Timeout        time.Duration `envconfig:"TIMEOUT" default:"0s" validate:"gte=0"`
	RetryBaseWait  time.Duration `envconfig:"RETRY_BASE_WAIT" default:"50ms" validate:"gt=0"`
	RetryMaxWait   time.Duration `envconfig:"RETRY_MAX_WAIT" default:"1s" validate:"gtefield=RetryBaseWait"`
	Cache          CacheConfig   `envconfig:"CACHE"`
	Log            LogConfig     `envconfig:"LOG"`
}

// CacheConfig selects and configures the response cache. Its
// variables are named prefix_CACHE_VAR.
type CacheConfig struct {
	Backend     string `envconfig:"BACKEND" default:"memory" validate:"oneof=none memory redis"`
	MaxEntries  int    `envconfig:"MAX_ENTRIES" default:"10000" validate:"gte=0"`
	RedisAddr   string `envconfig:"REDIS_ADDR" default:"localhost:6379" validate:"required_if=Backend redis"`
	RedisPrefix string `envconfig:"REDIS_PREFIX" default:"hydra:"`
}

// LogConfig holds logging configuration. Its variables are named
// prefix_LOG_VAR.
type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `envconfig:"PRETTY" default:"false"`
}

// Load reads the configuration from environment variables named
// prefix_VAR (for example HYDRA_MAX_CONCURRENCY), applies defaults for
// unset variables, and validates the result.
func Load(prefix string) (*Config, error) {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("hydra/config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration Load produces when no variables
// are set.
func Default() *Config {
	return &Config{
		MaxConcurrency: 200,
		Transport:      "http",
		RateBurst:      1,
		RetryBaseWait:  50 * time.Millisecond,
		RetryMaxWait:   time.Second,
		Cache: CacheConfig{
			Backend:     "memory",
			MaxEntries:  10000,
			RedisAddr:   "localhost:6379",
			RedisPrefix: "hydra:",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

var validate = validator.New()

// Validate checks every field against its constraints. The returned
// error lists each failing field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("hydra/config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("hydra/config: invalid configuration: %s", strings.Join(msgs, "; "))
}

// NewLogger builds a zerolog logger writing to stdout at the configured
// level, in console format if Pretty is set.
func (c *LogConfig) NewLogger() *zerolog.Logger {
	return c.newLogger(os.Stdout)
}

func (c *LogConfig) newLogger(w io.Writer) *zerolog.Logger {
	if c.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	l := zerolog.New(w).With().Timestamp().Str("component", "hydra").Logger().Level(level)
	return &l
}
