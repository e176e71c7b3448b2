// Copyright 2021 The hydra Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load("HYDRATEST")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})
	t.Run("environment", func(t *testing.T) {
		t.Setenv("HYDRA_MAX_CONCURRENCY", "8")
		t.Setenv("HYDRA_TRANSPORT", "resty")
		t.Setenv("HYDRA_RATE_LIMIT", "12.5")
		t.Setenv("HYDRA_RATE_BURST", "3")
		t.Setenv("HYDRA_TIMEOUT", "2s")
		t.Setenv("HYDRA_RETRY_BASE_WAIT", "10ms")
		t.Setenv("HYDRA_RETRY_MAX_WAIT", "100ms")
		t.Setenv("HYDRA_CACHE_BACKEND", "redis")
		t.Setenv("HYDRA_CACHE_MAX_ENTRIES", "5")
		t.Setenv("HYDRA_CACHE_REDIS_ADDR", "cache:6380")
		t.Setenv("HYDRA_CACHE_REDIS_PREFIX", "x:")
		t.Setenv("HYDRA_LOG_LEVEL", "debug")
		t.Setenv("HYDRA_LOG_PRETTY", "true")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, &Config{
			MaxConcurrency: 8,
			Transport:      "resty",
			RateLimit:      12.5,
			RateBurst:      3,
			Timeout:        2 * time.Second,
			RetryBaseWait:  10 * time.Millisecond,
			RetryMaxWait:   100 * time.Millisecond,
			Cache: CacheConfig{
				Backend:     "redis",
				MaxEntries:  5,
				RedisAddr:   "cache:6380",
				RedisPrefix: "x:",
			},
			Log: LogConfig{Level: "debug", Pretty: true},
		}, cfg)
	})
	t.Run("parse error", func(t *testing.T) {
		t.Setenv("HYDRA_MAX_CONCURRENCY", "lots")
		cfg, err := Load("")
		assert.Nil(t, cfg)
		assert.ErrorContains(t, err, "hydra/config:")
	})
	t.Run("validation error", func(t *testing.T) {
		t.Setenv("HYDRA_MAX_CONCURRENCY", "0")
		t.Setenv("HYDRA_CACHE_BACKEND", "disk")
		cfg, err := Load("")
		assert.Nil(t, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Config.MaxConcurrency")
		assert.Contains(t, err.Error(), "Config.Cache.Backend")
	})
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative rate limit", func(c *Config) { c.RateLimit = -1 }, "RateLimit"},
		{"zero burst", func(c *Config) { c.RateBurst = 0 }, "RateBurst"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "Timeout"},
		{"zero base wait", func(c *Config) { c.RetryBaseWait = 0; c.RetryMaxWait = 0 }, "RetryBaseWait"},
		{"max below base", func(c *Config) { c.RetryMaxWait = time.Millisecond }, "RetryMaxWait"},
		{"bad transport", func(c *Config) { c.Transport = "carrier-pigeon" }, "Transport"},
		{"redis without address", func(c *Config) { c.Cache.Backend = "redis"; c.Cache.RedisAddr = "" }, "RedisAddr"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "Level"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			cfg := Default()
			require.NoError(t, cfg.Validate())
			testCase.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), testCase.field)
		})
	}
	t.Run("memory backend ignores redis address", func(t *testing.T) {
		cfg := Default()
		cfg.Cache.RedisAddr = ""
		assert.NoError(t, cfg.Validate())
	})
}

func TestLogConfig_NewLogger(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		c := LogConfig{Level: "warn"}
		l := c.newLogger(&buf)
		assert.Equal(t, zerolog.WarnLevel, l.GetLevel())
		l.Info().Msg("dropped")
		l.Warn().Str("id", "abc").Msg("kept")
		line := buf.Bytes()
		assert.Equal(t, "kept", gjson.GetBytes(line, "message").String())
		assert.Equal(t, "abc", gjson.GetBytes(line, "id").String())
		assert.Equal(t, "hydra", gjson.GetBytes(line, "component").String())
		assert.Equal(t, "warn", gjson.GetBytes(line, "level").String())
	})
	t.Run("bad level falls back to info", func(t *testing.T) {
		c := LogConfig{Level: "shouty"}
		assert.Equal(t, zerolog.InfoLevel, c.newLogger(&bytes.Buffer{}).GetLevel())
	})
	t.Run("pretty", func(t *testing.T) {
		var buf bytes.Buffer
		c := LogConfig{Level: "info", Pretty: true}
		c.newLogger(&buf).Info().Msg("hello")
		assert.Contains(t, buf.String(), "hello")
		assert.False(t, gjson.Valid(buf.String()))
	})
	t.Run("stdout", func(t *testing.T) {
		c := LogConfig{Level: "error"}
		assert.Equal(t, zerolog.ErrorLevel, c.NewLogger().GetLevel())
	})
}
