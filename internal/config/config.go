// Shoal is a Redfish aggregator service.
// Copyright (C) 2025 Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package config resolves the broker's runtime configuration from flags and
// environment variables, flags taking precedence.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds every value the embedding process (cmd/bisectd) needs to
// stand the broker up. None of it is read by the job package.
type Config struct {
	Addr             string
	LogLevel         string
	RateLimit        float64
	RateBurst        int
	SnapshotPath     string
	SnapshotInterval time.Duration
}

// Default returns the configuration used when neither a flag nor an
// environment variable sets a value.
func Default() Config {
	return Config{
		Addr:             ":8080",
		LogLevel:         "info",
		RateLimit:        20,
		RateBurst:        40,
		SnapshotPath:     "",
		SnapshotInterval: 30 * time.Second,
	}
}

// Load resolves configuration from flags registered against fs, falling
// back to environment variables and then the defaults. It parses args with
// fs itself; the caller supplies both the FlagSet and the argument slice so
// tests can pass their own without touching os.Args.
func Load(fs *flag.FlagSet, args []string) (Config, error) {
	def := Default()
	env := fromEnv(def)

	addr := fs.String("addr", env.Addr, "HTTP listen address")
	logLevel := fs.String("log-level", env.LogLevel, "log level: debug|info|warn|error")
	rateLimit := fs.Float64("rate-limit", env.RateLimit, "requests/sec allowed per client IP")
	rateBurst := fs.Int("rate-burst", env.RateBurst, "burst size for the per-client rate limiter")
	snapshotPath := fs.String("snapshot-path", env.SnapshotPath, "SQLite path for optional snapshot persistence; empty disables it")
	snapshotInterval := fs.Duration("snapshot-interval", env.SnapshotInterval, "how often to flush a snapshot when snapshot-path is set")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Addr:             *addr,
		LogLevel:         *logLevel,
		RateLimit:        *rateLimit,
		RateBurst:        *rateBurst,
		SnapshotPath:     *snapshotPath,
		SnapshotInterval: *snapshotInterval,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromEnv(def Config) Config {
	cfg := def
	if v := os.Getenv("BISECT_BROKER_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("BISECT_BROKER_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BISECT_BROKER_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit = f
		}
	}
	if v := os.Getenv("BISECT_BROKER_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateBurst = n
		}
	}
	if v := os.Getenv("BISECT_BROKER_SNAPSHOT"); v != "" {
		cfg.SnapshotPath = v
	}
	if v := os.Getenv("BISECT_BROKER_SNAPSHOT_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SnapshotInterval = d
		}
	}
	return cfg
}

// Validate rejects configurations that would make the rate limiter or the
// snapshot scheduler meaningless.
func (c Config) Validate() error {
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate-limit must be positive, got %v", c.RateLimit)
	}
	if c.RateBurst <= 0 {
		return fmt.Errorf("rate-burst must be positive, got %d", c.RateBurst)
	}
	if c.SnapshotPath != "" && c.SnapshotInterval < time.Second {
		return fmt.Errorf("snapshot-interval must be at least 1s, got %v", c.SnapshotInterval)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log-level must be one of debug|info|warn|error, got %q", c.LogLevel)
	}
	return nil
}
