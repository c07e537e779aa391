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

package config

import (
	"flag"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected default addr: %s", cfg.Addr)
	}
	if cfg.SnapshotPath != "" {
		t.Fatalf("expected snapshot disabled by default")
	}
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	t.Setenv("BISECT_BROKER_ADDR", ":9090")
	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("expected env override, got %s", cfg.Addr)
	}
}

func TestLoadFlagOverridesEnv(t *testing.T) {
	t.Setenv("BISECT_BROKER_ADDR", ":9090")
	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), []string{"-addr", ":7070"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("expected flag override, got %s", cfg.Addr)
	}
}

func TestValidateRejectsNonPositiveRateLimit(t *testing.T) {
	cfg := Default()
	cfg.RateLimit = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateRejectsShortSnapshotInterval(t *testing.T) {
	cfg := Default()
	cfg.SnapshotPath = "snapshot.db"
	cfg.SnapshotInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error")
	}
}
