// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"testing"
	"time"

	"github.com/NVIDIA/krepis/pkg/defaults"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.Address != "" {
		t.Errorf("address = %q, want empty", cfg.Address)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.RateLimit != 100 || cfg.RateLimitBurst != 200 {
		t.Errorf("rate limit = %v/%d, want 100/200", cfg.RateLimit, cfg.RateLimitBurst)
	}
	if cfg.ReadTimeout != defaults.ServerReadTimeout {
		t.Errorf("read timeout = %v, want %v", cfg.ReadTimeout, defaults.ServerReadTimeout)
	}
	if cfg.WriteTimeout != defaults.ServerWriteTimeout {
		t.Errorf("write timeout = %v, want %v", cfg.WriteTimeout, defaults.ServerWriteTimeout)
	}
	if cfg.IdleTimeout != defaults.ServerIdleTimeout {
		t.Errorf("idle timeout = %v, want %v", cfg.IdleTimeout, defaults.ServerIdleTimeout)
	}
	if cfg.ShutdownTimeout != defaults.ServerShutdownTimeout {
		t.Errorf("shutdown timeout = %v, want %v", cfg.ShutdownTimeout, defaults.ServerShutdownTimeout)
	}
}

func TestNewConfigEnvOverrides(t *testing.T) {
	t.Run("port", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		if cfg := NewConfig(); cfg.Port != 9090 {
			t.Errorf("port = %d, want 9090", cfg.Port)
		}
	})

	t.Run("invalid port keeps default", func(t *testing.T) {
		t.Setenv("PORT", "not-a-number")
		if cfg := NewConfig(); cfg.Port != 8080 {
			t.Errorf("port = %d, want 8080", cfg.Port)
		}
	})

	t.Run("negative port keeps default", func(t *testing.T) {
		t.Setenv("PORT", "-1")
		if cfg := NewConfig(); cfg.Port != 8080 {
			t.Errorf("port = %d, want 8080", cfg.Port)
		}
	})

	t.Run("shutdown timeout", func(t *testing.T) {
		t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "55")
		if cfg := NewConfig(); cfg.ShutdownTimeout != 55*time.Second {
			t.Errorf("shutdown timeout = %v, want 55s", cfg.ShutdownTimeout)
		}
	})

	t.Run("zero shutdown timeout keeps default", func(t *testing.T) {
		t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "0")
		if cfg := NewConfig(); cfg.ShutdownTimeout != defaults.ServerShutdownTimeout {
			t.Errorf("shutdown timeout = %v, want %v", cfg.ShutdownTimeout, defaults.ServerShutdownTimeout)
		}
	})
}
