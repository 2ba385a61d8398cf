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
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/NVIDIA/krepis/pkg/defaults"
	"golang.org/x/time/rate"
)

// Config holds server settings. Obtain one from NewConfig and adjust the
// fields before passing it to New through WithConfig.
type Config struct {
	// Name and Version identify the server on the root route and in logs.
	Name    string
	Version string

	// Handlers maps routes to handlers wrapped by the middleware chain.
	Handlers map[string]http.HandlerFunc

	// Address and Port form the listen address.
	Address string
	Port    int

	// RateLimit is the sustained request rate per second allowed across
	// all clients; RateLimitBurst is the momentary burst on top of it.
	RateLimit      rate.Limit
	RateLimitBurst int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// NewConfig returns the default configuration, honoring the PORT and
// SHUTDOWN_TIMEOUT_SECONDS environment variables.
func NewConfig() *Config {
	return parseConfig()
}

func parseConfig() *Config {
	cfg := &Config{
		Name:            "server",
		Version:         "undefined",
		Port:            8080,
		RateLimit:       100,
		RateLimitBurst:  200,
		ReadTimeout:     defaults.ServerReadTimeout,
		WriteTimeout:    defaults.ServerWriteTimeout,
		IdleTimeout:     defaults.ServerIdleTimeout,
		ShutdownTimeout: defaults.ServerShutdownTimeout,
	}

	if port, ok := envInt("PORT"); ok && port > 0 {
		cfg.Port = port
	}

	// Kubernetes sends SIGTERM and waits terminationGracePeriodSeconds
	// before killing the pod; the shutdown timeout should stay below it.
	if seconds, ok := envInt("SHUTDOWN_TIMEOUT_SECONDS"); ok && seconds > 0 {
		cfg.ShutdownTimeout = time.Duration(seconds) * time.Second
	}

	return cfg
}

func envInt(key string) (int, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
