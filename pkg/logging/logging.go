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

package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

// LogLevelEnvVar is the environment variable that controls log verbosity.
const LogLevelEnvVar = "LOG_LEVEL"

// SetDefaultStructuredLogger installs a JSON slog logger as the process
// default. The log level is read from the LOG_LEVEL environment variable,
// defaulting to INFO when unset or unparseable.
func SetDefaultStructuredLogger(name, version string) {
	SetDefaultStructuredLoggerWithLevel(name, version, os.Getenv(LogLevelEnvVar))
}

// SetDefaultStructuredLoggerWithLevel installs a JSON slog logger as the
// process default with an explicit level, overriding LOG_LEVEL.
func SetDefaultStructuredLoggerWithLevel(name, version, level string) {
	slog.SetDefault(NewStructuredLogger(name, version, level))
}

// NewStructuredLogger creates a JSON logger writing to stderr with module
// and version attributes attached to every record. Debug level enables
// source location tracking.
func NewStructuredLogger(name, version, level string) *slog.Logger {
	return newStructuredLogger(os.Stderr, name, version, level)
}

func newStructuredLogger(w io.Writer, name, version, level string) *slog.Logger {
	lvl := ParseLevel(level)

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl <= slog.LevelDebug,
	}

	handler := slog.NewJSONHandler(w, opts)
	return slog.New(handler).With(
		slog.String("module", name),
		slog.String("version", version),
	)
}

// NewLogLogger returns a standard library *log.Logger that forwards to a
// JSON slog handler on stderr at the given level. Useful for libraries that
// only accept *log.Logger (e.g., http.Server.ErrorLog).
func NewLogLogger(level slog.Level, addSource bool) *log.Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
	})
	return slog.NewLogLogger(handler, level)
}

// ParseLevel converts a level name to a slog.Level. Parsing is
// case-insensitive and accepts DEBUG, INFO, WARN, WARNING, and ERROR.
// Unrecognized or empty values default to INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO", "":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
