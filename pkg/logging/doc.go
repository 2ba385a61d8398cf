// Package logging configures structured logging for krepis binaries.
//
// # Overview
//
// Both the CLI and the daemon log through the standard library slog
// package. This package owns the handler setup so every component emits
// the same record shape: JSON to stderr, a module and version attribute
// on each record, and source locations when running at debug level.
// Individual packages never build their own handlers; they call slog
// directly and inherit whatever main installed.
//
// # Usage
//
// Install the process-wide logger once at startup:
//
//	func main() {
//	    logging.SetDefaultStructuredLogger("krepis", "v1.0.0")
//
//	    slog.Info("loading platforms", "count", len(ids))
//	    slog.Debug("resolved module", "module", name)
//	    slog.Error("install failed", "error", err)
//	}
//
// A component that needs its own logger, or an explicit level, builds one
// directly:
//
//	logger := logging.NewStructuredLogger("krepisd", "v2.0.0", "debug")
//	logger.Info("server starting", "port", 8080)
//
// Libraries that only accept a *log.Logger, like http.Server.ErrorLog,
// get a bridge that forwards into the same JSON handler:
//
//	srv.ErrorLog = logging.NewLogLogger(slog.LevelError, false)
//
// # Environment Configuration
//
// LOG_LEVEL selects the verbosity when no explicit level is given. It is
// parsed case-insensitively and accepts DEBUG, INFO, WARN, WARNING, and
// ERROR; anything else, including an unset variable, means INFO.
//
//	LOG_LEVEL=debug krepis load web windows10
//	LOG_LEVEL=error krepisd
//
// # Output Format
//
// Records are single-line JSON on stderr, safe to ship to a collector
// without further parsing rules:
//
//	{
//	    "time": "2025-01-15T10:30:00.123Z",
//	    "level": "INFO",
//	    "msg": "platforms loaded",
//	    "module": "krepis",
//	    "version": "v1.0.0",
//	    "count": 3
//	}
//
// At debug level each record also carries the function, file, and line
// that produced it.
package logging
