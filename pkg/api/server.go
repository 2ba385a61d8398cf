package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/NVIDIA/krepis/pkg/config"
	"github.com/NVIDIA/krepis/pkg/logging"
	"github.com/NVIDIA/krepis/pkg/platforms"
	"github.com/NVIDIA/krepis/pkg/server"

	// Register the generic module kind so installed manifests resolve.
	_ "github.com/NVIDIA/krepis/pkg/modules/generic"
)

const (
	name           = "krepisd"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/NVIDIA/krepis/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Environment variables read by the daemon on startup.
const (
	// EnvConfig points at the platform configuration source: a local
	// file path, an http(s) URL, or a cm://namespace/name ConfigMap URI.
	// When unset the manager falls back to its local config store.
	EnvConfig = "KREPIS_CONFIG"

	// EnvModulesDir overrides the module installation directory.
	EnvModulesDir = "KREPIS_MODULES_DIR"

	// EnvKubeconfig overrides the kubeconfig used for cm:// sources.
	EnvKubeconfig = "KREPIS_KUBECONFIG"
)

// Serve starts the API server and blocks until shutdown.
// It configures logging, enables the platform registry, sets up routes,
// and handles graceful shutdown. Returns an error if the server fails to
// start or encounters a fatal error.
func Serve() error {
	ctx := context.Background()

	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	m, err := newManager(ctx)
	if err != nil {
		slog.Error("platform manager setup failed", "error", err)
		return err
	}

	s := server.New(
		server.WithName(name),
		server.WithVersion(version),
		server.WithHandler(Routes(m)),
	)

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}

// Routes maps daemon endpoints to manager handlers.
func Routes(m *platforms.Manager) map[string]http.HandlerFunc {
	return map[string]http.HandlerFunc{
		"/v1/platforms":      m.HandlePlatforms,
		"/v1/platforms/{id}": m.HandlePlatform,
		"/v1/modules":        m.HandleModules,
		"/v1/load":           m.HandleLoad,
	}
}

// newManager builds the platform manager from environment configuration
// and enables the registry. When KREPIS_CONFIG is set the platform
// mapping is loaded from that source; otherwise the manager uses its
// local config store or built-in defaults.
func newManager(ctx context.Context) (*platforms.Manager, error) {
	var opts []platforms.Option
	if dir := os.Getenv(EnvModulesDir); dir != "" {
		opts = append(opts, platforms.WithModulesDir(dir))
	}

	m, err := platforms.New(opts...)
	if err != nil {
		return nil, err
	}

	var doc *config.Document
	if source := os.Getenv(EnvConfig); source != "" {
		doc, err = config.FromSource(source, os.Getenv(EnvKubeconfig))
		if err != nil {
			return nil, err
		}
		slog.Info("platform configuration loaded",
			"source", source,
			"platforms", len(doc.Platforms),
		)
	}

	if err := m.EnablePlatforms(ctx, doc); err != nil {
		return nil, err
	}

	return m, nil
}
