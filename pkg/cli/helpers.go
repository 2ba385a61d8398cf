/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/krepis/pkg/config"
	"github.com/NVIDIA/krepis/pkg/platforms"
	"github.com/NVIDIA/krepis/pkg/serializer"
)

// Flags shared by commands that emit serialized output. Local keeps each
// parse from reusing a previous run's value.
var (
	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Local:   true,
		Usage: `Path to write the output to (defaults to stdout).
	Supports: file paths or ConfigMap URIs (cm://namespace/name).`,
	}

	formatFlag = &cli.StringFlag{
		Name:  "format",
		Value: string(serializer.FormatYAML),
		Local: true,
		Usage: fmt.Sprintf("Output format (supported values: %s)",
			serializer.SupportedFormats()),
	}

	kubeconfigFlag = &cli.StringFlag{
		Name:    "kubeconfig",
		Local:   true,
		Usage:   "Path to kubeconfig file for ConfigMap (cm://) sources and outputs",
		Sources: cli.EnvVars("KUBECONFIG"),
	}
)

// Flags shared by commands that build a platform manager.
var (
	configFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Local:   true,
		Usage: `Platform configuration document to use (default is $HOME/.krepis/platforms.json).
	Supports: file paths, HTTP/HTTPS URLs, or ConfigMap URIs (cm://namespace/name).`,
		Sources: cli.EnvVars("KREPIS_CONFIG"),
	}

	modulesDirFlag = &cli.StringFlag{
		Name:    "modules-dir",
		Local:   true,
		Usage:   "Directory holding installed modules (default is $HOME/.krepis/modules)",
		Sources: cli.EnvVars("KREPIS_MODULES_DIR"),
	}

	setFlag = &cli.StringSliceFlag{
		Name:  "set",
		Local: true,
		Usage: "Override a platform entry as <platform>.<field>=<value> (repeatable)",
	}
)

// isRemoteSource reports whether a config source must be fetched rather
// than read from the local filesystem.
func isRemoteSource(source string) bool {
	return strings.HasPrefix(source, "http://") ||
		strings.HasPrefix(source, "https://") ||
		strings.HasPrefix(source, serializer.ConfigMapURIScheme)
}

// newManagerFromCmd builds a platform manager honoring --modules-dir and,
// for local paths, --config as the configuration store location.
func newManagerFromCmd(cmd *cli.Command) (*platforms.Manager, error) {
	var opts []platforms.Option
	if dir := cmd.String("modules-dir"); dir != "" {
		opts = append(opts, platforms.WithModulesDir(dir))
	}
	if source := cmd.String("config"); source != "" && !isRemoteSource(source) {
		opts = append(opts, platforms.WithConfigPath(source))
	}
	return platforms.New(opts...)
}

// enablePlatformsFromCmd enables the platform mapping on the manager.
// Remote --config sources are fetched; local ones come through the
// manager's configuration store. --set overrides apply on top either way.
func enablePlatformsFromCmd(ctx context.Context, cmd *cli.Command, m *platforms.Manager) error {
	overrides, err := config.ParseOverrides(cmd.StringSlice("set"))
	if err != nil {
		return err
	}

	var doc *config.Document
	if source := cmd.String("config"); source != "" && isRemoteSource(source) {
		doc, err = config.FromSource(source, cmd.String("kubeconfig"))
		if err != nil {
			return err
		}
	}

	if doc == nil && len(overrides) == 0 {
		return m.EnablePlatforms(ctx, nil)
	}

	if doc == nil {
		doc, err = m.ConfigStore().LoadOrDefault()
		if err != nil {
			return err
		}
	}

	if err := config.ApplyOverrides(doc, overrides); err != nil {
		return err
	}

	return m.EnablePlatforms(ctx, doc)
}

// parseOutputFormat reads the --format flag and validates it against the
// formats the serializer can write.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	format := serializer.Format(cmd.String("format"))
	if format.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q (supported values: %v)",
			format, serializer.SupportedFormats())
	}
	return format, nil
}

// closeSerializer releases file handles held by path-backed writers.
func closeSerializer(ser serializer.Serializer) {
	if closer, ok := ser.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			slog.Warn("failed to close serializer", "error", err)
		}
	}
}
