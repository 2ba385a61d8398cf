/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/krepis/pkg/config"
	"github.com/NVIDIA/krepis/pkg/header"
	"github.com/NVIDIA/krepis/pkg/serializer"
)

func platformsCmd() *cli.Command {
	return &cli.Command{
		Name:                  "platforms",
		EnableShellCompletion: true,
		Usage:                 "Manage platform to module mappings",
		Commands: []*cli.Command{
			platformsListCmd(),
			platformsAddCmd(),
			platformsRemoveCmd(),
			platformsEnableCmd(),
			platformsExportCmd(),
		},
	}
}

func platformsListCmd() *cli.Command {
	return &cli.Command{
		Name:                  "list",
		EnableShellCompletion: true,
		Usage:                 "List registered platforms and their load state",
		Description: `List every registered platform id with its backing module, source, and the
instance id when the module is loaded.`,
		Flags: []cli.Flag{
			configFlag,
			modulesDirFlag,
			setFlag,
			kubeconfigFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			m, err := newManagerFromCmd(cmd)
			if err != nil {
				return err
			}
			if err := enablePlatformsFromCmd(ctx, cmd, m); err != nil {
				return err
			}

			entries, err := m.Entries()
			if err != nil {
				return fmt.Errorf("error listing platforms: %w", err)
			}

			ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer closeSerializer(ser)

			return ser.Serialize(ctx, entries)
		},
	}
}

func platformsAddCmd() *cli.Command {
	return &cli.Command{
		Name:                  "add",
		EnableShellCompletion: true,
		Usage:                 "Add or update a platform mapping in the configuration document",
		ArgsUsage:             "<platform-id>",
		Description: `Add a platform id to module mapping to the local configuration document,
creating the document when it does not exist yet. Adding an id that already
exists replaces its mapping.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "module",
				Usage:    "Name of the module backing the platform",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "source",
				Usage:    "Source to install the module from (local path, HTTP/HTTPS URL, or OCI reference)",
				Required: true,
			},
			configFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return fmt.Errorf("platform id argument is required")
			}

			store, err := configStoreFromCmd(cmd)
			if err != nil {
				return err
			}

			if err := store.Add(id, cmd.String("module"), cmd.String("source")); err != nil {
				return fmt.Errorf("error adding platform %q: %w", id, err)
			}

			slog.Info("platform added",
				"platform", id,
				"module", cmd.String("module"),
				"source", cmd.String("source"),
				"path", store.Path(),
			)
			return nil
		},
	}
}

func platformsRemoveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "remove",
		EnableShellCompletion: true,
		Usage:                 "Remove a platform mapping from the configuration document",
		ArgsUsage:             "<platform-id>",
		Flags: []cli.Flag{
			configFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id := cmd.Args().First()
			if id == "" {
				return fmt.Errorf("platform id argument is required")
			}

			store, err := configStoreFromCmd(cmd)
			if err != nil {
				return err
			}

			if err := store.Remove(id); err != nil {
				return fmt.Errorf("error removing platform %q: %w", id, err)
			}

			slog.Info("platform removed", "platform", id, "path", store.Path())
			return nil
		},
	}
}

func platformsEnableCmd() *cli.Command {
	return &cli.Command{
		Name:                  "enable",
		EnableShellCompletion: true,
		Usage:                 "Import a platform configuration document into the local store",
		Description: `Fetch a platform configuration document from the given source, validate it,
apply any --set overrides, and save it as the local configuration document
so subsequent commands and the daemon pick it up.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "from",
				Usage:    "Source of the document (file path, HTTP/HTTPS URL, or cm://namespace/name)",
				Required: true,
			},
			setFlag,
			kubeconfigFlag,
			configFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			doc, err := config.FromSource(cmd.String("from"), cmd.String("kubeconfig"))
			if err != nil {
				return err
			}

			overrides, err := config.ParseOverrides(cmd.StringSlice("set"))
			if err != nil {
				return err
			}
			if err := config.ApplyOverrides(doc, overrides); err != nil {
				return err
			}

			store, err := configStoreFromCmd(cmd)
			if err != nil {
				return err
			}
			if err := store.Save(doc); err != nil {
				return fmt.Errorf("error saving platform configuration: %w", err)
			}

			slog.Info("platform configuration enabled",
				"source", cmd.String("from"),
				"platforms", len(doc.Platforms),
				"path", store.Path(),
			)
			return nil
		},
	}
}

func platformsExportCmd() *cli.Command {
	return &cli.Command{
		Name:                  "export",
		EnableShellCompletion: true,
		Usage:                 "Export the platform configuration document",
		Description: `Write the local platform configuration document to the given destination
(stdout, a file, or cm://namespace/name). Exporting to a ConfigMap publishes
the document for a daemon running with --config cm://namespace/name. When no
local document exists yet the built-in default is exported.`,
		Flags: []cli.Flag{
			configFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			store, err := configStoreFromCmd(cmd)
			if err != nil {
				return err
			}
			doc, err := store.LoadOrDefault()
			if err != nil {
				return err
			}
			doc.Init(header.KindPlatformConfig, header.APIVersion, version)

			ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer closeSerializer(ser)

			return ser.Serialize(ctx, doc)
		},
	}
}

// configStoreFromCmd opens the local configuration store, honoring --config
// when it names a local path. Remote sources cannot be modified in place.
func configStoreFromCmd(cmd *cli.Command) (*config.Store, error) {
	path := cmd.String("config")
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	} else if isRemoteSource(path) {
		return nil, fmt.Errorf("cannot modify remote configuration %q, use a local file path", path)
	}
	return config.NewStore(path), nil
}
