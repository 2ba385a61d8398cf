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

	"github.com/NVIDIA/krepis/pkg/acquirer"
	"github.com/NVIDIA/krepis/pkg/defaults"
	"github.com/NVIDIA/krepis/pkg/modules"
	"github.com/NVIDIA/krepis/pkg/serializer"
)

func modulesCmd() *cli.Command {
	return &cli.Command{
		Name:                  "modules",
		EnableShellCompletion: true,
		Usage:                 "Manage the local module store",
		Commands: []*cli.Command{
			modulesListCmd(),
			modulesInstallCmd(),
			modulesRemoveCmd(),
			modulesPushCmd(),
		},
	}
}

func modulesListCmd() *cli.Command {
	return &cli.Command{
		Name:                  "list",
		EnableShellCompletion: true,
		Usage:                 "List installed modules and their manifests",
		Flags: []cli.Flag{
			modulesDirFlag,
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

			manifests, err := m.ListModules()
			if err != nil {
				return fmt.Errorf("error listing modules: %w", err)
			}

			ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer closeSerializer(ser)

			return ser.Serialize(ctx, modules.NewList(manifests))
		},
	}
}

func modulesInstallCmd() *cli.Command {
	return &cli.Command{
		Name:                  "install",
		EnableShellCompletion: true,
		Usage:                 "Install a module into the local store",
		ArgsUsage:             "<module>",
		Description: `Install the named module from the given source without loading it. Loading
a platform later reuses the installed module instead of fetching it again.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "source",
				Usage:    "Source to install the module from (local path, HTTP/HTTPS URL, or OCI reference)",
				Required: true,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: defaults.InstallTimeout,
				Usage: "Maximum duration for the install",
			},
			modulesDirFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			module := cmd.Args().First()
			if module == "" {
				return fmt.Errorf("module argument is required")
			}

			m, err := newManagerFromCmd(cmd)
			if err != nil {
				return err
			}

			installCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			if err := m.InstallModule(installCtx, module, cmd.String("source")); err != nil {
				return fmt.Errorf("error installing module %q: %w", module, err)
			}

			slog.Info("module installed", "module", module, "source", cmd.String("source"))
			return nil
		},
	}
}

func modulesRemoveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "remove",
		EnableShellCompletion: true,
		Usage:                 "Remove an installed module from the local store",
		ArgsUsage:             "<module>",
		Flags: []cli.Flag{
			modulesDirFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			module := cmd.Args().First()
			if module == "" {
				return fmt.Errorf("module argument is required")
			}

			m, err := newManagerFromCmd(cmd)
			if err != nil {
				return err
			}

			if err := m.RemoveModule(module); err != nil {
				return fmt.Errorf("error removing module %q: %w", module, err)
			}

			slog.Info("module removed", "module", module)
			return nil
		},
	}
}

func modulesPushCmd() *cli.Command {
	return &cli.Command{
		Name:                  "push",
		EnableShellCompletion: true,
		Usage:                 "Push an installed module to an OCI registry",
		ArgsUsage:             "<module>",
		Description: `Publish the named installed module as an OCI artifact. The artifact can be
installed on another host with "krepis modules install --source oci://...".`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "registry",
				Usage:    "OCI registry host (e.g., ghcr.io, localhost:5000)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "repository",
				Usage:    "Artifact repository path (e.g., nvidia/krepis/gpu-telemetry)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "tag",
				Value: "latest",
				Usage: "Artifact tag",
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP instead of HTTPS for the registry connection",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "Skip TLS certificate verification (not recommended)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: defaults.InstallTimeout,
				Usage: "Maximum duration for the push",
			},
			modulesDirFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			module := cmd.Args().First()
			if module == "" {
				return fmt.Errorf("module argument is required")
			}

			m, err := newManagerFromCmd(cmd)
			if err != nil {
				return err
			}

			dir, err := m.ModuleDir(module)
			if err != nil {
				return fmt.Errorf("error pushing module %q: %w", module, err)
			}

			pushCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			res, err := acquirer.Push(pushCtx, acquirer.PushOptions{
				ModuleDir:   dir,
				Registry:    cmd.String("registry"),
				Repository:  cmd.String("repository"),
				Tag:         cmd.String("tag"),
				PlainHTTP:   cmd.Bool("plain-http"),
				InsecureTLS: cmd.Bool("insecure-tls"),
			})
			if err != nil {
				return fmt.Errorf("error pushing module %q: %w", module, err)
			}

			slog.Info("module pushed",
				"module", module,
				"reference", res.Reference,
				"digest", res.Digest)
			return nil
		},
	}
}
