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

	"github.com/NVIDIA/krepis/pkg/defaults"
	"github.com/NVIDIA/krepis/pkg/serializer"
)

func loadCmd() *cli.Command {
	return &cli.Command{
		Name:                  "load",
		EnableShellCompletion: true,
		Usage:                 "Load the modules backing the given platform ids",
		ArgsUsage:             "<platform-id> [<platform-id>...]",
		Description: `Load the modules backing the given platform ids. Modules missing from the
local store are installed from their configured sources first, and platform
ids sharing a module receive one shared instance. Every id settles with its
own outcome, so one failing platform does not abort the rest.

The per-task batch report can be output in JSON, YAML, or table format.`,
		Flags: []cli.Flag{
			configFlag,
			modulesDirFlag,
			setFlag,
			&cli.DurationFlag{
				Name:  "timeout",
				Value: defaults.CLILoadTimeout,
				Usage: "Maximum duration for the whole batch",
			},
			kubeconfigFlag,
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			ids := cmd.Args().Slice()
			if len(ids) == 0 {
				return fmt.Errorf("at least one platform id is required")
			}

			m, err := newManagerFromCmd(cmd)
			if err != nil {
				return err
			}
			if err := enablePlatformsFromCmd(ctx, cmd, m); err != nil {
				return err
			}

			loadCtx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			out, err := m.LoadPlatformsDetailed(loadCtx, ids)
			if err != nil {
				return fmt.Errorf("error loading platforms: %w", err)
			}
			slog.Debug("batch settled", "summary", out.Summary())

			ser := serializer.NewFileWriterOrStdout(outFormat, cmd.String("output"))
			defer closeSerializer(ser)

			if err := ser.Serialize(ctx, out); err != nil {
				return err
			}

			if out.HasErrors() {
				return fmt.Errorf("%d of %d load tasks failed", out.FailureCount(), len(out.Results))
			}
			return nil
		},
	}
}
