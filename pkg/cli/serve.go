/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/krepis/pkg/api"
	"github.com/NVIDIA/krepis/pkg/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:                  "serve",
		EnableShellCompletion: true,
		Usage:                 "Run the platform loader HTTP API",
		Description: `Run the HTTP API exposing the platform registry and loader. The server
serves /v1/platforms, /v1/platforms/{id}, /v1/modules and /v1/load, plus
health, readiness and metrics endpoints, and shuts down gracefully on
SIGINT/SIGTERM.`,
		Flags: []cli.Flag{
			configFlag,
			modulesDirFlag,
			setFlag,
			kubeconfigFlag,
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Port to listen on (default is 8080)",
				Sources: cli.EnvVars("PORT"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			m, err := newManagerFromCmd(cmd)
			if err != nil {
				return err
			}
			if err := enablePlatformsFromCmd(ctx, cmd, m); err != nil {
				return err
			}

			cfg := server.NewConfig()
			cfg.Name = name
			cfg.Version = version
			if port := cmd.Int("port"); port != 0 {
				cfg.Port = port
			}

			s := server.New(
				server.WithConfig(cfg),
				server.WithHandler(api.Routes(m)),
			)

			return s.Start(ctx)
		},
	}
}
