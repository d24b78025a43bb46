package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/webstack/webstack/cmd/app/commands"
	"github.com/webstack/webstack/internal/app"
	"github.com/webstack/webstack/internal/config"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "cleanup-revoked",
			Usage: "Remove expired entries from the token revocation store",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				store, err := container.RevocationStore()
				if err != nil {
					return err
				}

				return commands.RunCleanupRevoked(
					ctx,
					store,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
	}
}
