package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/webstack/webstack/cmd/app/commands"
	"github.com/webstack/webstack/internal/app"
	"github.com/webstack/webstack/internal/config"
)

func getUserCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-admin",
			Usage: "Create an administrator account",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Display name for the admin account",
				},
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Email address used to log in",
				},
				&cli.StringFlag{
					Name:     "password",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Password for the admin account",
				},
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

				txManager, err := container.TxManager()
				if err != nil {
					return err
				}

				userRepo, err := container.UserRepository()
				if err != nil {
					return err
				}

				return commands.RunCreateAdmin(
					ctx,
					txManager,
					userRepo,
					container.PasswordService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("name"),
					cmd.String("email"),
					cmd.String("password"),
					cmd.String("format"),
				)
			},
		},
	}
}
