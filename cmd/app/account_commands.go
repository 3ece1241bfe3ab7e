package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/docrelay/cmd/app/commands"
	"github.com/allisson/docrelay/internal/app"
	"github.com/allisson/docrelay/internal/config"
)

func getAccountCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "register-device",
			Usage: "Pair a device with the upstream using a one-time link code",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "link-code",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "One-time code from the upstream pairing page",
				},
				&cli.StringFlag{
					Name:    "account-id",
					Aliases: []string{"a"},
					Usage:   "Existing account id to re-register (omit to create a new account)",
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

				accountUseCase, err := container.AccountUseCase()
				if err != nil {
					return err
				}

				return commands.RunRegisterDevice(
					ctx,
					accountUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("link-code"),
					cmd.String("account-id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "account-status",
			Usage: "Show the registration state of an account",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "account-id",
					Aliases:  []string{"a"},
					Required: true,
					Usage:    "Account id (UUID)",
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

				accountUseCase, err := container.AccountUseCase()
				if err != nil {
					return err
				}

				return commands.RunAccountStatus(
					ctx,
					accountUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("account-id"),
					cmd.String("format"),
				)
			},
		},
	}
}
