package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/docrelay/cmd/app/commands"
	"github.com/allisson/docrelay/internal/app"
	"github.com/allisson/docrelay/internal/config"
)

func getDocumentCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "ingest-email",
			Usage: "Stage the attachments of a raw email message for delivery",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "file",
					Aliases: []string{"i"},
					Value:   "-",
					Usage:   "Path to the RFC 5322 message, or '-' for stdin",
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

				documentUseCase, err := container.DocumentUseCase()
				if err != nil {
					return err
				}

				defaultIO := commands.DefaultIO()
				message, err := commands.OpenInput(cmd.String("file"), defaultIO.Reader)
				if err != nil {
					return err
				}
				defer func() { _ = message.Close() }()

				return commands.RunIngestEmail(
					ctx,
					documentUseCase,
					container.Logger(),
					commands.IOTuple{Reader: message, Writer: defaultIO.Writer},
					cmd.String("format"),
				)
			},
		},
	}
}
