package main

import (
	"github.com/urfave/cli/v2"

	"go-forum/internal/app"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Apply pending migrations and start the HTTP server",
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	application, err := app.New(c.Context, configFrom(c))
	if err != nil {
		return err
	}

	return application.Run(c.Context)
}
