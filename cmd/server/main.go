package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"go-forum/internal/config"
	"go-forum/internal/logger"
)

type configKey struct{}

func main() {
	app := &cli.App{
		Name:  "forum",
		Usage: "Forum backend with JWT sessions and topic ownership",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "env-file",
				Usage:   "dotenv files read before the process environment",
				EnvVars: []string{"FORUM_ENV_FILE"},
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.StringSlice("env-file")...)
			if err != nil {
				return err
			}
			slog.SetDefault(logger.New(os.Stdout, cfg.LogFormat, cfg.LogLevel))
			c.Context = context.WithValue(c.Context, configKey{}, cfg)
			return nil
		},
		Action: serve,
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func configFrom(c *cli.Context) *config.Config {
	return c.Context.Value(configKey{}).(*config.Config)
}
