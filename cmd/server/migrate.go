package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"go-forum/internal/database"
)

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the embedded database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply every pending migration",
				Action: withDB(func(c *cli.Context, db *database.DB) error {
					return db.EnsureSchema(c.Context)
				}),
			},
			{
				Name:  "down",
				Usage: "Roll back the most recent migration",
				Action: withDB(func(c *cli.Context, db *database.DB) error {
					return db.RollbackOne(c.Context)
				}),
			},
			{
				Name:  "status",
				Usage: "List migrations and whether they are applied",
				Action: withDB(func(c *cli.Context, db *database.DB) error {
					states, err := db.MigrationStatus(c.Context)
					if err != nil {
						return err
					}

					tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "VERSION\tAPPLIED\tSOURCE")
					for _, s := range states {
						fmt.Fprintf(tw, "%d\t%t\t%s\n", s.Version, s.Applied, s.Source)
					}
					return tw.Flush()
				}),
			},
		},
	}
}

func withDB(fn func(c *cli.Context, db *database.DB) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg := configFrom(c)

		db, err := database.New(c.Context, cfg.DBDriver, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		return fn(c, db)
	}
}
