package cmd

import (
	"database/sql"

	"github.com/spf13/cobra"

	"github.com/stemcapstone/smartgoals/internal/db"
)

func MigrateCmd() *cobra.Command {
	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrate.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  migration(db.RunMigrations),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE:  migration(db.MigrateDown),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show applied and pending migrations",
			Args:  cobra.NoArgs,
			RunE:  migration(db.Status),
		},
	)

	return migrate
}

func migration(fn func(*sql.DB, string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, database, err := open()
		if err != nil {
			return err
		}
		defer database.Close()

		return fn(database.DB, cfg.DBDriver)
	}
}
