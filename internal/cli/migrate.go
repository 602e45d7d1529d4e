package cli

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/faro-app/faro/internal/migrations"
)

func newMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *sqlx.DB) error {
				return migrations.Up(db.DB)
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *sqlx.DB) error {
				return migrations.Down(db.DB)
			})
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *sqlx.DB) error {
				return migrations.Status(db.DB)
			})
		},
	})

	return migrateCmd
}

func withDB(fn func(db *sqlx.DB) error) error {
	if config.Database.URL == "" {
		return fmt.Errorf("no database URL configured; set database.url in faro.yaml or pass --url")
	}
	db, err := sqlx.Connect("postgres", config.Database.URL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(config.Database.MaxConnections)
	return fn(db)
}
