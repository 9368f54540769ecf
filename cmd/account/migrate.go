package main

import (
	"database/sql"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/config"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/migrate"
	"github.com/spf13/cobra"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSQL(func(db *sql.DB) error {
				cmd.Println("Running migrations...")
				if err := migrate.Up(db); err != nil {
					return err
				}
				cmd.Println("Migrations completed successfully")
				return nil
			})
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSQL(func(db *sql.DB) error {
				return migrate.Down(db, steps)
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSQL(func(db *sql.DB) error {
				v, dirty, err := migrate.Version(db)
				if err != nil {
					return err
				}
				cmd.Printf("version=%d dirty=%t\n", v, dirty)
				return nil
			})
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func withSQL(fn func(db *sql.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	handle, err := db.DB()
	if err != nil {
		return err
	}
	defer handle.Close()

	return fn(handle)
}
