package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			if err := e.db.RunMigrations(); err != nil {
				return fmt.Errorf("migration up failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied successfully")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			if err := e.db.RollbackMigration(); err != nil {
				return fmt.Errorf("migration down failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Rolled back 1 migration")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			version, dirty, err := e.db.MigrationVersion()
			if err != nil {
				return fmt.Errorf("failed to get version: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %d, Dirty: %v\n", version, dirty)
			return nil
		}),
	})

	return cmd
}
