package main

import (
	"github.com/Astemirdum/my-little-library/library/migrations"
	"github.com/Astemirdum/my-little-library/pkg/postgres"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

func gooseCommand(command, short string) *cobra.Command {
	return &cobra.Command{
		Use:   command,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			return postgres.Migrate(cmd.Context(), cfg.Database, migrations.MigrationFiles, command)
		},
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(
		gooseCommand("up", "Apply all up migrations"),
		gooseCommand("down", "Roll back the latest migration"),
		gooseCommand("status", "Print migration status"),
	)
}
