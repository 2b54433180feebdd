package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Ramsey-B/verzoeken/internal/app"
)

var (
	migrateVersion uint
	migrateForce   int
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDatabase(cmd.Context(), func(_ context.Context, a *app.App) error {
			return a.Migrate(migrateVersion, migrateForce)
		})
	},
}

func init() {
	migrateCmd.Flags().UintVar(&migrateVersion, "version", 0, "Migrate to this version instead of the latest")
	migrateCmd.Flags().IntVar(&migrateForce, "force", 0, "Force the database to this version before migrating")
}
