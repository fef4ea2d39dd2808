package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/edrs/internal/cli"
	"github.com/Veraticus/edrs/internal/config"
	"github.com/Veraticus/edrs/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the narrative cache schema to the latest version.

Every command that opens the cache migrates it first; this command is
useful for checking the schema or preparing a fresh database.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	status, _ := cmd.Flags().GetBool("status")
	dbPath := config.DatabasePath()
	out := cmd.OutOrStdout()

	slog.Debug("Opening database", "database", dbPath, "status_only", status)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if status {
		state := "up to date"
		if current < storage.ExpectedSchemaVersion {
			state = fmt.Sprintf("%d migration(s) pending", storage.ExpectedSchemaVersion-current)
		}
		_, err = fmt.Fprintln(out, cli.RenderBox("Database migration status", fmt.Sprintf(
			"Database: %s\nCurrent version: %d\nLatest version: %d\nState: %s",
			dbPath, current, storage.ExpectedSchemaVersion, state)))
		return err
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf(
		"Database at version %d (was %d): %s", storage.ExpectedSchemaVersion, current, dbPath)))
	return err
}
