package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/ankiflow/internal/cli"
	"github.com/Veraticus/ankiflow/internal/storage"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent imports and resolutions",
		RunE:  runHistory,
	}

	cmd.Flags().IntP("limit", "n", 20, "number of entries to show")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	journal, err := storage.OpenJournal(ctx, cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer func() {
		if closeErr := journal.Close(); closeErr != nil {
			slog.Warn("Failed to close journal", "error", closeErr)
		}
	}()

	runs, err := journal.RecentRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load runs: %w", err)
	}
	actions, err := journal.RecentActions(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load actions: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderHistory(runs, actions))
	return err
}
