package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/edrs/internal/cli"
	"github.com/Veraticus/edrs/internal/config"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the narrative cache",
	}

	cmd.AddCommand(cacheStatsCmd())
	cmd.AddCommand(cacheClearCmd())

	return cmd
}

func cacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show narrative cache statistics",
		RunE:  runCacheStats,
	}
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open narrative cache: %w", err)
	}
	defer func() { _ = store.Close() }()

	stats, err := store.NarrativeStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read cache statistics: %w", err)
	}

	lines := []string{
		fmt.Sprintf("Database:  %s", config.DatabasePath()),
		fmt.Sprintf("Entries:   %d", stats.Total),
		fmt.Sprintf("Fallback:  %d", stats.Fallbacks),
	}
	versions := make([]string, 0, len(stats.ByVersion))
	for v := range stats.ByVersion {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	for _, v := range versions {
		lines = append(lines, fmt.Sprintf("Prompt %s: %d", v, stats.ByVersion[v]))
	}
	if stats.Oldest != nil {
		lines = append(lines, fmt.Sprintf("Oldest:    %s", stats.Oldest.Local().Format(time.DateTime)))
	}
	if stats.Newest != nil {
		lines = append(lines, fmt.Sprintf("Newest:    %s", stats.Newest.Local().Format(time.DateTime)))
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Narrative cache", strings.Join(lines, "\n")))
	return err
}

func cacheClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached narrative",
		RunE:  runCacheClear,
	}

	cmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	return cmd
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	yes, _ := cmd.Flags().GetBool("yes")
	out := cmd.OutOrStdout()

	if !yes {
		reader := cli.NewNonBlockingReader(cmd.InOrStdin())
		ok, err := reader.Confirm(ctx, out, "Delete every cached narrative?")
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(out, cli.FormatInfo("Cache left unchanged."))
			return nil
		}
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open narrative cache: %w", err)
	}
	defer func() { _ = store.Close() }()

	n, err := store.ClearNarratives(ctx)
	if err != nil {
		return fmt.Errorf("failed to clear narrative cache: %w", err)
	}

	_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Removed %d cached narratives", n)))
	return err
}
