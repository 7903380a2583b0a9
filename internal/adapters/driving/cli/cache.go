package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheTopN int

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the resolution cache",
}

var cacheTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the most frequently resolved words",
	RunE:  runCacheTop,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE:  runCacheStats,
}

func init() {
	cacheTopCmd.Flags().IntVarP(&cacheTopN, "number", "n", 10, "number of words to show")
	cacheCmd.AddCommand(cacheTopCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheTop(cmd *cobra.Command, _ []string) error {
	if services.Cache == nil {
		return errors.New("cache store not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ranked, err := services.Cache.TopWords(ctx, cacheTopN)
	if err != nil {
		return fmt.Errorf("rank words: %w", err)
	}
	if len(ranked) == 0 {
		cmd.Println("Cache is empty.")
		return nil
	}
	for i, rw := range ranked {
		cmd.Printf("  %2d. %-20s %.1f\n", i+1, rw.Word, rw.Score)
	}
	return nil
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	if services.Cache == nil {
		return errors.New("cache store not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	stats, err := services.Cache.Stats(ctx)
	if err != nil {
		return fmt.Errorf("cache stats: %w", err)
	}
	cmd.Printf("  Entries:    %d\n", stats.Entries)
	cmd.Printf("  Detections: %d\n", stats.Detections)
	cmd.Printf("  Hits:       %d\n", stats.Hits)
	return nil
}
