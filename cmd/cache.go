package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fieldops/fieldsync/internal/output"
	"github.com/fieldops/fieldsync/internal/store"
)

var cacheCmd = &cobra.Command{
	Use:     "cache",
	Short:   "Inspect the offline read cache",
	GroupID: "data",
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := getBaseDir()

		s, err := store.Open(baseDir)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		for _, key := range []string{store.MetaBookings, store.MetaRoutes, store.MetaProfile} {
			meta, err := s.CacheMetadataFor(key)
			if err != nil {
				output.Error("failed to read cache metadata: %v", err)
				return err
			}
			if meta == nil {
				fmt.Printf("%-10s (never synced)\n", key)
				continue
			}
			age := time.Since(meta.LastSyncedAt)
			state := "fresh"
			if age > store.MaxCacheAge {
				state = "stale"
			}
			fmt.Printf("%-10s synced %s (%s)\n", key, output.FormatTimeAgo(meta.LastSyncedAt), state)
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop all cached reads",
	Long: `Deletes the cached bookings, routes, profile and endpoint responses.
Queued mutations are kept; use 'fieldsync queue clear' to discard those.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := getBaseDir()

		s, err := store.Open(baseDir)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		if err := s.ClearOfflineData(); err != nil {
			output.Error("failed to clear cache: %v", err)
			return err
		}
		output.Success("Cache cleared")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
