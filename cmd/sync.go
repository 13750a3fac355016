package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldops/fieldsync/internal/apiclient"
	"github.com/fieldops/fieldsync/internal/config"
	"github.com/fieldops/fieldsync/internal/connectivity"
	"github.com/fieldops/fieldsync/internal/diag"
	"github.com/fieldops/fieldsync/internal/events"
	"github.com/fieldops/fieldsync/internal/models"
	"github.com/fieldops/fieldsync/internal/output"
	"github.com/fieldops/fieldsync/internal/store"
	"github.com/fieldops/fieldsync/internal/syncengine"
)

var syncStatusOnly bool

var syncCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Replay queued mutations against the server",
	GroupID: "data",
	Long: `Drains the mutation queue in FIFO order, replaying each queued write
against the server and recording the outcome per mutation.

Mutations that the server accepts are marked synced and removed on the
next prune. Rejections (400, 403, 404, 409) are kept as conflicts for
manual review. Server errors and rate limits are retried up to three
times before the mutation is marked failed. Losing the connection
mid-drain stops the run and leaves the remaining mutations queued.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := getBaseDir()

		s, err := store.Open(baseDir)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		if syncStatusOnly {
			return printSyncStatus(s)
		}

		deviceID, err := config.DeviceID()
		if err != nil {
			output.Error("failed to resolve device id: %v", err)
			return err
		}

		client := apiclient.New(config.ServerURL(), config.APIKey(), deviceID)
		bus := events.NewBus()
		engine := syncengine.New(s, client, bus, connectivity.NewTracker(), diag.NewLogger(s))

		result, err := engine.Drain(context.Background())
		if err != nil {
			output.Error("sync failed: %v", err)
			return err
		}

		if result.Aborted {
			output.Warning("connection lost mid-sync; remaining mutations stay queued")
		}
		fmt.Printf("Synced: %d  Conflicts: %d  Failed: %d\n",
			result.Synced, result.Conflicts, result.Failed)

		// Synced rows stay visible until the user prunes them.
		if result.Synced > 0 {
			fmt.Println("Run 'fieldsync queue prune' to remove synced mutations")
		}

		return nil
	},
}

func printSyncStatus(s *store.Store) error {
	all, err := s.Mutations(store.ListMutationsOptions{})
	if err != nil {
		output.Error("failed to read queue: %v", err)
		return err
	}
	if len(all) == 0 {
		fmt.Println("Queue is empty")
		return nil
	}

	counts := map[models.MutationStatus]int{}
	for _, m := range all {
		counts[m.Status]++
	}
	fmt.Printf("%d mutation(s) queued\n", len(all))
	for _, status := range []models.MutationStatus{
		models.StatusPending, models.StatusSyncing, models.StatusSynced,
		models.StatusConflict, models.StatusFailed,
	} {
		if counts[status] > 0 {
			fmt.Printf("  %s %d\n", output.FormatStatus(status), counts[status])
		}
	}
	return nil
}

func init() {
	syncCmd.Flags().BoolVar(&syncStatusOnly, "status", false, "show queue status without syncing")
	rootCmd.AddCommand(syncCmd)
}
