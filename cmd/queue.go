package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldops/fieldsync/internal/models"
	"github.com/fieldops/fieldsync/internal/output"
	"github.com/fieldops/fieldsync/internal/store"
)

var (
	queueStatusFilter string
	queueEntityFilter string
	queueLimit        int
	queueJSON         bool
)

var queueCmd = &cobra.Command{
	Use:     "queue",
	Short:   "Inspect the mutation queue",
	GroupID: "data",
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := getBaseDir()

		s, err := store.Open(baseDir)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		opts := store.ListMutationsOptions{
			EntityID: queueEntityFilter,
			Limit:    queueLimit,
		}
		if queueStatusFilter != "" {
			status := models.MutationStatus(queueStatusFilter)
			if !status.Valid() {
				err := fmt.Errorf("unknown status %q", queueStatusFilter)
				output.Error("%v", err)
				return err
			}
			opts.Status = []models.MutationStatus{status}
		}

		mutations, err := s.Mutations(opts)
		if err != nil {
			output.Error("failed to list queue: %v", err)
			return err
		}

		if queueJSON {
			return output.JSON(mutations)
		}

		if len(mutations) == 0 {
			fmt.Println("Queue is empty")
			return nil
		}
		for i := range mutations {
			fmt.Println(output.FormatMutation(&mutations[i]))
		}
		return nil
	},
}

var queuePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove synced mutations from the queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := getBaseDir()

		s, err := store.Open(baseDir)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		pruned, err := s.RemoveSyncedMutations()
		if err != nil {
			output.Error("failed to prune queue: %v", err)
			return err
		}
		fmt.Printf("Pruned %d synced mutation(s)\n", pruned)
		return nil
	},
}

var queueClearForce bool

var queueClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every queued mutation, including unsynced ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := getBaseDir()

		s, err := store.Open(baseDir)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		if !queueClearForce {
			count, err := s.PendingCount()
			if err != nil {
				output.Error("failed to count queue: %v", err)
				return err
			}
			if count > 0 {
				err := fmt.Errorf("%d mutation(s) have not synced; pass --force to discard them", count)
				output.Error("%v", err)
				return err
			}
		}

		if err := s.ClearMutations(); err != nil {
			output.Error("failed to clear queue: %v", err)
			return err
		}
		output.Success("Queue cleared")
		return nil
	},
}

func init() {
	queueCmd.Flags().StringVar(&queueStatusFilter, "status", "", "filter by mutation status")
	queueCmd.Flags().StringVar(&queueEntityFilter, "entity-id", "", "filter by entity id")
	queueCmd.Flags().IntVar(&queueLimit, "limit", 0, "maximum rows to show (0 = all)")
	queueCmd.Flags().BoolVar(&queueJSON, "json", false, "emit JSON")
	queueClearCmd.Flags().BoolVar(&queueClearForce, "force", false, "discard unsynced mutations too")
	queueCmd.AddCommand(queuePruneCmd)
	queueCmd.AddCommand(queueClearCmd)
	rootCmd.AddCommand(queueCmd)
}
