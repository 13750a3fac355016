package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldops/fieldsync/internal/apiclient"
	"github.com/fieldops/fieldsync/internal/config"
	"github.com/fieldops/fieldsync/internal/connectivity"
	"github.com/fieldops/fieldsync/internal/diag"
	"github.com/fieldops/fieldsync/internal/events"
	"github.com/fieldops/fieldsync/internal/features"
	"github.com/fieldops/fieldsync/internal/fetch"
	"github.com/fieldops/fieldsync/internal/output"
	"github.com/fieldops/fieldsync/internal/store"
	"github.com/fieldops/fieldsync/internal/syncengine"
)

var fetchRaw bool

var fetchCmd = &cobra.Command{
	Use:     "fetch <url>",
	Short:   "Read data from the server, falling back to the cache when offline",
	GroupID: "data",
	Long: `Performs a network-first read of the given URL. A successful response
refreshes the endpoint cache for cacheable URLs. When the network is
unreachable the cached copy is served instead, as long as it is fresher
than the staleness window. Server error responses are reported as-is and
never fall back to the cache.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := getBaseDir()

		s, err := store.Open(baseDir)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		deviceID, err := config.DeviceID()
		if err != nil {
			output.Error("failed to resolve device id: %v", err)
			return err
		}

		policyPath, err := config.EndpointPolicyPath()
		if err != nil {
			output.Error("failed to locate endpoint policy: %v", err)
			return err
		}
		policy, err := fetch.LoadPolicy(policyPath)
		if err != nil {
			output.Error("failed to load endpoint policy: %v", err)
			return err
		}
		if !features.IsEnabled(features.OfflineCache.Name) {
			// An empty policy disables both write-through and fallback.
			policy = &fetch.Policy{}
		}

		client := apiclient.New(config.ServerURL(), config.APIKey(), deviceID)
		tracker := connectivity.NewTracker()
		log := diag.NewLogger(s)
		fetcher := fetch.New(client, s, policy, tracker, log)

		if features.IsEnabled(features.AutoDrain.Name) {
			tracker.OnChange(func(online bool) {
				if !online {
					return
				}
				engine := syncengine.New(s, client, events.NewBus(), tracker, log)
				if result, err := engine.Drain(context.Background()); err == nil && result.Synced > 0 {
					output.Info("Auto-drained %d queued mutation(s)", result.Synced)
				}
			})
		}

		body, err := fetcher.Fetch(context.Background(), args[0])
		if err != nil {
			output.Error("fetch failed: %v", err)
			return err
		}

		if fetchRaw {
			os.Stdout.Write(body)
			fmt.Println()
			return nil
		}

		var pretty any
		if err := json.Unmarshal(body, &pretty); err != nil {
			// Not JSON, print as-is.
			os.Stdout.Write(body)
			fmt.Println()
			return nil
		}
		return output.JSON(pretty)
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchRaw, "raw", false, "print the response body without formatting")
	rootCmd.AddCommand(fetchCmd)
}
