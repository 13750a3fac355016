package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldops/fieldsync/internal/events"
	"github.com/fieldops/fieldsync/internal/models"
	"github.com/fieldops/fieldsync/internal/output"
	"github.com/fieldops/fieldsync/internal/store"
)

var (
	enqueueBody     string
	enqueueEntity   string
	enqueueEntityID string
)

var enqueueCmd = &cobra.Command{
	Use:     "enqueue <method> <url>",
	Short:   "Queue a write for later sync",
	GroupID: "data",
	Long: `Appends a mutation to the durable queue. The mutation is replayed
against the server on the next sync, in the order it was enqueued.

The request body is read from --body, or from stdin when --body is "-".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := getBaseDir()

		s, err := store.Open(baseDir)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		method := models.Method(strings.ToUpper(args[0]))
		if !method.Valid() {
			err := fmt.Errorf("unsupported method %q (want PUT, PATCH, POST or DELETE)", args[0])
			output.Error("%v", err)
			return err
		}

		body := []byte(enqueueBody)
		if enqueueBody == "-" {
			body, err = io.ReadAll(os.Stdin)
			if err != nil {
				output.Error("failed to read body from stdin: %v", err)
				return err
			}
		}
		if len(body) > 0 && !json.Valid(body) {
			err := fmt.Errorf("body is not valid JSON")
			output.Error("%v", err)
			return err
		}

		entityType := enqueueEntity
		if entityType != "" && !events.IsValidEntityType(entityType) {
			err := fmt.Errorf("unknown entity type %q (want one of %s)",
				entityType, strings.Join(entityTypeNames(), ", "))
			output.Error("%v", err)
			return err
		}

		id, err := s.EnqueueMutation(models.MutationInput{
			Method:     method,
			URL:        args[1],
			Body:       body,
			EntityType: entityType,
			EntityID:   enqueueEntityID,
		})
		if err != nil {
			output.Error("failed to enqueue: %v", err)
			return err
		}

		output.Success("Queued mutation #%d (%s %s)", id, method, args[1])
		return nil
	},
}

func entityTypeNames() []string {
	var names []string
	for t := range events.AllEntityTypes() {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}

func init() {
	enqueueCmd.Flags().StringVar(&enqueueBody, "body", "", "JSON request body, or - to read from stdin")
	enqueueCmd.Flags().StringVar(&enqueueEntity, "entity-type", "", "entity type the mutation touches (bookings, routes, profile)")
	enqueueCmd.Flags().StringVar(&enqueueEntityID, "entity-id", "", "identifier of the touched entity")
	rootCmd.AddCommand(enqueueCmd)
}
