package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldops/fieldsync/internal/config"
)

var (
	version string
	baseDir string
	dirFlag string
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "fieldsync",
	Short: "Offline-first field client: local cache, durable write queue, sync on reconnect",
	Long: `fieldsync keeps a field worker's device fully usable without a network
connection. Reads fall back to a time-boxed local cache; writes land in a
durable queue and are replayed against the server in order once
connectivity returns.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initBaseDir)
	rootCmd.PersistentFlags().StringVar(&dirFlag, "dir", "", "Data directory (default ~/.fieldsync)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "data", Title: "Data Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")
}

func initBaseDir() {
	if dirFlag != "" {
		baseDir = dirFlag
		return
	}
	dir, err := config.DataDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot determine data directory: %v\n", err)
		os.Exit(1)
	}
	baseDir = dir
}

// getBaseDir returns the base directory for the local database
func getBaseDir() string {
	return baseDir
}
