package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fieldops/fieldsync/internal/config"
	"github.com/fieldops/fieldsync/internal/output"
	"github.com/fieldops/fieldsync/internal/store"
)

var initCmd = &cobra.Command{
	Use:     "init",
	Short:   "Initialize the local offline database",
	Long:    `Creates the .fieldsync directory and the SQLite database holding the offline caches and the mutation queue.`,
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := getBaseDir()

		if _, err := os.Stat(filepath.Join(baseDir, ".fieldsync")); err == nil {
			output.Warning(".fieldsync/ already exists")
			return nil
		}

		s, err := store.Initialize(baseDir)
		if err != nil {
			output.Error("failed to initialize database: %v", err)
			return err
		}
		defer s.Close()

		fmt.Println("INITIALIZED .fieldsync/")

		deviceID, err := config.DeviceID()
		if err != nil {
			output.Error("failed to assign device id: %v", err)
			return err
		}
		fmt.Printf("Device: %s\n", deviceID)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
