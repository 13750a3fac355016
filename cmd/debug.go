package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldops/fieldsync/internal/output"
	"github.com/fieldops/fieldsync/internal/store"
)

var (
	debugTailLimit int
	debugTailJSON  bool
)

var debugCmd = &cobra.Command{
	Use:     "debug",
	Short:   "Diagnostic tools",
	GroupID: "system",
}

var debugTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Show the most recent diagnostic log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := getBaseDir()

		s, err := store.Open(baseDir)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		entries, err := s.RecentDebugEntries(debugTailLimit)
		if err != nil {
			output.Error("failed to read debug log: %v", err)
			return err
		}

		if debugTailJSON {
			return output.JSON(entries)
		}

		if len(entries) == 0 {
			fmt.Println("Debug log is empty")
			return nil
		}
		for _, e := range entries {
			line := fmt.Sprintf("%s [%s/%s] %s",
				e.CreatedAt.Format("15:04:05"), e.Category, e.Level, e.Message)
			if len(e.Data) > 0 {
				line += " " + string(e.Data)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var debugClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the diagnostic log",
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := getBaseDir()

		s, err := store.Open(baseDir)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		if err := s.ClearDebugLog(); err != nil {
			output.Error("failed to clear debug log: %v", err)
			return err
		}
		output.Success("Debug log cleared")
		return nil
	},
}

func init() {
	debugTailCmd.Flags().IntVarP(&debugTailLimit, "limit", "n", 50, "maximum entries to show")
	debugTailCmd.Flags().BoolVar(&debugTailJSON, "json", false, "emit JSON")
	debugCmd.AddCommand(debugTailCmd)
	debugCmd.AddCommand(debugClearCmd)
	rootCmd.AddCommand(debugCmd)
}
