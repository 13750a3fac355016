package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fieldops/fieldsync/internal/diag"
	"github.com/fieldops/fieldsync/internal/features"
	"github.com/fieldops/fieldsync/internal/output"
	"github.com/fieldops/fieldsync/internal/store"
)

var bugreportLogLimit int

var bugreportCmd = &cobra.Command{
	Use:     "bugreport",
	Short:   "Print a diagnostic snapshot for support",
	GroupID: "system",
	Long: `Collects version, host, feature flags and the recent diagnostic log
into one plain-text report suitable for pasting into a support ticket.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		baseDir := getBaseDir()

		s, err := store.Open(baseDir)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		report, err := diag.BugReport(s, diag.ReportOptions{
			AppVersion: version,
			Features:   features.Snapshot(),
			LogLimit:   bugreportLogLimit,
		})
		if err != nil {
			output.Error("failed to build report: %v", err)
			return err
		}
		fmt.Print(report)
		return nil
	},
}

func init() {
	bugreportCmd.Flags().IntVar(&bugreportLogLimit, "log-limit", 0, "debug log entries to include (0 = default)")
	rootCmd.AddCommand(bugreportCmd)
}
