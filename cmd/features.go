package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fieldops/fieldsync/internal/config"
	"github.com/fieldops/fieldsync/internal/features"
	"github.com/fieldops/fieldsync/internal/output"
)

var featuresCmd = &cobra.Command{
	Use:     "features",
	Short:   "List feature flags and their effective values",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, f := range features.ListAll() {
			enabled, source := features.Resolve(f.Name)
			state := "off"
			if enabled {
				state = "on"
			}
			fmt.Printf("%-15s %-3s (%s)  %s\n", f.Name, state, source, f.Description)
		}
		return nil
	},
}

var featuresSetCmd = &cobra.Command{
	Use:   "set <name> <true|false>",
	Short: "Persist a feature flag override in the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if !features.IsKnownFeature(name) {
			err := fmt.Errorf("unknown feature %q", name)
			output.Error("%v", err)
			return err
		}
		value, err := strconv.ParseBool(args[1])
		if err != nil {
			err := fmt.Errorf("invalid value %q (want true or false)", args[1])
			output.Error("%v", err)
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			output.Error("failed to load config: %v", err)
			return err
		}
		if cfg.Features == nil {
			cfg.Features = make(map[string]bool)
		}
		cfg.Features[name] = value
		if err := config.Save(cfg); err != nil {
			output.Error("failed to save config: %v", err)
			return err
		}

		output.Success("Feature %s set to %t", name, value)
		return nil
	},
}

func init() {
	featuresCmd.AddCommand(featuresSetCmd)
	rootCmd.AddCommand(featuresCmd)
}
