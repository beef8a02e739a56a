package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the filter config",
	Long:  `Loads the config from file and env, prints the resulting filter config and fails if it is not valid.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadConfig()
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("could not encode config: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		if err := cfg.Validate(); err != nil {
			return err
		}
		first, last := cfg.Bins()
		fmt.Fprintf(cmd.OutOrStdout(), "%d bands of %d bins over [%d,%d)\n", cfg.Bands, cfg.Width(), first, last)
		return nil
	},
}
