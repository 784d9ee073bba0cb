package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auspowercell/valvedash/config"
)

// validateCmd validates a config file without loading a dashboard.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a valvedash configuration file.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  valvedash validate -c config.yaml
  valvedash validate --config /etc/valvedash/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	direct := len(cfg.Valves)
	banked := 0
	for _, b := range cfg.Banks {
		size := 1
		for _, vals := range b.Dimensions {
			size *= len(vals)
		}
		banked += size
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Title:   %s\n", cfg.Title)
	fmt.Fprintf(out, "  Refresh: %s\n", cfg.Network.RefreshInterval.Duration())
	fmt.Fprintf(out, "  Dial:    %vpx, %vpx ring, %d ticks\n", cfg.Dial.Size, cfg.Dial.StrokeWidth, cfg.Dial.Ticks)
	fmt.Fprintf(out, "  Valves:  %d direct + %d from banks = %d total\n", direct, banked, direct+banked)

	return nil
}
