// Package main is the entry point for the valvedash CLI.
//
// valvedash can be used either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	valvedash status -c config.yaml          # Print fleet health and valves
//	valvedash watch -c config.yaml           # Follow the status bar
//	valvedash validate -c config.yaml        # Validate configuration
//	valvedash dial --x 100 --y 200           # Percentage under a touch point
//	valvedash render --value 75 > ring.svg   # Render the radial selector
//	valvedash version                        # Show version info
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "valvedash",
	Short: "Irrigation valve monitor",
	Long: `valvedash monitors and controls a fleet of irrigation valves.

It loads valves from a YAML file, rates fleet health for the status bar,
and renders the radial opening selector used to set a valve's opening.

Quick start:
  1. Create a config file (valvedash.yaml)
  2. Run: valvedash status -c valvedash.yaml

Example config:
  title: North Farm
  network:
    ssid: ${WIFI_SSID:-FarmNet}
  valves:
    - id: "1"
      name: Main Supply Line
      percentage: 75
      pressure: 45.2`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already prints the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// newLogger creates a JSON logger for CLI use.
func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this valvedash binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "valvedash %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
