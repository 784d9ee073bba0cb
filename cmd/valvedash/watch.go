package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// watchCmd follows the status bar until interrupted.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow network and health changes",
	Long: `Load a configuration file and follow the status bar.

The network label is refreshed on the configured interval and every change
to the network label or fleet health is printed as it happens.

The command runs until interrupted (Ctrl+C) or receives SIGTERM.

Example:
  valvedash watch -c config.yaml`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = watchCmd.MarkFlagRequired("config")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	f, err := loadFleet(configFile, logger)
	if err != nil {
		return err
	}

	logger.Info("config loaded",
		"valves", len(f.dashboard.Valves()),
		"refresh_interval", f.cfg.Network.RefreshInterval.Duration().String(),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return follow(ctx, cmd, f)
}

// follow prints every store snapshot until ctx is cancelled.
func follow(ctx context.Context, cmd *cobra.Command, f *fleet) error {
	updates := f.store.Watch(ctx)

	f.watcher.Start(ctx)
	defer f.watcher.Stop()

	out := cmd.OutOrStdout()
	snap := f.store.Snapshot()
	fmt.Fprintf(out, "%s  network=%s health=%s\n", f.dashboard.Title(), snap.WifiName, snap.Health)

	for snap := range updates {
		fmt.Fprintf(out, "%s  network=%s health=%s\n", f.dashboard.Title(), snap.WifiName, snap.Health)
	}
	return nil
}
