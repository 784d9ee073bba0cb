package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/auspowercell/valvedash"
	"github.com/auspowercell/valvedash/config"
	"github.com/auspowercell/valvedash/status"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#89b4fa")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7f849c"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8")).Bold(true)
	textStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#cdd6f4"))
	alertStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f38ba8"))
	onStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6e3a1"))

	healthColors = map[status.Health]lipgloss.Color{
		status.HealthGood:   lipgloss.Color("#a6e3a1"),
		status.HealthMedium: lipgloss.Color("#fab387"),
		status.HealthBad:    lipgloss.Color("#f38ba8"),
	}
)

// column widths of the valve table
var valveColumns = []struct {
	title string
	width int
}{
	{"ID", 8},
	{"NAME", 24},
	{"LOCATION", 24},
	{"STATE", 12},
	{"SWITCH", 7},
	{"OPEN", 6},
	{"PSI", 7},
	{"ALERT", 0},
}

// statusCmd prints fleet health and the valve list.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print fleet health and valves",
	Long: `Load a configuration file and print what the dashboard would show:
the status bar (network and health), the summary cards, and the valve list.

The list can be narrowed with the same filter chips and search box the
dashboard offers.

Example:
  valvedash status -c config.yaml
  valvedash status -c config.yaml --filter offline
  valvedash status -c config.yaml --search irigation`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	statusCmd.Flags().StringP("filter", "f", "all", "filter chip: all, online, offline, error, on, off")
	statusCmd.Flags().StringP("search", "s", "", "search valve names and locations")
	_ = statusCmd.MarkFlagRequired("config")
}

// fleet bundles the pieces built from a config file.
type fleet struct {
	cfg       *config.Config
	dashboard *valvedash.Dashboard
	store     *status.Store
	watcher   *status.Watcher
}

// loadFleet loads a config file and builds a dashboard publishing to a
// fresh status store, plus a watcher feeding that store the configured
// network state.
func loadFleet(path string, logger *slog.Logger) (*fleet, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	opts, err := config.BuildOptions(cfg, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to build valves: %w", err)
	}

	st := status.New(status.WithLogger(logger))
	opts = append(opts, valvedash.WithStatusStore(st), valvedash.WithLogger(logger))

	d, err := valvedash.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create dashboard: %w", err)
	}

	w := status.NewWatcher(st, config.BuildNetworkSource(cfg), cfg.Network.RefreshInterval.Duration(), logger)
	return &fleet{cfg: cfg, dashboard: d, store: st, watcher: w}, nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	filterFlag, _ := cmd.Flags().GetString("filter")
	search, _ := cmd.Flags().GetString("search")

	filter, err := valvedash.ParseFilter(filterFlag)
	if err != nil {
		return err
	}

	f, err := loadFleet(configFile, newLogger())
	if err != nil {
		return err
	}
	f.watcher.Refresh(context.Background())

	valves := filter.Apply(f.dashboard.Search(search))
	writeStatus(cmd.OutOrStdout(), f.dashboard, f.store.Snapshot(), valves)
	return nil
}

// writeStatus renders the status bar, summary and valve table.
func writeStatus(out io.Writer, d *valvedash.Dashboard, snap status.Snapshot, valves []valvedash.Valve) {
	health := lipgloss.NewStyle().Foreground(healthColors[snap.Health]).Bold(true)

	fmt.Fprintln(out, titleStyle.Render(d.Title()))
	fmt.Fprintln(out, mutedStyle.Render("network ")+textStyle.Render(snap.WifiName)+
		mutedStyle.Render("  health ")+health.Render(strings.ToUpper(snap.Health.String())))

	s := d.Stats()
	fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf(
		"total %d  online %d  active %d  alerts %d  avg pressure %.1f psi",
		s.Total, s.Online, s.Active, s.Alerts, s.AvgPressure,
	)))

	counts := d.Counts()
	chips := make([]string, 0, len(valvedash.Filters))
	for _, f := range valvedash.Filters {
		chips = append(chips, fmt.Sprintf("%s %d", f, counts[f]))
	}
	fmt.Fprintln(out, mutedStyle.Render(strings.Join(chips, "  ")))
	fmt.Fprintln(out)

	if len(valves) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("No valves match."))
		return
	}

	cells := make([]string, len(valveColumns))
	for i, c := range valveColumns {
		cells[i] = cell(headerStyle, c.title, c.width)
	}
	fmt.Fprintln(out, strings.TrimRight(strings.Join(cells, " "), " "))

	for _, v := range valves {
		switchStyle, switchText := mutedStyle, "off"
		if v.Active() {
			switchStyle, switchText = onStyle, "on"
		}
		row := []string{
			cell(textStyle, v.ID(), valveColumns[0].width),
			cell(textStyle, v.Name(), valveColumns[1].width),
			cell(mutedStyle, v.Location(), valveColumns[2].width),
			cell(textStyle, v.State().String(), valveColumns[3].width),
			cell(switchStyle, switchText, valveColumns[4].width),
			cell(textStyle, fmt.Sprintf("%d%%", v.Percentage()), valveColumns[5].width),
			cell(textStyle, fmt.Sprintf("%.1f", v.Pressure()), valveColumns[6].width),
			cell(alertStyle, v.AlertMessage(), valveColumns[7].width),
		}
		fmt.Fprintln(out, strings.TrimRight(strings.Join(row, " "), " "))
	}
}

// cell renders s in style, truncated and padded to width. A zero width
// leaves s as is.
func cell(style lipgloss.Style, s string, width int) string {
	if width == 0 {
		return style.Render(s)
	}
	if lipgloss.Width(s) > width {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
			r = r[:len(r)-1]
		}
		s = string(r) + "…"
	}
	return style.Width(width).Render(s)
}
