package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/auspowercell/valvedash"
	"github.com/auspowercell/valvedash/radial"
	"github.com/auspowercell/valvedash/status"
)

// consoleHaptics prints instead of vibrating.
type consoleHaptics struct{}

func (consoleHaptics) Impact(style radial.ImpactStyle) error {
	fmt.Printf("  * %s haptic pulse\n", style)
	return nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	// bank API: 2 sides x 2 sectors = 4 valves from one declaration
	zones, err := valvedash.NewValveBank("Irrigation Zone",
		valvedash.WithDimensions(map[string][]string{
			"side":   {"North", "South"},
			"sector": {"1", "2"},
		}),
		valvedash.WithNameTemplate("Irrigation Zone {{.side}} {{.sector}}"),
		valvedash.WithLocationTemplate("{{.side}} Side, Sector {{.sector}}"),
		valvedash.WithValveOptions(valvedash.WithPressure(52.1)),
	)
	if err != nil {
		slog.Error("failed to create valve bank", "error", err)
		os.Exit(1)
	}

	mainLine, _ := valvedash.NewValve("main", "Main Supply Line",
		valvedash.WithLocation("Ground, Sector 12"),
		valvedash.WithPressure(44.3),
		valvedash.WithFlowRate(62),
	)
	relief, _ := valvedash.NewValve("relief", "Relief Line",
		valvedash.WithLocation("Central, Sector 5"),
		valvedash.WithState(valvedash.StateOffline),
		valvedash.WithAlert("Connection lost"),
	)

	// one store shared by everything that shows the status bar
	st := status.New(status.WithLogger(logger))

	d, err := valvedash.New(
		valvedash.WithValves(zones...),
		valvedash.WithValves(mainLine, relief),
		valvedash.WithStatusStore(st),
		valvedash.WithLogger(logger),
		valvedash.WithHaptics(consoleHaptics{}),
		valvedash.WithActor("Lisa Anderson"),
		valvedash.WithOperators(
			valvedash.Operator{ID: "u1", Name: "John Legend", Department: "Operations", Online: true},
			valvedash.Operator{ID: "u2", Name: "Sarah Johnson", Department: "Field Operations"},
			valvedash.Operator{ID: "u3", Name: "Lisa Anderson", Department: "Field Operations", Online: true},
		),
		valvedash.WithChangeCallback(func(c valvedash.ValveChange) {
			fmt.Printf("  %s: %d%% -> %d%%\n", c.After.Name(), c.Before.Percentage(), c.After.Percentage())
		}),
	)
	if err != nil {
		slog.Error("failed to create dashboard", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	// status bar: print every change
	updates := st.Watch(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for snap := range updates {
			fmt.Printf("  [status bar] %s | %s\n", snap.WifiName, snap.Health)
		}
	}()

	watcher := status.NewWatcher(st, status.StaticSource{Connected: true, SSID: "FarmNet"}, time.Second, logger)
	watcher.Start(ctx)
	defer watcher.Stop()

	fmt.Println()
	fmt.Println("  valvedash demo")
	fmt.Printf("  %d valves, health %s\n", len(d.Valves()), d.Health())
	fmt.Println()

	// drag the main line's dial from 12 o'clock round to 9 o'clock
	dial, _ := d.Dial("main")
	g := d.DialGeometry()
	c := g.Center()
	dial.Begin(c.X, c.Y-g.Radius())
	dial.Move(c.X+g.Radius(), c.Y)
	dial.Move(c.X, c.Y+g.Radius())
	dial.Move(c.X-g.Radius(), c.Y)
	dial.End()

	if _, err := d.Toggle("relief", true); err != nil {
		fmt.Printf("  relief line: %v\n", err)
	}

	v, _ := d.Valve("main")
	if err := g.Render(v.Percentage(), radial.WithTicks(radial.DefaultTickCount)).WriteSVG(os.Stdout); err != nil {
		slog.Error("failed to render dial", "error", err)
	}
	fmt.Println()

	for _, e := range d.Audit(valvedash.AuditQuery{Limit: 5}) {
		fmt.Printf("  %s %-8s %s: %s\n", e.At.Format(time.Kitchen), e.Result, e.Target, e.Details)
	}

	fmt.Println()
	for _, op := range d.Operators("field") {
		fmt.Printf("  operator %-14s online=%v\n", op.Name, op.Online)
	}

	<-ctx.Done()
	<-done
}
