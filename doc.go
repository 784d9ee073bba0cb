// Package valvedash is the controller layer of an irrigation valve monitor.
//
// It owns a fleet of [Valve] values and applies operator commands to them,
// keeping a shared [status.Store] informed of fleet health and recording
// every command in an [AuditLog]. Rendering and input for the radial
// opening selector live in the radial package; the status bar's shared
// state lives in the status package.
//
// # Quick Start
//
//	a1, _ := valvedash.NewValve("a1", "Irrigation Zone A1",
//	    valvedash.WithLocation("North Field, Sector 1"),
//	    valvedash.WithPressure(45.2),
//	)
//
//	st := status.New()
//	d, _ := valvedash.New(
//	    valvedash.WithValve(a1),
//	    valvedash.WithStatusStore(st),
//	)
//
//	d.SetPercentage("a1", 60) // switches a1 on and publishes health
//
// # Configuration
//
// Dashboards, valves and valve banks are all configured with the
// functional options pattern. Options validate their input and New returns
// the first error encountered:
//
//	d, err := valvedash.New(
//	    valvedash.WithValves(valves...),
//	    valvedash.WithTitle("North Farm"),
//	    valvedash.WithActor("jdoe"),
//	    valvedash.WithChangeCallback(func(c valvedash.ValveChange) {
//	        log.Printf("%s now %d%%", c.After.Name(), c.After.Percentage())
//	    }),
//	)
//
// # Valve Banks
//
// Sites that repeat a layout across zones can generate valves from
// dimension values with [NewValveBank]:
//
//	bank, _ := valvedash.NewValveBank("Irrigation Zone",
//	    valvedash.WithDimensions(map[string][]string{
//	        "zone":   {"A", "B"},
//	        "sector": {"1", "2"},
//	    }),
//	    valvedash.WithIDTemplate("{{.zone}}{{.sector}}"),
//	)
//
// # Filtering and Search
//
// [Filter] mirrors the dashboard's filter chips and [Search] its search
// box. [ComputeStats] and [DeriveHealth] produce the header cards and the
// status bar rating.
//
// # Thread Safety
//
// Valve is immutable. Dashboard, AuditLog and status.Store are safe for
// concurrent use.
package valvedash
