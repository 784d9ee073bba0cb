package radial

import (
	"embed"
	"fmt"
	"html"
	"io"
	"math"
	"strconv"
	"text/template"
)

const (
	// DefaultTickCount is the conventional number of cosmetic tick marks.
	DefaultTickCount = 40

	defaultTrackColor    = "#e2e8f0"
	defaultProgressColor = "#3b82f6"
	defaultTickColor     = "#cbd5e1"

	// tickGap separates the tick marks from the inner edge of the ring.
	tickGap = 2.0
)

// ArcKind selects how the foreground arc is drawn.
type ArcKind int

const (
	// ArcNone draws no foreground at all (value 0).
	ArcNone ArcKind = iota

	// ArcPartial draws an SVG arc path from 12 o'clock clockwise.
	ArcPartial

	// ArcFull draws a complete circle. An arc path from a point back to the
	// same point is degenerate, so 100% never uses the path formula.
	ArcFull
)

// String returns a lowercase name for the arc kind.
func (k ArcKind) String() string {
	switch k {
	case ArcNone:
		return "none"
	case ArcPartial:
		return "partial"
	case ArcFull:
		return "full"
	default:
		return "unknown"
	}
}

// ArcKindFor returns the rendering branch for a percentage.
func ArcKindFor(value int) ArcKind {
	switch v := Clamp(value); {
	case v == MinPercent:
		return ArcNone
	case v == MaxPercent:
		return ArcFull
	default:
		return ArcPartial
	}
}

// Tick is one cosmetic tick mark, drawn from Inner to Outer.
type Tick struct {
	Angle float64
	Inner Point
	Outer Point
}

// Ring is a complete rendering plan for one value.
type Ring struct {
	Geometry Geometry
	Value    int
	Kind     ArcKind

	// Center and Radius describe both the track and the foreground circle.
	Center Point
	Radius float64

	// Path is the SVG path data for [ArcPartial], empty otherwise.
	Path string

	// End is the point on the ring matching Value.
	End Point

	// Ticks is empty unless requested with [WithTicks].
	Ticks []Tick

	TrackColor    string
	ProgressColor string
	TickColor     string
}

// RenderOption configures [Geometry.Render].
type RenderOption func(*Ring)

// WithTicks adds n evenly spaced tick marks behind the arc.
// Non-positive n disables ticks.
func WithTicks(n int) RenderOption {
	return func(r *Ring) {
		r.Ticks = r.Geometry.Ticks(n)
	}
}

// WithColors overrides the track, progress and tick colors. Empty strings
// keep the defaults.
func WithColors(track, progress, tick string) RenderOption {
	return func(r *Ring) {
		if track != "" {
			r.TrackColor = track
		}
		if progress != "" {
			r.ProgressColor = progress
		}
		if tick != "" {
			r.TickColor = tick
		}
	}
}

// Render builds the [Ring] plan for value, clamped to [0, 100].
func (g Geometry) Render(value int, opts ...RenderOption) Ring {
	value = Clamp(value)
	center := g.Center()
	radius := g.Radius()

	r := Ring{
		Geometry:      g,
		Value:         value,
		Kind:          ArcKindFor(value),
		Center:        center,
		Radius:        radius,
		Path:          g.ArcPath(value),
		End:           PolarToCartesian(center, radius, PercentToAngle(value)),
		TrackColor:    defaultTrackColor,
		ProgressColor: defaultProgressColor,
		TickColor:     defaultTickColor,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// ArcPath returns SVG path data for the foreground arc of value.
//
// The path starts at 12 o'clock and sweeps clockwise. It is empty for
// [ArcNone] and [ArcFull]; callers draw a full circle for the latter.
func (g Geometry) ArcPath(value int) string {
	if ArcKindFor(value) != ArcPartial {
		return ""
	}

	center := g.Center()
	radius := g.Radius()
	angle := PercentToAngle(value)

	start := PolarToCartesian(center, radius, 0)
	end := PolarToCartesian(center, radius, angle)

	largeArc := 0
	if angle > 180 {
		largeArc = 1
	}

	return fmt.Sprintf("M %s %s A %s %s 0 %d 1 %s %s",
		formatNumber(start.X), formatNumber(start.Y),
		formatNumber(radius), formatNumber(radius),
		largeArc,
		formatNumber(end.X), formatNumber(end.Y),
	)
}

// Ticks returns n evenly spaced tick marks just inside the ring, starting at
// 12 o'clock. Non-positive n returns nil.
func (g Geometry) Ticks(n int) []Tick {
	if n <= 0 {
		return nil
	}

	center := g.Center()
	outer := g.Radius() - g.StrokeWidth/2 - tickGap
	length := math.Max(4, g.StrokeWidth/2)
	inner := math.Max(0, outer-length)
	if outer < 0 {
		outer = 0
	}

	ticks := make([]Tick, n)
	step := degreesPerTurn / float64(n)
	for i := range ticks {
		angle := float64(i) * step
		ticks[i] = Tick{
			Angle: angle,
			Inner: PolarToCartesian(center, inner, angle),
			Outer: PolarToCartesian(center, outer, angle),
		}
	}
	return ticks
}

//go:embed assets/ring.svg.tmpl
var assets embed.FS

var ringTemplate = template.Must(
	template.New("ring.svg.tmpl").
		Funcs(template.FuncMap{
			"num":  formatNumber,
			"attr": html.EscapeString,
		}).
		ParseFS(assets, "assets/ring.svg.tmpl"),
)

// WriteSVG renders the plan as a standalone SVG document.
func (r Ring) WriteSVG(w io.Writer) error {
	if err := ringTemplate.Execute(w, r); err != nil {
		return fmt.Errorf("render ring: %w", err)
	}
	return nil
}

// IsFull reports whether the plan draws a complete circle.
func (r Ring) IsFull() bool {
	return r.Kind == ArcFull
}

// IsPartial reports whether the plan draws an arc path.
func (r Ring) IsPartial() bool {
	return r.Kind == ArcPartial
}

// formatNumber renders a coordinate with at most two decimals.
func formatNumber(f float64) string {
	v := math.Round(f*100) / 100
	if v == 0 {
		v = 0 // normalise -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
