package radial

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MinPercent is the smallest selectable value.
	MinPercent = 0

	// MaxPercent is the largest selectable value.
	MaxPercent = 100

	// degreesPerTurn is one full revolution.
	degreesPerTurn = 360.0

	// startOffset rotates the zero reference from 3 o'clock to 12 o'clock.
	startOffset = 90.0
)

// Point is a position in widget-local pixels, origin at the top-left corner.
type Point struct {
	X float64
	Y float64
}

// Geometry describes the size of a circular selector widget.
type Geometry struct {
	// Size is the widget diameter in pixels.
	Size float64

	// StrokeWidth is the ring thickness in pixels.
	StrokeWidth float64
}

// NewGeometry creates a validated [Geometry].
//
// Returns an error if size is not positive or stroke is negative or does not
// leave room for a ring of positive radius.
func NewGeometry(size, stroke float64) (Geometry, error) {
	g := Geometry{Size: size, StrokeWidth: stroke}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

// Validate checks that the geometry describes a drawable ring.
func (g Geometry) Validate() error {
	if math.IsNaN(g.Size) || math.IsInf(g.Size, 0) || g.Size <= 0 {
		return fmt.Errorf("size must be positive, got %v", g.Size)
	}
	if math.IsNaN(g.StrokeWidth) || g.StrokeWidth < 0 {
		return fmt.Errorf("stroke width cannot be negative, got %v", g.StrokeWidth)
	}
	if g.StrokeWidth >= g.Size {
		return errors.New("stroke width must be smaller than size")
	}
	return nil
}

// Center returns the geometric center of the widget.
func (g Geometry) Center() Point {
	return Point{X: g.Size / 2, Y: g.Size / 2}
}

// Radius returns the radius of the ring's center line.
func (g Geometry) Radius() float64 {
	return (g.Size - g.StrokeWidth) / 2
}

// AngleAt returns the clockwise angle in degrees, in [0, 360), of the pointer
// at (x, y) measured from 12 o'clock around the widget center.
//
// Every input is accepted. The center itself maps to atan2(0, 0) = 0, which
// is 90 degrees after the offset. Non-finite coordinates map to 0.
func (g Geometry) AngleAt(x, y float64) float64 {
	c := g.Center()
	dx := x - c.X
	dy := y - c.Y

	deg := math.Atan2(dy, dx)*(180/math.Pi) + startOffset
	if math.IsNaN(deg) {
		return 0
	}
	if deg < 0 {
		deg += degreesPerTurn
	}
	return deg
}

// PercentAt maps a pointer position to an integer percentage in [0, 100].
func (g Geometry) PercentAt(x, y float64) int {
	return AngleToPercent(g.AngleAt(x, y))
}

// AngleToPercent converts a clockwise angle from 12 o'clock to a percentage,
// rounding to the nearest integer and clamping to [0, 100].
func AngleToPercent(deg float64) int {
	pct := math.Round(deg / degreesPerTurn * 100)
	switch {
	case math.IsNaN(pct) || pct < MinPercent:
		return MinPercent
	case pct > MaxPercent:
		return MaxPercent
	default:
		return int(pct)
	}
}

// PercentToAngle converts a percentage to its clockwise angle from 12 o'clock.
// Values outside [0, 100] are clamped first.
func PercentToAngle(value int) float64 {
	return float64(Clamp(value)) / 100 * degreesPerTurn
}

// Clamp limits value to [0, 100].
func Clamp(value int) int {
	switch {
	case value < MinPercent:
		return MinPercent
	case value > MaxPercent:
		return MaxPercent
	default:
		return value
	}
}

// PolarToCartesian returns the point at angleDeg (clockwise from 12 o'clock)
// on a circle of radius r around center.
func PolarToCartesian(center Point, r, angleDeg float64) Point {
	rad := (angleDeg - startOffset) * math.Pi / 180
	return Point{
		X: center.X + r*math.Cos(rad),
		Y: center.Y + r*math.Sin(rad),
	}
}
