// Package radial implements the circular percentage selector used by the
// valve detail panel.
//
// A [Geometry] describes the widget (diameter and ring thickness). Pointer
// positions are mapped to an integer percentage with [Geometry.PercentAt]:
// 0% sits at 12 o'clock and the value grows clockwise, so 3 o'clock is 25%,
// 6 o'clock is 50% and 9 o'clock is 75%.
//
// Gestures are modelled as explicit [Event] values fed to a [Gesture], which
// forwards each computed percentage to a callback. The angle math is a pure
// function and needs no simulated input.
//
// Rendering is described by a [Ring] plan: the background track, the
// foreground arc (none, partial or full circle) and optional cosmetic ticks.
// [Ring.WriteSVG] turns a plan into an SVG document.
package radial
