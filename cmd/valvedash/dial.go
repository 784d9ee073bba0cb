package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/auspowercell/valvedash/radial"
)

// dialCmd reports the percentage under a touch point.
var dialCmd = &cobra.Command{
	Use:   "dial",
	Short: "Map a touch point on the radial selector to a percentage",
	Long: `Print the percentage the radial selector reports for a touch at (x, y).

Coordinates are relative to the top-left corner of the dial. 12 o'clock is
0%, values grow clockwise, and 3 o'clock is 25%.

Example:
  valvedash dial --x 100 --y 200              # 6 o'clock on a 200px dial
  valvedash dial --size 240 --stroke 18 --x 0 --y 120`,
	RunE: runDial,
}

func init() {
	rootCmd.AddCommand(dialCmd)

	dialCmd.Flags().Float64("size", 200, "dial width and height in pixels")
	dialCmd.Flags().Float64("stroke", 20, "ring thickness in pixels")
	dialCmd.Flags().Float64("x", 0, "touch x coordinate")
	dialCmd.Flags().Float64("y", 0, "touch y coordinate")
	_ = dialCmd.MarkFlagRequired("x")
	_ = dialCmd.MarkFlagRequired("y")
}

func runDial(cmd *cobra.Command, args []string) error {
	size, _ := cmd.Flags().GetFloat64("size")
	stroke, _ := cmd.Flags().GetFloat64("stroke")
	x, _ := cmd.Flags().GetFloat64("x")
	y, _ := cmd.Flags().GetFloat64("y")

	g, err := radial.NewGeometry(size, stroke)
	if err != nil {
		return err
	}

	angle := g.AngleAt(x, y)
	fmt.Fprintf(cmd.OutOrStdout(), "%d%% (%.1f°)\n", radial.AngleToPercent(angle), angle)
	return nil
}
