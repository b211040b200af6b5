package main

import (
	"fmt"

	"github.com/shodgson/prosemirror-widgets/imageview"
	"github.com/spf13/cobra"
)

var resizeFlags struct {
	direction string
	width     float64
	height    float64
	ratio     float64
	dx        float64
	dy        float64
}

// resizeCmd evaluates one handle drag
var resizeCmd = &cobra.Command{
	Use:   "resize",
	Short: "Compute the size an image ends up with after a handle drag",
	Long: `Evaluates a drag of one resize handle by (dx, dy) pixels starting from
the given size. Edge handles (n, s, e, w) keep the aspect ratio, corner
handles resize freely. Both dimensions are clamped to the configured
bounds and rounded as they would be when committed.

Example:
  widgets resize --direction e --width 200 --height 100 --dx 31`,
	Args: cobra.NoArgs,
	RunE: runResize,
}

func init() {
	f := resizeCmd.Flags()
	f.StringVarP(&resizeFlags.direction, "direction", "d", "se", "Handle: n, ne, e, se, s, sw, w or nw")
	f.Float64Var(&resizeFlags.width, "width", 0, "Start width in pixels (required)")
	f.Float64Var(&resizeFlags.height, "height", 0, "Start height in pixels (required)")
	f.Float64Var(&resizeFlags.ratio, "ratio", 0, "Aspect ratio (default: width/height)")
	f.Float64Var(&resizeFlags.dx, "dx", 0, "Horizontal pointer movement")
	f.Float64Var(&resizeFlags.dy, "dy", 0, "Vertical pointer movement")
	resizeCmd.MarkFlagRequired("width")
	resizeCmd.MarkFlagRequired("height")
}

func runResize(cmd *cobra.Command, args []string) error {
	dir, err := imageview.ParseDirection(resizeFlags.direction)
	if err != nil {
		return err
	}
	start := imageview.Size{Width: resizeFlags.width, Height: resizeFlags.height}
	ratio := resizeFlags.ratio
	if ratio == 0 {
		ratio = start.Ratio()
	}
	s := imageview.Session{
		Direction:   dir,
		StartWidth:  start.Width,
		StartHeight: start.Height,
		AspectRatio: ratio,
	}
	w, h := s.Resize(resizeFlags.dx, resizeFlags.dy, bounds()).Round()
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%dx%d\n", w, h)
	return err
}
