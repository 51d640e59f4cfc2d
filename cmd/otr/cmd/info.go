package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/pcb"
)

var infoCmd = &cobra.Command{
	Use:   "info <board_file>",
	Short: "Show what a board contains",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	board, err := pcb.NewParser(pcb.WithLogger(newLogger(cmd))).ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("error parsing board: %w", err)
	}

	out := cmd.OutOrStdout()
	s := board.GetStats()
	fmt.Fprintf(out, "Board: %s\n", args[0])
	fmt.Fprintf(out, "  Version:       %d\n", board.Version)
	fmt.Fprintf(out, "  Generator:     %s\n", board.Generator)
	fmt.Fprintf(out, "  Copper layers: %d\n", s.CopperLayers)
	fmt.Fprintf(out, "  Nets:          %d\n", s.Nets)
	fmt.Fprintf(out, "  Footprints:    %d (%d pads, %d net ties)\n", s.Footprints, s.Pads, s.NetTies)
	fmt.Fprintf(out, "  Tracks:        %d (%d arcs)\n", s.Tracks, s.Arcs)
	fmt.Fprintf(out, "  Vias:          %d\n", s.Vias)
	fmt.Fprintf(out, "  Zones:         %d (%d rule areas)\n", s.Zones, s.RuleAreas)
	fmt.Fprintf(out, "  Edge shapes:   %d\n", s.EdgeShapes)

	bbox := board.GetBoundingBox()
	if bbox.Width() > 0 && bbox.Height() > 0 {
		fmt.Fprintf(out, "  Board size:    %.2f x %.2f mm\n", geom.ToMM(bbox.Width()), geom.ToMM(bbox.Height()))
		c := bbox.Centre()
		fmt.Fprintf(out, "  Board center:  (%.2f, %.2f) mm\n", geom.ToMM(c.X), geom.ToMM(c.Y))
	}
	return nil
}
