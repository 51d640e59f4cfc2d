package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "otr",
	Short: "OpenTraceRoute - PCB clearance checking",
	Long: `OpenTraceRoute (otr) loads KiCad boards into a collision world and checks
copper, hole and board edge clearances against a set of design rules.

Examples:
  otr check board.kicad_pcb                       # Check with default rules
  otr check board.kicad_pcb --rules rules.yaml    # Check with a rules file
  otr info board.kicad_pcb                        # Show board contents
  otr rules rules.yaml --dru board.kicad_dru      # Show resolved rules`,
	Version:       "0.3.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// newLogger writes text logs to the command's error stream.
func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
