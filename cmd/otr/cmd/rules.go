package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [rules_file]",
	Short: "Show the resolved design rules",
	Long: `Prints the rules a check would use: the defaults, or the YAML file given,
followed by the custom rules loaded from --dru.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.Flags().StringVar(&druFile, "dru", "", "KiCad custom rules file (.kicad_dru)")
}

func runRules(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	cfg, dru, err := loadRules(path, druFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scope:                  %s\n", cfg.Scope)
	fmt.Fprintf(out, "Clearance:              %.4f mm\n", cfg.Clearance)
	fmt.Fprintf(out, "Hole clearance:         %.4f mm\n", cfg.HoleClearance)
	fmt.Fprintf(out, "Hole to hole clearance: %.4f mm\n", cfg.HoleToHoleClearance)
	fmt.Fprintf(out, "Edge clearance:         %.4f mm\n", cfg.EdgeClearance)

	if len(cfg.NetClasses) > 0 {
		fmt.Fprintf(out, "\nNet classes:\n")
		for _, nc := range cfg.NetClasses {
			fmt.Fprintf(out, "  %-16s %.4f mm  %s\n", nc.Name, nc.Clearance, strings.Join(nc.Nets, ", "))
		}
	}

	all := cfg.Rules
	if dru != nil {
		all = append(all[:len(all):len(all)], dru.Rules...)
	}
	if len(all) > 0 {
		fmt.Fprintf(out, "\nRules (later rules win):\n")
		for _, r := range all {
			fmt.Fprintf(out, "  %s\n", r.Name)
			if r.Condition != "" {
				fmt.Fprintf(out, "    condition:    %s\n", r.Condition)
			}
			printOpt(out, "clearance", r.Clearance)
			printOpt(out, "hole", r.HoleClearance)
			printOpt(out, "hole to hole", r.HoleToHoleClearance)
		}
	}

	if dru != nil && len(dru.Skipped) > 0 {
		fmt.Fprintf(out, "\nSkipped:\n")
		for _, s := range dru.Skipped {
			fmt.Fprintf(out, "  %s\n", s)
		}
	}
	return nil
}

func printOpt(out io.Writer, name string, v *float64) {
	if v != nil {
		fmt.Fprintf(out, "    %-13s %.4f mm\n", name+":", *v)
	}
}
