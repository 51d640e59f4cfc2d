package cmd

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/drc"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/router"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/rules"
)

// ErrViolations is returned by check when the board breaks a rule.
var ErrViolations = errors.New("design rule violations found")

var (
	rulesFile  string
	druFile    string
	scopeName  string
	workers    int
	limit      int
	jsonOutput bool
	metricsOut string
)

var checkCmd = &cobra.Command{
	Use:   "check <board_file>",
	Short: "Check a board for clearance violations",
	Long: `Loads a KiCad board and reports every pair of items closer than the
design rules allow.

Rules come from --rules (YAML) when given, otherwise from built-in defaults.
A KiCad custom rules file named by --dru, or by the "dru" key of the rules
file, is applied on top. The command fails when violations are found.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&rulesFile, "rules", "r", "", "YAML rules file")
	checkCmd.Flags().StringVar(&druFile, "dru", "", "KiCad custom rules file (.kicad_dru)")
	checkCmd.Flags().StringVar(&scopeName, "scope", "", "query scope: quick or all_rules (default from rules)")
	checkCmd.Flags().IntVarP(&workers, "workers", "j", 0, "concurrent queries (0 = number of CPUs)")
	checkCmd.Flags().IntVar(&limit, "limit", 0, "stop after this many violations (0 = no limit)")
	checkCmd.Flags().BoolVar(&jsonOutput, "json", false, "write the report as JSON")
	checkCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "write Prometheus metrics to this file")
}

// loadRules returns the rules config and the custom rules named by the
// flags or the config.
func loadRules(path, druPath string) (*rules.Config, *rules.DRU, error) {
	cfg := rules.DefaultConfig()
	if path != "" {
		var err error
		if cfg, err = rules.LoadConfig(path); err != nil {
			return nil, nil, err
		}
	}
	if druPath == "" {
		druPath = cfg.DRU
	}
	if druPath == "" {
		return cfg, nil, nil
	}
	dru, err := rules.ParseDRUFile(druPath)
	if err != nil {
		return nil, nil, err
	}
	return cfg, dru, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := newLogger(cmd)

	cfg, dru, err := loadRules(rulesFile, druFile)
	if err != nil {
		return err
	}

	opts := drc.Options{Workers: workers, Limit: limit, Logger: logger}
	if scopeName != "" {
		scope, ok := router.ParseQueryScope(scopeName)
		if !ok {
			return fmt.Errorf("unknown scope %q (want quick or all_rules)", scopeName)
		}
		opts.Scope = scope
	}

	board, err := pcb.NewParser(pcb.WithLogger(logger)).ParseFile(args[0])
	if err != nil {
		return fmt.Errorf("error parsing board: %w", err)
	}

	design, err := drc.Build(board, cfg, dru, logger)
	if err != nil {
		return err
	}

	var reg *prometheus.Registry
	if metricsOut != "" {
		reg = prometheus.NewRegistry()
		opts.Metrics = drc.NewMetrics(reg)
	}

	report, err := design.Check(cmd.Context(), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		err = report.WriteJSON(out)
	} else {
		err = report.WriteText(out)
	}
	if err != nil {
		return err
	}

	if reg != nil {
		if err := prometheus.WriteToTextfile(metricsOut, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	if len(report.Violations) > 0 {
		return fmt.Errorf("%w: %d", ErrViolations, len(report.Violations))
	}
	return nil
}
