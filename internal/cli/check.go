package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ppiankov/hookgate/internal/scenario"
)

var (
	checkScenario string
	checkFormat   string
)

func init() {
	checkCmd.Flags().StringVar(&checkScenario, "scenario", "", "Glob pattern for scenario YAML files (required)")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
	_ = checkCmd.MarkFlagRequired("scenario")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Assert gate decisions from scenario files",
	Long: `Runs every case in the matching scenario files through the same gate
adapters the hooks use, so pass-through, bypass and fail-open behavior
are asserted as well as rule matches.

Exits 1 when any case fails. Intended for CI next to a custom rule catalog.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	if checkFormat != "text" && checkFormat != "json" {
		return fmt.Errorf("unknown format %q (want text or json)", checkFormat)
	}

	files, err := filepath.Glob(checkScenario)
	if err != nil {
		return fmt.Errorf("invalid glob pattern: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no scenario files match pattern: %s", checkScenario)
	}
	sort.Strings(files)

	set, err := buildGates()
	if err != nil {
		return err
	}

	results := make([]*scenario.RunResult, 0, len(files))
	for _, file := range files {
		r, err := scenario.LoadAndRun(file, set)
		if err != nil {
			return err
		}
		logger.Debug("scenario checked", "file", file, "passed", r.Passed, "failed", r.Failed)
		results = append(results, r)
	}

	w := cmd.OutOrStdout()
	if checkFormat == "json" {
		out, err := scenario.FormatJSON(results)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
	} else {
		fmt.Fprint(w, scenario.FormatText(results))
	}

	if scenario.Summarize(results).Failed > 0 {
		return errChecksFailed
	}
	return nil
}
