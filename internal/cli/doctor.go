package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/hookgate/internal/capability"
	"github.com/ppiankov/hookgate/internal/rules"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, rule catalog and skills directory",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

type checkResult struct {
	label  string
	ok     bool
	detail string
	fix    string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	var checks []checkResult
	cfg := activeConfig

	// 1. Config file.
	if cfg.Path != "" {
		checks = append(checks, checkResult{label: "config", ok: true, detail: cfg.Path})
	} else {
		checks = append(checks, checkResult{
			label:  "config",
			ok:     true,
			detail: "none found, using defaults",
		})
	}

	// 2. Rule catalog.
	switch {
	case cfg.RulesPath == "":
		cat := rules.Destructive(cfg.ProtectedPackages...)
		block, warn := cat.Counts()
		checks = append(checks, checkResult{label: "rule catalog", ok: true, detail: fmt.Sprintf("built-in (%d block, %d warn)", block, warn)})
	default:
		cat, err := rules.Load(cfg.RulesPath, cfg.ProtectedPackages...)
		if err != nil {
			checks = append(checks, checkResult{label: "rule catalog", ok: false, detail: err.Error(), fix: "fix the pattern in " + cfg.RulesPath})
			break
		}
		detail := cfg.RulesPath
		if _, statErr := os.Stat(cfg.RulesPath); errors.Is(statErr, os.ErrNotExist) {
			detail += " missing, using built-in"
		}
		block, warn := cat.Counts()
		checks = append(checks, checkResult{label: "rule catalog", ok: true, detail: fmt.Sprintf("%s (%d block, %d warn)", detail, block, warn)})
	}

	// 3. Skills directory.
	if cfg.SkillsDir != "" {
		found, err := capability.Discover(cfg.SkillsDir)
		switch {
		case err != nil:
			checks = append(checks, checkResult{label: "skills directory", ok: false, detail: err.Error(), fix: "point skills_dir at a directory"})
		case found == nil:
			checks = append(checks, checkResult{label: "skills directory", ok: true, detail: cfg.SkillsDir + " not present"})
		default:
			checks = append(checks, checkResult{label: "skills directory", ok: true, detail: fmt.Sprintf("%s (%d found)", cfg.SkillsDir, len(found))})
		}
	}

	// 4. Assembled gates.
	set, err := buildGates()
	if err != nil {
		checks = append(checks, checkResult{label: "gates", ok: false, detail: err.Error()})
	} else {
		checks = append(checks, checkResult{
			label:  "gates",
			ok:     true,
			detail: fmt.Sprintf("mode %s, %d capabilities, output %s", set.Prompt.Mode(), set.Prompt.Capabilities().Len(), cfg.Output),
		})
	}

	w := cmd.OutOrStdout()
	hasFailures := false
	for _, c := range checks {
		mark := "\u2713"
		if !c.ok {
			mark = "\u2717"
			hasFailures = true
		}
		line := fmt.Sprintf("%s %-20s %s", mark, c.label+":", c.detail)
		if !c.ok && c.fix != "" {
			line += fmt.Sprintf("  ->  %s", c.fix)
		}
		fmt.Fprintln(w, line)
	}

	if hasFailures {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Some checks failed. Run the suggested fixes.")
		return fmt.Errorf("doctor found issues")
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "All checks passed.")
	return nil
}
