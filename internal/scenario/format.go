package scenario

import (
	"encoding/json"
	"fmt"
	"strings"
)

const maxInputWidth = 40

// Summary totals a batch of scenario runs.
type Summary struct {
	Files           int `json:"files"`
	Cases           int `json:"cases"`
	Passed          int `json:"passed"`
	Failed          int `json:"failed"`
	FailedScenarios int `json:"failed_scenarios"`
}

// Report is the JSON document written by FormatJSON.
type Report struct {
	Summary   Summary      `json:"summary"`
	Scenarios []*RunResult `json:"scenarios"`
}

// Summarize totals results.
func Summarize(results []*RunResult) Summary {
	s := Summary{Files: len(results)}
	for _, r := range results {
		s.Cases += r.Total
		s.Passed += r.Passed
		s.Failed += r.Failed
		if r.Failed > 0 {
			s.FailedScenarios++
		}
	}
	return s
}

// FormatText renders results one scenario per line, with a detail line for
// every failing case.
func FormatText(results []*RunResult) string {
	var b strings.Builder
	sum := Summarize(results)

	fmt.Fprintf(&b, "hookgate check: %d scenario %s\n\n", sum.Files, plural(sum.Files, "file", "files"))

	for _, r := range results {
		status := "PASS"
		if r.Failed > 0 {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "%s  %s (%d/%d)\n", status, r.Name, r.Passed, r.Total)
		for _, c := range r.Cases {
			if !c.Passed {
				b.WriteString(failureLine(c))
			}
		}
	}

	fmt.Fprintf(&b, "\ncases: %d/%d passed", sum.Passed, sum.Cases)
	if sum.FailedScenarios > 0 {
		fmt.Fprintf(&b, ", scenarios: %d/%d failed", sum.FailedScenarios, sum.Files)
	}
	b.WriteString("\n")
	return b.String()
}

func failureLine(c CaseResult) string {
	got := c.Actual
	if c.Rule != "" {
		got += " (" + c.Rule + ")"
	}
	return fmt.Sprintf("      #%-3d %-8s %-*s want %s, got %s\n",
		c.Index, c.Gate, maxInputWidth, clip(c.Input, maxInputWidth), c.Expected, got)
}

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// FormatJSON renders results with their summary.
func FormatJSON(results []*RunResult) (string, error) {
	if results == nil {
		results = []*RunResult{}
	}
	data, err := json.MarshalIndent(Report{Summary: Summarize(results), Scenarios: results}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	return string(data), nil
}
