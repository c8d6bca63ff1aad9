package scenario

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/hookgate/internal/gate"
	"github.com/ppiankov/hookgate/internal/model"
)

// DefaultTool is the tool name used for command cases that do not set one.
const DefaultTool = "Bash"

// Validate rejects cases that are not runnable.
func (s *Scenario) Validate() error {
	if s.Mode != "" {
		if _, err := gate.ParseMode(s.Mode); err != nil {
			return err
		}
	}
	for i, c := range s.Cases {
		hasCommand := c.Command != "" || c.Tool != ""
		if hasCommand == (c.Prompt != "") {
			return fmt.Errorf("case %d: set exactly one of command/tool or prompt", i+1)
		}
		switch model.Decision(strings.ToLower(c.Expect)) {
		case model.Allow, model.Warn, model.Block:
		default:
			return fmt.Errorf("case %d: expect must be allow, warn or block, got %q", i+1, c.Expect)
		}
	}
	return nil
}

// Run evaluates every case through the gates in set. Cases are independent.
// An invalid scenario mode is an error; no case runs against the deployment
// mode in its place.
func Run(s *Scenario, set *gate.Set) (*RunResult, error) {
	prompt := set.Prompt
	if s.Mode != "" {
		mode, err := gate.ParseMode(s.Mode)
		if err != nil {
			return nil, err
		}
		if prompt, err = prompt.WithMode(mode); err != nil {
			return nil, fmt.Errorf("apply mode %s: %w", mode, err)
		}
	}

	result := &RunResult{
		Name:  s.Name,
		Total: len(s.Cases),
	}

	for i, c := range s.Cases {
		var (
			out gate.Outcome
			cr  = CaseResult{Index: i + 1, Expected: strings.ToLower(c.Expect)}
		)

		if c.Prompt != "" {
			cr.Gate = "prompt"
			cr.Input = c.Prompt
			out = prompt.Handle(c.Prompt)
		} else {
			tool := c.Tool
			if tool == "" {
				tool = DefaultTool
			}
			cr.Gate = "command"
			cr.Tool = tool
			cr.Input = firstNonEmpty(c.Command, c.Path)
			out = set.Command.Handle(gate.ToolPayload(tool, c.Command, c.Path))
		}

		cr.Actual = string(out.Response.Decision)
		cr.Rule = out.Verdict.RuleName()
		cr.Reason = out.Verdict.Reason

		cr.Passed = cr.Actual == cr.Expected && (c.Rule == "" || c.Rule == cr.Rule)
		if cr.Passed {
			result.Passed++
		} else {
			result.Failed++
		}

		result.Cases = append(result.Cases, cr)
	}

	return result, nil
}

// LoadAndRun loads a scenario YAML file and runs it against set.
func LoadAndRun(path string, set *gate.Set) (*RunResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}

	result, err := Run(&s, set)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	result.File = path

	return result, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
