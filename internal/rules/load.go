package rules

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/hookgate/internal/model"
)

// RuleSpec is the persisted form of one pattern rule.
type RuleSpec struct {
	Name       string `yaml:"name"`
	Label      string `yaml:"label"`
	Pattern    string `yaml:"pattern"`
	IgnoreCase bool   `yaml:"ignore_case"`
}

// File is the persisted catalog layout. Tiers are separate lists, so a file
// cannot place a warn rule ahead of a block rule.
type File struct {
	IncludeDefaults bool       `yaml:"include_defaults"`
	Block           []RuleSpec `yaml:"block"`
	Warn            []RuleSpec `yaml:"warn"`
}

// PatternError reports a persisted rule that failed to compile.
type PatternError struct {
	Tier    model.Severity
	Index   int
	Name    string
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("%s rule %d (%s): invalid pattern %q: %v", e.Tier, e.Index, e.Name, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Load reads a catalog from a YAML file. An empty path or a missing file
// yields the built-in destructive-command catalog.
func Load(path string, protected ...string) (*Catalog, error) {
	if path == "" {
		return Destructive(protected...), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Destructive(protected...), nil
		}
		return nil, fmt.Errorf("read rule catalog: %w", err)
	}

	return Parse(data, protected...)
}

// Parse builds a catalog from YAML bytes.
func Parse(data []byte, protected ...string) (*Catalog, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rule catalog: %w", err)
	}

	block, err := compileTier(model.SevBlock, f.Block)
	if err != nil {
		return nil, err
	}
	warn, err := compileTier(model.SevWarn, f.Warn)
	if err != nil {
		return nil, err
	}

	if f.IncludeDefaults {
		block = append(append([]Rule{}, DefaultBlock...), block...)
		warn = append(append([]Rule{}, DefaultWarn...), warn...)
	}

	c, err := NewCatalog(assemble(block, warn, protected)...)
	if err != nil {
		return nil, fmt.Errorf("build rule catalog: %w", err)
	}
	return c, nil
}

func compileTier(sev model.Severity, specs []RuleSpec) ([]Rule, error) {
	out := make([]Rule, 0, len(specs))
	for i, s := range specs {
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", sev, i+1)
		}
		p, err := CompilePattern(s.Pattern, s.IgnoreCase)
		if err != nil {
			return nil, &PatternError{Tier: sev, Index: i + 1, Name: name, Pattern: s.Pattern, Err: err}
		}
		out = append(out, Rule{
			Name:     name,
			Severity: sev,
			Label:    s.Label,
			Detector: p,
		})
	}
	return out, nil
}
