package gate

import (
	"fmt"
	"log/slog"

	"github.com/ppiankov/hookgate/internal/capability"
	"github.com/ppiankov/hookgate/internal/rules"
)

// Options configures both gates. It is resolved once per process.
type Options struct {
	RulesPath         string
	ProtectedPackages []string
	ShellTools        []string

	Capabilities    []capability.Capability
	SkillsDir       string
	Mode            Mode
	ForceEvaluation bool
	Prefixes        []string

	Language Language
}

// Set holds the two gates built from one Options value.
type Set struct {
	Command *CommandGate
	Prompt  *PromptGate
}

// NewSet builds both catalogs and binds them to their gates. Only
// construction-time faults (an invalid persisted pattern, say) return an error;
// an unreadable skills directory degrades to the static capability list.
func NewSet(opts Options, logger *slog.Logger) (*Set, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cat, err := rules.Load(opts.RulesPath, opts.ProtectedPackages...)
	if err != nil {
		return nil, fmt.Errorf("load command rules: %w", err)
	}

	static := opts.Capabilities
	if static == nil {
		static = capability.Defaults()
	}
	caps := capability.Build(static, opts.SkillsDir, logger)

	prompt, err := NewPromptGate(caps, PromptConfig{
		Mode:     opts.Mode,
		Force:    opts.ForceEvaluation,
		Prefixes: opts.Prefixes,
		Language: opts.Language,
	}, logger)
	if err != nil {
		return nil, err
	}

	return &Set{
		Command: NewCommandGate(cat, NewToolSet(opts.ShellTools...), opts.Language, logger),
		Prompt:  prompt,
	}, nil
}
