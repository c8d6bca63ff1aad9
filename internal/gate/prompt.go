package gate

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/hookgate/internal/capability"
	"github.com/ppiankov/hookgate/internal/engine"
	"github.com/ppiankov/hookgate/internal/model"
	"github.com/ppiankov/hookgate/internal/rules"
)

// Mode decides whether a capability match blocks or only advises.
// It is fixed per deployment.
type Mode string

const (
	ModeEnforcing Mode = "enforcing"
	ModeAdvisory  Mode = "advisory"
)

// ParseMode validates a mode name. Empty means enforcing.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeEnforcing:
		return ModeEnforcing, nil
	case ModeAdvisory:
		return ModeAdvisory, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want enforcing or advisory)", s)
	}
}

// Severity is the rule tier a capability match produces in this mode.
func (m Mode) Severity() model.Severity {
	if m == ModeAdvisory {
		return model.SevWarn
	}
	return model.SevBlock
}

// DefaultPrefixes mark direct invocations: slash commands and @agent addressing.
var DefaultPrefixes = []string{"/", "@"}

// PromptConfig holds the deployment-level prompt gate settings.
type PromptConfig struct {
	Mode     Mode
	Force    bool
	Prefixes []string
	Language Language
}

// PromptGate forces a capability self-declaration before implementation work.
type PromptGate struct {
	caps     *capability.Catalog
	catalog  *rules.Catalog
	mode     Mode
	force    bool
	prefixes []string
	msgs     messages
	logger   *slog.Logger
}

// NewPromptGate projects caps into a keyword catalog for cfg.Mode.
func NewPromptGate(caps *capability.Catalog, cfg PromptConfig, logger *slog.Logger) (*PromptGate, error) {
	if cfg.Mode == "" {
		cfg.Mode = ModeEnforcing
	}
	if cfg.Prefixes == nil {
		cfg.Prefixes = DefaultPrefixes
	}
	if logger == nil {
		logger = slog.Default()
	}

	cat, err := caps.Rules(cfg.Mode.Severity())
	if err != nil {
		return nil, fmt.Errorf("build capability rules: %w", err)
	}

	return &PromptGate{
		caps:     caps,
		catalog:  cat,
		mode:     cfg.Mode,
		force:    cfg.Force,
		prefixes: cfg.Prefixes,
		msgs:     messagesFor(cfg.Language),
		logger:   logger,
	}, nil
}

// Mode returns the configured mode.
func (g *PromptGate) Mode() Mode {
	return g.mode
}

// Capabilities returns the capability catalog.
func (g *PromptGate) Capabilities() *capability.Catalog {
	return g.caps
}

// WithMode returns a copy of g that runs in mode m.
func (g *PromptGate) WithMode(m Mode) (*PromptGate, error) {
	if m == g.mode {
		return g, nil
	}
	cat, err := g.caps.Rules(m.Severity())
	if err != nil {
		return nil, fmt.Errorf("build capability rules: %w", err)
	}
	cp := *g
	cp.catalog = cat
	cp.mode = m
	return &cp, nil
}

// IsDirectInvocation reports whether text starts with one of prefixes.
func IsDirectInvocation(text string, prefixes []string) bool {
	trimmed := strings.TrimSpace(text)
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

// HandlePayload decodes a prompt-submit payload and classifies it.
func (g *PromptGate) HandlePayload(payload []byte) Outcome {
	switch e := ParsePromptEvent(payload).(type) {
	case Prompt:
		return g.Handle(e.Text)
	case Unknown:
		g.logger.Warn("prompt-submit payload unparseable, allowing", "error", e.Err)
		return failOpen(KindUnknown, e.Err)
	default:
		return failOpen(KindUnknown, ErrUnparseablePayload)
	}
}

// Handle classifies a raw request text.
func (g *PromptGate) Handle(text string) Outcome {
	if IsDirectInvocation(text, g.prefixes) {
		g.logger.Debug("direct invocation, skipping capability evaluation")
		return passThrough(KindPrompt)
	}

	v, err := engine.Evaluate(text, g.catalog)
	if err != nil {
		g.logger.Warn("request not classifiable, allowing", "error", err)
		return failOpen(KindPrompt, err)
	}
	matches, err := engine.MatchAll(text, g.catalog)
	if err != nil {
		g.logger.Warn("request not classifiable, allowing", "error", err)
		return failOpen(KindPrompt, err)
	}
	matched := make([]string, 0, len(matches))
	for _, m := range matches {
		matched = append(matched, m.Rule.Name)
	}

	if v.Decision == model.Allow && (!g.force || g.caps.Len() == 0) {
		return Outcome{
			State:     Allowed,
			Kind:      KindPrompt,
			Evaluated: true,
			Verdict:   v,
			Response:  Response{Decision: model.Allow},
		}
	}

	if v.Decision == model.Allow {
		v = engine.Verdict{Decision: g.mode.Severity().Decision(), Reason: "capability evaluation forced"}
	}

	out := Outcome{
		State:     stateFor(v.Decision),
		Kind:      KindPrompt,
		Evaluated: true,
		Verdict:   v,
		Matched:   matched,
		Response:  Response{Decision: v.Decision},
	}
	if g.mode == ModeAdvisory {
		out.Response.Reason = g.msgs.advise(g.caps.Names(), matched)
	} else {
		out.Response.Reason = g.msgs.instruction(g.caps.Capabilities(), matched)
	}
	g.logger.Info("capability declaration requested", "mode", string(g.mode), "matched", matched, "forced", len(matched) == 0)
	return out
}
