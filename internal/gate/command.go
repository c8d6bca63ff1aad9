package gate

import (
	"log/slog"

	"github.com/ppiankov/hookgate/internal/engine"
	"github.com/ppiankov/hookgate/internal/model"
	"github.com/ppiankov/hookgate/internal/rules"
)

// CommandGate classifies shell commands before the host runs them.
type CommandGate struct {
	catalog *rules.Catalog
	shell   ToolSet
	msgs    messages
	logger  *slog.Logger
}

// NewCommandGate binds a destructive-command catalog to the pre-tool-use event.
// An empty shell set falls back to DefaultShellTools.
func NewCommandGate(cat *rules.Catalog, shell ToolSet, lang Language, logger *slog.Logger) *CommandGate {
	if len(shell) == 0 {
		shell = NewToolSet(DefaultShellTools...)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CommandGate{
		catalog: cat,
		shell:   shell,
		msgs:    messagesFor(lang),
		logger:  logger,
	}
}

// Catalog returns the rule catalog the gate evaluates against.
func (g *CommandGate) Catalog() *rules.Catalog {
	return g.catalog
}

// Handle decodes a pre-tool-use payload and classifies it.
// Undecodable payloads fail open.
func (g *CommandGate) Handle(payload []byte) Outcome {
	return g.HandleEvent(ParseToolEvent(payload, g.shell))
}

// HandleEvent classifies an already-decoded event. Only shell commands reach
// the engine; every other kind passes through.
func (g *CommandGate) HandleEvent(ev Event) Outcome {
	switch e := ev.(type) {
	case ShellCommand:
		return g.Check(e.Command)
	case FileWrite, OtherTool, Prompt:
		return passThrough(ev.Kind())
	case Unknown:
		g.logger.Warn("pre-tool-use payload unparseable, allowing", "error", e.Err)
		return failOpen(KindUnknown, e.Err)
	default:
		g.logger.Warn("unrecognized event variant, allowing")
		return failOpen(KindUnknown, ErrUnparseablePayload)
	}
}

// Check classifies a bare command string.
func (g *CommandGate) Check(command string) Outcome {
	v, err := engine.Evaluate(command, g.catalog)
	if err != nil {
		g.logger.Warn("command not classifiable, allowing", "error", err)
		return failOpen(KindShellCommand, err)
	}

	out := Outcome{
		State:     stateFor(v.Decision),
		Kind:      KindShellCommand,
		Evaluated: true,
		Verdict:   v,
		Response:  Response{Decision: v.Decision},
	}
	switch v.Decision {
	case model.Block:
		out.Response.Reason = g.msgs.refuse(v.Label(), command)
		g.logger.Info("command blocked", "rule", v.RuleName(), "excerpt", v.Excerpt)
	case model.Warn:
		out.Response.Reason = g.msgs.warn(v.Label(), command)
		g.logger.Info("command warned", "rule", v.RuleName(), "excerpt", v.Excerpt)
	default:
		g.logger.Debug("command allowed")
	}
	return out
}
