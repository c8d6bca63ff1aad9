package mcp

import (
	"context"
	"errors"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/hookgate/internal/capability"
	"github.com/ppiankov/hookgate/internal/gate"
)

// --- Input/Output types ---

// CheckCommandInput defines parameters for the hookgate_check_command tool.
type CheckCommandInput struct {
	Command string `json:"command" jsonschema:"shell command to classify"`
	Tool    string `json:"tool,omitempty" jsonschema:"tool name the command is sent with (default Bash)"`
}

// CheckCommandOutput contains the command gate decision.
type CheckCommandOutput struct {
	Decision  string `json:"decision"`
	State     string `json:"state"`
	Evaluated bool   `json:"evaluated"`
	Rule      string `json:"rule,omitempty"`
	Label     string `json:"label,omitempty"`
	Excerpt   string `json:"excerpt,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// CheckPromptInput defines parameters for the hookgate_check_prompt tool.
type CheckPromptInput struct {
	Prompt string `json:"prompt" jsonschema:"raw user request text"`
}

// CheckPromptOutput contains the prompt gate decision.
type CheckPromptOutput struct {
	Decision string   `json:"decision"`
	State    string   `json:"state"`
	Mode     string   `json:"mode"`
	Bypassed bool     `json:"bypassed,omitempty"`
	Matched  []string `json:"matched,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// CapabilitiesInput is empty; no parameters needed.
type CapabilitiesInput struct{}

// CapabilitiesOutput lists both catalogs.
type CapabilitiesOutput struct {
	Mode         string                  `json:"mode"`
	Capabilities []capability.Capability `json:"capabilities"`
	Rules        []RuleItem              `json:"rules"`
}

// RuleItem describes one command rule.
type RuleItem struct {
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Label    string `json:"label"`
}

// --- Handlers ---

func (s *Server) handleCheckCommand(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckCommandInput) (*mcpsdk.CallToolResult, CheckCommandOutput, error) {
	if input.Command == "" {
		return nil, CheckCommandOutput{}, errors.New("command is required")
	}
	tool := input.Tool
	if tool == "" {
		tool = gate.DefaultShellTools[0]
	}

	out := s.Gates().Command.Handle(gate.ToolPayload(tool, input.Command, ""))
	if out.Err != nil {
		s.logger.Debug("check degraded to allow", "error", out.Err)
	}

	return nil, CheckCommandOutput{
		Decision:  string(out.Response.Decision),
		State:     out.State.String(),
		Evaluated: out.Evaluated,
		Rule:      out.Verdict.RuleName(),
		Label:     out.Verdict.Label(),
		Excerpt:   out.Verdict.Excerpt,
		Reason:    out.Response.Reason,
	}, nil
}

func (s *Server) handleCheckPrompt(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckPromptInput) (*mcpsdk.CallToolResult, CheckPromptOutput, error) {
	g := s.Gates().Prompt
	out := g.Handle(input.Prompt)

	return nil, CheckPromptOutput{
		Decision: string(out.Response.Decision),
		State:    out.State.String(),
		Mode:     string(g.Mode()),
		Bypassed: !out.Evaluated && out.Err == nil,
		Matched:  out.Matched,
		Reason:   out.Response.Reason,
	}, nil
}

func (s *Server) handleCapabilities(ctx context.Context, req *mcpsdk.CallToolRequest, input CapabilitiesInput) (*mcpsdk.CallToolResult, CapabilitiesOutput, error) {
	set := s.Gates()

	rs := set.Command.Catalog().Rules()
	items := make([]RuleItem, 0, len(rs))
	for _, r := range rs {
		items = append(items, RuleItem{
			Name:     r.Name,
			Severity: string(r.Severity),
			Label:    r.Label,
		})
	}

	return nil, CapabilitiesOutput{
		Mode:         string(set.Prompt.Mode()),
		Capabilities: set.Prompt.Capabilities().Capabilities(),
		Rules:        items,
	}, nil
}
