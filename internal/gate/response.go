package gate

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/hookgate/internal/model"
)

// Response is the decision payload handed back to the host.
type Response struct {
	Decision model.Decision `json:"decision"`
	Reason   string         `json:"reason,omitempty"`
}

// Hook names the lifecycle event a response answers.
type Hook string

const (
	HookPreToolUse       Hook = "PreToolUse"
	HookUserPromptSubmit Hook = "UserPromptSubmit"
)

// Format selects the response wire shape.
type Format string

const (
	// FormatDecision writes {"decision": ..., "reason": ...}.
	FormatDecision Format = "decision"
	// FormatClaude writes the host's hookSpecificOutput envelope.
	FormatClaude Format = "claude"
)

// ParseFormat validates a format name. Empty means FormatDecision.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatDecision:
		return FormatDecision, nil
	case FormatClaude:
		return FormatClaude, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want decision or claude)", s)
	}
}

type hostOutput struct {
	HookSpecificOutput *hookSpecificOutput `json:"hookSpecificOutput,omitempty"`
}

type hookSpecificOutput struct {
	HookEventName            string `json:"hookEventName"`
	PermissionDecision       string `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string `json:"permissionDecisionReason,omitempty"`
	AdditionalContext        string `json:"additionalContext,omitempty"`
}

// Encode writes r to w as one JSON line.
func Encode(w io.Writer, hook Hook, format Format, r Response) error {
	var v any = r
	if format == FormatClaude {
		v = hostEnvelope(hook, r)
	}
	return json.NewEncoder(w).Encode(v)
}

// hostEnvelope maps a response onto the host protocol. Allow emits an empty
// object so the host's own permission flow still applies.
func hostEnvelope(hook Hook, r Response) hostOutput {
	if r.Decision == model.Allow {
		return hostOutput{}
	}

	out := &hookSpecificOutput{HookEventName: string(hook)}
	switch hook {
	case HookPreToolUse:
		out.PermissionDecision = "ask"
		if r.Decision == model.Block {
			out.PermissionDecision = "deny"
		}
		out.PermissionDecisionReason = r.Reason
	default:
		out.AdditionalContext = r.Reason
	}
	return hostOutput{HookSpecificOutput: out}
}
