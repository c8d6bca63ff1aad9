package gate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnparseablePayload marks an event the gate could not decode.
var ErrUnparseablePayload = errors.New("unparseable payload")

// ActionKind discriminates event variants.
type ActionKind string

const (
	KindShellCommand ActionKind = "shell_command"
	KindFileWrite    ActionKind = "file_write"
	KindOtherTool    ActionKind = "other_tool"
	KindPrompt       ActionKind = "prompt"
	KindUnknown      ActionKind = "unknown"
)

// Event is one decoded lifecycle payload. The concrete types below are the
// complete set of variants.
type Event interface {
	Kind() ActionKind
}

// ShellCommand is a request to execute a shell command.
type ShellCommand struct {
	Tool    string
	Command string
}

// FileWrite is a file creation or edit.
type FileWrite struct {
	Tool string
	Path string
}

// OtherTool is any tool invocation the gates do not inspect.
type OtherTool struct {
	Tool string
}

// Prompt is a raw user request.
type Prompt struct {
	Text string
}

// Unknown is a payload that could not be decoded.
type Unknown struct {
	Err error
}

func (ShellCommand) Kind() ActionKind { return KindShellCommand }
func (FileWrite) Kind() ActionKind    { return KindFileWrite }
func (OtherTool) Kind() ActionKind    { return KindOtherTool }
func (Prompt) Kind() ActionKind       { return KindPrompt }
func (Unknown) Kind() ActionKind      { return KindUnknown }

// ToolSet is a case-insensitive set of tool names.
type ToolSet map[string]bool

// NewToolSet builds a ToolSet from names.
func NewToolSet(names ...string) ToolSet {
	s := make(ToolSet, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			s[n] = true
		}
	}
	return s
}

// Has reports whether name is in the set.
func (s ToolSet) Has(name string) bool {
	return s[strings.ToLower(strings.TrimSpace(name))]
}

// DefaultShellTools are the action kinds treated as shell execution.
var DefaultShellTools = []string{"Bash", "shell", "execute_shell_command"}

var fileWriteTools = NewToolSet("Write", "Edit", "MultiEdit", "NotebookEdit", "file_write")

// toolPayload accepts the three payload shapes seen in practice:
// {actionKind, command}, {tool, command} and {tool_name, tool_input}.
type toolPayload struct {
	ActionKind string          `json:"actionKind"`
	ToolName   string          `json:"tool_name"`
	Tool       string          `json:"tool"`
	Command    json.RawMessage `json:"command"`
	ToolInput  json.RawMessage `json:"tool_input"`
}

type toolInput struct {
	Command  json.RawMessage `json:"command"`
	FilePath string          `json:"file_path"`
	Path     string          `json:"path"`
}

// ParseToolEvent decodes a pre-tool-use payload.
func ParseToolEvent(data []byte, shell ToolSet) Event {
	var p toolPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return Unknown{Err: fmt.Errorf("%w: %v", ErrUnparseablePayload, err)}
	}

	tool := firstNonEmpty(p.ActionKind, p.ToolName, p.Tool)
	if tool == "" {
		return Unknown{Err: fmt.Errorf("%w: no action kind", ErrUnparseablePayload)}
	}

	var in toolInput
	if isObject(p.ToolInput) {
		if err := json.Unmarshal(p.ToolInput, &in); err != nil {
			return Unknown{Err: fmt.Errorf("%w: tool_input: %v", ErrUnparseablePayload, err)}
		}
	}

	switch {
	case shell.Has(tool):
		raw := p.Command
		if len(raw) == 0 {
			raw = in.Command
		}
		cmd, err := optionalString(raw)
		if err != nil {
			return Unknown{Err: fmt.Errorf("%w: command: %v", ErrUnparseablePayload, err)}
		}
		return ShellCommand{Tool: tool, Command: cmd}
	case fileWriteTools.Has(tool):
		return FileWrite{Tool: tool, Path: firstNonEmpty(in.FilePath, in.Path)}
	default:
		return OtherTool{Tool: tool}
	}
}

// ToolPayload encodes a pre-tool-use payload in the host's
// {tool_name, tool_input} shape.
func ToolPayload(tool, command, path string) []byte {
	input := map[string]string{}
	if command != "" {
		input["command"] = command
	}
	if path != "" {
		input["file_path"] = path
	}
	data, _ := json.Marshal(map[string]any{
		"tool_name":  tool,
		"tool_input": input,
	})
	return data
}

type promptPayload struct {
	RequestText json.RawMessage `json:"requestText"`
	Prompt      json.RawMessage `json:"prompt"`
	UserPrompt  json.RawMessage `json:"userPrompt"`
}

// ParsePromptEvent decodes a prompt-submit payload.
func ParsePromptEvent(data []byte) Event {
	var p promptPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return Unknown{Err: fmt.Errorf("%w: %v", ErrUnparseablePayload, err)}
	}

	for _, raw := range []json.RawMessage{p.RequestText, p.Prompt, p.UserPrompt} {
		if len(raw) == 0 {
			continue
		}
		text, err := optionalString(raw)
		if err != nil {
			return Unknown{Err: fmt.Errorf("%w: request text: %v", ErrUnparseablePayload, err)}
		}
		return Prompt{Text: text}
	}
	return Prompt{}
}

func optionalString(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("not a string")
	}
	return s, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
