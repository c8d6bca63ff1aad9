package gate

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ppiankov/hookgate/internal/engine"
	"github.com/ppiankov/hookgate/internal/model"
	"github.com/ppiankov/hookgate/internal/rules"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCommandGate(t *testing.T) *CommandGate {
	t.Helper()
	return NewCommandGate(rules.Destructive("wot-design-uni"), nil, LangEnglish, quietLogger())
}

func bashPayload(cmd string) []byte {
	data, _ := json.Marshal(map[string]any{
		"tool_name":  "Bash",
		"tool_input": map[string]string{"command": cmd},
	})
	return data
}

func TestCommandGateScenarios(t *testing.T) {
	g := newCommandGate(t)

	tests := []struct {
		cmd   string
		state State
		want  model.Decision
		label string
	}{
		{"rm -rf /", Blocked, model.Block, "recursive deletion of root directory"},
		{"DROP TABLE users;", Blocked, model.Block, "DROP DATABASE/TABLE"},
		{"git reset --hard HEAD~1", Warned, model.Warn, "git reset --hard"},
		{"ls -la", Allowed, model.Allow, ""},
		{"pnpm remove wot-design-uni", Warned, model.Warn, "core dependency wot-design-uni"},
	}

	for _, tt := range tests {
		out := g.Handle(bashPayload(tt.cmd))
		if out.State != tt.state {
			t.Errorf("%q: expected state %s, got %s", tt.cmd, tt.state, out.State)
		}
		if out.Response.Decision != tt.want {
			t.Errorf("%q: expected decision %s, got %s", tt.cmd, tt.want, out.Response.Decision)
		}
		if !out.Evaluated {
			t.Errorf("%q: expected engine evaluation", tt.cmd)
		}
		if !strings.Contains(out.Verdict.Label(), tt.label) {
			t.Errorf("%q: expected label containing %q, got %q", tt.cmd, tt.label, out.Verdict.Label())
		}
	}
}

func TestCommandGateRefusalNamesLabelAndCommand(t *testing.T) {
	out := newCommandGate(t).Check("rm -rf /")

	reason := out.Response.Reason
	if !strings.Contains(reason, rules.RecursiveRootDelete.Label) {
		t.Errorf("expected label in refusal, got %q", reason)
	}
	if !strings.Contains(reason, "Command: rm -rf /") {
		t.Errorf("expected original command in refusal, got %q", reason)
	}
	if !strings.Contains(reason, "manually") {
		t.Errorf("expected manual-execution instruction, got %q", reason)
	}
}

func TestCommandGateWarningDoesNotHalt(t *testing.T) {
	out := newCommandGate(t).Check("git clean -fd")
	if out.Response.Decision.Halts() {
		t.Error("expected warn not to halt the caller")
	}
	if !strings.Contains(out.Response.Reason, "confirm") {
		t.Errorf("expected confirmation request, got %q", out.Response.Reason)
	}
}

func TestCommandGatePassThroughSkipsEngine(t *testing.T) {
	calls := 0
	cat := rules.MustCatalog(rules.Rule{
		Name:     "count",
		Severity: model.SevBlock,
		Detector: rules.DetectorFunc(func(string) (string, bool) {
			calls++
			return "", false
		}),
	})
	g := NewCommandGate(cat, nil, LangEnglish, quietLogger())

	for _, p := range []string{
		`{"tool_name":"Write","tool_input":{"file_path":"rm -rf /"}}`,
		`{"tool_name":"Read","tool_input":{"file_path":"/"}}`,
		`{"actionKind":"web_fetch","command":"rm -rf /"}`,
	} {
		out := g.Handle([]byte(p))
		if out.State != Allowed || out.Evaluated {
			t.Errorf("%s: expected unevaluated allow, got %s evaluated=%v", p, out.State, out.Evaluated)
		}
	}
	if calls != 0 {
		t.Fatalf("expected engine not invoked for non-shell kinds, got %d calls", calls)
	}

	g.Handle(bashPayload("ls"))
	if calls != 1 {
		t.Errorf("expected one engine call for shell command, got %d", calls)
	}
}

func TestCommandGateFailOpen(t *testing.T) {
	g := newCommandGate(t)

	for _, p := range []string{"", "not json", `{"tool":"Bash","command":{"x":1}}`, `{"command":"rm -rf /"}`} {
		out := g.Handle([]byte(p))
		if out.State != Allowed || out.Response.Decision != model.Allow {
			t.Errorf("%q: expected fail-open allow, got %s", p, out.State)
		}
		if !errors.Is(out.Err, ErrUnparseablePayload) {
			t.Errorf("%q: expected ErrUnparseablePayload, got %v", p, out.Err)
		}
	}
}

func TestCommandGateInvalidCandidateFailsOpen(t *testing.T) {
	out := newCommandGate(t).Check(string([]byte{'r', 'm', ' ', 0xff}))
	if out.State != Allowed {
		t.Errorf("expected allow, got %s", out.State)
	}
	if !errors.Is(out.Err, engine.ErrInvalidCandidate) {
		t.Errorf("expected ErrInvalidCandidate, got %v", out.Err)
	}
}

func TestCommandGateBlocksThroughNUL(t *testing.T) {
	g := newCommandGate(t)

	for _, payload := range []string{
		`{"tool_name":"Bash","tool_input":{"command":"rm -rf /\u0000"}}`,
		`{"tool_name":"Bash","tool_input":{"command":"DROP TABLE users;\u0000"}}`,
	} {
		out := g.Handle([]byte(payload))
		if out.State != Blocked {
			t.Errorf("%s: expected block, got %s (err %v)", payload, out.State, out.Err)
		}
		if out.Err != nil {
			t.Errorf("%s: unexpected error %v", payload, out.Err)
		}
	}
}

func TestCommandGateBlocksRecursiveDeleteSpellings(t *testing.T) {
	g := newCommandGate(t)

	for _, cmd := range []string{`rm -f -r /`, `rm -rf \"/\"`, `rm -rf '/'`, `rm -f -r .`} {
		out := g.Handle([]byte(`{"tool_name":"Bash","tool_input":{"command":"` + cmd + `"}}`))
		if out.State != Blocked {
			t.Errorf("%s: expected block, got %s", cmd, out.State)
		}
	}
}

func TestCommandGateCustomShellTools(t *testing.T) {
	g := NewCommandGate(rules.Destructive(), NewToolSet("run_terminal_cmd"), LangEnglish, quietLogger())

	if out := g.Handle([]byte(`{"tool":"run_terminal_cmd","command":"rm -rf /"}`)); out.State != Blocked {
		t.Errorf("expected custom shell tool to be evaluated, got %s", out.State)
	}
	if out := g.Handle([]byte(`{"tool":"Bash","command":"rm -rf /"}`)); out.State != Allowed {
		t.Errorf("expected Bash to pass through when not configured, got %s", out.State)
	}
}

func TestCommandGateChineseMessages(t *testing.T) {
	g := NewCommandGate(rules.Destructive(), nil, LangChinese, quietLogger())
	out := g.Check("rm -rf /")
	if !strings.Contains(out.Response.Reason, "检测到危险命令") {
		t.Errorf("expected zh refusal, got %q", out.Response.Reason)
	}
}

func TestEncodeDecisionFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, HookPreToolUse, FormatDecision, Response{Decision: model.Block, Reason: "r"}); err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["decision"] != "block" || got["reason"] != "r" {
		t.Errorf("unexpected payload %v", got)
	}

	buf.Reset()
	if err := Encode(&buf, HookPreToolUse, FormatDecision, Response{Decision: model.Allow}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != `{"decision":"allow"}` {
		t.Errorf("expected bare allow, got %s", buf.String())
	}
}

func TestEncodeClaudeFormat(t *testing.T) {
	tests := []struct {
		hook     Hook
		resp     Response
		contains string
	}{
		{HookPreToolUse, Response{Decision: model.Block, Reason: "no"}, `"permissionDecision":"deny"`},
		{HookPreToolUse, Response{Decision: model.Warn, Reason: "hm"}, `"permissionDecision":"ask"`},
		{HookUserPromptSubmit, Response{Decision: model.Block, Reason: "declare"}, `"additionalContext":"declare"`},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := Encode(&buf, tt.hook, FormatClaude, tt.resp); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), tt.contains) {
			t.Errorf("expected %s in %s", tt.contains, buf.String())
		}
		if !strings.Contains(buf.String(), `"hookEventName":"`+string(tt.hook)+`"`) {
			t.Errorf("expected hook event name in %s", buf.String())
		}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, HookPreToolUse, FormatClaude, Response{Decision: model.Allow}); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != `{}` {
		t.Errorf("expected empty envelope for allow, got %s", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatDecision {
		t.Errorf("expected default decision format, got %q, %v", f, err)
	}
	if f, err := ParseFormat("CLAUDE"); err != nil || f != FormatClaude {
		t.Errorf("expected claude format, got %q, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestStateNames(t *testing.T) {
	if Blocked.String() != "blocked" || State(99).String() != "invalid" {
		t.Errorf("unexpected state names %s %s", Blocked, State(99))
	}
	if Idle.Terminal() || Evaluating.Terminal() || !Warned.Terminal() {
		t.Error("unexpected terminal classification")
	}
}
