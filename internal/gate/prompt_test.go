package gate

import (
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/hookgate/internal/capability"
	"github.com/ppiankov/hookgate/internal/engine"
	"github.com/ppiankov/hookgate/internal/model"
)

func newPromptGate(t *testing.T, cfg PromptConfig) *PromptGate {
	t.Helper()
	g, err := NewPromptGate(capability.NewCatalog(capability.Defaults()...), cfg, quietLogger())
	if err != nil {
		t.Fatalf("NewPromptGate: %v", err)
	}
	return g
}

func TestPromptGateEnforcingBlocksWithInstruction(t *testing.T) {
	g := newPromptGate(t, PromptConfig{})

	out := g.Handle("Add a new REST API endpoint for user registration")
	if out.State != Blocked || out.Response.Decision != model.Block {
		t.Fatalf("expected blocked, got %s", out.State)
	}
	if !contains(out.Matched, "api-layer") {
		t.Errorf("expected api-layer among matches, got %v", out.Matched)
	}

	reason := out.Response.Reason
	for _, name := range g.Capabilities().Names() {
		if !strings.Contains(reason, "- "+name) {
			t.Errorf("expected instruction to enumerate %s", name)
		}
	}
	for _, step := range []string{"Step 1", "Step 2", "Step 3", "Skill()"} {
		if !strings.Contains(reason, step) {
			t.Errorf("expected %q in instruction", step)
		}
	}
}

func TestPromptGateAdvisoryWarns(t *testing.T) {
	g := newPromptGate(t, PromptConfig{Mode: ModeAdvisory})

	out := g.Handle("the login page is slow")
	if out.State != Warned || out.Response.Decision != model.Warn {
		t.Fatalf("expected warned, got %s", out.State)
	}
	if out.Response.Decision.Halts() {
		t.Error("advisory notices must not halt")
	}
	if !strings.Contains(out.Response.Reason, "ui-layer") || !strings.Contains(out.Response.Reason, "matched:") {
		t.Errorf("unexpected notice %q", out.Response.Reason)
	}
}

func TestPromptGateDirectInvocationBypasses(t *testing.T) {
	g := newPromptGate(t, PromptConfig{Force: true})

	for _, text := range []string{"/deploy", "  /deploy the api", "@reviewer check the database schema"} {
		out := g.Handle(text)
		if out.State != Allowed || out.Evaluated {
			t.Errorf("%q: expected unevaluated allow, got %s evaluated=%v", text, out.State, out.Evaluated)
		}
	}
}

func TestPromptGateUnclassifiableFailsOpen(t *testing.T) {
	out := newPromptGate(t, PromptConfig{Force: true}).Handle(string([]byte{'a', 'p', 'i', ' ', 0xff}))
	if out.State != Allowed || out.Evaluated {
		t.Errorf("expected fail-open allow, got %s evaluated=%v", out.State, out.Evaluated)
	}
	if !errors.Is(out.Err, engine.ErrInvalidCandidate) {
		t.Errorf("expected ErrInvalidCandidate, got %v", out.Err)
	}
}

func TestPromptGateMatchesThroughNUL(t *testing.T) {
	out := newPromptGate(t, PromptConfig{}).Handle("add a REST api endpoint\x00")
	if out.State != Blocked {
		t.Fatalf("expected block, got %s (err %v)", out.State, out.Err)
	}
	if !strings.Contains(out.Response.Reason, "api-layer") {
		t.Errorf("expected matched capability in instruction, got %q", out.Response.Reason)
	}
}

func TestPromptGateNoMatchAllows(t *testing.T) {
	out := newPromptGate(t, PromptConfig{}).Handle("hello there")
	if out.State != Allowed || !out.Evaluated {
		t.Errorf("expected evaluated allow, got %s evaluated=%v", out.State, out.Evaluated)
	}
	if out.Response.Reason != "" {
		t.Errorf("expected no reason, got %q", out.Response.Reason)
	}
}

func TestPromptGateForceEvaluation(t *testing.T) {
	out := newPromptGate(t, PromptConfig{Force: true}).Handle("hello there")
	if out.State != Blocked {
		t.Fatalf("expected forced block, got %s", out.State)
	}
	if len(out.Matched) != 0 {
		t.Errorf("expected no keyword matches, got %v", out.Matched)
	}
	if strings.Contains(out.Response.Reason, "Keyword matches") {
		t.Error("forced instruction should not claim keyword matches")
	}

	adv := newPromptGate(t, PromptConfig{Force: true, Mode: ModeAdvisory}).Handle("hello there")
	if adv.State != Warned {
		t.Errorf("expected forced advisory warn, got %s", adv.State)
	}
}

func TestPromptGateForceWithEmptyCatalogAllows(t *testing.T) {
	g, err := NewPromptGate(capability.NewCatalog(), PromptConfig{Force: true}, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	if out := g.Handle("implement the whole thing"); out.State != Allowed {
		t.Errorf("expected allow with no capabilities, got %s", out.State)
	}
}

func TestPromptGateCustomPrefixes(t *testing.T) {
	g := newPromptGate(t, PromptConfig{Prefixes: []string{"!"}})

	if out := g.Handle("!run the api tests"); out.Evaluated {
		t.Error("expected custom prefix to bypass")
	}
	if out := g.Handle("/add an api"); out.State != Blocked {
		t.Errorf("expected slash to be evaluated when not a prefix, got %s", out.State)
	}
}

func TestPromptGateChinese(t *testing.T) {
	g := newPromptGate(t, PromptConfig{Language: LangChinese})

	out := g.Handle("帮我写一个登录接口")
	if out.State != Blocked {
		t.Fatalf("expected blocked, got %s", out.State)
	}
	if !contains(out.Matched, "api-layer") || !contains(out.Matched, "security-guard") {
		t.Errorf("expected api-layer and security-guard, got %v", out.Matched)
	}
	if !strings.Contains(out.Response.Reason, "强制技能激活") {
		t.Errorf("expected zh instruction, got %q", out.Response.Reason)
	}
}

func TestPromptGateHandlePayload(t *testing.T) {
	g := newPromptGate(t, PromptConfig{})

	if out := g.HandlePayload([]byte(`{"prompt":"fix the sql query"}`)); out.State != Blocked {
		t.Errorf("expected blocked, got %s", out.State)
	}

	out := g.HandlePayload([]byte(`{"prompt":`))
	if out.State != Allowed || !errors.Is(out.Err, ErrUnparseablePayload) {
		t.Errorf("expected fail-open on truncated payload, got %s err=%v", out.State, out.Err)
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"", ModeEnforcing, true},
		{"Enforcing", ModeEnforcing, true},
		{"advisory", ModeAdvisory, true},
		{"strict", "", false},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if ModeAdvisory.Severity() != model.SevWarn || ModeEnforcing.Severity() != model.SevBlock {
		t.Error("unexpected mode severities")
	}
}

func TestParseLanguage(t *testing.T) {
	if l, err := ParseLanguage("ZH"); err != nil || l != LangChinese {
		t.Errorf("expected zh, got %q, %v", l, err)
	}
	if _, err := ParseLanguage("fr"); err == nil {
		t.Error("expected error for unsupported language")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
