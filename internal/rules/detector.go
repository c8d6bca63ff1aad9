package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// Detector is a side-effect-free predicate over candidate text.
// Detect returns the excerpt of text that triggered the match.
type Detector interface {
	Detect(text string) (excerpt string, ok bool)
}

// DetectorFunc adapts a plain function to the Detector interface.
type DetectorFunc func(text string) (string, bool)

// Detect calls f.
func (f DetectorFunc) Detect(text string) (string, bool) {
	return f(text)
}

// Pattern detects text matching a compiled RE2 expression.
// Case handling is part of the expression itself.
type Pattern struct {
	re *regexp.Regexp
}

// CompilePattern compiles expr into a Pattern. ignoreCase prefixes the
// expression with (?i).
func CompilePattern(expr string, ignoreCase bool) (*Pattern, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	if ignoreCase && !strings.HasPrefix(expr, "(?i)") {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Pattern{re: re}, nil
}

// MustPattern is CompilePattern for built-in expressions; it panics on error.
func MustPattern(expr string) *Pattern {
	p, err := CompilePattern(expr, false)
	if err != nil {
		panic(fmt.Sprintf("rules: bad built-in pattern %q: %v", expr, err))
	}
	return p
}

// Detect returns the leftmost match.
func (p *Pattern) Detect(text string) (string, bool) {
	loc := p.re.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return strings.TrimSpace(text[loc[0]:loc[1]]), true
}

func (p *Pattern) String() string {
	return p.re.String()
}

// Keywords detects any keyword occurring in text as a case-insensitive substring.
type Keywords struct {
	words []string
	lower []string
}

// NewKeywords builds a Keywords detector. Blank keywords are dropped.
func NewKeywords(words ...string) *Keywords {
	k := &Keywords{}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		k.words = append(k.words, w)
		k.lower = append(k.lower, strings.ToLower(w))
	}
	return k
}

// Detect returns the first keyword, in declaration order, found in text.
func (k *Keywords) Detect(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	lower := strings.ToLower(text)
	for i, w := range k.lower {
		if strings.Contains(lower, w) {
			return k.words[i], true
		}
	}
	return "", false
}

// Words returns the keywords as declared.
func (k *Keywords) Words() []string {
	out := make([]string, len(k.words))
	copy(out, k.words)
	return out
}

func (k *Keywords) String() string {
	return strings.Join(k.words, "|")
}
