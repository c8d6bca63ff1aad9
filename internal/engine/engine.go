// Package engine applies a rule catalog to candidate text.
//
// Evaluation is first-match-wins in catalog order. Catalogs put every
// block-tier rule ahead of every warn-tier rule, so a candidate matching both
// tiers always gets block. The engine treats detectors as opaque predicates
// and holds no state of its own.
package engine

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/hookgate/internal/model"
	"github.com/ppiankov/hookgate/internal/rules"
)

// ErrInvalidCandidate is returned for input that is not valid UTF-8 and for
// a nil catalog.
var ErrInvalidCandidate = errors.New("invalid candidate")

const maxExcerpt = 80

// Verdict is the outcome of one evaluation.
type Verdict struct {
	Decision model.Decision `json:"decision"`
	Reason   string         `json:"reason,omitempty"`
	Excerpt  string         `json:"excerpt,omitempty"`
	Rule     *rules.Rule    `json:"-"`
}

// RuleName returns the matched rule's name, or "" for allow.
func (v Verdict) RuleName() string {
	if v.Rule == nil {
		return ""
	}
	return v.Rule.Name
}

// Label returns the matched rule's label, or "" for allow.
func (v Verdict) Label() string {
	if v.Rule == nil {
		return ""
	}
	return v.Rule.Label
}

// Match is one rule that fired during MatchAll.
type Match struct {
	Rule    *rules.Rule
	Excerpt string
}

// Evaluate returns the verdict of the first rule whose detector matches
// candidate, or allow when none do.
func Evaluate(candidate string, cat *rules.Catalog) (Verdict, error) {
	if err := validate(candidate, cat); err != nil {
		return Verdict{}, err
	}
	candidate = normalize(candidate)

	for i := 0; i < cat.Len(); i++ {
		r := cat.At(i)
		if excerpt, ok := r.Detector.Detect(candidate); ok {
			return Verdict{
				Decision: r.Severity.Decision(),
				Reason:   reason(r.Label, excerpt),
				Excerpt:  excerpt,
				Rule:     r,
			}, nil
		}
	}

	return Verdict{Decision: model.Allow}, nil
}

// MatchAll returns every matching rule in catalog order. It never changes
// the verdict; callers use it to report what else fired.
func MatchAll(candidate string, cat *rules.Catalog) ([]Match, error) {
	if err := validate(candidate, cat); err != nil {
		return nil, err
	}
	candidate = normalize(candidate)

	var out []Match
	for i := 0; i < cat.Len(); i++ {
		r := cat.At(i)
		if excerpt, ok := r.Detector.Detect(candidate); ok {
			out = append(out, Match{Rule: r, Excerpt: excerpt})
		}
	}
	return out, nil
}

func validate(candidate string, cat *rules.Catalog) error {
	if cat == nil {
		return fmt.Errorf("%w: nil catalog", ErrInvalidCandidate)
	}
	if !utf8.ValidString(candidate) {
		return fmt.Errorf("%w: not valid UTF-8", ErrInvalidCandidate)
	}
	return nil
}

// normalize turns NUL bytes into spaces. A shell running the string stops at
// the first NUL, so the text on either side of it must still be classified.
func normalize(candidate string) string {
	if strings.IndexByte(candidate, 0) < 0 {
		return candidate
	}
	return strings.ReplaceAll(candidate, "\x00", " ")
}

func reason(label, excerpt string) string {
	if excerpt == "" {
		return label
	}
	return fmt.Sprintf("%s: %q", label, truncate(excerpt, maxExcerpt))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}
