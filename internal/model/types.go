package model

import (
	"fmt"
	"strings"
)

// Decision is the gate outcome the host must obey.
type Decision string

const (
	Allow Decision = "allow"
	Warn  Decision = "warn"
	Block Decision = "block"
)

// Severity is the tier a rule belongs to. Block strictly dominates warn.
type Severity string

const (
	SevWarn  Severity = "warn"
	SevBlock Severity = "block"
)

// SeverityRank maps severity to a comparable integer.
var SeverityRank = map[Severity]int{
	SevWarn:  1,
	SevBlock: 2,
}

// Rank returns the comparable rank of s. Unknown severities rank 0.
func (s Severity) Rank() int {
	return SeverityRank[s]
}

// Decision returns the verdict a matching rule of this severity produces.
func (s Severity) Decision() Decision {
	switch s {
	case SevBlock:
		return Block
	case SevWarn:
		return Warn
	default:
		return Allow
	}
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s == SevBlock || s == SevWarn
}

// ParseSeverity parses a persisted severity name, case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SevBlock:
		return SevBlock, nil
	case SevWarn:
		return SevWarn, nil
	default:
		return "", fmt.Errorf("unknown severity %q (want block or warn)", s)
	}
}

// Halts reports whether the caller must stop on this decision.
func (d Decision) Halts() bool {
	return d == Block
}
