package capability

import (
	"log/slog"
	"strings"

	"github.com/ppiankov/hookgate/internal/model"
	"github.com/ppiankov/hookgate/internal/rules"
)

// Source records where a capability came from.
type Source string

const (
	SourceStatic    Source = "static"
	SourceDirectory Source = "directory"
)

// Capability is a named competency the assistant declares before implementing.
type Capability struct {
	Name        string   `json:"name" yaml:"name" mapstructure:"name"`
	Description string   `json:"description,omitempty" yaml:"description" mapstructure:"description"`
	Keywords    []string `json:"keywords,omitempty" yaml:"keywords" mapstructure:"keywords"`
	Source      Source   `json:"source" yaml:"-" mapstructure:"-"`
}

// Catalog is an ordered, de-duplicated capability list. It is built once
// and read-only afterwards.
type Catalog struct {
	caps []Capability
}

// NewCatalog keeps the first occurrence of each name (case-insensitive) and
// drops blank names.
func NewCatalog(caps ...Capability) *Catalog {
	seen := make(map[string]bool, len(caps))
	c := &Catalog{caps: make([]Capability, 0, len(caps))}
	for _, cp := range caps {
		cp.Name = strings.TrimSpace(cp.Name)
		if cp.Name == "" {
			continue
		}
		key := strings.ToLower(cp.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		if cp.Source == "" {
			cp.Source = SourceStatic
		}
		c.caps = append(c.caps, cp)
	}
	return c
}

// Build unions static with the capabilities discovered under dir.
// Discovery failure degrades to the static list.
func Build(static []Capability, dir string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}

	all := make([]Capability, 0, len(static))
	for _, cp := range static {
		cp.Source = SourceStatic
		all = append(all, cp)
	}

	if dir != "" {
		found, err := Discover(dir)
		if err != nil {
			logger.Debug("capability directory unavailable, using static catalog", "dir", dir, "error", err)
		}
		all = append(all, found...)
	}

	return NewCatalog(all...)
}

// Len returns the number of capabilities.
func (c *Catalog) Len() int {
	return len(c.caps)
}

// Capabilities returns a copy of the catalog in order.
func (c *Catalog) Capabilities() []Capability {
	out := make([]Capability, len(c.caps))
	copy(out, c.caps)
	return out
}

// Names returns capability names in order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.caps))
	for i, cp := range c.caps {
		out[i] = cp.Name
	}
	return out
}

// Get returns the capability with the given name.
func (c *Catalog) Get(name string) (Capability, bool) {
	for _, cp := range c.caps {
		if strings.EqualFold(cp.Name, name) {
			return cp, true
		}
	}
	return Capability{}, false
}

// Rules projects the catalog into keyword rules of one severity, in catalog
// order. A capability without keywords matches on its own name.
func (c *Catalog) Rules(sev model.Severity) (*rules.Catalog, error) {
	rs := make([]rules.Rule, 0, len(c.caps))
	for _, cp := range c.caps {
		words := cp.Keywords
		if len(words) == 0 {
			words = []string{cp.Name}
		}
		rs = append(rs, rules.Rule{
			Name:     cp.Name,
			Severity: sev,
			Label:    cp.Name,
			Detector: rules.NewKeywords(words...),
		})
	}
	return rules.NewCatalog(rs...)
}
