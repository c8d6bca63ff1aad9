package capability

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrExtensionUnavailable is returned when the capability directory exists
// but cannot be listed.
var ErrExtensionUnavailable = errors.New("capability directory unavailable")

// ManifestFile is the optional per-capability manifest.
const ManifestFile = "SKILL.md"

type frontmatter struct {
	Description string   `yaml:"description"`
	Keywords    []string `yaml:"keywords"`
}

// Discover lists the subdirectories of dir as capabilities. A missing
// directory yields no capabilities and no error.
func Discover(dir string) ([]Capability, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrExtensionUnavailable, err)
	}

	var out []Capability
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		cp := Capability{
			Name:   entry.Name(),
			Source: SourceDirectory,
		}
		if data, err := os.ReadFile(filepath.Join(dir, entry.Name(), ManifestFile)); err == nil {
			if fm, ok := parseFrontmatter(string(data)); ok {
				cp.Description = fm.Description
				cp.Keywords = fm.Keywords
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

// parseFrontmatter extracts the YAML block delimited by leading "---" lines:
//
//	---
//	name: api-layer
//	description: "endpoints and handlers"
//	keywords: [api, 接口]
//	---
func parseFrontmatter(content string) (frontmatter, bool) {
	var fm frontmatter

	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "---") {
		return fm, false
	}
	rest := content[3:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return fm, false
	}

	if err := yaml.Unmarshal([]byte(rest[:end]), &fm); err != nil {
		return fm, false
	}
	return fm, true
}
