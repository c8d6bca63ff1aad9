package capability

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/hookgate/internal/model"
)

func writeSkill(t *testing.T, root, name, manifest string) {
	t.Helper()
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if manifest != "" {
		if err := os.WriteFile(filepath.Join(dir, ManifestFile), []byte(manifest), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDiscoverMissingDir(t *testing.T) {
	caps, err := Discover(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("expected no error for missing dir, got %v", err)
	}
	if len(caps) != 0 {
		t.Errorf("expected no capabilities, got %d", len(caps))
	}
}

func TestDiscoverUnreadable(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Discover(file)
	if !errors.Is(err, ErrExtensionUnavailable) {
		t.Fatalf("expected ErrExtensionUnavailable, got %v", err)
	}
}

func TestDiscoverReadsManifest(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "crud-development", `---
name: crud-development
description: "CRUD scaffolding"
keywords: [crud, 增删改查]
---
# body
`)
	writeSkill(t, root, "bare-skill", "")
	writeSkill(t, root, ".hidden", "")
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	caps, err := Discover(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(caps) != 2 {
		t.Fatalf("expected 2 capabilities, got %d: %+v", len(caps), caps)
	}

	byName := map[string]Capability{}
	for _, c := range caps {
		byName[c.Name] = c
	}
	crud := byName["crud-development"]
	if crud.Description != "CRUD scaffolding" {
		t.Errorf("expected description from frontmatter, got %q", crud.Description)
	}
	if len(crud.Keywords) != 2 {
		t.Errorf("expected 2 keywords, got %v", crud.Keywords)
	}
	if crud.Source != SourceDirectory {
		t.Errorf("expected directory source, got %s", crud.Source)
	}
	if _, ok := byName["bare-skill"]; !ok {
		t.Error("expected bare-skill without manifest to be listed")
	}
}

func TestBuildDeduplicatesFirstWins(t *testing.T) {
	root := t.TempDir()
	writeSkill(t, root, "API-Layer", "---\ndescription: from disk\n---\n")
	writeSkill(t, root, "template-dev", "")

	c := Build(Defaults(), root, nil)

	if c.Len() != len(Defaults())+1 {
		t.Fatalf("expected %d capabilities, got %d: %v", len(Defaults())+1, c.Len(), c.Names())
	}
	api, ok := c.Get("api-layer")
	if !ok {
		t.Fatal("expected api-layer")
	}
	if api.Source != SourceStatic || api.Description == "from disk" {
		t.Errorf("expected static api-layer to win, got %+v", api)
	}
	names := c.Names()
	if names[len(names)-1] != "template-dev" {
		t.Errorf("expected discovered capability appended last, got %v", names)
	}
}

func TestBuildDegradesOnUnavailableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	c := Build(Defaults(), file, nil)
	if c.Len() != len(Defaults()) {
		t.Errorf("expected static catalog only, got %d", c.Len())
	}
}

func TestNewCatalogDropsBlankNames(t *testing.T) {
	c := NewCatalog(Capability{Name: "  "}, Capability{Name: " x "})
	if c.Len() != 1 || c.Names()[0] != "x" {
		t.Errorf("expected only trimmed x, got %v", c.Names())
	}
}

func TestRulesProjection(t *testing.T) {
	c := NewCatalog(
		Capability{Name: "api-layer", Keywords: []string{"API", "接口"}},
		Capability{Name: "template-dev"},
	)
	rc, err := c.Rules(model.SevBlock)
	if err != nil {
		t.Fatal(err)
	}
	if rc.Len() != 2 {
		t.Fatalf("expected 2 rules, got %d", rc.Len())
	}

	if _, ok := rc.At(0).Detector.Detect("请帮我创建一个 API 接口"); !ok {
		t.Error("expected api-layer keyword match")
	}
	if _, ok := rc.At(1).Detector.Detect("use template-dev here"); !ok {
		t.Error("expected keyword-less capability to match its name")
	}
	if rc.At(0).Severity != model.SevBlock {
		t.Errorf("expected block severity, got %s", rc.At(0).Severity)
	}
}

func TestParseFrontmatter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		ok      bool
	}{
		{"valid", "---\ndescription: d\n---\nbody", true},
		{"no fence", "description: d", false},
		{"unterminated", "---\ndescription: d\n", false},
		{"bad yaml", "---\nkeywords: [a\n---\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := parseFrontmatter(tt.content); ok != tt.ok {
				t.Errorf("parseFrontmatter ok = %v, want %v", ok, tt.ok)
			}
		})
	}
}
