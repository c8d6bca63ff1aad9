package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/hookgate/internal/rules"
)

var (
	initScope string
	initForce bool
)

func init() {
	initCmd.Flags().StringVar(&initScope, "scope", "project", "Config location: project (./.hookgate.yaml) or user (~/.hookgate/)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing config files")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config and rule catalog",
	Long: `Creates a config file and a rule catalog that extends the built-in rules.

Project scope (default):  ./.hookgate.yaml and ./.hookgate/rules.yaml
User scope:               ~/.hookgate/config.yaml and ~/.hookgate/rules.yaml

Prints the hook registration to add to the assistant's settings file.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	configFile, rulesFile, err := initPaths()
	if err != nil {
		return err
	}

	var created []string

	if wrote, err := writeIfMissing(rulesFile, starterRulesYAML()); err != nil {
		return err
	} else if wrote {
		created = append(created, rulesFile)
	}

	if wrote, err := writeIfMissing(configFile, starterConfigYAML(rulesFile)); err != nil {
		return err
	} else if wrote {
		created = append(created, configFile)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "hookgate init complete.")
	fmt.Fprintln(w)
	if len(created) > 0 {
		fmt.Fprintln(w, "Created:")
		for _, path := range created {
			fmt.Fprintf(w, "  %s\n", path)
		}
	} else {
		fmt.Fprintln(w, "All files already exist (use --force to overwrite).")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Register the hooks in .claude/settings.json:")
	if err := writeHookSettings(w); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Verify:")
	fmt.Fprintln(w, "  hookgate doctor")
	return nil
}

// initPaths returns the config and rule catalog paths for the chosen scope.
func initPaths() (string, string, error) {
	switch initScope {
	case "project", "":
		return ".hookgate.yaml", filepath.Join(".hookgate", "rules.yaml"), nil
	case "user":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir := filepath.Join(home, ".hookgate")
		return filepath.Join(dir, "config.yaml"), filepath.Join(dir, "rules.yaml"), nil
	default:
		return "", "", fmt.Errorf("unknown scope %q: use 'project' or 'user'", initScope)
	}
}

// writeIfMissing writes content to path if it doesn't exist or --force is set.
// Returns true if the file was written.
func writeIfMissing(path, content string) (bool, error) {
	if !initForce {
		if _, err := os.Stat(path); err == nil {
			return false, nil
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

func starterConfigYAML(rulesFile string) string {
	return "# hookgate configuration.\n" +
		"# Every key can be overridden with HOOKGATE_<KEY>, e.g. HOOKGATE_MODE=advisory.\n" +
		"\n" +
		"# enforcing: a capability match blocks until the assistant declares.\n" +
		"# advisory:  a capability match only adds a notice.\n" +
		"mode: enforcing\n" +
		"force_evaluation: false\n" +
		"language: en\n" +
		"# decision: {\"decision\",\"reason\"}; claude: hookSpecificOutput envelope.\n" +
		"output: claude\n" +
		"rules_path: " + rulesFile + "\n" +
		"skills_dir: .claude/skills\n" +
		"protected_packages: []\n" +
		"log:\n" +
		"  level: warn\n"
}

// starterRulesYAML generates a rule catalog that keeps the built-in rules and
// shows one custom rule per tier.
func starterRulesYAML() string {
	f := rules.File{
		IncludeDefaults: true,
		Block: []rules.RuleSpec{{
			Name:    "curl-pipe-shell",
			Label:   "piping a download straight into a shell",
			Pattern: `curl\s+[^|]*\|\s*(?:ba|z)?sh\b`,
		}},
		Warn: []rules.RuleSpec{{
			Name:    "force-push",
			Label:   "git push --force (rewrites remote history)",
			Pattern: `\bgit\s+push\s+(?:\S+\s+)*(?:--force|-f)\b`,
		}},
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return "include_defaults: true\n"
	}
	header := "# hookgate rule catalog.\n" +
		"# Block rules are evaluated before warn rules; the first match decides.\n" +
		"# Patterns are RE2 regular expressions matched against the full command.\n" +
		"\n"
	return header + string(data)
}

type hookCommand struct {
	Type    string `json:"type"`
	Command string `json:"command"`
}

type hookMatcher struct {
	Matcher string        `json:"matcher,omitempty"`
	Hooks   []hookCommand `json:"hooks"`
}

func writeHookSettings(w io.Writer) error {
	settings := map[string]map[string][]hookMatcher{
		"hooks": {
			"PreToolUse": {{
				Matcher: "Bash",
				Hooks:   []hookCommand{{Type: "command", Command: "hookgate pre-tool-use"}},
			}},
			"UserPromptSubmit": {{
				Hooks: []hookCommand{{Type: "command", Command: "hookgate prompt-submit"}},
			}},
		},
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal hook settings: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
