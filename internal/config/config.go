package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/ppiankov/hookgate/internal/capability"
	"github.com/ppiankov/hookgate/internal/gate"
)

// EnvPrefix prefixes every environment override, e.g. HOOKGATE_MODE.
const EnvPrefix = "HOOKGATE"

// Config is the resolved deployment configuration for both gates.
type Config struct {
	Mode            string `mapstructure:"mode"`
	ForceEvaluation bool   `mapstructure:"force_evaluation"`
	Language        string `mapstructure:"language"`
	Output          string `mapstructure:"output"`

	RulesPath         string   `mapstructure:"rules_path"`
	ShellTools        []string `mapstructure:"shell_tools"`
	ProtectedPackages []string `mapstructure:"protected_packages"`

	SkillsDir       string                  `mapstructure:"skills_dir"`
	CommandPrefixes []string                `mapstructure:"command_prefixes"`
	Capabilities    []capability.Capability `mapstructure:"capabilities"`

	Log LogConfig `mapstructure:"log"`

	// Path is the file the config was read from, empty when none was found.
	Path string `mapstructure:"-"`
}

// LogConfig application logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Mode:            string(gate.ModeEnforcing),
		Language:        string(gate.LangEnglish),
		Output:          string(gate.FormatDecision),
		SkillsDir:       filepath.Join(".claude", "skills"),
		ShellTools:      append([]string(nil), gate.DefaultShellTools...),
		CommandPrefixes: append([]string(nil), gate.DefaultPrefixes...),
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// SearchPaths lists the implicit config locations in priority order.
func SearchPaths() []string {
	paths := []string{".hookgate.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".hookgate", "config.yaml"))
	}
	return paths
}

// Load reads the config at path. An empty path searches SearchPaths; when no
// file exists the defaults apply, still subject to environment overrides.
// An explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		for _, p := range SearchPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return cfg, fmt.Errorf("config file %s not found", path)
			}
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.MatchName = func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		}
	}); err != nil {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// setDefaults registers every scalar key so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("force_evaluation", cfg.ForceEvaluation)
	v.SetDefault("language", cfg.Language)
	v.SetDefault("output", cfg.Output)
	v.SetDefault("rules_path", cfg.RulesPath)
	v.SetDefault("skills_dir", cfg.SkillsDir)
	v.SetDefault("shell_tools", cfg.ShellTools)
	v.SetDefault("command_prefixes", cfg.CommandPrefixes)
	v.SetDefault("protected_packages", cfg.ProtectedPackages)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
}

func normalizeKey(input string) string {
	input = strings.ReplaceAll(input, "_", "")
	input = strings.ReplaceAll(input, "-", "")
	return strings.ToLower(input)
}

// Validate normalizes enumerated values and rejects unknown ones.
func (c *Config) Validate() error {
	mode, err := gate.ParseMode(c.Mode)
	if err != nil {
		return fmt.Errorf("mode: %w", err)
	}
	c.Mode = string(mode)

	lang, err := gate.ParseLanguage(c.Language)
	if err != nil {
		return fmt.Errorf("language: %w", err)
	}
	c.Language = string(lang)

	format, err := gate.ParseFormat(c.Output)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	c.Output = string(format)

	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: unknown level %q", c.Log.Level)
	}

	for i, cp := range c.Capabilities {
		if strings.TrimSpace(cp.Name) == "" {
			return fmt.Errorf("capabilities[%d]: name is required", i)
		}
	}
	return nil
}

// GateOptions maps the config onto gate construction options. Call after
// Validate.
func (c *Config) GateOptions() gate.Options {
	return gate.Options{
		RulesPath:         c.RulesPath,
		ProtectedPackages: c.ProtectedPackages,
		ShellTools:        c.ShellTools,
		Capabilities:      c.Capabilities,
		SkillsDir:         c.SkillsDir,
		Mode:              gate.Mode(c.Mode),
		ForceEvaluation:   c.ForceEvaluation,
		Prefixes:          c.CommandPrefixes,
		Language:          gate.Language(c.Language),
	}
}

// WatchPaths lists the files and directories whose change invalidates the
// gates built from this config.
func (c *Config) WatchPaths() []string {
	var out []string
	for _, p := range []string{c.Path, c.RulesPath, c.SkillsDir} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
