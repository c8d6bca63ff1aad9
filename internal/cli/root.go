package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/hookgate/internal/config"
	"github.com/ppiankov/hookgate/internal/gate"
)

var (
	configPath       string
	logLevelOverride string

	activeConfig *config.Config
	logger       *slog.Logger
)

// errChecksFailed signals a non-zero exit without an extra error line.
var errChecksFailed = errors.New("scenario checks failed")

var rootCmd = &cobra.Command{
	Use:   "hookgate",
	Short: "Pre-execution gates for AI coding assistants",
	Long: "Classifies shell commands before they run (block, warn, allow) and forces a\n" +
		"capability declaration before implementation requests. Runs as a lifecycle\n" +
		"hook: event payload on stdin, decision payload on stdout.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		if cmd.Name() == "init" {
			l, err := configureLogger(config.DefaultConfig(), logLevelOverride)
			logger = l
			return err
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		l, err := configureLogger(cfg, logLevelOverride)
		if err != nil {
			return err
		}
		activeConfig = cfg
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML (default ./.hookgate.yaml, then ~/.hookgate/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelOverride, "log-level", "", "Override log level (debug|info|warn|error)")
}

// buildGates constructs both gates from the active config.
func buildGates() (*gate.Set, error) {
	set, err := gate.NewSet(activeConfig.GateOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build gates: %w", err)
	}
	return set, nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintf(os.Stderr, "hookgate: %v\n", err)
		}
		os.Exit(1)
	}
}
