package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/hookgate/internal/gate"
)

var (
	hookOutput string
	promptRaw  bool
)

func init() {
	rootCmd.AddCommand(preToolUseCmd)
	rootCmd.AddCommand(promptSubmitCmd)
	for _, c := range []*cobra.Command{preToolUseCmd, promptSubmitCmd} {
		c.Flags().StringVarP(&hookOutput, "output", "o", "", "Response format (decision|claude), overrides config")
	}
	promptSubmitCmd.Flags().BoolVar(&promptRaw, "raw", false, "Treat stdin as plain request text instead of a JSON payload")
}

var preToolUseCmd = &cobra.Command{
	Use:   "pre-tool-use",
	Short: "Classify a tool invocation before it runs",
	Long: "Reads the pre-tool-use event payload from stdin and writes the decision\n" +
		"payload to stdout. Shell commands are checked against the destructive-command\n" +
		"catalog; every other tool passes through. Unparseable payloads fail open.\n\n" +
		"Exit code is 0 for every classification, including block.",
	Args: cobra.NoArgs,
	RunE: runPreToolUse,
}

var promptSubmitCmd = &cobra.Command{
	Use:   "prompt-submit [text...]",
	Short: "Require a capability declaration before implementation work",
	Long: "Classifies a user request against the capability catalog. The request is\n" +
		"taken from the arguments when given, otherwise from the stdin payload\n" +
		"(requestText, prompt or userPrompt). Requests starting with a direct\n" +
		"invocation prefix (/ or @ by default) are never evaluated.",
	RunE: runPromptSubmit,
}

func runPreToolUse(cmd *cobra.Command, args []string) error {
	format, err := hookFormat()
	if err != nil {
		return err
	}
	set, err := buildGates()
	if err != nil {
		return err
	}

	payload, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		logger.Warn("failed to read stdin, allowing", "error", err)
		payload = nil
	}

	out := set.Command.Handle(payload)
	return gate.Encode(cmd.OutOrStdout(), gate.HookPreToolUse, format, out.Response)
}

func runPromptSubmit(cmd *cobra.Command, args []string) error {
	format, err := hookFormat()
	if err != nil {
		return err
	}
	set, err := buildGates()
	if err != nil {
		return err
	}

	var out gate.Outcome
	switch {
	case len(args) > 0:
		out = set.Prompt.Handle(strings.Join(args, " "))
	default:
		payload, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			logger.Warn("failed to read stdin, allowing", "error", err)
		}
		if promptRaw {
			out = set.Prompt.Handle(strings.TrimSpace(string(payload)))
		} else {
			out = set.Prompt.HandlePayload(payload)
		}
	}

	return gate.Encode(cmd.OutOrStdout(), gate.HookUserPromptSubmit, format, out.Response)
}

func hookFormat() (gate.Format, error) {
	name := activeConfig.Output
	if hookOutput != "" {
		name = hookOutput
	}
	format, err := gate.ParseFormat(name)
	if err != nil {
		return "", fmt.Errorf("--output: %w", err)
	}
	return format, nil
}
