package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ppiankov/hookgate/internal/capability"
)

var catalogFormat string

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.Flags().StringVarP(&catalogFormat, "format", "f", "text", "Output format (text|json)")
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the command rules and capabilities in evaluation order",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

type catalogRule struct {
	Name     string `json:"name"`
	Severity string `json:"severity"`
	Label    string `json:"label"`
}

type catalogView struct {
	Mode         string                  `json:"mode"`
	Rules        []catalogRule           `json:"rules"`
	Capabilities []capability.Capability `json:"capabilities"`
}

func runCatalog(cmd *cobra.Command, args []string) error {
	set, err := buildGates()
	if err != nil {
		return err
	}

	view := catalogView{
		Mode:         string(set.Prompt.Mode()),
		Capabilities: set.Prompt.Capabilities().Capabilities(),
	}
	for _, r := range set.Command.Catalog().Rules() {
		view.Rules = append(view.Rules, catalogRule{Name: r.Name, Severity: string(r.Severity), Label: r.Label})
	}

	w := cmd.OutOrStdout()
	switch catalogFormat {
	case "json":
		out, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal catalog: %w", err)
		}
		fmt.Fprintln(w, string(out))
		return nil
	case "text":
	default:
		return fmt.Errorf("unknown format %q (want text or json)", catalogFormat)
	}

	block, warn := set.Command.Catalog().Counts()
	fmt.Fprintf(w, "Command rules (%d block, %d warn):\n", block, warn)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, r := range view.Rules {
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", i+1, r.Severity, r.Name, r.Label)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nCapabilities (%d, mode %s):\n", len(view.Capabilities), view.Mode)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range view.Capabilities {
		fmt.Fprintf(tw, "  %s\t[%s]\t%s\t%s\n", c.Name, c.Source, c.Description, strings.Join(c.Keywords, ", "))
	}
	return tw.Flush()
}
