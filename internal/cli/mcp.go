package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/hookgate/internal/config"
	"github.com/ppiankov/hookgate/internal/gate"
	gatemcp "github.com/ppiankov/hookgate/internal/mcp"
)

var mcpNoWatch bool

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().BoolVar(&mcpNoWatch, "no-watch", false, "Disable hot reload of config, rules and skills")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long: "Runs hookgate as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes dry-run tools: check_command, check_prompt, capabilities.\n" +
		"Config, rule and skill changes are picked up without a restart.",
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	var watch []string
	if !mcpNoWatch {
		watch = activeConfig.WatchPaths()
	}

	srv, err := gatemcp.New(gatemcp.Config{
		Load:       reloadGates,
		WatchPaths: watch,
		Version:    version,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("MCP server running on stdio", "watch", watch)
	err = srv.Run(ctx)
	if ctx.Err() != nil {
		logger.Info("MCP server stopped")
		return nil
	}
	return err
}

// reloadGates re-reads the config file before rebuilding, so edits to mode or
// language take effect too.
func reloadGates() (*gate.Set, error) {
	cfg, err := config.Load(activeConfig.Path)
	if err != nil {
		return nil, err
	}
	return gate.NewSet(cfg.GateOptions(), logger)
}
