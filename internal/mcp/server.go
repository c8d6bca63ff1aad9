package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/hookgate/internal/gate"
)

// Loader builds a fresh gate set. It runs once at startup and again on every
// reload, so it should re-read whatever configuration it depends on.
type Loader func() (*gate.Set, error)

// Config holds MCP server configuration.
type Config struct {
	Load       Loader
	WatchPaths []string
	Version    string
	Logger     *slog.Logger
}

// Server wraps the MCP SDK server with dry-run access to both gates.
type Server struct {
	mcpServer *mcpsdk.Server
	load      Loader
	watch     []string
	logger    *slog.Logger

	mu  sync.RWMutex
	set *gate.Set
}

// New builds the initial gate set and registers the tools.
func New(cfg Config) (*Server, error) {
	if cfg.Load == nil {
		return nil, errors.New("mcp: nil loader")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	set, err := cfg.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to build gates: %w", err)
	}

	s := &Server{
		load:   cfg.Load,
		watch:  cfg.WatchPaths,
		logger: cfg.Logger,
		set:    set,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "hookgate",
			Version: cfg.Version,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run serves on stdio and hot-reloads on changes to the watched paths.
// Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if len(s.watch) > 0 {
		r, err := NewReloader(s, s.watch, s.logger)
		if err != nil {
			s.logger.Warn("hot reload disabled", "error", err)
		} else {
			go r.Run(ctx)
		}
	}
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Reload rebuilds the gate set and swaps it in. On failure the previous set
// stays active.
func (s *Server) Reload() error {
	set, err := s.load()
	if err != nil {
		return fmt.Errorf("failed to reload gates: %w", err)
	}

	s.mu.Lock()
	s.set = set
	s.mu.Unlock()
	return nil
}

// Gates returns the current gate set. Callers keep using the returned
// snapshot even if a reload happens meanwhile.
func (s *Server) Gates() *gate.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.set
}

// registerTools adds all hookgate tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hookgate_check_command",
		Description: "Classify a shell command as allow, warn or block without executing it (dry-run).",
	}, s.handleCheckCommand)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hookgate_check_prompt",
		Description: "Check whether a request would require a capability declaration before implementation.",
	}, s.handleCheckPrompt)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "hookgate_capabilities",
		Description: "List the capability catalog and the command rules in evaluation order.",
	}, s.handleCapabilities)
}
