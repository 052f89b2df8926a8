// Package server wires the console's MCP server: tools, resources, and
// the shared execution orchestrator.
package server

import (
	"context"
	"log"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sysscope/sysscope/internal/gateway"
	"github.com/sysscope/sysscope/internal/ops"
	"github.com/sysscope/sysscope/internal/report"
	"github.com/sysscope/sysscope/internal/tools"
)

// Version, Commit, Built are set by ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Built   = "unknown"
)

// Server wraps the MCP server with console-specific configuration.
type Server struct {
	server *mcp.Server
	client gateway.Client
	orch   *ops.Orchestrator
	store  *report.Store
}

// New creates a new console MCP server with all tools registered.
func New(client gateway.Client, store *report.Store, orchCfg ops.OrchestratorConfig, logger *log.Logger) *Server {
	srv := mcp.NewServer(
		&mcp.Implementation{Name: "sysscope", Version: Version},
		&mcp.ServerOptions{Instructions: instructions},
	)

	s := &Server{
		server: srv,
		client: client,
		orch:   ops.NewOrchestrator(client, orchCfg, logger),
		store:  store,
	}

	s.registerTools()
	s.registerResources()
	return s
}

func (s *Server) registerTools() {
	// Read-only tools
	tools.RegisterSystem(s.server, s.client)
	tools.RegisterReports(s.server, s.store)

	// Mutating tools
	tools.RegisterPlan(s.server, s.client, s.orch)
	tools.RegisterExecute(s.server, s.orch)
}

// Run starts the MCP server on stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Shutdown stops the active poll loop, if any. Must be called when the
// server exits so a dangling timer never outlives the session.
func (s *Server) Shutdown() {
	s.orch.Stop()
}

// MCPServer returns the underlying MCP server (for testing).
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}

// Orchestrator returns the shared execution orchestrator (for testing).
func (s *Server) Orchestrator() *ops.Orchestrator {
	return s.orch
}
