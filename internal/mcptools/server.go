// Package mcptools exposes project generation as MCP tools.
package mcptools

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewForgeMCPServer creates an MCP server with the 4 agentforge tools
// registered.
func NewForgeMCPServer(svc *ForgeService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "agentforge",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_project",
		Description: "Plan, build and write an agent project from a free-text request. Pass configPath to extend an existing project. Questions about an existing project are answered without writing anything.",
	}, svc.GenerateProject)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate_config",
		Description: "Parse a serialized agentforge.json and report every validation error: duplicate names, unknown tool references and a missing entry point.",
	}, svc.ValidateConfig)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_project_status",
		Description: "Check whether a generated project directory exists and contains package.json, tsconfig.json and src/mastra/index.ts.",
	}, svc.CheckProjectStatus)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_runs",
		Description: "List recent generation runs from the run journal, newest first.",
	}, svc.ListRuns)

	return server
}

// RunStdio runs the MCP server on stdio transport, blocking until stdin is
// closed or the context is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the MCP server over streamable HTTP on addr until ctx is
// cancelled.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
