// mcptap-mock is a minimal MCP server over stdio, handy for exercising the
// proxy without a real server: mcptap monitor -- mcptap-mock
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var version = "dev"

func main() {
	s := server.NewMCPServer("mcptap-mock", version, server.WithToolCapabilities(false))

	s.AddTool(
		mcp.NewTool("echo",
			mcp.WithDescription("Return the given message unchanged"),
			mcp.WithString("msg", mcp.Required(), mcp.Description("message to echo back")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			msg, err := req.RequireString("msg")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultText(msg), nil
		},
	)

	s.AddTool(
		mcp.NewTool("sleep",
			mcp.WithDescription("Wait the given number of milliseconds, for latency testing"),
			mcp.WithNumber("ms", mcp.Description("delay in milliseconds (default 100)")),
		),
		func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			ms, _ := req.GetArguments()["ms"].(float64)
			if ms <= 0 {
				ms = 100
			}
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return mcp.NewToolResultText(fmt.Sprintf("slept %.0f ms", ms)), nil
		},
	)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintln(os.Stderr, "mcptap-mock:", err)
		os.Exit(1)
	}
}
