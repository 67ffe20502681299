package mcp

import (
	"github.com/mark3labs/mcp-go/server"
)

// DefaultEndpoint 是 streamable HTTP 模式下的 MCP 路径。
const DefaultEndpoint = "/mcp"

// NewHTTPServer 以 streamable HTTP 方式暴露 MCP server。
func NewHTTPServer(s *server.MCPServer, endpoint string) *server.StreamableHTTPServer {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return server.NewStreamableHTTPServer(s, server.WithEndpointPath(endpoint))
}
