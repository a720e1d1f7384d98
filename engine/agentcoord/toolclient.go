package agentcoord

import "context"

// ToolClient is the narrow port the coordinator needs from an MCP tool
// transport: call a named tool with arguments, get a result back. It
// is satisfied by MCPToolClient (backed by mark3labs/mcp-go) or by a
// test double.
type ToolClient interface {
	CallTool(ctx context.Context, name string, arguments map[string]any) (map[string]any, error)
}
