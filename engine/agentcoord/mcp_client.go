package agentcoord

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// MCPToolClient adapts an mcp-go client.MCPClient into a ToolClient,
// turning tool call results into plain maps for the coordinator's
// "tool" typed context resources.
type MCPToolClient struct {
	client client.MCPClient
}

// NewMCPToolClient wraps an already-initialized mcp-go client.
func NewMCPToolClient(c client.MCPClient) *MCPToolClient {
	return &MCPToolClient{client: c}
}

func (m *MCPToolClient) CallTool(ctx context.Context, name string, arguments map[string]any) (map[string]any, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = arguments

	res, err := m.client.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("call tool %q: %w", name, err)
	}
	if res.IsError {
		return nil, fmt.Errorf("tool %q returned an error result", name)
	}

	out := make(map[string]any, len(res.Content))
	for i, c := range res.Content {
		if text, ok := mcp.AsTextContent(c); ok {
			out[fmt.Sprintf("content_%d", i)] = text.Text
		}
	}
	return out, nil
}
