package agentcoord

import (
	"context"
	"errors"
	"testing"

	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/template"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAgent struct {
	resp AgentResponse
	err  error
}

func (s *stubAgent) Execute(_ context.Context, _ string) (AgentResponse, error) {
	return s.resp, s.err
}

type stubToolClient struct {
	result map[string]any
	err    error
}

func (s *stubToolClient) CallTool(_ context.Context, _ string, _ map[string]any) (map[string]any, error) {
	return s.result, s.err
}

func TestCoordinator_GetAgent(t *testing.T) {
	t.Run("Should resolve and cache a registered agent", func(t *testing.T) {
		agent := &stubAgent{resp: AgentResponse{Success: true}}
		c := New(StaticRegistry{"search_guru": agent})

		h1, ok := c.GetAgent(context.Background(), "search_guru")
		require.True(t, ok)
		h2, ok := c.GetAgent(context.Background(), "search_guru")
		require.True(t, ok)
		assert.Same(t, h1, h2)
	})

	t.Run("Should report false for an unregistered agent without erroring", func(t *testing.T) {
		c := New(StaticRegistry{})
		_, ok := c.GetAgent(context.Background(), "missing")
		assert.False(t, ok)
	})
}

func TestCoordinator_ValidateQuery(t *testing.T) {
	t.Run("Should return the optimized query on success", func(t *testing.T) {
		agent := &stubAgent{resp: AgentResponse{Success: true, OptimizedQuery: "index=main | stats count"}}
		c := New(StaticRegistry{"search_guru": agent})

		query, ok, errMsg := c.ValidateQuery(context.Background(), "index=main", "search_guru")
		assert.True(t, ok)
		assert.Empty(t, errMsg)
		assert.Equal(t, "index=main | stats count", query)
	})

	t.Run("Should fall back to the original query when no rewrite is offered", func(t *testing.T) {
		agent := &stubAgent{resp: AgentResponse{Success: true}}
		c := New(StaticRegistry{"search_guru": agent})

		query, ok, _ := c.ValidateQuery(context.Background(), "index=main", "search_guru")
		assert.True(t, ok)
		assert.Equal(t, "index=main", query)
	})

	t.Run("Should report failure without an error when the agent is unavailable", func(t *testing.T) {
		c := New(StaticRegistry{})
		query, ok, errMsg := c.ValidateQuery(context.Background(), "index=main", "search_guru")
		assert.False(t, ok)
		assert.Equal(t, "index=main", query)
		assert.NotEmpty(t, errMsg)
	})

	t.Run("Should turn an agent execution error into a structured failure", func(t *testing.T) {
		agent := &stubAgent{err: errors.New("transport down")}
		c := New(StaticRegistry{"search_guru": agent})
		_, ok, errMsg := c.ValidateQuery(context.Background(), "index=main", "search_guru")
		assert.False(t, ok)
		assert.Equal(t, "transport down", errMsg)
	})
}

func TestCoordinator_ExecuteQuery(t *testing.T) {
	t.Run("Should return a successful TaskResult with metadata", func(t *testing.T) {
		agent := &stubAgent{resp: AgentResponse{Success: true, Data: map[string]any{"events": 3}}}
		c := New(StaticRegistry{"splunk_mcp": agent})

		res := c.ExecuteQuery(context.Background(), "t1", "index=main", map[string]any{"earliest": "-1h"}, "splunk_mcp", "run_oneshot_search")
		assert.True(t, res.Success)
		assert.Equal(t, 3, res.Data["events"])
		assert.Equal(t, "splunk_mcp", res.Metadata["agent_used"])
	})

	t.Run("Should fail cleanly when the agent is unavailable", func(t *testing.T) {
		c := New(StaticRegistry{})
		res := c.ExecuteQuery(context.Background(), "t1", "index=main", nil, "splunk_mcp", "run_oneshot_search")
		assert.False(t, res.Success)
		assert.Equal(t, "t1", res.TaskID)
		assert.NotEmpty(t, res.Error)
	})
}

func TestCoordinator_Synthesize(t *testing.T) {
	t.Run("Should return the agent's synthesized data", func(t *testing.T) {
		agent := &stubAgent{resp: AgentResponse{Success: true, Data: map[string]any{"insight": "spike detected"}}}
		c := New(StaticRegistry{"result_synthesizer": agent})

		out := c.Synthesize(context.Background(), map[string]any{"count": 100}, "daily check", "result_synthesizer")
		assert.Equal(t, "spike detected", out["insight"])
	})

	t.Run("Should return an error payload when the agent is unavailable", func(t *testing.T) {
		c := New(StaticRegistry{})
		out := c.Synthesize(context.Background(), nil, "ctx", "result_synthesizer")
		assert.Equal(t, false, out["success"])
	})
}

func TestCoordinator_LoadContextResources(t *testing.T) {
	t.Run("Should load tool, documentation and reference resources keyed by ID", func(t *testing.T) {
		c := New(StaticRegistry{}).WithToolClient(&stubToolClient{result: map[string]any{"content_0": "docs"}})

		resources := []template.ContextResource{
			{Type: "documentation", ID: "doc1", Priority: 1},
			{Type: "tool", ID: "get_spl_reference", Priority: 5},
			{Type: "reference", ID: "ref1", Priority: 3},
		}

		loaded := c.LoadContextResources(context.Background(), resources)
		require.Len(t, loaded, 3)
		tool := loaded["get_spl_reference"].(map[string]any)
		assert.Equal(t, "tool", tool["type"])
	})

	t.Run("Should skip a resource that fails to load without aborting the rest", func(t *testing.T) {
		c := New(StaticRegistry{}).WithToolClient(&stubToolClient{err: errors.New("unreachable")})

		resources := []template.ContextResource{
			{Type: "tool", ID: "broken_tool", Priority: 5},
			{Type: "documentation", ID: "doc1", Priority: 1},
		}
		loaded := c.LoadContextResources(context.Background(), resources)
		assert.Len(t, loaded, 1)
		_, ok := loaded["doc1"]
		assert.True(t, ok)
	})
}
