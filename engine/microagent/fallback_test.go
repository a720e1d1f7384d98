package microagent

import (
	"context"
	"testing"

	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/agentcoord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandle struct {
	data map[string]any
	err  string
}

func (s *stubHandle) Execute(_ context.Context, _ string) (agentcoord.AgentResponse, error) {
	if s.err != "" {
		return agentcoord.AgentResponse{Success: false, Error: s.err}, nil
	}
	return agentcoord.AgentResponse{Success: true, Data: s.data}, nil
}

func TestDirectCoordination(t *testing.T) {
	t.Run("Should execute the search query through the coordinator", func(t *testing.T) {
		coord := agentcoord.New(agentcoord.StaticRegistry{"splunk_mcp": &stubHandle{data: map[string]any{"events": 1}}})
		data, err := DirectCoordination(context.Background(), coord, Config{TaskID: "t1", SearchQuery: "index=main"})
		require.NoError(t, err)
		assert.Equal(t, 1, data["events"])
	})

	t.Run("Should error when there is no search query to fall back on", func(t *testing.T) {
		coord := agentcoord.New(agentcoord.StaticRegistry{})
		_, err := DirectCoordination(context.Background(), coord, Config{TaskID: "t1"})
		assert.Error(t, err)
	})

	t.Run("Should error when the coordinator itself fails", func(t *testing.T) {
		coord := agentcoord.New(agentcoord.StaticRegistry{"splunk_mcp": &stubHandle{err: "agent down"}})
		_, err := DirectCoordination(context.Background(), coord, Config{TaskID: "t1", SearchQuery: "index=main"})
		assert.Error(t, err)
	})
}
