package microagent

import (
	"context"
	"fmt"

	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/agentcoord"
)

// DirectCoordination runs cfg's search query straight through the
// Agent Coordinator when micro-agent (LLM) instantiation itself
// failed — the original's "_try_direct_agent_coordination" escape
// hatch. The caller tags the returned data with
// execution_type="direct_agent_coordination".
func DirectCoordination(ctx context.Context, coordinator *agentcoord.Coordinator, cfg Config) (map[string]any, error) {
	if cfg.SearchQuery == "" || coordinator == nil {
		return nil, fmt.Errorf("task %s: micro agent creation failed and no direct coordination path is available", cfg.TaskID)
	}

	res := coordinator.ExecuteQuery(ctx, cfg.TaskID, cfg.SearchQuery, cfg.Parameters, "splunk_mcp", "run_oneshot_search")
	if !res.Success {
		return nil, fmt.Errorf("task %s: direct agent coordination failed: %s", cfg.TaskID, res.Error)
	}
	return res.Data, nil
}
