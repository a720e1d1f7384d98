// Package agentcoord mediates every call the Flow Engine makes into a
// named dependent agent (validator, executor, synthesizer), converting
// agent failures into structured results instead of returning raw
// errors (spec.md §4.4), grounded on the original's AgentCoordinator
// (flow_engine.py). A panic inside an AgentHandle is not recovered here.
package agentcoord

import (
	"context"
	"fmt"
	"sync"

	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/result"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/template"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/pkg/logger"
)

// AgentResponse is what an AgentHandle returns for any of the three
// coordinator operations. Success=false plus a populated Error is how
// an agent reports failure; handles must never panic or return a raw
// error for expected failure modes (only for context cancellation).
type AgentResponse struct {
	Success        bool
	Data           map[string]any
	OptimizedQuery string
	Error          string
}

// AgentHandle is the capability every dependent agent (search_guru,
// splunk_mcp, result_synthesizer, or a contrib specialist) exposes to
// the coordinator. Implementations wrap an LLM call, an MCP tool call,
// or a composite of both.
type AgentHandle interface {
	Execute(ctx context.Context, prompt string) (AgentResponse, error)
}

// Registry resolves an agent ID to a live AgentHandle. A Registry
// implementation typically wraps a dependency-injection container or a
// static map built at startup.
type Registry interface {
	Resolve(agentID string) (AgentHandle, bool)
}

// StaticRegistry is a Registry backed by a fixed map, usable directly in
// tests and small deployments.
type StaticRegistry map[string]AgentHandle

func (r StaticRegistry) Resolve(agentID string) (AgentHandle, bool) {
	h, ok := r[agentID]
	return h, ok
}

// Coordinator is the Agent Coordinator (spec.md §4.4): it looks up
// named agents through a Registry, caches resolved handles, and
// exposes the four coordinator operations the Flow Engine drives.
type Coordinator struct {
	registry Registry
	tools    ToolClient

	mu    sync.Mutex
	cache map[string]AgentHandle
}

// New builds a Coordinator over the given Registry.
func New(registry Registry) *Coordinator {
	return &Coordinator{registry: registry, cache: map[string]AgentHandle{}}
}

// GetAgent resolves agentID through the registry, caching hits. A
// missing agent is not an error: callers translate a false ok into a
// structured failure result rather than raising.
func (c *Coordinator) GetAgent(ctx context.Context, agentID string) (AgentHandle, bool) {
	log := logger.FromContext(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()

	if h, ok := c.cache[agentID]; ok {
		return h, true
	}
	h, ok := c.registry.Resolve(agentID)
	if !ok {
		log.Error("agent not available", "agent_id", agentID)
		return nil, false
	}
	c.cache[agentID] = h
	log.Debug("resolved agent", "agent_id", agentID)
	return h, true
}

// ValidateQuery asks agentID (e.g. search_guru) to validate and
// optionally rewrite an SPL query. It never returns an error for an
// unavailable or failing agent — it reports ok=false with a message.
func (c *Coordinator) ValidateQuery(ctx context.Context, searchQuery, agentID string) (validated string, ok bool, errMsg string) {
	log := logger.FromContext(ctx)
	agent, found := c.GetAgent(ctx, agentID)
	if !found {
		return searchQuery, false, fmt.Sprintf("agent %q not available", agentID)
	}

	resp, err := agent.Execute(ctx, "Please validate and optimize this SPL query: "+searchQuery)
	if err != nil {
		log.Error("query validation failed", "agent_id", agentID, "error", err)
		return searchQuery, false, err.Error()
	}
	if !resp.Success {
		return searchQuery, false, resp.Error
	}
	if resp.OptimizedQuery != "" {
		return resp.OptimizedQuery, true, ""
	}
	return searchQuery, true, ""
}

// ExecuteQuery runs a search through agentID (e.g. splunk_mcp) and
// returns a fully formed TaskResult, success or failure.
func (c *Coordinator) ExecuteQuery(
	ctx context.Context,
	taskID, searchQuery string,
	parameters map[string]any,
	agentID, toolName string,
) result.TaskResult {
	log := logger.FromContext(ctx)
	agent, found := c.GetAgent(ctx, agentID)
	if !found {
		return result.TaskResult{TaskID: taskID, Success: false, Error: fmt.Sprintf("agent %q not available", agentID)}
	}

	prompt := "Execute this SPL search: " + searchQuery
	resp, err := agent.Execute(ctx, prompt)
	if err != nil {
		log.Error("query execution failed", "agent_id", agentID, "error", err)
		return result.TaskResult{TaskID: taskID, Success: false, Error: err.Error()}
	}
	if !resp.Success {
		return result.TaskResult{TaskID: taskID, Success: false, Error: resp.Error}
	}
	return result.TaskResult{
		TaskID:  taskID,
		Success: true,
		Data:    resp.Data,
		Metadata: map[string]any{
			"agent_used": agentID,
			"query":      searchQuery,
			"tool_name":  toolName,
			"parameters": parameters,
		},
	}
}

// Synthesize asks agentID (e.g. result_synthesizer) to turn raw
// technical results into business-level insight data.
func (c *Coordinator) Synthesize(ctx context.Context, data map[string]any, context_ string, agentID string) map[string]any {
	log := logger.FromContext(ctx)
	agent, found := c.GetAgent(ctx, agentID)
	if !found {
		return map[string]any{"error": fmt.Sprintf("agent %q not available", agentID), "success": false}
	}

	prompt := fmt.Sprintf("Please synthesize these technical search results into business insights:\n\nContext: %s\n\nResults: %v", context_, data)
	resp, err := agent.Execute(ctx, prompt)
	if err != nil {
		log.Error("synthesis failed", "agent_id", agentID, "error", err)
		return map[string]any{"error": err.Error(), "synthesis": "failed to synthesize results"}
	}
	if !resp.Success {
		return map[string]any{"error": resp.Error, "synthesis": "failed to synthesize results"}
	}
	if resp.Data != nil {
		return resp.Data
	}
	return map[string]any{"synthesis_performed": true, "context": context_, "agent": agentID}
}

// LoadContextResources loads every resource, highest priority first,
// and returns a map keyed by resource ID. A resource that fails to
// load is logged and skipped rather than aborting the whole load.
func (c *Coordinator) LoadContextResources(ctx context.Context, resources []template.ContextResource) map[string]any {
	log := logger.FromContext(ctx)
	sorted := append([]template.ContextResource{}, resources...)
	sortByPriorityDesc(sorted)

	loaded := make(map[string]any, len(sorted))
	for _, r := range sorted {
		data, err := c.loadOneResource(ctx, r)
		if err != nil {
			log.Error("failed to load context resource", "resource_id", r.ID, "error", err)
			continue
		}
		loaded[r.ID] = map[string]any{
			"type":        r.Type,
			"description": r.Description,
			"data":        data,
			"priority":    r.Priority,
		}
	}
	return loaded
}

func sortByPriorityDesc(resources []template.ContextResource) {
	for i := 1; i < len(resources); i++ {
		for j := i; j > 0 && resources[j-1].Priority < resources[j].Priority; j-- {
			resources[j-1], resources[j] = resources[j], resources[j-1]
		}
	}
}

func (c *Coordinator) loadOneResource(ctx context.Context, r template.ContextResource) (map[string]any, error) {
	switch r.Type {
	case "tool":
		if c.tools == nil {
			return map[string]any{"tool_name": r.ID, "parameters": r.Parameters, "integration_status": "no tool client configured"}, nil
		}
		out, err := c.tools.CallTool(ctx, r.ID, r.Parameters)
		if err != nil {
			return nil, err
		}
		return out, nil
	case "documentation":
		return map[string]any{"doc_id": r.ID, "content_ready": true}, nil
	case "reference":
		return map[string]any{"reference_id": r.ID, "material_ready": true}, nil
	default:
		return nil, fmt.Errorf("unknown context resource type %q", r.Type)
	}
}

// WithToolClient attaches an MCP-backed ToolClient used to resolve
// "tool" typed context resources.
func (c *Coordinator) WithToolClient(tc ToolClient) *Coordinator {
	c.tools = tc
	return c
}
