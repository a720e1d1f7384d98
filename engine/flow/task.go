package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/resolver"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/result"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/template"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/pkg/logger"
)

var searchTools = map[string]bool{"run_oneshot_search": true, "run_splunk_search": true}

// executeTask runs one task outside of a parallel fan-out phase.
func (e *Engine) executeTask(ctx context.Context, task template.Task, res *resolver.Resolver) result.TaskResult {
	if task.LLMLoop != nil && task.LLMLoop.Enabled {
		return e.executeLLMLoopTask(ctx, task, res)
	}
	if task.ExecutionMode == template.ExecutionModePerFanOut {
		return e.executePerFanOutTask(ctx, task, res)
	}
	return e.executeRegularTask(ctx, task, res)
}

func (e *Engine) executeRegularTask(ctx context.Context, task template.Task, res *resolver.Resolver) result.TaskResult {
	log := logger.FromContext(ctx)
	start := time.Now()

	resolvedQuery, err := res.ResolveString(task.SearchQuery, nil)
	if err != nil {
		return result.TaskResult{TaskID: task.TaskID, Success: false, Error: err.Error()}
	}
	resolvedParams, err := res.ResolveParameters(task.Parameters, nil)
	if err != nil {
		return result.TaskResult{TaskID: task.TaskID, Success: false, Error: err.Error()}
	}

	if task.Validation != nil && task.Validation.ValidateSyntax && resolvedQuery != "" {
		validated, ok, errMsg := e.coordinator.ValidateQuery(ctx, resolvedQuery, task.Validation.Agent)
		if !ok {
			return result.TaskResult{TaskID: task.TaskID, Success: false, Error: "search validation failed: " + errMsg}
		}
		resolvedQuery = validated
	}

	if resolvedQuery != "" && searchTools[task.Tool] {
		searchResult := e.coordinator.ExecuteQuery(ctx, task.TaskID, resolvedQuery, resolvedParams, "splunk_mcp", task.Tool)
		if !searchResult.Success {
			return searchResult
		}

		var interpretation map[string]any
		if task.ResultInterpretation != nil && task.ResultInterpretation.InterpretResults {
			interpretation = e.coordinator.Synthesize(ctx, searchResult.Data, task.Goal, task.ResultInterpretation.Agent)
		}

		log.Debug("task executed", "task_id", task.TaskID)
		return result.TaskResult{
			TaskID:  task.TaskID,
			Success: true,
			Data: map[string]any{
				"search_results": searchResult.Data,
				"resolved_query": resolvedQuery,
				"interpretation": interpretation,
			},
			Metadata:      searchResult.Metadata,
			ExecutionTime: time.Since(start),
		}
	}

	return result.TaskResult{
		TaskID:        task.TaskID,
		Success:       true,
		Data:          map[string]any{"message": fmt.Sprintf("task %s executed successfully", task.TaskID)},
		Metadata:      map[string]any{"task_type": "non_search"},
		ExecutionTime: time.Since(start),
	}
}

// executePerFanOutTask re-runs task once per entry in the resolver's
// AxisOrigin discovery set (e.g. once per discovered sourcetype). An
// empty discovery set is not a failure — the spec.md §8 case reports
// the task as successfully awaiting discovery data.
func (e *Engine) executePerFanOutTask(ctx context.Context, task template.Task, res *resolver.Resolver) result.TaskResult {
	origins := res.Discovered(resolver.AxisOrigin)
	start := time.Now()

	if len(origins) == 0 {
		return result.TaskResult{
			TaskID:  task.TaskID,
			Success: true,
			Data: map[string]any{
				"message":             fmt.Sprintf("per-fan-out task ready: %s", task.TaskID),
				"execution_mode":      string(template.ExecutionModePerFanOut),
				"integration_status":  "awaiting discovery data",
			},
			Metadata:      map[string]any{"execution_mode": string(template.ExecutionModePerFanOut), "awaiting_discovery": true},
			ExecutionTime: time.Since(start),
		}
	}

	allData := make([]map[string]any, 0, len(origins))
	success := true
	for _, origin := range origins {
		sub := e.executeRegularTask(ctx, task, res.WithOverride(map[string]string{"ORIGIN": origin}))
		if !sub.Success {
			success = false
		}
		allData = append(allData, map[string]any{"origin": origin, "result": sub.Data, "success": sub.Success})
	}

	return result.TaskResult{
		TaskID:        task.TaskID,
		Success:       success,
		Data:          map[string]any{"per_fan_out_results": allData},
		Metadata:      map[string]any{"execution_mode": string(template.ExecutionModePerFanOut), "fan_out_count": len(origins)},
		ExecutionTime: time.Since(start),
	}
}
