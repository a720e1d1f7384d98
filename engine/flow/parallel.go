package flow

import (
	"context"
	"errors"

	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/microagent"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/resolver"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/result"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/template"
)

// executeTasksParallel fans phase's non-per-fan-out tasks out through
// the Micro-Agent Builder (spec.md §4.5, §4.6.2); per-fan-out tasks
// run sequentially afterward since they manage their own internal
// iteration.
func (e *Engine) executeTasksParallel(ctx context.Context, phase template.Phase, res *resolver.Resolver, onProgress result.ProgressCallback) []result.TaskResult {
	var regular, perFanOut []template.Task
	for _, t := range phase.Tasks {
		if t.ExecutionMode == template.ExecutionModePerFanOut {
			perFanOut = append(perFanOut, t)
		} else {
			regular = append(regular, t)
		}
	}

	var taskResults []result.TaskResult
	if len(regular) > 0 {
		taskResults = append(taskResults, e.executeRegularTasksParallel(ctx, regular, phase.MaxParallel, res, onProgress)...)
	}
	for _, t := range perFanOut {
		taskResults = append(taskResults, e.executePerFanOutTask(ctx, t, res))
	}
	return taskResults
}

func (e *Engine) executeRegularTasksParallel(ctx context.Context, tasks []template.Task, maxParallel int, res *resolver.Resolver, onProgress result.ProgressCallback) []result.TaskResult {
	if maxParallel < 1 {
		maxParallel = e.cfg.DefaultMaxParallel
	}

	contextSnapshot := res.Snapshot()
	configs := make([]microagent.Config, len(tasks))
	for i, t := range tasks {
		configs[i] = microagent.Build(t, contextSnapshot, e.cfg, func(s string, ctx map[string]string) string {
			out, _ := res.ResolveString(s, nil)
			return out
		})
	}

	exec := e.runMicroAgent
	if e.metrics != nil {
		base := exec
		exec = func(ctx context.Context, cfg microagent.Config) (map[string]any, error) {
			e.metrics.MicroAgentsInFlight.Inc()
			defer e.metrics.MicroAgentsInFlight.Dec()
			return base(ctx, cfg)
		}
	}
	microResults := microagent.RunParallel(ctx, configs, maxParallel, exec, onProgress)

	taskResults := make([]result.TaskResult, len(microResults))
	for i, mr := range microResults {
		execType := mr.ExecutionType
		if t, ok := mr.Data["execution_type"].(string); ok {
			execType = t
		}
		taskResults[i] = result.TaskResult{
			TaskID:        mr.TaskID,
			Success:       mr.Success,
			Data:          mr.Data,
			Error:         mr.Error,
			ExecutionTime: mr.ExecutionTime,
			Metadata: map[string]any{
				"execution_type":  execType,
				"agent_name":      mr.AgentName,
				"timeout_occurred": mr.TimeoutOccurred,
			},
		}
	}
	return taskResults
}

// runMicroAgent is the microagent.Executor the flow engine supplies:
// it tries the splunk_mcp agent first and falls back to direct
// coordinator execution if that agent cannot be resolved at all,
// mirroring the original's LlmAgent-creation-failure escape hatch.
func (e *Engine) runMicroAgent(ctx context.Context, cfg microagent.Config) (map[string]any, error) {
	agent, ok := e.coordinator.GetAgent(ctx, "splunk_mcp")
	if !ok {
		data, err := microagent.DirectCoordination(ctx, e.coordinator, cfg)
		if err != nil {
			return nil, err
		}
		if data == nil {
			data = map[string]any{}
		}
		data["execution_type"] = "direct_agent_coordination"
		return data, nil
	}

	resp, err := agent.Execute(ctx, cfg.Instructions)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.New(resp.Error)
	}
	data := resp.Data
	if data == nil {
		data = map[string]any{}
	}
	data["execution_type"] = "parallel_micro_agent"
	return data, nil
}
