package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/resolver"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/result"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/template"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/pkg/logger"
)

// executeLLMLoopTask drives a bounded iterative loop: load context
// resources, build a dynamic prompt, then repeatedly ask the task's
// validation agent to take one step until max_iterations is reached or
// a step fails (spec.md §4.6.4). The agent's response is not inspected
// for a completion signal; the final step is marked complete by count.
func (e *Engine) executeLLMLoopTask(ctx context.Context, task template.Task, res *resolver.Resolver) result.TaskResult {
	log := logger.FromContext(ctx)
	loop := task.LLMLoop

	loaded := e.coordinator.LoadContextResources(ctx, task.ContextResources)
	prompt := buildDynamicPrompt(task, loaded, res)

	var steps []result.LLMStepResult
	complete := false
	agentID := stepAgent(task)

	for step := 1; step <= maxOr(loop.MaxIterations, 1) && !complete; step++ {
		log.Debug("llm loop step", "task_id", task.TaskID, "step", step)
		sr := e.executeLLMStep(ctx, task, prompt, agentID, step)
		steps = append(steps, sr)
		complete = sr.StepComplete || sr.NextAction == "complete"
	}

	return result.TaskResult{
		TaskID:  task.TaskID,
		Success: complete,
		Data: map[string]any{
			"steps_executed":          len(steps),
			"context_resources_loaded": len(loaded),
		},
		Metadata: map[string]any{
			"llm_loop_enabled": true,
			"bounded_execution": loop.BoundedExecution,
			"consistency_checks": loop.ConsistencyChecks,
		},
		LLMSteps: steps,
	}
}

func stepAgent(task template.Task) string {
	if task.Validation != nil && task.Validation.Agent != "" {
		return task.Validation.Agent
	}
	if task.ResultInterpretation != nil && task.ResultInterpretation.Agent != "" {
		return task.ResultInterpretation.Agent
	}
	return "splunk_mcp"
}

func (e *Engine) executeLLMStep(ctx context.Context, task template.Task, prompt, agentID string, step int) result.LLMStepResult {
	stepPrompt := fmt.Sprintf("%s\n\nThis is loop step %d of %d.", prompt, step, task.LLMLoop.MaxIterations)
	agent, ok := e.coordinator.GetAgent(ctx, agentID)
	if !ok {
		return result.LLMStepResult{StepNumber: step, NextAction: "error", StepComplete: true}
	}
	resp, err := agent.Execute(ctx, stepPrompt)
	if err != nil || !resp.Success {
		return result.LLMStepResult{StepNumber: step, NextAction: "error", StepComplete: true}
	}
	next := "continue"
	if step >= task.LLMLoop.MaxIterations {
		next = "complete"
	}
	return result.LLMStepResult{
		StepNumber:    step,
		ToolUsed:      task.Tool,
		ToolOutput:    resp.Data,
		LLMReasoning:  resp.OptimizedQuery,
		NextAction:    next,
		StepComplete:  next == "complete",
		ContextLoaded: true,
	}
}

// buildDynamicPrompt combines the task's resolved metadata, its
// allowed_tools, the loaded context descriptions, and the resolved
// llm_loop.prompt template into one step-zero prompt (spec.md §4.6.6
// step 2).
func buildDynamicPrompt(task template.Task, loaded map[string]any, res *resolver.Resolver) string {
	var ctxDesc []string
	for id, v := range loaded {
		entry, _ := v.(map[string]any)
		ctxDesc = append(ctxDesc, fmt.Sprintf("- %s: %v", id, entry["description"]))
	}

	title, _ := res.ResolveString(task.Title, nil)
	description, _ := res.ResolveString(task.Description, nil)
	goal, _ := res.ResolveString(task.Goal, nil)
	instructions := task.DynamicInstructions
	if instructions == "" {
		instructions = "Follow the task goal and description."
	}
	instructions, _ = res.ResolveString(instructions, nil)
	loopPrompt, _ := res.ResolveString(task.LLMLoop.Prompt, nil)

	var b strings.Builder
	fmt.Fprintf(&b, "You are executing task: %s - %s\n\n", task.TaskID, title)
	fmt.Fprintf(&b, "Task Description: %s\nGoal: %s\n", description, goal)
	fmt.Fprintf(&b, "Allowed Tools: %s\n\n", strings.Join(task.LLMLoop.AllowedTools, ", "))
	fmt.Fprintf(&b, "Context Resources Available:\n%s\n\n", strings.Join(ctxDesc, "\n"))
	if loopPrompt != "" {
		fmt.Fprintf(&b, "Loop Prompt: %s\n\n", loopPrompt)
	}
	fmt.Fprintf(&b, "Instructions: %s\n\nMaximum %d iterations. Validate each step before proceeding.", instructions, task.LLMLoop.MaxIterations)
	return b.String()
}

func maxOr(n, fallback int) int {
	if n <= 0 {
		return fallback
	}
	return n
}
