// Package microagent synthesizes ephemeral per-task agent
// configurations and fans them out with bounded concurrency (spec.md
// §4.5), grounded on the original's MicroAgentBuilder
// (micro_agent_builder.py).
package microagent

import (
	"fmt"
	"strings"

	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/template"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/pkg/config"
)

// mcpToolMapping names the tools that run over the Splunk MCP server,
// so instructions can group them under one call-directly section
// (spec.md §4.5's composite tool set).
var mcpToolMapping = map[string]bool{
	"run_oneshot_search":       true,
	"run_splunk_search":        true,
	"get_spl_reference":        true,
	"get_splunk_documentation": true,
	"list_spl_commands":        true,
	"get_splunk_cheat_sheet":   true,
}

// Config is a synthesized, ephemeral agent configuration for one task.
type Config struct {
	Name         string
	TaskID       string
	Instructions string
	AllowedTools []string
	Timeout      int
	Model        string
	Temperature  float64
	MaxTokens    int
	Parameters   map[string]any
	SearchQuery  string
	Context      map[string]string
}

// Build synthesizes a Config for task, resolving placeholders against
// phaseContext via resolve.
func Build(task template.Task, phaseContext map[string]string, cfg *config.Config, resolve func(string, map[string]string) string) Config {
	resolved := func(s string) string {
		if resolve == nil || s == "" {
			return s
		}
		return resolve(s, phaseContext)
	}

	timeout := task.TimeoutSec
	if timeout == 0 {
		timeout = int(cfg.MicroAgentTimeout.Seconds())
	}

	return Config{
		Name:         fmt.Sprintf("MicroAgent_%s", task.TaskID),
		TaskID:       task.TaskID,
		Instructions: buildInstructions(task, phaseContext, resolved),
		AllowedTools: allowedTools(task),
		Timeout:      timeout,
		Model:        cfg.Model.PrimaryModel,
		Temperature:  cfg.Model.Temperature,
		MaxTokens:    cfg.Model.MaxTokens,
		Parameters:   task.Parameters,
		SearchQuery:  resolved(task.SearchQuery),
		Context:      phaseContext,
	}
}

func allowedTools(task template.Task) []string {
	if task.LLMLoop != nil && len(task.LLMLoop.AllowedTools) > 0 {
		out := make([]string, len(task.LLMLoop.AllowedTools))
		copy(out, task.LLMLoop.AllowedTools)
		return out
	}

	var tools []string
	if task.Tool != "" {
		tools = append(tools, task.Tool)
	}
	if task.Validation != nil && task.Validation.ValidateSyntax {
		tools = append(tools, "search_guru", "get_spl_reference")
	}
	if task.ResultInterpretation != nil && task.ResultInterpretation.InterpretResults {
		tools = append(tools, "result_synthesizer")
	}
	if task.SearchQuery != "" {
		for _, t := range []string{"splunk_mcp", "run_oneshot_search", "run_splunk_search"} {
			if !contains(tools, t) {
				tools = append(tools, t)
			}
		}
	}
	if len(tools) == 0 {
		return []string{"splunk_mcp"}
	}
	return tools
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func buildInstructions(task template.Task, phaseContext map[string]string, resolved func(string) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a specialized micro agent executing task: %s - %s\n\n", task.TaskID, resolved(task.Title))
	fmt.Fprintf(&b, "Task Description: %s\n", resolved(task.Description))
	fmt.Fprintf(&b, "Goal: %s\n\n", resolved(task.Goal))
	fmt.Fprintf(&b, "Context: TARGET = %s\n\n", valueOr(phaseContext["TARGET"], "N/A"))

	instructions := task.DynamicInstructions
	if instructions == "" {
		instructions = "Execute the task according to the goal and description."
	}
	fmt.Fprintf(&b, "Your Mission:\n%s\n", resolved(instructions))

	if task.LLMLoop != nil && task.LLMLoop.Enabled {
		writeLLMLoopSection(&b, task, resolved)
	}
	if task.SearchQuery != "" {
		fmt.Fprintf(&b, "\nSearch Task Details:\nBase query: %s\nExecution mode: %s\n", resolved(task.SearchQuery), valueOr(string(task.ExecutionMode), "standard"))
	}

	return strings.TrimSpace(b.String())
}

func writeLLMLoopSection(b *strings.Builder, task template.Task, resolved func(string) string) {
	loop := task.LLMLoop
	var mcpTools, directTools []string
	for _, t := range loop.AllowedTools {
		if mcpToolMapping[t] {
			mcpTools = append(mcpTools, t)
		} else {
			directTools = append(directTools, t)
		}
	}

	fmt.Fprintf(b, "\nLLM Loop Configuration:\nMaximum iterations: %d\nStep validation: %t\n", loop.MaxIterations, loop.StepValidation)
	if len(mcpTools) > 0 {
		fmt.Fprintf(b, "Available MCP tools (call directly): %s\n", strings.Join(mcpTools, ", "))
	}
	if len(directTools) > 0 {
		fmt.Fprintf(b, "Direct tools: %s\n", strings.Join(directTools, ", "))
	}
	prompt := loop.Prompt
	if prompt == "" {
		prompt = "Use iterative reasoning to achieve the task goal."
	}
	fmt.Fprintf(b, "LLM loop instructions:\n%s\n", resolved(prompt))
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
