// Package factory is the Dynamic Agent Factory: it turns every
// discovered workflow into a uniformly-shaped executor agent exposing
// a single execute_workflow tool (spec.md §4.7), grounded on the
// original's DynamicFlowPilotFactory and FlowPilot
// (flow_pilot/dynamic_factory.py, flow_pilot/agent.py).
package factory

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/discovery"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/flow"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/result"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/template"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/pkg/logger"
)

var nonIdentifier = regexp.MustCompile(`[^a-zA-Z0-9_]`)
var indexPattern = regexp.MustCompile(`(?i)index[=\s]+([a-zA-Z0-9_\-]+)`)

// WorkflowExecutorAgent is the uniform shape every discovered workflow
// is wrapped in: one execute_workflow(request) -> string tool.
type WorkflowExecutorAgent struct {
	Name         string
	Template     *template.Template
	Instructions string

	engine *flow.Engine
}

// Build wraps a discovered workflow into a WorkflowExecutorAgent,
// sanitizing and prefixing its name and generating deterministic
// instructions from the template's phases, dependencies, and optional
// workflow_instructions block.
func Build(dw *discovery.DiscoveredWorkflow, eng *flow.Engine) *WorkflowExecutorAgent {
	name := generateAgentName(dw.Template)
	return &WorkflowExecutorAgent{
		Name:         name,
		Template:     dw.Template,
		Instructions: generateInstructions(name, dw.Template),
		engine:       eng,
	}
}

func generateAgentName(tmpl *template.Template) string {
	base := tmpl.Name
	for _, suffix := range []string{" Flow", "Flow ", " Workflow", "Workflow "} {
		base = strings.ReplaceAll(base, suffix, "")
	}
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.ReplaceAll(base, "-", "_")
	name := sanitizeName(base)

	if tmpl.Source == template.SourceContrib {
		name = "Contrib_" + name
	}
	return name
}

// sanitizeName mirrors the original's FlowPilot._sanitize_name: replace
// every non [A-Za-z0-9_] rune with '_', trim leading and trailing
// underscores, then prefix an underscore if the result doesn't start
// with a letter or underscore (spec.md §4.7) — a digit-leading
// workflow name would otherwise sanitize into an invalid identifier.
func sanitizeName(name string) string {
	cleaned := nonIdentifier.ReplaceAllString(name, "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		return cleaned
	}
	first := rune(cleaned[0])
	if !unicode.IsLetter(first) && first != '_' {
		cleaned = "_" + cleaned
	}
	return cleaned
}

func generateInstructions(name string, tmpl *template.Template) string {
	var phaseLines []string
	for i, phaseName := range tmpl.CorePhases.Names() {
		phase, _ := tmpl.CorePhases.Get(phaseName)
		phaseLines = append(phaseLines, fmt.Sprintf("- Phase %d: %s", i+1, phase.Name))
	}

	var deps []string
	for dep := range tmpl.AgentDependencies {
		deps = append(deps, dep+"_agent")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s - a workflow execution agent that executes %s.\n\n", name, tmpl.Name)
	fmt.Fprintf(&b, "Workflow overview:\n%s\n\n", tmpl.Description)
	fmt.Fprintf(&b, "When a user requests workflow execution, IMMEDIATELY call the execute_workflow tool with their request. Do not respond without calling it first.\n\n")
	fmt.Fprintf(&b, "Workflow phases:\n%s\n\n", strings.Join(phaseLines, "\n"))
	fmt.Fprintf(&b, "This workflow coordinates with: %s\n", strings.Join(deps, ", "))
	b.WriteString(workflowSpecificInstructions(tmpl))

	return strings.TrimSpace(b.String())
}

func workflowSpecificInstructions(tmpl *template.Template) string {
	if tmpl.WorkflowInstructions == nil {
		return "\nUniversal workflow execution: follow the workflow template precisely, adapt to its specific requirements, and provide comprehensive analysis.\n"
	}
	wi := tmpl.WorkflowInstructions
	specialization := wi.Specialization
	if specialization == "" {
		specialization = "Workflow specialization"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", specialization)
	for _, area := range wi.FocusAreas {
		fmt.Fprintf(&b, "- %s\n", area)
	}
	return b.String()
}

// ExtractParameters pulls well-known placeholder values out of a free
// text request (e.g. "analyze index=main" -> {"TARGET": "main"}).
func ExtractParameters(request string) map[string]string {
	params := map[string]string{}
	if m := indexPattern.FindStringSubmatch(request); m != nil {
		params["TARGET"] = m[1]
	}
	return params
}

// ExecuteWorkflow is the agent's single tool: it extracts parameters
// from request, runs the wrapped template through the Flow Engine, and
// formats the outcome as a textual response for the calling agent
// framework, never raw structured data.
func (a *WorkflowExecutorAgent) ExecuteWorkflow(ctx context.Context, request string) string {
	log := logger.FromContext(ctx)
	log.Info("executing workflow via factory agent", "agent", a.Name, "workflow", a.Template.Name)

	execContext := ExtractParameters(request)
	res := a.engine.Execute(ctx, a.Template, execContext, nil)
	return formatResult(a.Name, a.Template.Name, res, request)
}

func formatResult(agentName, workflowName string, res *result.FlowExecutionResult, originalRequest string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s completed %s\n", agentName, workflowName)
	fmt.Fprintf(&b, "Request: %s\n", originalRequest)
	fmt.Fprintf(&b, "Success: %t | Phases: %d | Duration: %s\n\n", res.Success, len(res.Phases), res.TotalExecutionTime)

	for _, phase := range res.Phases {
		fmt.Fprintf(&b, "Phase: %s (success=%t)\n", phase.PhaseName, phase.Success)
		for _, task := range phase.Tasks {
			if task.Success {
				fmt.Fprintf(&b, "  task %s: ok\n", task.TaskID)
			} else {
				fmt.Fprintf(&b, "  task %s: error: %s\n", task.TaskID, task.Error)
			}
		}
	}
	if res.ErrorSummary != "" {
		fmt.Fprintf(&b, "\nError summary: %s\n", res.ErrorSummary)
	}
	return b.String()
}
