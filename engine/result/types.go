// Package result defines the execution-result shapes shared across the
// coordinator, micro-agent, and flow-engine packages (spec.md §3),
// kept separate so none of those packages needs to import another to
// speak about task/phase/workflow outcomes.
package result

import "time"

// TaskResult is the outcome of one task execution.
type TaskResult struct {
	TaskID        string         `json:"task_id"`
	Success       bool           `json:"success"`
	Data          map[string]any `json:"data,omitempty"`
	Error         string         `json:"error,omitempty"`
	ExecutionTime time.Duration  `json:"execution_time"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	LLMSteps      []LLMStepResult `json:"llm_steps,omitempty"`
}

// LLMStepResult records one bounded iteration of an llm_loop task.
type LLMStepResult struct {
	StepNumber    int    `json:"step_number"`
	ToolUsed      string `json:"tool_used,omitempty"`
	ToolOutput    any    `json:"tool_output,omitempty"`
	LLMReasoning  string `json:"llm_reasoning,omitempty"`
	NextAction    string `json:"next_action,omitempty"`
	StepComplete  bool   `json:"step_complete"`
	ContextLoaded bool   `json:"context_loaded"`
}

// PhaseResult is the outcome of one phase's tasks.
type PhaseResult struct {
	PhaseName     string        `json:"phase_name"`
	Success       bool          `json:"success"`
	Tasks         []TaskResult  `json:"tasks"`
	ExecutionTime time.Duration `json:"execution_time"`
}

// RuntimeContext holds the Flow Engine's per-invocation mutable state
// beyond the Resolver's own workflow map and discovery sets: the
// per-phase synthesis records built by synthesizePhase, keyed by
// "<phase_name>_synthesis" (spec.md §3, §4.6.4). Owned single-writer by
// the Flow Engine for the lifetime of one Execute call.
type RuntimeContext struct {
	PhaseSynthesis map[string]map[string]any
}

// NewRuntimeContext builds an empty RuntimeContext ready for one
// Execute invocation.
func NewRuntimeContext() *RuntimeContext {
	return &RuntimeContext{PhaseSynthesis: map[string]map[string]any{}}
}

// FlowExecutionResult is returned to the caller of Flow Engine Execute.
type FlowExecutionResult struct {
	WorkflowName       string         `json:"workflow_name"`
	Success            bool           `json:"success"`
	Phases             []PhaseResult  `json:"phases"`
	SynthesizedOutput  map[string]any `json:"synthesized_output,omitempty"`
	TotalExecutionTime time.Duration  `json:"total_execution_time"`
	ErrorSummary       string         `json:"error_summary,omitempty"`
}

// ProgressStatus is the lifecycle stage a ProgressEvent reports.
type ProgressStatus string

const (
	StatusStarting   ProgressStatus = "starting"
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
	StatusError      ProgressStatus = "error"
)

// ProgressEvent is emitted for streaming UIs. Consumers must tolerate
// unknown Status values (spec.md §6).
type ProgressEvent struct {
	PhaseName string         `json:"phase_name"`
	TaskID    string         `json:"task_id,omitempty"`
	Message   string         `json:"message"`
	Status    ProgressStatus `json:"status"`
	Data      map[string]any `json:"data,omitempty"`
}

// ProgressCallback receives best-effort progress notifications; panics
// and errors from callbacks must never propagate (spec.md §5, §7).
type ProgressCallback func(ProgressEvent)

// MicroAgentResult is one ephemeral micro-agent's outcome, later mapped
// onto a TaskResult by the Flow Engine (spec.md §4.5, §4.6.1).
type MicroAgentResult struct {
	TaskID          string         `json:"task_id"`
	AgentName       string         `json:"agent_name"`
	Success         bool           `json:"success"`
	Data            map[string]any `json:"data,omitempty"`
	Error           string         `json:"error,omitempty"`
	ExecutionTime   time.Duration  `json:"execution_time"`
	TimeoutOccurred bool           `json:"timeout_occurred"`
	ExecutionType   string         `json:"execution_type"`
}
