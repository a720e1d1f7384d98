// Package template defines the workflow template data model (spec.md §3)
// and its validator (spec.md §4.1).
package template

// Source classifies where a template came from.
type Source string

const (
	SourceCore    Source = "core"
	SourceContrib Source = "contrib"
)

// Type is the workflow's declared analytical purpose.
type Type string

const (
	TypeAnalysis        Type = "analysis"
	TypeTroubleshooting Type = "troubleshooting"
	TypePerformance     Type = "performance"
	TypeMonitoring      Type = "monitoring"
	TypeOnboarding      Type = "onboarding"
	TypeSecurity        Type = "security"
)

// Category buckets workflows by subject matter.
type Category string

const (
	CategoryDataAnalysis              Category = "data_analysis"
	CategorySystemHealth              Category = "system_health"
	CategorySecurityAudit             Category = "security_audit"
	CategoryPerformanceTuning         Category = "performance_tuning"
	CategoryInfrastructureMonitoring  Category = "infrastructure_monitoring"
)

// Stability communicates how safe a template is to run unattended.
type Stability string

const (
	StabilityStable       Stability = "stable"
	StabilityExperimental Stability = "experimental"
	StabilityDeprecated   Stability = "deprecated"
)

// Complexity signals how much domain knowledge the operator needs.
type Complexity string

const (
	ComplexityBeginner     Complexity = "beginner"
	ComplexityIntermediate Complexity = "intermediate"
	ComplexityAdvanced     Complexity = "advanced"
	ComplexityExpert       Complexity = "expert"
)

// ExecutionMode controls how the Flow Engine dispatches a task.
type ExecutionMode string

const (
	ExecutionModeDefault    ExecutionMode = "default"
	ExecutionModePerFanOut  ExecutionMode = "per-fan-out"
)

// DataRequirements describes the minimum data footprint a workflow needs.
type DataRequirements struct {
	MinimumEvents       *int     `json:"minimum_events,omitempty"       yaml:"minimum_events,omitempty"`
	RequiredSourcetypes []string `json:"required_sourcetypes,omitempty" yaml:"required_sourcetypes,omitempty"`
	OptionalFields      []string `json:"optional_fields,omitempty"      yaml:"optional_fields,omitempty"`
}

// AgentDependency declares one named external agent a template relies on.
type AgentDependency struct {
	AgentID           string   `json:"agent_id"                     yaml:"agent_id"                     validate:"required"`
	Description       string   `json:"description"                  yaml:"description"                  validate:"required"`
	Required          bool     `json:"required"                     yaml:"required"`
	Capabilities      []string `json:"capabilities,omitempty"        yaml:"capabilities,omitempty"`
	IntegrationPoints []string `json:"integration_points,omitempty"  yaml:"integration_points,omitempty"`
	Tools             []string `json:"tools,omitempty"               yaml:"tools,omitempty"`
}

// WorkflowInstructions tailors the Dynamic Agent Factory's generated
// instructions (supplemented from original_source/, see SPEC_FULL.md).
type WorkflowInstructions struct {
	Specialization string   `json:"specialization" yaml:"specialization"`
	FocusAreas     []string `json:"focus_areas"    yaml:"focus_areas"`
	ExecutionStyle string   `json:"execution_style" yaml:"execution_style"`
	Domain         string   `json:"domain"         yaml:"domain"`
}

// ValidationContract asks a named agent to check (and possibly rewrite)
// a task's query before execution.
type ValidationContract struct {
	Agent               string   `json:"agent"                          yaml:"agent"                          validate:"required"`
	ValidateSyntax      bool     `json:"validate_syntax,omitempty"       yaml:"validate_syntax,omitempty"`
	OptimizePerformance bool     `json:"optimize_performance,omitempty"  yaml:"optimize_performance,omitempty"`
	PerFanOutValidation bool     `json:"per_fan_out_validation,omitempty" yaml:"per_fan_out_validation,omitempty"`
	Criteria            []string `json:"criteria,omitempty"              yaml:"criteria,omitempty"`
}

// InterpretationContract asks a named agent to interpret a task's raw
// results into insights.
type InterpretationContract struct {
	Agent            string         `json:"agent"                       yaml:"agent"                       validate:"required"`
	InterpretResults bool           `json:"interpret_results,omitempty"  yaml:"interpret_results,omitempty"`
	GenerateInsights bool           `json:"generate_insights,omitempty"  yaml:"generate_insights,omitempty"`
	Prompt           string         `json:"prompt,omitempty"             yaml:"prompt,omitempty"`
	OutputFormat     map[string]any `json:"output_format,omitempty"      yaml:"output_format,omitempty"`
	Format           string         `json:"format,omitempty"             yaml:"format,omitempty"`
}

// LLMLoopConfig bounds an ephemeral micro-agent's iterative execution.
type LLMLoopConfig struct {
	Enabled           bool     `json:"enabled"                      yaml:"enabled"`
	MaxIterations     int      `json:"max_iterations,omitempty"     yaml:"max_iterations,omitempty"`
	AllowedTools      []string `json:"allowed_tools,omitempty"      yaml:"allowed_tools,omitempty"`
	ContextResources  []string `json:"context_resources,omitempty"  yaml:"context_resources,omitempty"`
	Prompt            string   `json:"prompt,omitempty"             yaml:"prompt,omitempty"`
	StepValidation    bool     `json:"step_validation,omitempty"    yaml:"step_validation,omitempty"`
	BoundedExecution  bool     `json:"bounded_execution,omitempty"  yaml:"bounded_execution,omitempty"`
	ConsistencyChecks bool     `json:"consistency_checks,omitempty" yaml:"consistency_checks,omitempty"`
}

// ContextResource is loaded by the Agent Coordinator before an LLM-loop
// task starts, in descending Priority order.
type ContextResource struct {
	Type        string         `json:"type"                 yaml:"type"                 validate:"required,oneof=tool documentation reference"`
	ID          string         `json:"id"                   yaml:"id"                   validate:"required"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Priority    int            `json:"priority,omitempty"   yaml:"priority,omitempty"`
}

// Task is the smallest unit of work the Flow Engine dispatches.
type Task struct {
	TaskID               string                   `json:"task_id"                         yaml:"task_id"                         validate:"required"`
	Title                string                   `json:"title"                            yaml:"title"                            validate:"required"`
	Goal                 string                   `json:"goal"                             yaml:"goal"                             validate:"required"`
	Tool                 string                   `json:"tool"                             yaml:"tool"                             validate:"required"`
	Description          string                   `json:"description,omitempty"            yaml:"description,omitempty"`
	SearchQuery          string                   `json:"search_query,omitempty"           yaml:"search_query,omitempty"`
	Parameters           map[string]any           `json:"parameters,omitempty"             yaml:"parameters,omitempty"`
	TimeoutSec           int                      `json:"timeout_sec,omitempty"            yaml:"timeout_sec,omitempty"`
	ExecutionMode        ExecutionMode            `json:"execution_mode,omitempty"          yaml:"execution_mode,omitempty"`
	Validation           *ValidationContract      `json:"validation,omitempty"              yaml:"validation,omitempty"`
	ResultInterpretation *InterpretationContract  `json:"result_interpretation,omitempty"   yaml:"result_interpretation,omitempty"`
	LLMLoop              *LLMLoopConfig           `json:"llm_loop,omitempty"                yaml:"llm_loop,omitempty"`
	ContextResources     []ContextResource        `json:"context_resources,omitempty"       yaml:"context_resources,omitempty"`
	AnalysisFocus        []string                 `json:"analysis_focus,omitempty"          yaml:"analysis_focus,omitempty"`
	DynamicInstructions  string                   `json:"dynamic_instructions,omitempty"    yaml:"dynamic_instructions,omitempty"`
}

// Phase is an ordered group of tasks sharing a stage of analysis.
type Phase struct {
	Name          string         `json:"name"                     yaml:"name"                     validate:"required"`
	Description   string         `json:"description"              yaml:"description"              validate:"required"`
	Mandatory     bool           `json:"mandatory"                yaml:"mandatory"`
	Parallel      bool           `json:"parallel,omitempty"        yaml:"parallel,omitempty"`
	MaxParallel   int            `json:"max_parallel,omitempty"    yaml:"max_parallel,omitempty"`
	Tasks         []Task         `json:"tasks"                    yaml:"tasks"                    validate:"required,min=1,dive"`
	SynthesisGoals []string      `json:"synthesis_goals,omitempty" yaml:"synthesis_goals,omitempty"`
}

// PhaseEntry pairs a phase's declared map key with its value, used so
// PhaseList can preserve the document's original declaration order.
type PhaseEntry struct {
	Key   string
	Phase Phase
}

// Template is the validated, immutable workflow template (spec.md §3).
type Template struct {
	ID                  string                     `json:"workflow_id"`
	Name                string                     `json:"workflow_name"`
	Version             string                     `json:"version"`
	Description         string                     `json:"description"`
	Type                Type                       `json:"workflow_type"`
	Category            Category                   `json:"workflow_category"`
	Source              Source                     `json:"source"`
	Maintainer          string                     `json:"maintainer"`
	Stability           Stability                  `json:"stability"`
	Complexity          Complexity                 `json:"complexity_level"`
	EstimatedDuration   string                     `json:"estimated_duration"`
	TargetAudience      []string                   `json:"target_audience"`
	SplunkVersions      []string                   `json:"splunk_versions"`
	LastUpdated         string                     `json:"last_updated"`
	DocumentationURL    string                     `json:"documentation_url"`
	Prerequisites       []string                   `json:"prerequisites"`
	RequiredPermissions []string                   `json:"required_permissions"`
	DataRequirements    DataRequirements           `json:"data_requirements"`
	BusinessValue       string                     `json:"business_value"`
	UseCases            []string                   `json:"use_cases"`
	SuccessMetrics      []string                   `json:"success_metrics"`
	Agent               string                     `json:"agent,omitempty"`
	WorkflowInstructions *WorkflowInstructions     `json:"workflow_instructions,omitempty"`
	IndustryFocus       []string                   `json:"industry_focus,omitempty"`
	AgentDependencies   map[string]AgentDependency `json:"agent_dependencies"`
	CorePhases          PhaseList                  `json:"core_phases"`
	OutputStructure     map[string]any             `json:"output_structure,omitempty"`

	// FilePath is populated by the loader/discovery subsystem, not by
	// the document itself.
	FilePath string `json:"-"`
}
