package template

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FieldError is one validation failure, with its field path and a
// human-readable message (spec.md §4.1).
type FieldError struct {
	Loc string `json:"loc"`
	Msg string `json:"msg"`
}

// ValidationError aggregates every FieldError found while validating one
// document, matching spec.md §7's TemplateValidationError taxonomy.
type ValidationError struct {
	SourcePath string
	Errors     []FieldError
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "validation failed for workflow %q:\n", e.SourcePath)
	for _, fe := range e.Errors {
		fmt.Fprintf(&b, "  %s: %s\n", fe.Loc, fe.Msg)
	}
	return b.String()
}

func newValidationError(sourcePath string, errs ...FieldError) *ValidationError {
	return &ValidationError{SourcePath: sourcePath, Errors: errs}
}

var (
	versionPattern  = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	durationPattern = regexp.MustCompile(`^\d+-\d+\s+(minutes?|hours?)$`)

	validTypes = map[Type]bool{
		TypeAnalysis: true, TypeTroubleshooting: true, TypePerformance: true,
		TypeMonitoring: true, TypeOnboarding: true, TypeSecurity: true,
	}
	validCategories = map[Category]bool{
		CategoryDataAnalysis: true, CategorySystemHealth: true, CategorySecurityAudit: true,
		CategoryPerformanceTuning: true, CategoryInfrastructureMonitoring: true,
	}
	validSources = map[Source]bool{SourceCore: true, SourceContrib: true}
	validStability = map[Stability]bool{
		StabilityStable: true, StabilityExperimental: true, StabilityDeprecated: true,
	}
	validComplexity = map[Complexity]bool{
		ComplexityBeginner: true, ComplexityIntermediate: true, ComplexityAdvanced: true, ComplexityExpert: true,
	}

	structValidator = validator.New()
)

// Format selects the document encoding passed to Validate.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Validate parses document (in the given Format) and produces a fully
// validated, immutable Template, or a *ValidationError listing every
// field-level problem found. Unknown fields are tolerated (closed
// validation only rejects known fields whose shape is wrong).
func Validate(document []byte, sourcePath string, format Format) (*Template, error) {
	tmpl := &Template{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(document, tmpl); err != nil {
			return nil, newValidationError(sourcePath, FieldError{Loc: "root", Msg: err.Error()})
		}
	default:
		if err := json.Unmarshal(document, tmpl); err != nil {
			return nil, newValidationError(sourcePath, FieldError{Loc: "root", Msg: err.Error()})
		}
	}
	tmpl.FilePath = sourcePath

	var errs []FieldError
	errs = append(errs, validateRequiredStrings(tmpl)...)
	errs = append(errs, validateEnums(tmpl)...)
	errs = append(errs, validatePatterns(tmpl)...)
	errs = append(errs, validateCrossFields(tmpl)...)
	errs = append(errs, validateStructTags(tmpl)...)

	if len(errs) > 0 {
		return nil, newValidationError(sourcePath, errs...)
	}
	return tmpl, nil
}

func validateRequiredStrings(t *Template) []FieldError {
	var errs []FieldError
	req := func(loc, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, FieldError{Loc: loc, Msg: "field required"})
		}
	}
	req("workflow_id", t.ID)
	req("workflow_name", t.Name)
	req("version", t.Version)
	req("maintainer", t.Maintainer)
	req("documentation_url", t.DocumentationURL)
	if len(t.Description) < 10 {
		errs = append(errs, FieldError{Loc: "description", Msg: "must be at least 10 characters"})
	}
	if len(t.BusinessValue) < 10 {
		errs = append(errs, FieldError{Loc: "business_value", Msg: "must be at least 10 characters"})
	}
	for _, entry := range []struct {
		loc string
		val []string
	}{
		{"target_audience", t.TargetAudience},
		{"splunk_versions", t.SplunkVersions},
		{"prerequisites", t.Prerequisites},
		{"required_permissions", t.RequiredPermissions},
		{"use_cases", t.UseCases},
		{"success_metrics", t.SuccessMetrics},
	} {
		if len(entry.val) == 0 {
			errs = append(errs, FieldError{Loc: entry.loc, Msg: "must contain at least one entry"})
		}
	}
	if len(t.AgentDependencies) == 0 {
		errs = append(errs, FieldError{Loc: "agent_dependencies", Msg: "must contain at least one entry"})
	}
	if len(t.CorePhases) == 0 {
		errs = append(errs, FieldError{Loc: "core_phases", Msg: "must contain at least one phase"})
	}
	for _, entry := range t.CorePhases {
		if len(entry.Phase.Tasks) == 0 {
			errs = append(errs, FieldError{Loc: "core_phases." + entry.Key + ".tasks", Msg: "must contain at least one task"})
		}
	}
	return errs
}

func validateEnums(t *Template) []FieldError {
	var errs []FieldError
	if !validTypes[t.Type] {
		errs = append(errs, FieldError{Loc: "workflow_type", Msg: fmt.Sprintf("invalid value %q", t.Type)})
	}
	if !validCategories[t.Category] {
		errs = append(errs, FieldError{Loc: "workflow_category", Msg: fmt.Sprintf("invalid value %q", t.Category)})
	}
	if !validSources[t.Source] {
		errs = append(errs, FieldError{Loc: "source", Msg: fmt.Sprintf("invalid value %q", t.Source)})
	}
	if !validStability[t.Stability] {
		errs = append(errs, FieldError{Loc: "stability", Msg: fmt.Sprintf("invalid value %q", t.Stability)})
	}
	if !validComplexity[t.Complexity] {
		errs = append(errs, FieldError{Loc: "complexity_level", Msg: fmt.Sprintf("invalid value %q", t.Complexity)})
	}
	return errs
}

func validatePatterns(t *Template) []FieldError {
	var errs []FieldError
	if !versionPattern.MatchString(t.Version) {
		errs = append(errs, FieldError{Loc: "version", Msg: "must match semver N.N.N"})
	}
	if !datePattern.MatchString(t.LastUpdated) {
		errs = append(errs, FieldError{Loc: "last_updated", Msg: "must match YYYY-MM-DD"})
	}
	if !durationPattern.MatchString(t.EstimatedDuration) {
		errs = append(errs, FieldError{Loc: "estimated_duration", Msg: "must match 'N-M (minutes|hours)'"})
	}
	parts := strings.SplitN(t.ID, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		errs = append(errs, FieldError{Loc: "workflow_id", Msg: "must be in the form '<source>.<slug>'"})
	}
	return errs
}

func validateCrossFields(t *Template) []FieldError {
	var errs []FieldError
	parts := strings.SplitN(t.ID, ".", 2)
	if len(parts) == 2 && parts[0] != string(t.Source) {
		errs = append(errs, FieldError{
			Loc: "workflow_id",
			Msg: fmt.Sprintf("id source %q must match source field %q", parts[0], t.Source),
		})
	}

	referenced := map[string]string{} // agent -> first referencing loc
	for _, entry := range t.CorePhases {
		phase := entry.Phase
		if phase.MaxParallel > 1 && !phase.Parallel {
			errs = append(errs, FieldError{
				Loc: "core_phases." + entry.Key + ".max_parallel",
				Msg: "max_parallel > 1 requires parallel=true",
			})
		}
		for _, task := range phase.Tasks {
			loc := "core_phases." + entry.Key + ".tasks." + task.TaskID
			if task.Validation != nil && task.Validation.Agent != "" {
				referenced[task.Validation.Agent] = loc + ".validation.agent"
			}
			if task.ResultInterpretation != nil && task.ResultInterpretation.Agent != "" {
				referenced[task.ResultInterpretation.Agent] = loc + ".result_interpretation.agent"
			}
		}
	}
	for agent, loc := range referenced {
		if _, ok := t.AgentDependencies[agent]; !ok {
			errs = append(errs, FieldError{
				Loc: loc,
				Msg: fmt.Sprintf("agent %q is not declared in agent_dependencies", agent),
			})
		}
	}
	return errs
}

func validateStructTags(t *Template) []FieldError {
	var errs []FieldError
	for _, entry := range t.CorePhases {
		for _, task := range entry.Phase.Tasks {
			if err := structValidator.Struct(task); err != nil {
				errs = append(errs, structErrsToFieldErrs("core_phases."+entry.Key+".tasks."+task.TaskID, err)...)
			}
		}
	}
	for name, dep := range t.AgentDependencies {
		if err := structValidator.Struct(dep); err != nil {
			errs = append(errs, structErrsToFieldErrs("agent_dependencies."+name, err)...)
		}
	}
	return errs
}

func structErrsToFieldErrs(prefix string, err error) []FieldError {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Loc: prefix, Msg: err.Error()}}
	}
	out := make([]FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		out = append(out, FieldError{
			Loc: prefix + "." + fe.Field(),
			Msg: fmt.Sprintf("failed '%s' validation", fe.Tag()),
		})
	}
	return out
}

