// Package flow is the Flow Engine: it executes a validated workflow
// Template phase by phase, dispatching tasks sequentially or via the
// parallel fan-out/gather pattern, and synthesizes a final result
// (spec.md §4.6), grounded on the original's FlowEngine
// (flow_engine.py).
package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/agentcoord"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/metrics"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/microagent"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/resolver"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/result"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/template"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/pkg/config"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/pkg/logger"
)

// Engine executes workflow templates.
type Engine struct {
	coordinator *agentcoord.Coordinator
	cfg         *config.Config
	metrics     *metrics.Metrics
}

// New builds an Engine over the given Agent Coordinator and config.
func New(coordinator *agentcoord.Coordinator, cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{coordinator: coordinator, cfg: cfg}
}

// WithMetrics attaches a Metrics bundle the engine reports phase, task,
// and concurrency instrumentation to. Metrics stay nil-safe: an Engine
// without WithMetrics simply skips instrumentation.
func (e *Engine) WithMetrics(m *metrics.Metrics) *Engine {
	e.metrics = m
	return e
}

// Execute runs every phase of tmpl in declaration order, honoring
// parallel fan-out where phases request it, and returns the aggregate
// FlowExecutionResult. onProgress may be nil.
func (e *Engine) Execute(ctx context.Context, tmpl *template.Template, execContext map[string]string, onProgress result.ProgressCallback) *result.FlowExecutionResult {
	log := logger.FromContext(ctx)
	start := time.Now()
	log.Info("starting flow execution", "workflow", tmpl.Name)

	res := resolver.New(execContext)
	rc := result.NewRuntimeContext()
	notify(onProgress, result.ProgressEvent{PhaseName: "initialization", Message: fmt.Sprintf("starting %s", tmpl.Name), Status: result.StatusStarting})

	var phaseResults []result.PhaseResult
	overallSuccess := true
	errorSummary := ""

	for _, name := range tmpl.CorePhases.Names() {
		phase, _ := tmpl.CorePhases.Get(name)

		notify(onProgress, result.ProgressEvent{
			PhaseName: name,
			Message:   fmt.Sprintf("phase %d: %s", len(phaseResults)+1, phase.Name),
			Status:    result.StatusStarting,
		})

		pr := e.executePhase(ctx, name, phase, res, onProgress)
		phaseResults = append(phaseResults, pr)
		if e.metrics != nil {
			e.metrics.RecordPhase(tmpl.Name, pr.PhaseName, pr.Success)
			for _, tr := range pr.Tasks {
				e.metrics.RecordTask(tmpl.Name, tr.TaskID, tr.Success)
			}
		}

		updateResolverFromPhase(res, pr)
		rc.PhaseSynthesis[pr.PhaseName+"_synthesis"] = e.synthesizePhase(ctx, phase, pr)

		if !pr.Success && phase.Mandatory {
			log.Error("mandatory phase failed, stopping flow", "phase", name)
			overallSuccess = false
			errorSummary = phaseFailureSummary(pr.PhaseName, pr)
			break
		}
	}

	synthesized := synthesizeWorkflow(rc, phaseResults, tmpl.OutputStructure)
	duration := time.Since(start)
	if e.metrics != nil {
		e.metrics.WorkflowDuration.WithLabelValues(tmpl.Name, outcomeLabel(overallSuccess)).Observe(duration.Seconds())
	}

	return &result.FlowExecutionResult{
		WorkflowName:       tmpl.Name,
		Success:            overallSuccess,
		Phases:             phaseResults,
		SynthesizedOutput:  synthesized,
		TotalExecutionTime: duration,
		ErrorSummary:       errorSummary,
	}
}

// phaseFailureSummary builds the non-empty error_summary spec.md §8
// scenario 3 requires whenever a mandatory phase fails, collecting the
// underlying task errors rather than just naming the phase.
func phaseFailureSummary(phaseName string, pr result.PhaseResult) string {
	var errs []string
	for _, tr := range pr.Tasks {
		if !tr.Success && tr.Error != "" {
			errs = append(errs, fmt.Sprintf("%s: %s", tr.TaskID, tr.Error))
		}
	}
	if len(errs) == 0 {
		return fmt.Sprintf("mandatory phase %q failed", phaseName)
	}
	return fmt.Sprintf("mandatory phase %q failed: %s", phaseName, strings.Join(errs, "; "))
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func (e *Engine) executePhase(ctx context.Context, phaseKey string, phase template.Phase, res *resolver.Resolver, onProgress result.ProgressCallback) result.PhaseResult {
	log := logger.FromContext(ctx)
	start := time.Now()

	var taskResults []result.TaskResult
	success := true

	if phase.Parallel && len(phase.Tasks) > 1 {
		log.Info("executing phase in parallel", "phase", phaseKey, "tasks", len(phase.Tasks))
		notify(onProgress, result.ProgressEvent{
			PhaseName: phaseKey,
			Message:   fmt.Sprintf("parallel fan-out: %d tasks, max_parallel=%d", len(phase.Tasks), phase.MaxParallel),
			Status:    result.StatusStarting,
		})
		taskResults = e.executeTasksParallel(ctx, phase, res, onProgress)
	} else {
		log.Info("executing phase sequentially", "phase", phaseKey)
		for _, task := range phase.Tasks {
			notify(onProgress, result.ProgressEvent{
				PhaseName: phaseKey, TaskID: task.TaskID,
				Message: fmt.Sprintf("executing task %s: %s", task.TaskID, task.Title),
				Status:  result.StatusStarting,
			})
			taskResults = append(taskResults, e.executeTask(ctx, task, res))
		}
	}

	for _, tr := range taskResults {
		if !tr.Success {
			success = false
		}
	}

	return result.PhaseResult{
		PhaseName:     phase.Name,
		Success:       success,
		Tasks:         taskResults,
		ExecutionTime: time.Since(start),
	}
}

// updateResolverFromPhase harvests discovery data from every successful
// task in pr (spec.md §4.6.3): it walks each task's
// data.search_results.results list and accumulates sourcetype/host/source
// values from each row into the resolver's three discovery sets, which
// later per-fan-out tasks (task.go's executePerFanOutTask) iterate over.
func updateResolverFromPhase(res *resolver.Resolver, pr result.PhaseResult) {
	for _, tr := range pr.Tasks {
		if !tr.Success {
			continue
		}
		harvestDiscovery(res, tr.Data)
	}
}

func harvestDiscovery(res *resolver.Resolver, data map[string]any) {
	searchResults, ok := data["search_results"].(map[string]any)
	if !ok {
		return
	}
	switch results := searchResults["results"].(type) {
	case []map[string]any:
		for _, record := range results {
			harvestRecord(res, record)
		}
	case []any:
		for _, row := range results {
			if record, ok := row.(map[string]any); ok {
				harvestRecord(res, record)
			}
		}
	}
}

// harvestRecord maps the three canonical discovery-record fields onto
// the resolver's axes: sourcetype feeds AxisOrigin (what per-fan-out
// tasks iterate over), host feeds AxisCategory, source feeds AxisSource.
func harvestRecord(res *resolver.Resolver, record map[string]any) {
	if v, ok := record["sourcetype"].(string); ok {
		res.AddDiscovered(resolver.AxisOrigin, v)
	}
	if v, ok := record["host"].(string); ok {
		res.AddDiscovered(resolver.AxisCategory, v)
	}
	if v, ok := record["source"].(string); ok {
		res.AddDiscovered(resolver.AxisSource, v)
	}
}

// hasSearchResults reports whether data carries a non-empty
// search_results.results list, used by synthesizePhase to decide
// has_meaningful_data even when a task returned no free-text narrative.
func hasSearchResults(data map[string]any) bool {
	searchResults, ok := data["search_results"].(map[string]any)
	if !ok {
		return false
	}
	switch results := searchResults["results"].(type) {
	case []map[string]any:
		return len(results) > 0
	case []any:
		return len(results) > 0
	}
	return false
}

func notify(cb result.ProgressCallback, ev result.ProgressEvent) {
	if cb == nil {
		return
	}
	defer func() { _ = recover() }()
	cb(ev)
}
