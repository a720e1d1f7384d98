package flow

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/result"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/template"
)

// synthesizePhase builds the per-phase built-in synthesis record
// (spec.md §4.6.4): it always runs, independent of any external
// synthesis agent's availability, so a phase whose tasks all failed
// still gets a record with has_meaningful_data=false and success=true
// (the §8 "Synthesis totality" property). When the phase did produce
// meaningful data, it additionally tries Coordinator.synthesize and, on
// success, folds the built-in record under builtin_metadata and
// upgrades synthesis_method to "hybrid".
func (e *Engine) synthesizePhase(ctx context.Context, phase template.Phase, pr result.PhaseResult) map[string]any {
	var insights []map[string]any
	var recommendations []map[string]any
	patterns := map[string]any{}
	successCount := 0
	anySearchResults := false

	for _, task := range pr.Tasks {
		if task.Success {
			successCount++
		}
		if hasSearchResults(task.Data) {
			anySearchResults = true
		}
		text := responseText(task.Data)
		if text == "" {
			continue
		}
		insights = append(insights, extractInsights(text, task.TaskID)...)
		recommendations = append(recommendations, extractRecommendations(text, task.TaskID)...)
		for k, v := range extractPatterns(text, task.TaskID) {
			patterns[k] = v
		}
	}

	hasMeaningfulData := len(insights) > 0 || len(patterns) > 0 || len(recommendations) > 0 || anySearchResults
	execSummary, businessIntel := generatePhaseIntelligence(insights, recommendations, patterns)

	record := map[string]any{
		"success":               true,
		"phase_name":            phase.Name,
		"synthesis_type":        "builtin_parallel_fanout_gather",
		"key_insights":          insights,
		"discovered_data":       patterns,
		"recommendations":       recommendations,
		"has_meaningful_data":   hasMeaningfulData,
		"task_count":            len(pr.Tasks),
		"success_count":         successCount,
		"failure_count":         len(pr.Tasks) - successCount,
		"executive_summary":     execSummary,
		"business_intelligence": businessIntel,
		"synthesis_method":      "builtin",
	}

	if !hasMeaningfulData {
		return record
	}

	allData := make(map[string]any, len(pr.Tasks))
	for _, task := range pr.Tasks {
		allData[task.TaskID] = task.Data
	}
	phaseContext := fmt.Sprintf("Phase: %s — %s", phase.Name, phase.Description)
	external := e.coordinator.Synthesize(ctx, allData, phaseContext, "result_synthesizer")
	if _, failed := external["error"]; failed {
		record["synthesis_fallback"] = external["error"]
		return record
	}

	hybrid := make(map[string]any, len(external)+4)
	for k, v := range external {
		hybrid[k] = v
	}
	hybrid["builtin_metadata"] = record
	hybrid["synthesis_method"] = "hybrid"
	hybrid["phase_name"] = phase.Name
	hybrid["success"] = true
	return hybrid
}

// synthesizeWorkflow builds the final synthesized_output for a
// completed (or short-circuited) flow execution by aggregating every
// <phase_name>_synthesis record RuntimeContext accumulated (spec.md
// §4.6.5), grounded on flow_engine.py's _synthesize_workflow_results.
func synthesizeWorkflow(rc *result.RuntimeContext, phases []result.PhaseResult, outputStructure map[string]any) map[string]any {
	var keyInsights []map[string]any
	var recommendations []map[string]any
	discoveredData := map[string]any{}
	completed := 0
	lines := make([]string, 0, len(phases)+1)

	for _, phase := range phases {
		if phase.Success {
			completed++
		}
		synth, ok := rc.PhaseSynthesis[phase.PhaseName+"_synthesis"]
		if !ok {
			continue
		}
		if insights, ok := synth["key_insights"].([]map[string]any); ok {
			keyInsights = append(keyInsights, insights...)
		}
		if recs, ok := synth["recommendations"].([]map[string]any); ok {
			recommendations = append(recommendations, recs...)
		}
		discoveredData[phase.PhaseName] = synth["discovered_data"]
		lines = append(lines, fmt.Sprintf("- %s: %s (%d tasks, method=%v)", phase.PhaseName, outcomeWord(phase.Success), len(phase.Tasks), synth["synthesis_method"]))
	}

	summary := fmt.Sprintf("%d/%d phases completed.\n%s", completed, len(phases), strings.Join(lines, "\n"))

	executionMetadata := map[string]any{
		"phases_completed": completed,
		"phases_total":     len(phases),
	}
	if outputStructure != nil {
		executionMetadata["output_structure"] = outputStructure
	}

	return map[string]any{
		"summary":            summary,
		"discovered_data":    discoveredData,
		"key_insights":       keyInsights,
		"recommendations":    recommendations,
		"execution_metadata": executionMetadata,
	}
}

func outcomeWord(success bool) string {
	if success {
		return "succeeded"
	}
	return "failed"
}

// responseText extracts the free-text narrative a task produced, if
// any — direct-agent-coordination results carry structured data
// instead of prose, and are skipped for keyword extraction exactly as
// the original does.
func responseText(data map[string]any) string {
	if data == nil {
		return ""
	}
	if s, ok := data["raw_response"].(string); ok {
		return s
	}
	if interp, ok := data["interpretation"].(map[string]any); ok {
		if s, ok := interp["raw_response"].(string); ok {
			return s
		}
	}
	return ""
}

func extractInsights(text, taskID string) []map[string]any {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "pattern") && !strings.Contains(lower, "insight") {
		return nil
	}

	var insights []map[string]any
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "*") && !strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "•") {
			continue
		}
		insight := strings.TrimSpace(strings.TrimLeft(line, "*-• "))
		if len(insight) <= 10 {
			continue
		}
		confidence := "medium"
		if strings.Contains(strings.ToLower(insight), "significant") {
			confidence = "high"
		}
		insights = append(insights, map[string]any{
			"source_task": taskID,
			"insight":     insight,
			"confidence":  confidence,
		})
	}
	return insights
}

func extractPatterns(text, taskID string) map[string]any {
	lower := strings.ToLower(text)
	patterns := map[string]any{}

	if containsAny(lower, "error", "4xx", "5xx") {
		patterns["error_patterns"] = map[string]any{"source_task": taskID, "has_errors": true, "description": "error patterns detected in analysis"}
	}
	if containsAny(lower, "time", "hour", "day") {
		patterns["temporal_patterns"] = map[string]any{"source_task": taskID, "has_temporal_data": true, "description": "temporal patterns detected in analysis"}
	}
	if containsAny(lower, "volume", "count", "events") {
		patterns["volume_patterns"] = map[string]any{"source_task": taskID, "has_volume_data": true, "description": "volume patterns detected in analysis"}
	}
	return patterns
}

func extractRecommendations(text, taskID string) []map[string]any {
	lower := strings.ToLower(text)
	if !containsAny(lower, "recommend", "suggest", "should") {
		return nil
	}

	var recs []map[string]any
	for _, sentence := range strings.Split(text, ".") {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= 20 {
			continue
		}
		lowerSentence := strings.ToLower(sentence)
		if !containsAny(lowerSentence, "recommend", "suggest", "should", "consider") {
			continue
		}
		priority := "medium"
		if strings.Contains(lowerSentence, "critical") {
			priority = "high"
		}
		recs = append(recs, map[string]any{
			"source_task":   taskID,
			"recommendation": sentence,
			"priority":       priority,
			"category":       "operational",
		})
	}
	return recs
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// generatePhaseIntelligence is purely rule-based (no external calls),
// implementing spec.md §4.6.4's executive summary / business
// intelligence generation: up to 5 high-confidence insights tagged with
// business_impact, up to 3 high-priority recommendations tagged with
// estimated_effort/business_value, derived personas, and canned
// dashboard/alert suggestions keyed by the detected data patterns.
func generatePhaseIntelligence(insights, recommendations []map[string]any, patterns map[string]any) (executiveSummary, businessIntelligence map[string]any) {
	topInsights := topByField(insights, "confidence", "high", 5, func(i map[string]any) string {
		return fmt.Sprint(i["insight"])
	}, "business_impact", impactLevel)

	topRecs := topByField(recommendations, "priority", "high", 3, func(r map[string]any) string {
		return fmt.Sprint(r["recommendation"])
	}, "estimated_effort", effortLevel)
	for _, rec := range topRecs {
		rec["business_value"] = impactLevel(fmt.Sprint(rec["recommendation"]))
	}

	executiveSummary = map[string]any{
		"top_insights":           topInsights,
		"top_recommendations":    topRecs,
		"total_insights":         len(insights),
		"total_recommendations":  len(recommendations),
	}
	businessIntelligence = map[string]any{
		"personas":              derivePersonas(insights, recommendations),
		"dashboard_suggestions": dashboardSuggestions(patterns),
		"alert_suggestions":     alertSuggestions(patterns),
	}
	return executiveSummary, businessIntelligence
}

// topByField picks up to limit entries matching preferredValue on
// field (falling back to the full list if none match), annotating each
// copy with tagKey computed from textOf(entry) via tagFn.
func topByField(entries []map[string]any, field, preferredValue string, limit int, textOf func(map[string]any) string, tagKey string, tagFn func(string) string) []map[string]any {
	var preferred []map[string]any
	for _, e := range entries {
		if e[field] == preferredValue {
			preferred = append(preferred, e)
		}
	}
	if len(preferred) == 0 {
		preferred = entries
	}

	out := make([]map[string]any, 0, limit)
	for i, e := range preferred {
		if i >= limit {
			break
		}
		enriched := make(map[string]any, len(e)+1)
		for k, v := range e {
			enriched[k] = v
		}
		enriched[tagKey] = tagFn(textOf(e))
		out = append(out, enriched)
	}
	return out
}

func impactLevel(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "critical", "failure", "down", "error"):
		return "high"
	case containsAny(lower, "performance", "slow", "delay"):
		return "medium"
	default:
		return "low"
	}
}

func effortLevel(text string) string {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, "dashboard", "alert", "monitor"):
		return "low"
	case containsAny(lower, "investigate", "analyze", "review"):
		return "medium"
	default:
		return "high"
	}
}

// derivePersonas tags which stakeholder personas the phase's insights
// and recommendations are relevant to, defaulting to "operations" when
// nothing more specific is detected.
func derivePersonas(insights, recommendations []map[string]any) []string {
	personas := map[string]bool{}
	tag := func(text string) {
		lower := strings.ToLower(text)
		if containsAny(lower, "security", "threat", "breach", "attack") {
			personas["security"] = true
		}
		if containsAny(lower, "business", "revenue", "cost", "value") {
			personas["business-analyst"] = true
		}
		if containsAny(lower, "operations", "operational", "infrastructure", "system") {
			personas["operations"] = true
		}
	}
	for _, i := range insights {
		tag(fmt.Sprint(i["insight"]))
	}
	for _, r := range recommendations {
		tag(fmt.Sprint(r["recommendation"]))
	}
	if len(personas) == 0 {
		personas["operations"] = true
	}

	out := make([]string, 0, len(personas))
	for k := range personas {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func dashboardSuggestions(patterns map[string]any) []string {
	var out []string
	if _, ok := patterns["error_patterns"]; ok {
		out = append(out, "error rate dashboard")
	}
	if _, ok := patterns["temporal_patterns"]; ok {
		out = append(out, "time-series trend dashboard")
	}
	if _, ok := patterns["volume_patterns"]; ok {
		out = append(out, "event volume dashboard")
	}
	return out
}

func alertSuggestions(patterns map[string]any) []string {
	var out []string
	if _, ok := patterns["error_patterns"]; ok {
		out = append(out, "alert on error spike")
	}
	if _, ok := patterns["volume_patterns"]; ok {
		out = append(out, "alert on volume anomaly")
	}
	return out
}
