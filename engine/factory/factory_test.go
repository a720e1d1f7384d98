package factory

import (
	"context"
	"testing"

	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/agentcoord"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/discovery"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/flow"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/template"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAgentName(t *testing.T) {
	cases := []struct {
		name   string
		tmpl   template.Template
		expect string
	}{
		{"Should strip trailing Flow and prefix nothing for core", template.Template{Name: "Data Analysis Flow", Source: template.SourceCore}, "Data_Analysis"},
		{"Should strip leading Workflow marker", template.Template{Name: "Workflow Security Audit", Source: template.SourceCore}, "Security_Audit"},
		{"Should prefix Contrib_ for contrib source", template.Template{Name: "Custom Report Flow", Source: template.SourceContrib}, "Contrib_Custom_Report"},
		{"Should replace hyphens with underscores", template.Template{Name: "Index-Health Flow", Source: template.SourceCore}, "Index_Health"},
		{"Should replace characters outside the identifier set with underscores", template.Template{Name: "Weird!!Name Flow", Source: template.SourceCore}, "Weird__Name"},
		{"Should prefix an underscore for a digit-leading name", template.Template{Name: "3 Tier Audit Flow", Source: template.SourceCore}, "_3_Tier_Audit"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, generateAgentName(&tc.tmpl))
		})
	}
}

func TestSanitizeName(t *testing.T) {
	t.Run("Should trim leading and trailing underscores", func(t *testing.T) {
		assert.Equal(t, "abc", sanitizeName("__abc__"))
	})
	t.Run("Should replace disallowed characters", func(t *testing.T) {
		assert.Equal(t, "a_b_c", sanitizeName("a b.c"))
	})
	t.Run("Should prefix an underscore when the sanitized name starts with a digit", func(t *testing.T) {
		assert.Equal(t, "_3_Tier_Audit", sanitizeName("3 Tier Audit"))
	})
	t.Run("Should leave an already-valid identifier untouched", func(t *testing.T) {
		assert.Equal(t, "already_valid", sanitizeName("already_valid"))
	})
}

func TestExtractParameters(t *testing.T) {
	t.Run("Should extract an index name from an equals-style request", func(t *testing.T) {
		params := ExtractParameters("please analyze index=main for errors")
		assert.Equal(t, "main", params["TARGET"])
	})
	t.Run("Should extract an index name from a space-separated request", func(t *testing.T) {
		params := ExtractParameters("run against index security_events now")
		assert.Equal(t, "security_events", params["TARGET"])
	})
	t.Run("Should return no TARGET when the request has no index reference", func(t *testing.T) {
		params := ExtractParameters("just check system health")
		_, ok := params["TARGET"]
		assert.False(t, ok)
	})
}

func TestGenerateInstructions(t *testing.T) {
	t.Run("Should fall back to universal instructions when workflow_instructions is absent", func(t *testing.T) {
		tmpl := &template.Template{
			Name:        "Data Analysis Flow",
			Description: "Analyzes data.",
			CorePhases: template.PhaseList{
				{Key: "p1", Phase: template.Phase{Name: "Discovery"}},
			},
		}
		out := generateInstructions("Data_Analysis", tmpl)
		assert.Contains(t, out, "Data_Analysis")
		assert.Contains(t, out, "execute_workflow")
		assert.Contains(t, out, "Phase 1: Discovery")
		assert.Contains(t, out, "Universal workflow execution")
	})

	t.Run("Should use the template's specialization and focus areas when present", func(t *testing.T) {
		tmpl := &template.Template{
			Name:        "Security Audit Flow",
			Description: "Audits security posture.",
			CorePhases:  template.PhaseList{{Key: "p1", Phase: template.Phase{Name: "Scan"}}},
			WorkflowInstructions: &template.WorkflowInstructions{
				Specialization: "Security-focused analysis specialist",
				FocusAreas:     []string{"authentication anomalies", "privilege escalation"},
			},
		}
		out := generateInstructions("Security_Audit", tmpl)
		assert.Contains(t, out, "Security-focused analysis specialist")
		assert.Contains(t, out, "authentication anomalies")
		assert.NotContains(t, out, "Universal workflow execution")
	})
}

func TestWorkflowExecutorAgent_ExecuteWorkflow(t *testing.T) {
	t.Run("Should run the wrapped template and format a textual result", func(t *testing.T) {
		registry := agentcoord.StaticRegistry{}
		coord := agentcoord.New(registry)
		eng := flow.New(coord, config.Default())

		tmpl := &template.Template{
			Name: "Health Check Flow",
			CorePhases: template.PhaseList{
				{Key: "p1", Phase: template.Phase{
					Name: "Main", Mandatory: true,
					Tasks: []template.Task{{TaskID: "t1", Title: "t", Goal: "g", Tool: "run_oneshot_search", SearchQuery: "index={TARGET}"}},
				}},
			},
		}
		dw := &discovery.DiscoveredWorkflow{Template: tmpl, Source: template.SourceCore}
		agent := Build(dw, eng)

		require.Equal(t, "Health_Check", agent.Name)
		out := agent.ExecuteWorkflow(context.Background(), "analyze index=main")
		assert.Contains(t, out, "Health_Check")
		assert.Contains(t, out, "Health Check Flow")
		assert.Contains(t, out, "Phase: Main")
	})
}
