package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDocument() string {
	return `{
		"workflow_id": "core.health_check",
		"workflow_name": "Health Check",
		"version": "1.0.0",
		"description": "Checks index health across the platform.",
		"workflow_type": "monitoring",
		"workflow_category": "system_health",
		"source": "core",
		"maintainer": "team",
		"stability": "stable",
		"complexity_level": "beginner",
		"estimated_duration": "2-5 minutes",
		"target_audience": ["ops"],
		"splunk_versions": ["8.0+"],
		"last_updated": "2024-01-01",
		"documentation_url": "./README.md",
		"prerequisites": ["platform_access"],
		"required_permissions": ["read"],
		"data_requirements": {"minimum_events": 0},
		"business_value": "Keeps the platform healthy.",
		"use_cases": ["daily ops check"],
		"success_metrics": ["zero red indexes"],
		"agent_dependencies": {
			"executor": {"agent_id": "executor", "description": "runs queries", "required": true}
		},
		"core_phases": {
			"main": {
				"name": "Main",
				"description": "Primary phase",
				"mandatory": true,
				"parallel": false,
				"tasks": [
					{"task_id": "t1", "title": "Check indexes", "goal": "find red indexes", "tool": "run_query"}
				]
			}
		}
	}`
}

func TestValidate(t *testing.T) {
	t.Run("Should accept a well-formed template", func(t *testing.T) {
		tmpl, err := Validate([]byte(validDocument()), "health_check.json", FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, "core.health_check", tmpl.ID)
		assert.Equal(t, []string{"main"}, tmpl.CorePhases.Names())
	})

	t.Run("Should reject a workflow_id whose source mismatches the source field", func(t *testing.T) {
		doc := `{"workflow_id": "contrib.foo", "source": "core"}`
		_, err := Validate([]byte(doc), "bad.json", FormatJSON)
		require.Error(t, err)
		verr, ok := err.(*ValidationError)
		require.True(t, ok)
		found := false
		for _, fe := range verr.Errors {
			if fe.Loc == "workflow_id" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("Should reject invalid enum values", func(t *testing.T) {
		doc := `{"workflow_id": "core.x", "source": "core", "workflow_type": "not-a-type"}`
		_, err := Validate([]byte(doc), "bad.json", FormatJSON)
		require.Error(t, err)
	})

	t.Run("Should reject a malformed version string", func(t *testing.T) {
		doc := `{"workflow_id": "core.x", "source": "core", "version": "v1"}`
		_, err := Validate([]byte(doc), "bad.json", FormatJSON)
		require.Error(t, err)
	})

	t.Run("Should reject when a validation agent is missing from agent_dependencies", func(t *testing.T) {
		doc := `{
			"workflow_id": "core.x", "workflow_name": "x", "version": "1.0.0",
			"description": "0123456789", "workflow_type": "monitoring", "workflow_category": "system_health",
			"source": "core", "maintainer": "m", "stability": "stable", "complexity_level": "beginner",
			"estimated_duration": "2-5 minutes", "target_audience": ["ops"], "splunk_versions": ["8.0+"],
			"last_updated": "2024-01-01", "documentation_url": "./README.md", "prerequisites": ["p"],
			"required_permissions": ["r"], "data_requirements": {}, "business_value": "0123456789",
			"use_cases": ["u"], "success_metrics": ["s"],
			"agent_dependencies": {"executor": {"agent_id": "executor", "description": "d", "required": true}},
			"core_phases": {"main": {"name": "Main", "description": "d", "mandatory": true, "tasks": [
				{"task_id": "t1", "title": "t", "goal": "g", "tool": "run_query",
				 "validation": {"agent": "ghost_agent", "validate_syntax": true}}
			]}}
		}`
		_, err := Validate([]byte(doc), "bad.json", FormatJSON)
		require.Error(t, err)
		verr := err.(*ValidationError)
		found := false
		for _, fe := range verr.Errors {
			if fe.Loc == "core_phases.main.tasks.t1.validation.agent" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("Should reject max_parallel greater than one without parallel=true", func(t *testing.T) {
		doc := `{
			"workflow_id": "core.x", "source": "core", "workflow_type": "monitoring",
			"core_phases": {"main": {"name": "Main", "description": "d", "mandatory": true,
				"parallel": false, "max_parallel": 4, "tasks": [
					{"task_id": "t1", "title": "t", "goal": "g", "tool": "run_query"}
				]}}
		}`
		_, err := Validate([]byte(doc), "bad.json", FormatJSON)
		require.Error(t, err)
		verr := err.(*ValidationError)
		found := false
		for _, fe := range verr.Errors {
			if fe.Loc == "core_phases.main.max_parallel" {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("Should accept YAML documents", func(t *testing.T) {
		yamlDoc := `
workflow_id: core.health_check
workflow_name: Health Check
version: 1.0.0
description: Checks index health across the platform.
workflow_type: monitoring
workflow_category: system_health
source: core
maintainer: team
stability: stable
complexity_level: beginner
estimated_duration: 2-5 minutes
target_audience: [ops]
splunk_versions: ["8.0+"]
last_updated: "2024-01-01"
documentation_url: ./README.md
prerequisites: [platform_access]
required_permissions: [read]
data_requirements: {minimum_events: 0}
business_value: Keeps the platform healthy.
use_cases: [daily ops check]
success_metrics: [zero red indexes]
agent_dependencies:
  executor:
    agent_id: executor
    description: runs queries
    required: true
core_phases:
  main:
    name: Main
    description: Primary phase
    mandatory: true
    tasks:
      - task_id: t1
        title: Check indexes
        goal: find red indexes
        tool: run_query
`
		tmpl, err := Validate([]byte(yamlDoc), "health_check.yaml", FormatYAML)
		require.NoError(t, err)
		assert.Equal(t, "core.health_check", tmpl.ID)
	})
}

func TestPhaseListOrderPreserved(t *testing.T) {
	t.Run("Should preserve declared phase order for JSON", func(t *testing.T) {
		var list PhaseList
		err := list.UnmarshalJSON([]byte(`{"zeta": {"name":"Zeta","description":"d","mandatory":true,"tasks":[{"task_id":"t1","title":"t","goal":"g","tool":"x"}]}, "alpha": {"name":"Alpha","description":"d","mandatory":true,"tasks":[{"task_id":"t2","title":"t","goal":"g","tool":"x"}]}}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"zeta", "alpha"}, list.Names())
	})
}
