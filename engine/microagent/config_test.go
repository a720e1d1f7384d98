package microagent

import (
	"testing"

	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/template"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	cfg := config.Default()

	t.Run("Should name the agent after its task ID", func(t *testing.T) {
		task := template.Task{TaskID: "t1", Title: "Run search", Goal: "find errors", Tool: "run_oneshot_search"}
		got := Build(task, map[string]string{"TARGET": "main"}, cfg, nil)
		assert.Equal(t, "MicroAgent_t1", got.Name)
		assert.Equal(t, "t1", got.TaskID)
	})

	t.Run("Should fall back to the configured timeout when the task sets none", func(t *testing.T) {
		task := template.Task{TaskID: "t1", Tool: "run_oneshot_search"}
		got := Build(task, nil, cfg, nil)
		assert.Equal(t, int(cfg.MicroAgentTimeout.Seconds()), got.Timeout)
	})

	t.Run("Should prefer the task's own timeout when set", func(t *testing.T) {
		task := template.Task{TaskID: "t1", TimeoutSec: 45, Tool: "run_oneshot_search"}
		got := Build(task, nil, cfg, nil)
		assert.Equal(t, 45, got.Timeout)
	})

	t.Run("Should resolve placeholders through the supplied resolver", func(t *testing.T) {
		task := template.Task{TaskID: "t1", Title: "Check {TARGET}", Tool: "run_oneshot_search"}
		resolve := func(s string, ctx map[string]string) string {
			if s == "Check {TARGET}" {
				return "Check main"
			}
			return s
		}
		got := Build(task, map[string]string{"TARGET": "main"}, cfg, resolve)
		assert.Contains(t, got.Instructions, "Check main")
	})
}

func TestAllowedTools(t *testing.T) {
	t.Run("Should prefer llm_loop allowed_tools when present", func(t *testing.T) {
		task := template.Task{
			LLMLoop: &template.LLMLoopConfig{Enabled: true, AllowedTools: []string{"run_oneshot_search"}},
		}
		assert.Equal(t, []string{"run_oneshot_search"}, allowedTools(task))
	})

	t.Run("Should derive tools from task shape when no llm_loop is set", func(t *testing.T) {
		task := template.Task{
			Tool:        "run_oneshot_search",
			SearchQuery: "index=main",
			Validation:  &template.ValidationContract{ValidateSyntax: true},
		}
		got := allowedTools(task)
		assert.Contains(t, got, "run_oneshot_search")
		assert.Contains(t, got, "search_guru")
		assert.Contains(t, got, "splunk_mcp")
	})

	t.Run("Should default to splunk_mcp when nothing else applies", func(t *testing.T) {
		assert.Equal(t, []string{"splunk_mcp"}, allowedTools(template.Task{}))
	})
}
