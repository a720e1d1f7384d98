package agentcoord

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

// LLMAgent is an AgentHandle backed directly by a langchaingo chat
// model, used for specialist agents (search_guru, result_synthesizer)
// that the original implementation calls as thin LLM wrappers rather
// than tool-driven agents.
type LLMAgent struct {
	Name         string
	Model        llms.Model
	Instructions string
}

func (a *LLMAgent) Execute(ctx context.Context, prompt string) (AgentResponse, error) {
	full := prompt
	if a.Instructions != "" {
		full = a.Instructions + "\n\n" + prompt
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, a.Model, full)
	if err != nil {
		return AgentResponse{}, err
	}
	if strings.TrimSpace(text) == "" {
		return AgentResponse{Success: false, Error: "agent returned an empty response"}, nil
	}
	return AgentResponse{
		Success:        true,
		Data:           map[string]any{"raw_response": text},
		OptimizedQuery: extractOptimizedQuery(text),
	}, nil
}

// extractOptimizedQuery looks for a fenced SPL block in the model's
// response; absent one, the caller falls back to the original query.
func extractOptimizedQuery(text string) string {
	const marker = "```spl"
	start := strings.Index(text, marker)
	if start == -1 {
		return ""
	}
	rest := text[start+len(marker):]
	end := strings.Index(rest, "```")
	if end == -1 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}
