package microagent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/result"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/pkg/logger"
	"golang.org/x/sync/semaphore"
)

// Executor runs the actual body of one micro agent (an LLM call, a
// direct tool invocation, or a coordinator fallback) and returns its
// data payload.
type Executor func(ctx context.Context, cfg Config) (map[string]any, error)

// RunParallel fans every config out to exec with at most maxParallel
// concurrent executions (the Fan-Out/Gather pattern, spec.md §4.5),
// gathering results back in input order regardless of completion
// order. A panic or error from a single execution becomes a failed
// MicroAgentResult for that task only; it never aborts its siblings.
func RunParallel(
	ctx context.Context,
	configs []Config,
	maxParallel int,
	exec Executor,
	onProgress result.ProgressCallback,
) []result.MicroAgentResult {
	if maxParallel < 1 {
		maxParallel = 1
	}
	log := logger.FromContext(ctx)
	log.Info("starting parallel micro agent execution", "count", len(configs), "max_parallel", maxParallel)

	sem := semaphore.NewWeighted(int64(maxParallel))
	results := make([]result.MicroAgentResult, len(configs))

	var wg sync.WaitGroup
	for i, cfg := range configs {
		wg.Add(1)
		go func(i int, cfg Config) {
			defer wg.Done()
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i] = result.MicroAgentResult{TaskID: cfg.TaskID, AgentName: cfg.Name, Success: false, Error: err.Error()}
				return
			}
			defer sem.Release(1)
			results[i] = runOne(ctx, cfg, exec, onProgress)
		}(i, cfg)
	}
	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	log.Info("parallel micro agent execution complete", "succeeded", succeeded, "total", len(results))
	return results
}

func runOne(ctx context.Context, cfg Config, exec Executor, onProgress result.ProgressCallback) (mr result.MicroAgentResult) {
	log := logger.FromContext(ctx)
	notify(onProgress, result.ProgressEvent{
		PhaseName: "parallel_execution",
		TaskID:    cfg.TaskID,
		Message:   fmt.Sprintf("Started micro agent %s", cfg.Name),
		Status:    result.StatusStarting,
		Data:      map[string]any{"agent_name": cfg.Name},
	})

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			mr = result.MicroAgentResult{
				TaskID:        cfg.TaskID,
				AgentName:     cfg.Name,
				Success:       false,
				Error:         fmt.Sprintf("micro agent %s panicked: %v", cfg.Name, p),
				ExecutionTime: time.Since(start),
			}
			log.Error("micro agent panicked", "agent_name", cfg.Name, "panic", p)
			notify(onProgress, result.ProgressEvent{
				PhaseName: "parallel_execution", TaskID: cfg.TaskID,
				Message: "micro agent panicked", Status: result.StatusError,
				Data: map[string]any{"agent_name": cfg.Name},
			})
		}
	}()

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := exec(taskCtx, cfg)
	elapsed := time.Since(start)

	if err != nil {
		if taskCtx.Err() == context.DeadlineExceeded {
			notify(onProgress, result.ProgressEvent{
				PhaseName: "parallel_execution", TaskID: cfg.TaskID,
				Message: fmt.Sprintf("micro agent %s timed out", cfg.Name), Status: result.StatusError,
				Data: map[string]any{"agent_name": cfg.Name, "timeout": true},
			})
			return result.MicroAgentResult{
				TaskID: cfg.TaskID, AgentName: cfg.Name, Success: false,
				Error:           fmt.Sprintf("micro agent %s timed out after %s", cfg.Name, timeout),
				ExecutionTime:   elapsed,
				TimeoutOccurred: true,
			}
		}
		log.Error("micro agent execution failed", "agent_name", cfg.Name, "error", err)
		notify(onProgress, result.ProgressEvent{
			PhaseName: "parallel_execution", TaskID: cfg.TaskID,
			Message: fmt.Sprintf("micro agent %s failed", cfg.Name), Status: result.StatusError,
			Data: map[string]any{"agent_name": cfg.Name, "error": err.Error()},
		})
		return result.MicroAgentResult{
			TaskID: cfg.TaskID, AgentName: cfg.Name, Success: false,
			Error: err.Error(), ExecutionTime: elapsed,
		}
	}

	notify(onProgress, result.ProgressEvent{
		PhaseName: "parallel_execution", TaskID: cfg.TaskID,
		Message: fmt.Sprintf("completed micro agent %s", cfg.Name), Status: result.StatusCompleted,
		Data: map[string]any{"agent_name": cfg.Name, "execution_time": elapsed.Seconds()},
	})
	return result.MicroAgentResult{
		TaskID: cfg.TaskID, AgentName: cfg.Name, Success: true,
		Data: data, ExecutionTime: elapsed, ExecutionType: "llm_agent",
	}
}

// notify invokes cb defensively; a panicking or nil callback must
// never affect micro agent execution (spec.md §5, §7).
func notify(cb result.ProgressCallback, ev result.ProgressEvent) {
	if cb == nil {
		return
	}
	defer func() { _ = recover() }()
	cb(ev)
}
