// Package schedule drives optional re-discovery of workflow templates:
// a cron-based periodic rescan and an fsnotify-based live-reload
// trigger, both ambient concerns SPEC_FULL.md's domain stack assigns a
// home to. Grounded on compozy's dev-server file watcher
// (cli/cmd/dev/watcher.go) and its use of robfig/cron for schedule
// parsing (cli/helpers/workflow.go).
package schedule

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/deslicer/ai-sidekick-for-splunk-sub000/pkg/logger"
)

// RediscoverFunc triggers one discovery pass; callers supply the
// Discovery.Discover closure.
type RediscoverFunc func(ctx context.Context) error

// CronScheduler periodically triggers re-discovery on a cron schedule.
type CronScheduler struct {
	cron *cron.Cron
}

// NewCronScheduler builds a scheduler that calls rediscover on every
// firing of spec (standard 5-field cron syntax).
func NewCronScheduler(ctx context.Context, spec string, rediscover RediscoverFunc) (*CronScheduler, error) {
	log := logger.FromContext(ctx)
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser))
	_, err := c.AddFunc(spec, func() {
		if err := rediscover(ctx); err != nil {
			log.Error("scheduled workflow re-discovery failed", "error", err)
			return
		}
		log.Info("scheduled workflow re-discovery complete")
	})
	if err != nil {
		return nil, fmt.Errorf("invalid re-discovery schedule %q: %w", spec, err)
	}
	return &CronScheduler{cron: c}, nil
}

// Start begins running scheduled jobs in the background.
func (s *CronScheduler) Start() { s.cron.Start() }

// Stop halts the scheduler and waits for any running job to finish.
func (s *CronScheduler) Stop() { <-s.cron.Stop().Done() }

// Watcher triggers re-discovery when a template JSON/YAML file changes
// under one of the watched roots, debounced to absorb editor save bursts.
type Watcher struct {
	watcher    *fsnotify.Watcher
	rediscover RediscoverFunc

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
}

const debounceDelay = 300 * time.Millisecond

// NewWatcher creates a Watcher over the given roots. Nonexistent roots
// are simply not added; Run still succeeds over the remaining roots.
func NewWatcher(roots []string, rediscover RediscoverFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery watcher: %w", err)
	}
	for _, root := range roots {
		_ = fw.Add(root)
	}
	return &Watcher{watcher: fw, rediscover: rediscover}, nil
}

// Run blocks, processing filesystem events until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) {
	log := logger.FromContext(ctx)
	defer func() { _ = w.watcher.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if isTemplateFile(event.Name) {
				w.schedule(ctx)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("discovery watcher error", "error", err)
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, func() { w.flush(ctx) })
}

func (w *Watcher) flush(ctx context.Context) {
	log := logger.FromContext(ctx)
	w.mu.Lock()
	if !w.pending {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.mu.Unlock()

	if err := w.rediscover(ctx); err != nil {
		log.Error("live-reload workflow re-discovery failed", "error", err)
	}
}

func isTemplateFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".json" || ext == ".yaml" || ext == ".yml"
}
