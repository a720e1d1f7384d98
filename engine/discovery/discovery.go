// Package discovery scans template roots for workflow documents,
// validates them, and groups the survivors by metadata (spec.md §4.2).
package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/deslicer/ai-sidekick-for-splunk-sub000/engine/template"
	"github.com/deslicer/ai-sidekick-for-splunk-sub000/pkg/logger"
)

// skipTokens are filename substrings that mark a JSON file as a
// template example rather than a real, discoverable workflow.
var skipTokens = []string{
	"template", "example", "_template", "_example",
	"basic_workflow_template", "security_audit_example",
}

// DiscoveredWorkflow pairs a validated Template with discovery metadata.
type DiscoveredWorkflow struct {
	Template           *template.Template
	FilePath           string
	Source             template.Source
	ValidationStatus   string
	DiscoveryTimestamp time.Time
}

// Group is a named collection of discovered workflows sharing a trait
// (category, source, complexity, or type), plus distribution counters.
type Group struct {
	ID                     string
	Name                   string
	Description            string
	Workflows              []*DiscoveredWorkflow
	StabilityDistribution  map[string]int
	ComplexityDistribution map[string]int
	SourceDistribution     map[string]int
}

// Summary reports what one discovery pass found.
type Summary struct {
	TotalScanned int
	ValidCount   int
	InvalidCount int
	Errors       []string
}

// Discovery scans a set of root directories for workflow templates.
type Discovery struct {
	roots []string

	mu         sync.RWMutex
	workflows  map[string]*DiscoveredWorkflow
	groups     map[string]*Group
	summary    Summary
}

// New builds a Discovery over the given roots. Nonexistent roots are
// skipped (not an error) at scan time.
func New(roots ...string) *Discovery {
	return &Discovery{
		roots:     roots,
		workflows: map[string]*DiscoveredWorkflow{},
		groups:    map[string]*Group{},
	}
}

// Discover scans every root, validating and indexing surviving
// templates. Pass forceRefresh to clear prior results before rescanning.
func (d *Discovery) Discover(ctx context.Context, forceRefresh bool) (map[string]*DiscoveredWorkflow, error) {
	log := logger.FromContext(ctx)

	d.mu.Lock()
	if forceRefresh {
		d.workflows = map[string]*DiscoveredWorkflow{}
		d.groups = map[string]*Group{}
	}
	d.summary = Summary{}
	d.mu.Unlock()

	for _, root := range d.roots {
		if _, err := os.Stat(root); err != nil {
			log.Warn("workflow discovery root does not exist", "root", root)
			continue
		}
		if err := d.scanDirectory(ctx, root); err != nil {
			return nil, err
		}
	}

	d.mu.Lock()
	d.buildGroups()
	result := make(map[string]*DiscoveredWorkflow, len(d.workflows))
	for k, v := range d.workflows {
		result[k] = v
	}
	d.mu.Unlock()

	log.Info("workflow discovery complete", "valid", d.summary.ValidCount, "invalid", d.summary.InvalidCount)
	return result, nil
}

func (d *Discovery) scanDirectory(ctx context.Context, root string) error {
	log := logger.FromContext(ctx)
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			d.recordError(fmt.Sprintf("error scanning %s: %v", path, err))
			return nil
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		if shouldSkip(path) {
			return nil
		}

		d.mu.Lock()
		d.summary.TotalScanned++
		d.mu.Unlock()

		dw, err := d.processFile(ctx, path)
		if err != nil {
			log.Debug("discarded invalid workflow template", "path", path, "error", err)
			d.mu.Lock()
			d.summary.InvalidCount++
			d.mu.Unlock()
			return nil
		}

		d.mu.Lock()
		d.workflows[dw.Template.ID] = dw
		d.summary.ValidCount++
		d.mu.Unlock()
		return nil
	})
}

func shouldSkip(path string) bool {
	name := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	for _, token := range skipTokens {
		if strings.Contains(name, token) {
			return true
		}
	}
	return false
}

func (d *Discovery) processFile(_ context.Context, path string) (*DiscoveredWorkflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		d.recordError(fmt.Sprintf("error reading %s: %v", path, err))
		return nil, err
	}
	tmpl, err := template.Validate(data, path, template.FormatJSON)
	if err != nil {
		return nil, err
	}
	return &DiscoveredWorkflow{
		Template:           tmpl,
		FilePath:           path,
		Source:             tmpl.Source,
		ValidationStatus:   "valid",
		DiscoveryTimestamp: discoveryTime(),
	}, nil
}

// discoveryTime is split out so tests can observe it deterministically
// if ever needed without touching the scan logic.
var discoveryTime = time.Now

func (d *Discovery) recordError(msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.summary.Errors = append(d.summary.Errors, msg)
}

// Summary returns discovery statistics for the most recent pass.
func (d *Discovery) Summary() Summary {
	d.mu.RLock()
	defer d.mu.RUnlock()
	cp := d.summary
	cp.Errors = append([]string{}, d.summary.Errors...)
	return cp
}

// Find filters discovered workflows by any combination of criteria; a
// zero-value argument skips that filter.
func (d *Discovery) Find(source template.Source, complexity template.Complexity, wfType template.Type, category template.Category, stability template.Stability) []*DiscoveredWorkflow {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []*DiscoveredWorkflow
	for _, dw := range d.workflows {
		if source != "" && dw.Template.Source != source {
			continue
		}
		if complexity != "" && dw.Template.Complexity != complexity {
			continue
		}
		if wfType != "" && dw.Template.Type != wfType {
			continue
		}
		if category != "" && dw.Template.Category != category {
			continue
		}
		if stability != "" && dw.Template.Stability != stability {
			continue
		}
		out = append(out, dw)
	}
	return out
}

// Groups returns the discovery's computed groups, keyed by group ID.
func (d *Discovery) Groups() map[string]*Group {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]*Group, len(d.groups))
	for k, v := range d.groups {
		out[k] = v
	}
	return out
}

func (d *Discovery) buildGroups() {
	d.groups = map[string]*Group{}
	d.groupBy("category", func(dw *DiscoveredWorkflow) string { return string(dw.Template.Category) },
		func(v string) (name, desc string) {
			pretty := strings.ReplaceAll(v, "_", " ")
			return titleCase(pretty) + " Workflows", "Workflows focused on " + pretty + " tasks"
		})
	d.groupBy("source", func(dw *DiscoveredWorkflow) string { return string(dw.Template.Source) },
		func(v string) (name, desc string) {
			return titleCase(v) + " Workflows", "Workflows maintained by " + v + " team"
		})
	d.groupBy("complexity", func(dw *DiscoveredWorkflow) string { return string(dw.Template.Complexity) },
		func(v string) (name, desc string) {
			return titleCase(v) + " Workflows", "Workflows suitable for " + v + " users"
		})
	d.groupBy("type", func(dw *DiscoveredWorkflow) string { return string(dw.Template.Type) },
		func(v string) (name, desc string) {
			pretty := strings.ReplaceAll(v, "_", " ")
			return titleCase(pretty) + " Workflows", "Workflows for " + pretty + " purposes"
		})
}

func (d *Discovery) groupBy(prefix string, keyFn func(*DiscoveredWorkflow) string, describe func(string) (string, string)) {
	byKey := map[string][]*DiscoveredWorkflow{}
	for _, dw := range d.workflows {
		k := keyFn(dw)
		byKey[k] = append(byKey[k], dw)
	}
	for k, members := range byKey {
		name, desc := describe(k)
		d.groups[prefix+"_"+k] = &Group{
			ID:                     prefix + "_" + k,
			Name:                   name,
			Description:            desc,
			Workflows:              members,
			StabilityDistribution:  distribution(members, func(dw *DiscoveredWorkflow) string { return string(dw.Template.Stability) }),
			ComplexityDistribution: distribution(members, func(dw *DiscoveredWorkflow) string { return string(dw.Template.Complexity) }),
			SourceDistribution:     distribution(members, func(dw *DiscoveredWorkflow) string { return string(dw.Template.Source) }),
		}
	}
}

func distribution(workflows []*DiscoveredWorkflow, keyFn func(*DiscoveredWorkflow) string) map[string]int {
	out := map[string]int{}
	for _, dw := range workflows {
		out[keyFn(dw)]++
	}
	return out
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if len(w) == 0 {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
