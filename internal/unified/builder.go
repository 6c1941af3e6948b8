// Package unified merges every review agent's per-section modifier output
// into the canonical H1 -> sectionKey -> SectionRecord shape the task
// orchestrator persists and the flat/rebuild views consume.
package unified

import (
	"github.com/buildsense-ai/review-app-sub000/internal/agent"
	"github.com/buildsense-ai/review-app-sub000/internal/model"
)

// Builder accumulates ModifyResult batches from every agent run against one
// document into a single UnifiedSections value.
type Builder struct {
	out *model.UnifiedSections
}

// NewBuilder creates a Builder seeded with every H1 from the parsed
// document, in order, so H1s that end up with no modifications still
// appear as empty inner maps rather than being silently omitted.
func NewBuilder(sections *agent.Sections) *Builder {
	out := model.NewUnifiedSections()
	sections.Range(func(h1 string, _ *agent.InnerMap) bool {
		out.EnsureH1(h1)
		return true
	})
	return &Builder{out: out}
}

// Add merges one agent's modifier output into the accumulating result. Later
// calls for the same h1/sectionKey overwrite earlier ones, reflecting that
// an agent running after another may operate on already-regenerated text.
func (b *Builder) Add(results []agent.ModifyResult) {
	for _, r := range results {
		if r.Record == nil {
			continue
		}
		b.out.Put(r.H1, r.SectionKey, r.Record)
	}
}

// Build returns the accumulated UnifiedSections.
func (b *Builder) Build() *model.UnifiedSections {
	return b.out
}
