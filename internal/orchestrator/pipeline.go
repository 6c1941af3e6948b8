package orchestrator

import (
	"context"
	"fmt"

	"github.com/buildsense-ai/review-app-sub000/internal/agent"
	"github.com/buildsense-ai/review-app-sub000/internal/evidence"
	"github.com/buildsense-ai/review-app-sub000/internal/model"
)

// reporter is called with a contractual progress percentage and a
// human-readable status message as a pipeline advances.
type reporter func(progress int, message string)

// Pipeline is the uniform shape the orchestrator drives for any agent: run
// the agent's full analyze (-> search, for evidence) -> modify computation,
// reporting progress along the way, and return the resulting records plus
// any analyzer degradation note for the task message.
type Pipeline interface {
	Run(ctx context.Context, title string, sections *agent.Sections, report reporter) ([]agent.ModifyResult, string, error)
}

// simpleAgent is implemented by the three non-evidence agents; they share
// one analyze -> modify pipeline shape.
type simpleAgent interface {
	Analyze(ctx context.Context, title string, sections *agent.Sections) ([]model.ModificationInstruction, string, error)
	Modify(ctx context.Context, sections *agent.Sections, instrs []model.ModificationInstruction) []agent.ModifyResult
}

// simplePipeline adapts redundancy/table/thesis to Pipeline.
type simplePipeline struct {
	agent simpleAgent
}

func newSimplePipeline(a simpleAgent) Pipeline {
	return &simplePipeline{agent: a}
}

func (p *simplePipeline) Run(ctx context.Context, title string, sections *agent.Sections, report reporter) ([]agent.ModifyResult, string, error) {
	report(10, "analyzing document")
	instrs, note, err := p.agent.Analyze(ctx, title, sections)
	if err != nil {
		return nil, "", err
	}
	report(30, "analysis complete")

	if len(instrs) == 0 {
		report(95, "no changes identified")
		return nil, note, nil
	}

	results := p.agent.Modify(ctx, sections, instrs)
	report(90, "modification complete")
	return results, note, nil
}

// evidencePipeline wires the claim extractor, search stage, and evidence
// modifier together, reporting progress across claim extraction, search,
// and per-claim rewriting.
type evidencePipeline struct {
	analyzer    *evidence.Analyzer
	stageOpts   *evidence.StageOptions
	modifier    *evidence.Modifier
}

// NewEvidencePipeline builds the evidence agent's three-stage pipeline.
func NewEvidencePipeline(analyzer *evidence.Analyzer, stageOpts *evidence.StageOptions, modifier *evidence.Modifier) Pipeline {
	return &evidencePipeline{analyzer: analyzer, stageOpts: stageOpts, modifier: modifier}
}

func (p *evidencePipeline) Run(ctx context.Context, title string, sections *agent.Sections, report reporter) ([]agent.ModifyResult, string, error) {
	report(10, "extracting claims")
	claims, note, err := p.analyzer.Analyze(ctx, title, sections)
	if err != nil {
		return nil, "", err
	}
	report(30, "claims extracted")

	if len(claims) == 0 {
		report(95, "no unsupported claims found")
		return nil, note, nil
	}

	report(40, "searching for evidence")
	evResults, dropped := evidence.Stage(ctx, claims, p.stageOpts)
	if dropped > 0 {
		note = joinNote(note, fmt.Sprintf("claim cap exceeded, dropped %d lowest-confidence claims", dropped))
	}
	report(70, "evidence search complete")

	results := p.modifier.Modify(ctx, sections, evResults)
	report(90, "claim rewriting complete")
	return results, note, nil
}

func joinNote(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + "; " + b
}

// NewSimplePipeline is exported for the CLI entry point's agent wiring.
func NewSimplePipeline(a simpleAgent) Pipeline {
	return newSimplePipeline(a)
}
