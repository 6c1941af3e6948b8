package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/buildsense-ai/review-app-sub000/internal/llm"
	"github.com/buildsense-ai/review-app-sub000/internal/model"
)

// Thesis implements the thesis-consistency reviewer. It first extracts the
// document's central thesis with one LLM call, then checks each section
// against it with a second call, mirroring the two-stage extractor/checker
// split of the system this agent is modeled on.
type Thesis struct {
	Opts *Options
	// ExtractionTemperature overrides Opts.Temperature for the thesis
	// extraction call; consistency checking uses Opts.Temperature.
	ExtractionTemperature float64
}

func thesisExtractPrompt(title string, sections *Sections) string {
	var b strings.Builder
	fmt.Fprintf(&b, "你是论文审阅助手。文档标题：%s\n\n", title)
	b.WriteString("请阅读全文，用一到两句话提炼本文档的核心论点（thesis）。只输出论点本身，不要解释。\n\n")
	sections.Range(func(h1 string, inner *InnerMap) bool {
		inner.Range(func(key, content string) bool {
			fmt.Fprintf(&b, "### %s / %s\n%s\n\n", h1, key, content)
			return true
		})
		return true
	})
	return b.String()
}

func thesisConsistencyPrompt(title, thesis string, sections *Sections) string {
	var b strings.Builder
	fmt.Fprintf(&b, "文档标题：%s\n核心论点：%s\n\n", title, thesis)
	b.WriteString("请找出偏离上述核心论点的章节，对每个偏离的章节给出修正建议，使其论述回归核心论点。\n")
	b.WriteString("必须以 JSON 数组返回，每个元素形如 {\"subtitle\": \"章节标题\", \"suggestion\": \"如何修正使其与论点一致\"}。\n")
	b.WriteString("如果所有章节都与论点一致，返回空数组。\n\n")
	sections.Range(func(h1 string, inner *InnerMap) bool {
		inner.Range(func(key, content string) bool {
			fmt.Fprintf(&b, "### %s / %s\n%s\n\n", h1, key, content)
			return true
		})
		return true
	})
	return b.String()
}

// Analyze extracts the thesis, then checks every section against it,
// returning both the resulting instructions and the extracted thesis text
// (carried in the degradation-note slot so the orchestrator can surface it
// in the task message even on a non-degraded run).
func (t *Thesis) Analyze(ctx context.Context, title string, sections *Sections) ([]model.ModificationInstruction, string, error) {
	extractOpts := t.Opts
	if t.ExtractionTemperature != 0 {
		o := *t.Opts
		o.Temperature = t.ExtractionTemperature
		extractOpts = &o
	}

	thesisText, err := extractOpts.Client.Complete(ctx, llm.Params{
		Model:       extractOpts.Model,
		Prompt:      thesisExtractPrompt(title, sections),
		Temperature: extractOpts.Temperature,
		MaxTokens:   extractOpts.MaxTokens,
		Timeout:     extractOpts.Timeout,
	})
	if err != nil {
		return nil, "", err
	}
	thesisText = strings.TrimSpace(thesisText)
	if thesisText == "" {
		return nil, "thesis extraction returned empty output, treating as no changes", nil
	}

	raw, degraded, err := RunAnalyzerPrompt(ctx, t.Opts, thesisConsistencyPrompt(title, thesisText, sections))
	if err != nil {
		return nil, "", err
	}
	if degraded {
		return nil, fmt.Sprintf("thesis consistency check: response was not valid JSON (thesis: %s)", thesisText), nil
	}
	instrs := parseInstructions(raw)
	note := fmt.Sprintf("thesis: %s", thesisText)
	return instrs, note, nil
}

func thesisModifyPrompt(sectionTitle, originalContent, suggestion string) string {
	return fmt.Sprintf(
		"请根据以下建议修正章节正文，使其论述与文档核心论点保持一致，不要输出标题行，不要使用代码块包裹。\n\n"+
			"章节：%s\n建议：%s\n原文：\n%s\n",
		sectionTitle, suggestion, originalContent,
	)
}

// Modify rewrites each drifting section, bounded by N_mod.
func (t *Thesis) Modify(ctx context.Context, sections *Sections, instrs []model.ModificationInstruction) []ModifyResult {
	return RunModifier(ctx, sections, instrs, t.Opts, model.StatusCorrected, thesisModifyPrompt)
}
