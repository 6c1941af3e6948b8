package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/buildsense-ai/review-app-sub000/internal/model"
)

// Redundancy implements the redundancy reviewer: finds repeated prose,
// possibly across sections, and rewrites it away.
type Redundancy struct {
	Opts *Options
}

func redundancyAnalyzePrompt(title string, sections *Sections) string {
	var b strings.Builder
	fmt.Fprintf(&b, "你是技术文档审阅助手。文档标题：%s\n\n", title)
	b.WriteString("请找出文档中重复或高度相似的表述，即使它们出现在不同章节。对每一处重复，输出一条指令。\n")
	b.WriteString("必须以 JSON 数组返回，每个元素形如 {\"subtitle\": \"章节标题\", \"suggestion\": \"具体修改建议\"}。\n")
	b.WriteString("不要返回空数组；如果确实没有发现重复，也要尽量给出至少一条最接近的建议。\n\n")
	b.WriteString("章节内容：\n")
	sections.Range(func(h1 string, inner *InnerMap) bool {
		inner.Range(func(key, content string) bool {
			fmt.Fprintf(&b, "### %s / %s\n%s\n\n", h1, key, content)
			return true
		})
		return true
	})
	return b.String()
}


// Analyze runs the single LLM call and parses its output into instructions,
// tolerating a parse-degraded response per the shared analyzer policy. It
// returns a human-readable degradation note for the task message when the
// model's output could not be parsed.
func (r *Redundancy) Analyze(ctx context.Context, title string, sections *Sections) ([]model.ModificationInstruction, string, error) {
	prompt := redundancyAnalyzePrompt(title, sections)
	raw, degraded, err := RunAnalyzerPrompt(ctx, r.Opts, prompt)
	if err != nil {
		return nil, "", err
	}
	if degraded {
		return nil, "redundancy analyzer: response was not valid JSON, treating as no changes", nil
	}
	instrs := parseInstructions(raw)
	return instrs, "", nil
}

func redundancyModifyPrompt(sectionTitle, originalContent, suggestion string) string {
	return fmt.Sprintf(
		"请根据以下建议改写章节正文，消除与其他章节重复的表述，保留原意，不要输出标题行，不要使用代码块包裹。\n\n"+
			"章节：%s\n建议：%s\n原文：\n%s\n",
		sectionTitle, suggestion, originalContent,
	)
}

// Modify rewrites each targeted section concurrently, bounded by N_mod, with
// same-section instructions serialized in emission order.
func (r *Redundancy) Modify(ctx context.Context, sections *Sections, instrs []model.ModificationInstruction) []ModifyResult {
	return RunModifier(ctx, sections, instrs, r.Opts, model.StatusModified, redundancyModifyPrompt)
}

// parseInstructions unmarshals the analyzer's extracted JSON array, dropping
// any element missing a non-empty subtitle or suggestion.
func parseInstructions(raw string) []model.ModificationInstruction {
	var parsed []model.ModificationInstruction
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil
	}
	out := make([]model.ModificationInstruction, 0, len(parsed))
	for _, p := range parsed {
		if strings.TrimSpace(p.Subtitle) == "" || strings.TrimSpace(p.Suggestion) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
