package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/buildsense-ai/review-app-sub000/internal/model"
)

// Table implements the table reviewer: converts structured enumerations in
// prose (lists of tuples, measurement quotas) into Markdown tables.
type Table struct {
	Opts *Options
}

func tableAnalyzePrompt(title string, sections *Sections) string {
	var b strings.Builder
	fmt.Fprintf(&b, "你是技术文档审阅助手。文档标题：%s\n\n", title)
	b.WriteString("只找出那些明显由结构化枚举构成的段落（例如多条“名称：…，数量：…，用途：…”这样的条目，或度量配额列表），")
	b.WriteString("这些内容更适合用表格呈现。不要对普通叙述性段落提出建议，宁可漏报也不要误报。\n")
	b.WriteString("必须以 JSON 数组返回，每个元素形如 {\"subtitle\": \"章节标题\", \"suggestion\": \"建议转换为表格，并说明列\"}。\n\n")
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

// Analyze emits instructions only for sections the model judges to contain
// tabulable enumerations; see tableAnalyzePrompt for the precision-biased
// framing that implements the "false positives are not acceptable" rule.
func (t *Table) Analyze(ctx context.Context, title string, sections *Sections) ([]model.ModificationInstruction, string, error) {
	prompt := tableAnalyzePrompt(title, sections)
	raw, degraded, err := RunAnalyzerPrompt(ctx, t.Opts, prompt)
	if err != nil {
		return nil, "", err
	}
	if degraded {
		return nil, "table analyzer: response was not valid JSON, treating as no changes", nil
	}
	return parseInstructions(raw), "", nil
}

func tableModifyPrompt(sectionTitle, originalContent, suggestion string) string {
	return fmt.Sprintf(
		"请将以下章节正文中的结构化枚举内容改写为 Markdown 表格，表头根据内容自行命名，"+
			"保留非枚举部分的叙述文字，不要输出标题行，不要使用代码块包裹整体输出。\n\n"+
			"章节：%s\n建议：%s\n原文：\n%s\n",
		sectionTitle, suggestion, originalContent,
	)
}

// Modify rewrites each targeted section into table form, bounded by N_mod.
func (t *Table) Modify(ctx context.Context, sections *Sections, instrs []model.ModificationInstruction) []ModifyResult {
	return RunModifier(ctx, sections, instrs, t.Opts, model.StatusTableOptimized, tableModifyPrompt)
}
