// Package evidence implements the evidence reviewer: claim extraction,
// parallel web-search fan-out with authority/relevance scoring, and the
// claim-rewrite modifier.
package evidence

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/buildsense-ai/review-app-sub000/internal/agent"
	"github.com/buildsense-ai/review-app-sub000/internal/model"
)

// Analyzer extracts unsupported factual claims from the document with a
// single LLM call, the evidence agent's analogue of the shared analyzer.
type Analyzer struct {
	Opts *agent.Options
}

type rawClaim struct {
	ClaimText      string   `json:"claim_text"`
	SectionTitle   string   `json:"section_title"`
	SearchKeywords []string `json:"search_keywords"`
	Context        string   `json:"context"`
	Confidence     float64  `json:"confidence"`
}

func claimExtractPrompt(title string, sections *agent.Sections) string {
	var b strings.Builder
	fmt.Fprintf(&b, "你是事实核查助手。文档标题：%s\n\n", title)
	b.WriteString("请找出文中缺乏证据支撑的具体事实性陈述（例如统计数字、百分比、排名等断言）。\n")
	b.WriteString("必须以 JSON 数组返回，每个元素形如：\n")
	b.WriteString("{\"claim_text\": \"原文陈述\", \"section_title\": \"所在章节标题\", ")
	b.WriteString("\"search_keywords\": [\"关键词1\", \"关键词2\", \"关键词3\"], \"context\": \"上下文\", \"confidence\": 0.0到1.0之间的数字}\n")
	b.WriteString("如果没有发现任何缺乏证据的陈述，返回空数组。\n\n")
	sections.Range(func(h1 string, inner *agent.InnerMap) bool {
		inner.Range(func(key, content string) bool {
			fmt.Fprintf(&b, "### %s / %s\n%s\n\n", h1, key, content)
			return true
		})
		return true
	})
	return b.String()
}

// Analyze returns the claims found, a degradation note (empty when the
// response parsed cleanly), and an error only for a task-fatal LLM failure.
func (a *Analyzer) Analyze(ctx context.Context, title string, sections *agent.Sections) ([]model.UnsupportedClaim, string, error) {
	raw, degraded, err := agent.RunAnalyzerPrompt(ctx, a.Opts, claimExtractPrompt(title, sections))
	if err != nil {
		return nil, "", err
	}
	if degraded {
		return nil, "evidence analyzer: response was not valid JSON, treating as no claims", nil
	}

	var parsed []rawClaim
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, "evidence analyzer: could not unmarshal claim list, treating as no claims", nil
	}

	claims := make([]model.UnsupportedClaim, 0, len(parsed))
	for _, p := range parsed {
		if strings.TrimSpace(p.ClaimText) == "" {
			continue
		}
		claims = append(claims, model.UnsupportedClaim{
			ClaimID:        uuid.NewString(),
			ClaimText:      p.ClaimText,
			SectionTitle:   p.SectionTitle,
			SearchKeywords: p.SearchKeywords,
			Context:        p.Context,
			Confidence:     clamp01(p.Confidence),
		})
	}
	return claims, "", nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
