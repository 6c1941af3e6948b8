package evidence

import (
	"context"
	"fmt"
	"strings"

	"github.com/buildsense-ai/review-app-sub000/internal/agent"
	"github.com/buildsense-ai/review-app-sub000/internal/llm"
	"github.com/buildsense-ai/review-app-sub000/internal/model"
)

// Modifier turns evidence search results into section records: a claim with
// sources gets one LLM call folding them into the prose (status=enhanced), a
// claim with no sources is left untouched (status=no_evidence).
type Modifier struct {
	Opts *agent.Options
}

func locateSection(sections *agent.Sections, subtitle string) (h1, content string, ok bool) {
	sections.Range(func(h1Key string, inner *agent.InnerMap) bool {
		if c, found := inner.Get(subtitle); found {
			h1, content, ok = h1Key, c, true
			return false
		}
		return true
	})
	return
}

func enhancePrompt(sectionTitle, originalContent, claimText string, sources []model.EvidenceSource) string {
	var b strings.Builder
	fmt.Fprintf(&b, "请在不改变原意的前提下，为以下陈述补充引用来源，使其有据可查。"+
		"只修改与该陈述相关的部分，保留其余正文，不要输出标题行，不要使用代码块包裹。\n\n")
	fmt.Fprintf(&b, "章节：%s\n原陈述：%s\n\n可用来源：\n", sectionTitle, claimText)
	for i, s := range sources {
		fmt.Fprintf(&b, "%d. %s (%s)：%s\n", i+1, s.Title, s.URL, s.Snippet)
	}
	fmt.Fprintf(&b, "\n原文：\n%s\n", originalContent)
	return b.String()
}

// Modify applies one evidence result per claim, one at a time in the order
// given; it does not run the results concurrently. Evidence differs from the
// other agents in that a no-source result never calls the LLM at all -- it
// is recorded as status=no_evidence directly.
func (m *Modifier) Modify(ctx context.Context, sections *agent.Sections, results []model.EvidenceResult) []agent.ModifyResult {
	var out []agent.ModifyResult
	for _, r := range results {
		h1, original, ok := locateSection(sections, r.SectionTitle)
		if !ok {
			continue
		}

		if len(r.Sources) == 0 || r.Status != model.EvidenceSuccess {
			out = append(out, agent.ModifyResult{
				H1:         h1,
				SectionKey: r.SectionTitle,
				Record: &model.SectionRecord{
					OriginalContent:    original,
					RegeneratedContent: original,
					WordCount:          len([]rune(original)),
					Status:             model.StatusNoEvidence,
					Comment:            noEvidenceComment(r),
				},
			})
			continue
		}

		record := m.enhanceOne(ctx, h1, r, original)
		out = append(out, agent.ModifyResult{H1: h1, SectionKey: r.SectionTitle, Record: record})
	}
	return out
}

func noEvidenceComment(r model.EvidenceResult) string {
	if r.Status == model.EvidenceFailed {
		return "search failed for this claim, no evidence could be retrieved"
	}
	return "no supporting sources found for this claim"
}

func (m *Modifier) enhanceOne(ctx context.Context, h1 string, r model.EvidenceResult, original string) *model.SectionRecord {
	opts := m.Opts.WithDefaults()
	prompt := enhancePrompt(r.SectionTitle, original, r.ClaimText, r.Sources)
	text, err := opts.Client.Complete(ctx, llm.Params{
		Model:       opts.Model,
		Prompt:      prompt,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Timeout:     opts.Timeout,
	})
	if err != nil {
		opts.Logger.Warn("evidence enhancement failed", "claim_id", r.ClaimID, "error", err)
		return &model.SectionRecord{
			OriginalContent:    original,
			RegeneratedContent: original,
			WordCount:          len([]rune(original)),
			Status:             model.StatusFailed,
			Comment:            err.Error(),
		}
	}

	cleaned := agent.CleanRewrite(text)
	if cleaned == "" {
		return &model.SectionRecord{
			OriginalContent:    original,
			RegeneratedContent: original,
			WordCount:          len([]rune(original)),
			Status:             model.StatusFailed,
			Comment:            "empty llm response",
		}
	}

	return &model.SectionRecord{
		OriginalContent:    original,
		RegeneratedContent: cleaned,
		WordCount:          len([]rune(cleaned)),
		Status:             model.StatusEnhanced,
	}
}
