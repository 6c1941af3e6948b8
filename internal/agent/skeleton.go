// Package agent implements the two-phase analyze -> modify skeleton shared
// by every review agent, plus the three non-evidence agents built on it
// (the evidence agent lives in package evidence).
package agent

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/buildsense-ai/review-app-sub000/internal/concurrency"
	"github.com/buildsense-ai/review-app-sub000/internal/llm"
	"github.com/buildsense-ai/review-app-sub000/internal/model"
	"github.com/buildsense-ai/review-app-sub000/internal/ordered"
	"github.com/buildsense-ai/review-app-sub000/internal/pipelineerr"
	"github.com/buildsense-ai/review-app-sub000/internal/safe"
)

// Kind names one of the four review agents.
type Kind string

const (
	KindRedundancy Kind = "redundancy"
	KindTable      Kind = "table"
	KindThesis     Kind = "thesis"
	KindEvidence   Kind = "evidence"
)

// InnerMap is the sectionKey -> content map nested under one H1.
type InnerMap = ordered.Map[string]

// Sections is the parsed document view an analyzer/modifier operates over:
// H1 -> sectionKey -> content, in parser order.
type Sections = ordered.Map[*InnerMap]

// AnalyzerFunc produces modification instructions for a non-evidence agent.
// The implementation issues one LLM call with an agent-specific prompt and
// applies the shared JSON-extraction/validation policy.
type AnalyzerFunc func(ctx context.Context, title string, sections *Sections) ([]model.ModificationInstruction, string, error)

// Options bounds the modifier's concurrency and carries the LLM client.
type Options struct {
	Client      llm.Client
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	MaxInFlight int // N_mod, default 5
	Logger      *slog.Logger
}

func (o *Options) WithDefaults() *Options {
	out := *o
	if out.MaxInFlight <= 0 {
		out.MaxInFlight = 5
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = 2000
	}
	if out.Timeout <= 0 {
		out.Timeout = 60 * time.Second
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}

// RewritePrompt builds the modifier prompt for a single instruction from the
// section title, its original content and the instruction's suggestion. Each
// concrete agent supplies its own function and formats the whole prompt.
type RewritePrompt func(sectionTitle, originalContent, suggestion string) string

// ModifyResult is one instruction's outcome, keyed by its target section.
type ModifyResult struct {
	H1         string
	SectionKey string
	Record     *model.SectionRecord
}

var headingLineRe = regexp.MustCompile(`(?m)^#{1,6}\s.*\n?`)
var codeFenceLineRe = regexp.MustCompile("(?m)^```[a-zA-Z]*\\s*\\n?|^```\\s*\\n?")

// CleanRewrite strips leading heading lines and code-fence artifacts from an
// LLM rewrite, per the modifier's post-processing contract.
func CleanRewrite(text string) string {
	text = headingLineRe.ReplaceAllString(text, "")
	text = codeFenceLineRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// locateSection finds which H1 a section key belongs to, since
// ModificationInstruction carries only the bare subtitle.
func locateSection(sections *Sections, subtitle string) (h1 string, content string, ok bool) {
	sections.Range(func(h1Key string, inner *ordered.Map[string]) bool {
		if c, found := inner.Get(subtitle); found {
			h1, content, ok = h1Key, c, true
			return false
		}
		return true
	})
	return
}

// RunModifier applies instructions concurrently across sections, bounded by
// Options.MaxInFlight, while instructions that target the same section are
// processed sequentially by a single goroutine in the analyzer's emission
// order, so each sees the prior instruction's output as its originalContent.
func RunModifier(
	ctx context.Context,
	sections *Sections,
	instructions []model.ModificationInstruction,
	opts *Options,
	successStatus model.RecordStatus,
	buildPrompt RewritePrompt,
) []ModifyResult {
	opts = opts.WithDefaults()
	limiter := concurrency.NewLimiter(opts.MaxInFlight)

	// Bucket instructions by target section, preserving each bucket's
	// instructions in their original emission order, and preserving the
	// order sections are first seen (for stable result ordering).
	type indexedInstruction struct {
		pos   int
		instr model.ModificationInstruction
	}
	buckets := make(map[string][]indexedInstruction)
	var sectionOrder []string
	for i, instr := range instructions {
		if _, seen := buckets[instr.Subtitle]; !seen {
			sectionOrder = append(sectionOrder, instr.Subtitle)
		}
		buckets[instr.Subtitle] = append(buckets[instr.Subtitle], indexedInstruction{pos: i, instr: instr})
	}

	slots := make([]*ModifyResult, len(instructions))

	var wg sync.WaitGroup
	for _, key := range sectionOrder {
		key := key
		bucket := buckets[key]
		wg.Add(1)
		safe.Go(func() {
			defer wg.Done()

			h1, original, ok := locateSection(sections, key)
			if !ok {
				return
			}

			// Instructions in bucket run one at a time, in emission order,
			// each feeding the next its regenerated content.
			for _, ii := range bucket {
				limiter.Acquire()
				record := modifyOne(ctx, opts, h1, key, original, ii.instr.Suggestion, successStatus, buildPrompt)
				limiter.Release()

				slots[ii.pos] = &ModifyResult{H1: h1, SectionKey: key, Record: record}
				original = record.RegeneratedContent
			}
		}, func(err error) {
			opts.Logger.Error("section modification goroutine panicked", "section", key, "error", err)
		})
	}
	wg.Wait()

	allResults := make([]ModifyResult, 0, len(instructions))
	for _, slot := range slots {
		if slot != nil {
			allResults = append(allResults, *slot)
		}
	}
	return allResults
}

func modifyOne(
	ctx context.Context,
	opts *Options,
	h1, sectionKey, original, suggestion string,
	successStatus model.RecordStatus,
	buildPrompt RewritePrompt,
) *model.SectionRecord {
	prompt := buildPrompt(sectionKey, original, suggestion)
	text, err := opts.Client.Complete(ctx, llm.Params{
		Model:       opts.Model,
		Prompt:      prompt,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Timeout:     opts.Timeout,
	})
	if err != nil {
		opts.Logger.Warn("section modification failed", "h1", h1, "section", sectionKey, "error", err)
		return &model.SectionRecord{
			OriginalContent:    original,
			Suggestion:         suggestion,
			RegeneratedContent: original,
			WordCount:          len([]rune(original)),
			Status:             model.StatusFailed,
			Comment:            err.Error(),
		}
	}

	cleaned := CleanRewrite(text)
	if cleaned == "" {
		opts.Logger.Warn("empty section modification treated as failure", "h1", h1, "section", sectionKey)
		return &model.SectionRecord{
			OriginalContent:    original,
			Suggestion:         suggestion,
			RegeneratedContent: original,
			WordCount:          len([]rune(original)),
			Status:             model.StatusFailed,
			Comment:            "empty llm response",
		}
	}

	return &model.SectionRecord{
		OriginalContent:    original,
		Suggestion:         suggestion,
		RegeneratedContent: cleaned,
		WordCount:          len([]rune(cleaned)),
		Status:             successStatus,
	}
}

// RunAnalyzerPrompt issues the single LLM call an analyzer makes, extracts
// the first balanced JSON array from the response per the shared parsing
// policy, and reports whether the response was parse-degraded (a condition
// absorbed into the task message, not surfaced as an error).
func RunAnalyzerPrompt(ctx context.Context, opts *Options, prompt string) (json string, degraded bool, err error) {
	opts = opts.WithDefaults()
	text, callErr := opts.Client.Complete(ctx, llm.Params{
		Model:       opts.Model,
		Prompt:      prompt,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Timeout:     opts.Timeout,
	})
	if callErr != nil {
		return "", false, &pipelineerr.DocumentAnalysisError{Err: callErr}
	}
	extracted, ok := llm.ExtractJSON(text)
	if !ok {
		return "", true, nil
	}
	return extracted, false, nil
}
