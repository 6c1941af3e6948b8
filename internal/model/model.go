// Package model holds the data shapes shared by every review agent and by
// the task orchestrator: sections, instructions, claims, evidence, records,
// and the unified two-level result map.
package model

import "github.com/buildsense-ai/review-app-sub000/internal/ordered"

// ProloguePlaceholder is the synthetic H1/section name for content that
// precedes the document's first heading.
const ProloguePlaceholder = "文档开头"

// RecordStatus classifies a SectionRecord's outcome.
type RecordStatus string

const (
	StatusModified      RecordStatus = "modified"
	StatusTableOptimized RecordStatus = "table_optimized"
	StatusIdentified     RecordStatus = "identified"
	StatusCorrected      RecordStatus = "corrected"
	StatusEnhanced       RecordStatus = "enhanced"
	StatusNoEvidence     RecordStatus = "no_evidence"
	StatusSuccess        RecordStatus = "success"
	StatusFailed         RecordStatus = "failed"
)

// IsRealModification reports whether status represents an actual change to
// the document worth surfacing in a flat chapter list — i.e. not an
// unchanged/no-op outcome.
func (s RecordStatus) IsRealModification() bool {
	switch s {
	case StatusSuccess, StatusNoEvidence:
		return false
	default:
		return true
	}
}

// ModificationInstruction is emitted by a non-evidence analyzer: a directive
// to rewrite the section named Subtitle using Suggestion as guidance.
type ModificationInstruction struct {
	Subtitle   string `json:"subtitle"`
	Suggestion string `json:"suggestion"`
}

// UnsupportedClaim is emitted by the evidence analyzer: a factual statement
// that lacks a cited source.
type UnsupportedClaim struct {
	ClaimID        string   `json:"claim_id"`
	ClaimText      string   `json:"claim_text"`
	SectionTitle   string   `json:"section_title"`
	SearchKeywords []string `json:"search_keywords"`
	Context        string   `json:"context"`
	Confidence     float64  `json:"confidence"`
}

// SearchHit is one result returned by the search client.
type SearchHit struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Snippet string `json:"snippet"`
	Domain string `json:"domain"`
}

// EvidenceSource is a SearchHit enriched with the evidence search stage's
// authority/relevance scoring.
type EvidenceSource struct {
	Title     string  `json:"title"`
	URL       string  `json:"url"`
	Snippet   string  `json:"snippet"`
	Domain    string  `json:"domain"`
	Relevance float64 `json:"relevance"`
	Authority float64 `json:"authority"`
}

// EvidenceStatus classifies how an evidence search resolved for one claim.
type EvidenceStatus string

const (
	EvidenceSuccess EvidenceStatus = "success"
	EvidencePartial EvidenceStatus = "partial"
	EvidenceFailed  EvidenceStatus = "failed"
)

// EvidenceResult is the evidence search stage's output for one claim.
type EvidenceResult struct {
	ClaimID      string           `json:"claim_id"`
	ClaimText    string           `json:"claim_text"`
	SectionTitle string           `json:"section_title"`
	SearchQuery  string           `json:"search_query"`
	Sources      []EvidenceSource `json:"sources"`
	Confidence   float64          `json:"confidence"`
	Status       EvidenceStatus   `json:"status"`
}

// SectionRecord is the per-section output every modifier produces.
type SectionRecord struct {
	OriginalContent   string       `json:"original_content"`
	Suggestion        string       `json:"suggestion"`
	RegeneratedContent string      `json:"regenerated_content"`
	WordCount         int          `json:"word_count"`
	Status            RecordStatus `json:"status"`
	// Comment carries an explanatory note for records the flat view would
	// otherwise silently drop (e.g. no_evidence claims), per the distilled
	// spec's Flat View policy note.
	Comment string `json:"comment,omitempty"`
}

// UnifiedSections is the canonical H1 -> sectionKey -> SectionRecord shape
// every agent returns, with both levels preserving document order.
type UnifiedSections struct {
	*ordered.Map[*ordered.Map[*SectionRecord]]
}

// NewUnifiedSections creates an empty UnifiedSections.
func NewUnifiedSections() *UnifiedSections {
	return &UnifiedSections{Map: ordered.New[*ordered.Map[*SectionRecord]]()}
}

// Put records result under h1/sectionKey, creating the inner map if needed.
func (u *UnifiedSections) Put(h1, sectionKey string, record *SectionRecord) {
	inner, ok := u.Get(h1)
	if !ok {
		inner = ordered.New[*SectionRecord]()
		u.Set(h1, inner)
	}
	inner.Set(sectionKey, record)
}

// EnsureH1 guarantees h1 appears in the outer map, even with no records,
// so that H1s without modifications still appear as empty inner maps.
func (u *UnifiedSections) EnsureH1(h1 string) {
	if _, ok := u.Get(h1); !ok {
		u.Set(h1, ordered.New[*SectionRecord]())
	}
}

// Chapter is one entry of the flat, front-end-facing view of UnifiedSections.
type Chapter struct {
	OriginalText string `json:"original_text"`
	EditText     string `json:"edit_text"`
	Comment      string `json:"comment"`
}

// TaskStatus is the task orchestrator's state-machine value.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// TaskResult is the artifact summary written into a completed task.
type TaskResult struct {
	Chapters      []Chapter `json:"chapters,omitempty"`
	Summary       string    `json:"summary,omitempty"`
	UnifiedPath   string    `json:"unified_path,omitempty"`
	MarkdownPath  string    `json:"markdown_path,omitempty"`
}

// TaskError carries a machine-stable error kind alongside a human message,
// per the distilled spec's task-fatal error contract.
type TaskError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
