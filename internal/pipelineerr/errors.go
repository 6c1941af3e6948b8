// Package pipelineerr defines the error taxonomy shared by every stage of
// the review pipeline. A per-section or per-claim call may return one of
// these errors (an LLMCallError, an EvidenceSearchError), but the stage
// absorbs it into a status value on SectionRecord/EvidenceResult; only
// errors that reach the orchestrator abort a whole task.
package pipelineerr

import (
	"errors"
	"fmt"
)

// Kind is a machine-stable identifier for a TaskError, independent of the
// human-readable message, so callers can branch on error class.
type Kind string

const (
	KindLLMCall            Kind = "llm_call_error"
	KindDocumentAnalysis    Kind = "document_analysis_error"
	KindDocumentParse       Kind = "document_parse_error"
	KindEvidenceSearch      Kind = "evidence_search_error"
	KindDocumentProcessing  Kind = "document_processing_error"
	KindCancelled           Kind = "cancelled"
	KindTimeout             Kind = "timeout"
	KindInvalidInput        Kind = "invalid_input"
)

// LLMCallError wraps the last underlying error from a failed LLM call,
// surfaced after the client's retry budget is exhausted.
type LLMCallError struct {
	Model string
	Err   error
}

func (e *LLMCallError) Error() string {
	return fmt.Sprintf("llm call failed (model=%s): %v", e.Model, e.Err)
}

func (e *LLMCallError) Unwrap() error { return e.Err }

func (e *LLMCallError) Kind() Kind { return KindLLMCall }

// DocumentAnalysisError reports that an analyzer could not complete its
// pass over the document (distinct from a single parse-degraded response,
// which is absorbed rather than raised).
type DocumentAnalysisError struct {
	Agent string
	Err   error
}

func (e *DocumentAnalysisError) Error() string {
	return fmt.Sprintf("document analysis failed (agent=%s): %v", e.Agent, e.Err)
}

func (e *DocumentAnalysisError) Unwrap() error { return e.Err }

func (e *DocumentAnalysisError) Kind() Kind { return KindDocumentAnalysis }

// DocumentParseError reports a parser invariant violation.
type DocumentParseError struct {
	Reason string
}

func (e *DocumentParseError) Error() string {
	return fmt.Sprintf("document parse error: %s", e.Reason)
}

func (e *DocumentParseError) Kind() Kind { return KindDocumentParse }

// EvidenceSearchError reports a transport or quota failure from the search
// client for one query. The evidence stage absorbs it for that claim, which
// then ends up as status=no_evidence like a zero-hit outcome; it does not
// abort the stage.
type EvidenceSearchError struct {
	Query string
	Err   error
}

func (e *EvidenceSearchError) Error() string {
	return fmt.Sprintf("evidence search failed (query=%q): %v", e.Query, e.Err)
}

func (e *EvidenceSearchError) Unwrap() error { return e.Err }

func (e *EvidenceSearchError) Kind() Kind { return KindEvidenceSearch }

// DocumentProcessingError is a catch-all for task-fatal conditions outside
// the analysis/search/parse boundaries: artifact write failures, rebuild
// failures, and similar.
type DocumentProcessingError struct {
	Stage string
	Err   error
}

func (e *DocumentProcessingError) Error() string {
	return fmt.Sprintf("document processing failed (stage=%s): %v", e.Stage, e.Err)
}

func (e *DocumentProcessingError) Unwrap() error { return e.Err }

func (e *DocumentProcessingError) Kind() Kind { return KindDocumentProcessing }

// TaskFatalError wraps a terminal task condition that does not fit one of
// the named error types above: cancellation, timeout, or invalid input
// rejected at submission.
type TaskFatalError struct {
	KindVal Kind
	Err     error
}

func (e *TaskFatalError) Error() string {
	return fmt.Sprintf("%s: %v", e.KindVal, e.Err)
}

func (e *TaskFatalError) Unwrap() error { return e.Err }

func (e *TaskFatalError) Kind() Kind { return e.KindVal }

// Kinded is implemented by every error type in this package, letting
// callers classify an error without a type switch over concrete types.
type Kinded interface {
	error
	Kind() Kind
}

var (
	_ Kinded = (*LLMCallError)(nil)
	_ Kinded = (*DocumentAnalysisError)(nil)
	_ Kinded = (*DocumentParseError)(nil)
	_ Kinded = (*EvidenceSearchError)(nil)
	_ Kinded = (*DocumentProcessingError)(nil)
)

// KindOf extracts the machine-stable kind from err, defaulting to
// KindDocumentProcessing when err does not implement Kinded.
func KindOf(err error) Kind {
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindDocumentProcessing
}
