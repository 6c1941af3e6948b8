package pipelineerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLLMCallError_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("rate limited")
	e := &LLMCallError{Model: "gpt-4o-mini", Err: inner}
	assert.Contains(t, e.Error(), "gpt-4o-mini")
	assert.Contains(t, e.Error(), "rate limited")
	assert.Equal(t, inner, errors.Unwrap(e))
	assert.Equal(t, KindLLMCall, e.Kind())
}

func TestDocumentAnalysisError_ErrorAndKind(t *testing.T) {
	e := &DocumentAnalysisError{Agent: "redundancy", Err: errors.New("timeout")}
	assert.Contains(t, e.Error(), "redundancy")
	assert.Equal(t, KindDocumentAnalysis, e.Kind())
}

func TestDocumentParseError_Error(t *testing.T) {
	e := &DocumentParseError{Reason: "missing H1"}
	assert.Equal(t, "document parse error: missing H1", e.Error())
	assert.Equal(t, KindDocumentParse, e.Kind())
}

func TestEvidenceSearchError_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("quota exceeded")
	e := &EvidenceSearchError{Query: "golang", Err: inner}
	assert.Contains(t, e.Error(), "golang")
	assert.Equal(t, inner, errors.Unwrap(e))
	assert.Equal(t, KindEvidenceSearch, e.Kind())
}

func TestDocumentProcessingError_ErrorAndUnwrap(t *testing.T) {
	inner := errors.New("disk full")
	e := &DocumentProcessingError{Stage: "artifact_write", Err: inner}
	assert.Contains(t, e.Error(), "artifact_write")
	assert.Equal(t, inner, errors.Unwrap(e))
	assert.Equal(t, KindDocumentProcessing, e.Kind())
}

func TestTaskFatalError_ErrorAndKind(t *testing.T) {
	e := &TaskFatalError{KindVal: KindTimeout, Err: errors.New("deadline exceeded")}
	assert.Contains(t, e.Error(), "timeout")
	assert.Equal(t, KindTimeout, e.Kind())
}

func TestKindOf_ExtractsKindFromWrappedError(t *testing.T) {
	err := &EvidenceSearchError{Query: "q", Err: errors.New("boom")}
	wrapped := errors.Join(errors.New("context"), err)
	assert.Equal(t, KindEvidenceSearch, KindOf(wrapped))
}

func TestKindOf_DefaultsToDocumentProcessingForUnknownError(t *testing.T) {
	assert.Equal(t, KindDocumentProcessing, KindOf(errors.New("plain error")))
}

func TestKindOf_DirectKindedError(t *testing.T) {
	require.Equal(t, KindLLMCall, KindOf(&LLMCallError{Model: "m", Err: errors.New("e")}))
}
