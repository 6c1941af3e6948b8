package evidence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildsense-ai/review-app-sub000/internal/agent"
	"github.com/buildsense-ai/review-app-sub000/internal/llm"
	"github.com/buildsense-ai/review-app-sub000/internal/model"
	"github.com/buildsense-ai/review-app-sub000/internal/ordered"
)

type fakeClient struct {
	response string
	err      error
}

func (f *fakeClient) Complete(ctx context.Context, params llm.Params) (string, error) {
	return f.response, f.err
}

func sectionsWith(h1, key, content string) *agent.Sections {
	inner := ordered.New[string]()
	inner.Set(key, content)
	outer := ordered.New[*agent.InnerMap]()
	outer.Set(h1, inner)
	return outer
}

func TestModifier_EnhancesClaimWithSources(t *testing.T) {
	sections := sectionsWith("Introduction", "Introduction", "original section text")
	client := &fakeClient{response: "rewritten with citation"}
	m := &Modifier{Opts: &agent.Options{Client: client}}

	results := m.Modify(context.Background(), sections, []model.EvidenceResult{
		{
			ClaimID:      "c1",
			ClaimText:    "claim",
			SectionTitle: "Introduction",
			Status:       model.EvidenceSuccess,
			Sources:      []model.EvidenceSource{{Title: "src", URL: "https://example.com"}},
		},
	})

	require.Len(t, results, 1)
	assert.Equal(t, model.StatusEnhanced, results[0].Record.Status)
	assert.Equal(t, "rewritten with citation", results[0].Record.RegeneratedContent)
}

func TestModifier_NoSourcesYieldsNoEvidence(t *testing.T) {
	sections := sectionsWith("Introduction", "Introduction", "original section text")
	client := &fakeClient{response: "should not be used"}
	m := &Modifier{Opts: &agent.Options{Client: client}}

	results := m.Modify(context.Background(), sections, []model.EvidenceResult{
		{ClaimID: "c1", SectionTitle: "Introduction", Status: model.EvidencePartial},
	})

	require.Len(t, results, 1)
	assert.Equal(t, model.StatusNoEvidence, results[0].Record.Status)
	assert.Equal(t, "original section text", results[0].Record.RegeneratedContent)
	assert.Equal(t, results[0].Record.OriginalContent, results[0].Record.RegeneratedContent)
}

func TestModifier_UnknownSectionSkipped(t *testing.T) {
	sections := sectionsWith("Introduction", "Introduction", "text")
	m := &Modifier{Opts: &agent.Options{Client: &fakeClient{}}}

	results := m.Modify(context.Background(), sections, []model.EvidenceResult{
		{ClaimID: "c1", SectionTitle: "Nonexistent", Status: model.EvidenceSuccess,
			Sources: []model.EvidenceSource{{Title: "s"}}},
	})

	assert.Empty(t, results)
}
