package evidence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildsense-ai/review-app-sub000/internal/model"
	"github.com/buildsense-ai/review-app-sub000/internal/search"
)

func hitsFunc(hits []model.SearchHit, err error) search.Func {
	return func(ctx context.Context, query string, maxResults int, timeout time.Duration) ([]model.SearchHit, error) {
		return hits, err
	}
}

func TestStage_RanksAndTrimsToTopK(t *testing.T) {
	client := hitsFunc([]model.SearchHit{
		{Title: "low authority match", Snippet: "碳排放 数据", URL: "https://blog.example.com/a"},
		{Title: "high authority match", Snippet: "碳排放 数据", URL: "https://who.int/report"},
		{Title: "unrelated", Snippet: "完全无关内容", URL: "https://example.org/x"},
		{Title: "another", Snippet: "碳排放", URL: "https://example.org/y"},
	}, nil)

	claims := []model.UnsupportedClaim{
		{ClaimID: "c1", ClaimText: "碳排放 数据", SearchKeywords: []string{"碳排放", "数据"}, Confidence: 0.8},
	}

	results, dropped := Stage(context.Background(), claims, &StageOptions{Client: client, TopK: 2})
	require.Len(t, results, 1)
	assert.Equal(t, 0, dropped)
	assert.Equal(t, model.EvidenceSuccess, results[0].Status)
	require.Len(t, results[0].Sources, 2)
	assert.Equal(t, "who.int", results[0].Sources[0].Domain)
}

func TestStage_NoHitsYieldsPartial(t *testing.T) {
	client := hitsFunc(nil, nil)
	claims := []model.UnsupportedClaim{{ClaimID: "c1", ClaimText: "claim"}}

	results, _ := Stage(context.Background(), claims, &StageOptions{Client: client})
	require.Len(t, results, 1)
	assert.Equal(t, model.EvidencePartial, results[0].Status)
	assert.Empty(t, results[0].Sources)
}

func TestStage_SearchErrorYieldsFailedNotFatal(t *testing.T) {
	client := hitsFunc(nil, assertErr{})
	claims := []model.UnsupportedClaim{{ClaimID: "c1", ClaimText: "claim"}}

	results, _ := Stage(context.Background(), claims, &StageOptions{Client: client})
	require.Len(t, results, 1)
	assert.Equal(t, model.EvidenceFailed, results[0].Status)
}

func TestStage_ClaimCapDropsLowestConfidenceFirst(t *testing.T) {
	client := hitsFunc(nil, nil)
	claims := []model.UnsupportedClaim{
		{ClaimID: "high", ClaimText: "a", Confidence: 0.9},
		{ClaimID: "mid", ClaimText: "b", Confidence: 0.5},
		{ClaimID: "low", ClaimText: "c", Confidence: 0.1},
	}

	results, dropped := Stage(context.Background(), claims, &StageOptions{Client: client, ClaimCap: 2})
	require.Equal(t, 1, dropped)
	require.Len(t, results, 2)

	var ids []string
	for _, r := range results {
		ids = append(ids, r.ClaimID)
	}
	assert.ElementsMatch(t, []string{"high", "mid"}, ids)
}

func TestBuildQuery_UsesFirstThreeKeywords(t *testing.T) {
	claim := model.UnsupportedClaim{
		ClaimText:      "full claim text",
		SearchKeywords: []string{"a", "b", "c", "d"},
	}
	assert.Equal(t, "a b c", buildQuery(claim))
}

func TestBuildQuery_FallsBackToClaimText(t *testing.T) {
	claim := model.UnsupportedClaim{ClaimText: "full claim text"}
	assert.Equal(t, "full claim text", buildQuery(claim))
}

type assertErr struct{}

func (assertErr) Error() string { return "search transport failure" }
