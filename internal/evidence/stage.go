package evidence

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/buildsense-ai/review-app-sub000/internal/concurrency"
	"github.com/buildsense-ai/review-app-sub000/internal/model"
	"github.com/buildsense-ai/review-app-sub000/internal/safe"
	"github.com/buildsense-ai/review-app-sub000/internal/search"
	result "github.com/buildsense-ai/review-app-sub000/internal/valueresult"
)

// StageOptions configures the evidence search stage.
type StageOptions struct {
	Client          search.Client
	MaxInFlight     int           // N_search, default 5
	MaxResultsQuery int           // search results requested per query, default 5
	TopK            int           // sources kept per claim after scoring, default 3
	ClaimCap        int           // global cap on claims searched, default 25
	Timeout         time.Duration // per-search timeout, default 15s
	Logger          *slog.Logger
}

func (o *StageOptions) withDefaults() *StageOptions {
	out := *o
	if out.MaxInFlight <= 0 {
		out.MaxInFlight = 5
	}
	if out.MaxResultsQuery <= 0 {
		out.MaxResultsQuery = 5
	}
	if out.TopK <= 0 {
		out.TopK = 3
	}
	if out.ClaimCap <= 0 {
		out.ClaimCap = 25
	}
	if out.Timeout <= 0 {
		out.Timeout = 15 * time.Second
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}

// buildQuery joins the first three search keywords into a single query
// string; falls back to the claim text itself when no keywords were given.
func buildQuery(claim model.UnsupportedClaim) string {
	kw := claim.SearchKeywords
	if len(kw) > 3 {
		kw = kw[:3]
	}
	q := strings.TrimSpace(strings.Join(kw, " "))
	if q == "" {
		return claim.ClaimText
	}
	return q
}

// Stage fans a set of claims out to the search client concurrently, bounded
// by MaxInFlight, scores and ranks each claim's hits, and returns one
// EvidenceResult per claim searched. Claims beyond ClaimCap are dropped,
// lowest confidence first, and the drop is reported via droppedCount so the
// caller can record it in the task message; per-claim search failures never
// fail the stage as a whole, they resolve to a failed-status result.
func Stage(ctx context.Context, claims []model.UnsupportedClaim, opts *StageOptions) (results []model.EvidenceResult, droppedCount int) {
	opts = opts.withDefaults()

	kept := claims
	if len(kept) > opts.ClaimCap {
		sorted := make([]model.UnsupportedClaim, len(kept))
		copy(sorted, kept)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Confidence > sorted[j].Confidence
		})
		droppedCount = len(sorted) - opts.ClaimCap
		kept = sorted[:opts.ClaimCap]
		opts.Logger.Warn("evidence claim cap exceeded, dropping lowest-confidence claims",
			"cap", opts.ClaimCap, "dropped", droppedCount)
	}

	limiter := concurrency.NewLimiter(opts.MaxInFlight)
	out := make([]model.EvidenceResult, len(kept))

	var wg sync.WaitGroup
	for i, claim := range kept {
		i, claim := i, claim
		wg.Add(1)
		safe.Go(func() {
			defer wg.Done()
			limiter.Acquire()
			defer limiter.Release()
			out[i] = searchOneClaim(ctx, claim, opts)
		}, func(err error) {
			opts.Logger.Error("evidence search goroutine panicked", "claim_id", claim.ClaimID, "error", err)
		})
	}
	wg.Wait()

	return out, droppedCount
}

func searchOneClaim(ctx context.Context, claim model.UnsupportedClaim, opts *StageOptions) model.EvidenceResult {
	query := buildQuery(claim)
	evidenceResult := model.EvidenceResult{
		ClaimID:      claim.ClaimID,
		ClaimText:    claim.ClaimText,
		SectionTitle: claim.SectionTitle,
		SearchQuery:  query,
		Confidence:   claim.Confidence,
	}

	searchResult := result.New(opts.Client.Search(ctx, query, opts.MaxResultsQuery, opts.Timeout))
	hits, err := searchResult.Get()
	if err != nil {
		opts.Logger.Warn("evidence search failed for claim", "claim_id", claim.ClaimID, "query", query, "error", err)
		evidenceResult.Status = model.EvidenceFailed
		return evidenceResult
	}
	if len(hits) == 0 {
		evidenceResult.Status = model.EvidencePartial
		return evidenceResult
	}

	scored := make([]model.EvidenceSource, 0, len(hits))
	for _, h := range hits {
		scored = append(scored, ScoreHit(h, claim.ClaimText))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return OverallScore(scored[i]) > OverallScore(scored[j])
	})
	if len(scored) > opts.TopK {
		scored = scored[:opts.TopK]
	}

	evidenceResult.Sources = scored
	evidenceResult.Status = model.EvidenceSuccess
	return evidenceResult
}
