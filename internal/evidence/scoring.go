package evidence

import (
	"net/url"
	"strings"

	"github.com/buildsense-ai/review-app-sub000/internal/model"
)

// authorityTable scores known reputable domains; domains not listed fall
// back to the suffix heuristic in authorityFor.
var authorityTable = map[string]float64{
	"nature.com":        0.95,
	"science.org":       0.95,
	"who.int":           0.9,
	"un.org":            0.9,
	"ieee.org":          0.85,
	"acm.org":           0.85,
	"nytimes.com":       0.75,
	"bbc.com":           0.75,
	"reuters.com":       0.75,
	"xinhuanet.com":     0.7,
	"people.com.cn":     0.7,
	"wikipedia.org":     0.6,
}

// authorityFor scores a hit's domain per the evidence search stage's
// authority contract: known-domain table lookup, else a TLD-suffix
// heuristic (.gov=0.9, .edu=0.85, .org=0.7), else a 0.5 default.
func authorityFor(domain string) float64 {
	d := strings.ToLower(strings.TrimPrefix(domain, "www."))
	if score, ok := authorityTable[d]; ok {
		return score
	}
	switch {
	case strings.HasSuffix(d, ".gov") || strings.Contains(d, ".gov."):
		return 0.9
	case strings.HasSuffix(d, ".edu") || strings.Contains(d, ".edu."):
		return 0.85
	case strings.HasSuffix(d, ".org"):
		return 0.7
	default:
		return 0.5
	}
}

// relevanceFor scores word/bigram overlap between (title+snippet) and the
// claim text, clamped to [0,1].
func relevanceFor(title, snippet, claimText string) float64 {
	hitTokens := tokenize(title + " " + snippet)
	claimTokens := tokenize(claimText)
	if len(claimTokens) == 0 || len(hitTokens) == 0 {
		return 0
	}

	claimSet := make(map[string]bool, len(claimTokens))
	for _, t := range claimTokens {
		claimSet[t] = true
	}
	hitSet := make(map[string]bool, len(hitTokens))
	for _, t := range hitTokens {
		hitSet[t] = true
	}

	overlap := 0
	for t := range claimSet {
		if hitSet[t] {
			overlap++
		}
	}
	wordScore := float64(overlap) / float64(len(claimSet))

	bigramScore := bigramOverlap(claimTokens, hitTokens)

	score := wordScore*0.7 + bigramScore*0.3
	return clamp01(score)
}

func bigramOverlap(claimTokens, hitTokens []string) float64 {
	claimBigrams := bigrams(claimTokens)
	if len(claimBigrams) == 0 {
		return 0
	}
	hitBigrams := make(map[string]bool, len(hitTokens))
	for _, bg := range bigrams(hitTokens) {
		hitBigrams[bg] = true
	}
	matched := 0
	for _, bg := range claimBigrams {
		if hitBigrams[bg] {
			matched++
		}
	}
	return float64(matched) / float64(len(claimBigrams))
}

func bigrams(tokens []string) []string {
	if len(tokens) < 2 {
		return nil
	}
	out := make([]string, 0, len(tokens)-1)
	for i := 0; i < len(tokens)-1; i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

// tokenize splits on whitespace/punctuation and lower-cases ASCII runs;
// CJK text (undifferentiated by whitespace) is tokenized per rune so
// overlap scoring still produces a meaningful signal on Chinese prose.
func tokenize(s string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r >= 0x4E00 && r <= 0x9FFF:
			flush()
			out = append(out, string(r))
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			cur.WriteRune(r)
		default:
			flush()
		}
	}
	flush()
	return out
}

// ScoreHit scores one search hit against a claim, combining authority and
// relevance per the stage's 0.6/0.4 weighting.
func ScoreHit(hit model.SearchHit, claimText string) model.EvidenceSource {
	domain := hit.Domain
	if domain == "" {
		if u, err := url.Parse(hit.URL); err == nil {
			domain = u.Hostname()
		}
	}
	authority := authorityFor(domain)
	relevance := relevanceFor(hit.Title, hit.Snippet, claimText)
	return model.EvidenceSource{
		Title:     hit.Title,
		URL:       hit.URL,
		Snippet:   hit.Snippet,
		Domain:    domain,
		Authority: authority,
		Relevance: relevance,
	}
}

// OverallScore is the ranking key for one scored source: 0.6*authority + 0.4*relevance.
func OverallScore(s model.EvidenceSource) float64 {
	return 0.6*s.Authority + 0.4*s.Relevance
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
