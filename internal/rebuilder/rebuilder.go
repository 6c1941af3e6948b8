// Package rebuilder reassembles a Markdown document from the original text
// and a set of per-section regenerated records, preserving every
// non-targeted line verbatim.
package rebuilder

import (
	"strings"

	"github.com/buildsense-ai/review-app-sub000/internal/model"
	"github.com/buildsense-ai/review-app-sub000/internal/ordered"
	"github.com/buildsense-ai/review-app-sub000/internal/section"
)

// segment is either a prologue passthrough (verbatim, never matched against
// a record) or an H2/H3 section with its heading line kept separate from
// its body so the body alone can be swapped for regenerated content.
type segment struct {
	isPrologue  bool
	passthrough string
	h1, key     string
	headingLine string
	body        strings.Builder
}

// Rebuild walks the original markdown the same way the parser does and
// replaces each section's body with its record's RegeneratedContent when a
// matching, really-modified record exists; every other line -- including
// every heading line -- is preserved verbatim.
func Rebuild(original string, sections *model.UnifiedSections) string {
	index := buildIndex(sections)
	segments := splitIntoSegments(original)

	var out strings.Builder
	for _, seg := range segments {
		if seg.isPrologue {
			out.WriteString(seg.passthrough)
			continue
		}
		out.WriteString(seg.headingLine)
		record, ok := index.find(seg.h1, seg.key)
		if ok && record.Status.IsRealModification() {
			out.WriteString(record.RegeneratedContent)
			if !strings.HasSuffix(record.RegeneratedContent, "\n") {
				out.WriteString("\n")
			}
		} else {
			out.WriteString(seg.body.String())
		}
	}
	return out.String()
}

// splitIntoSegments walks the document with the same heading grammar the
// parser uses, but keeps each heading line separate from its body so the
// body alone can be swapped for regenerated content.
func splitIntoSegments(markdown string) []segment {
	var segments []segment
	var cur *segment
	curH1 := ""
	curH2 := ""

	closeCurrent := func() {
		if cur != nil {
			segments = append(segments, *cur)
			cur = nil
		}
	}

	for _, line := range section.SplitLines(markdown) {
		level, title, isHeading := section.ClassifyLine(line)
		if !isHeading {
			if cur != nil {
				cur.body.WriteString(line)
			} else {
				segments = append(segments, segment{isPrologue: true, passthrough: line})
			}
			continue
		}

		switch level {
		case 1:
			closeCurrent()
			curH1 = title
			curH2 = ""
			segments = append(segments, segment{isPrologue: true, passthrough: line})
		case 2:
			closeCurrent()
			curH2 = title
			cur = &segment{h1: curH1, key: title, headingLine: line}
		case 3:
			if cur != nil && curH2 != "" {
				combinedKey := curH2 + " > " + title
				segments = append(segments, *cur)
				cur = &segment{h1: curH1, key: combinedKey, headingLine: line}
			} else if cur != nil {
				cur.body.WriteString(line)
			} else {
				segments = append(segments, segment{isPrologue: true, passthrough: line})
			}
		default:
			// H4+ is body text, same as the parser.
			if cur != nil {
				cur.body.WriteString(line)
			} else {
				segments = append(segments, segment{isPrologue: true, passthrough: line})
			}
		}
	}
	closeCurrent()
	return segments
}

// entry is one flattened (h1, sectionKey, record) triple, kept in
// UnifiedSections order so tie-breaking can prefer first occurrence.
type entry struct {
	h1, key string
	record  *model.SectionRecord
}

type index struct {
	entries []entry
}

func buildIndex(sections *model.UnifiedSections) *index {
	idx := &index{}
	if sections == nil {
		return idx
	}
	sections.Range(func(h1 string, inner *ordered.Map[*model.SectionRecord]) bool {
		inner.Range(func(key string, record *model.SectionRecord) bool {
			idx.entries = append(idx.entries, entry{h1: h1, key: key, record: record})
			return true
		})
		return true
	})
	return idx
}

// find resolves (h1, key) with the rebuilder's tolerant comparison: exact
// match on both h1 and key wins; else a case-insensitive substring match on
// key (either direction) within the same h1; else the same substring match
// across all h1s. Ties are resolved by first occurrence in document order.
func (idx *index) find(h1, key string) (*model.SectionRecord, bool) {
	for _, e := range idx.entries {
		if e.h1 == h1 && e.key == key {
			return e.record, true
		}
	}

	lowKey := strings.ToLower(key)
	for _, e := range idx.entries {
		if e.h1 != h1 {
			continue
		}
		lowE := strings.ToLower(e.key)
		if strings.Contains(lowE, lowKey) || strings.Contains(lowKey, lowE) {
			return e.record, true
		}
	}

	for _, e := range idx.entries {
		lowE := strings.ToLower(e.key)
		if strings.Contains(lowE, lowKey) || strings.Contains(lowKey, lowE) {
			return e.record, true
		}
	}

	return nil, false
}
