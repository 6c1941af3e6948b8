// Package section implements the Markdown section parser: a pure,
// total function from Markdown text to an ordered hierarchical map of
// sections keyed by heading path.
package section

import (
	"log/slog"
	"strings"

	"github.com/buildsense-ai/review-app-sub000/internal/model"
	"github.com/buildsense-ai/review-app-sub000/internal/ordered"
)

// MaxLevel bounds how deep a heading path the parser will track.
type MaxLevel int

const (
	MaxLevelH1 MaxLevel = 1
	MaxLevelH2 MaxLevel = 2
	MaxLevelH3 MaxLevel = 3
)

// Document is the parser's output: an ordered H1 -> sectionKey -> content map.
type Document = ordered.Map[*ordered.Map[string]]

type cursor struct {
	h1, h2, h3 string
	buffer     strings.Builder
}

func (c *cursor) reset() {
	c.h2, c.h3 = "", ""
	c.buffer.Reset()
}

// Parse scans markdown once and returns the ordered section map described
// by the section-parser contract. It never panics and never fails on
// well-formed UTF-8 input; maxLevel bounds how deep into H1/H2/H3 the
// parser tracks (H3 only matters when maxLevel is MaxLevelH3).
// preserveOrder is accepted for contract-compatibility; this implementation
// always preserves order, so the flag has no additional effect.
func Parse(markdown string, maxLevel MaxLevel, preserveOrder bool, logger *slog.Logger) *Document {
	if logger == nil {
		logger = slog.Default()
	}
	doc := ordered.New[*ordered.Map[string]]()
	cur := &cursor{}
	inPrologue := true

	flush := func() {
		if cur.h1 == "" {
			if inPrologue && cur.buffer.Len() > 0 {
				putSection(doc, model.ProloguePlaceholder, model.ProloguePlaceholder, cur.buffer.String(), logger)
			}
			return
		}
		if cur.h2 == "" {
			return
		}
		key := cur.h2
		if maxLevel == MaxLevelH3 && cur.h3 != "" {
			key = cur.h2 + " > " + cur.h3
		}
		putSection(doc, cur.h1, key, cur.buffer.String(), logger)
	}

	lines := splitLinesKeepEnding(markdown)
	for _, line := range lines {
		level, title, isHeading := classifyLine(line)
		if !isHeading {
			if cur.h1 != "" && cur.h2 == "" {
				// Body text between an H1 and its first H2 is discarded per
				// the contract: body lines are appended only when at least
				// H2 is active.
				continue
			}
			cur.buffer.WriteString(line)
			continue
		}

		switch level {
		case 1:
			flush()
			inPrologue = false
			cur.h1 = title
			cur.reset()
		case 2:
			if maxLevel >= MaxLevelH2 {
				flush()
				cur.h2 = title
				cur.h3 = ""
				cur.buffer.Reset()
				cur.buffer.WriteString(line)
			} else {
				cur.buffer.WriteString(line)
			}
		case 3:
			if maxLevel >= MaxLevelH3 {
				flush()
				cur.h3 = title
				cur.buffer.Reset()
				cur.buffer.WriteString(line)
			} else {
				cur.buffer.WriteString(line)
			}
		default:
			// H4+ is body text per contract.
			cur.buffer.WriteString(line)
		}
	}
	flush()

	return doc
}

func putSection(doc *Document, h1, key, content string, logger *slog.Logger) {
	inner, ok := doc.Get(h1)
	if !ok {
		inner = ordered.New[string]()
		doc.Set(h1, inner)
	}
	if _, exists := inner.Get(key); exists {
		logger.Warn("duplicate section key, keeping last occurrence", "h1", h1, "key", key)
	}
	inner.Set(key, content)
}

// classifyLine reports the heading level (1, 2, or 3) and trimmed title
// text for a heading line, or isHeading=false for a body line. The space
// after the leading #'s is required; four or more #'s is body text.
func classifyLine(line string) (level int, title string, isHeading bool) {
	trimmed := strings.TrimRight(line, "\r\n")
	hashes := 0
	for hashes < len(trimmed) && trimmed[hashes] == '#' {
		hashes++
	}
	if hashes == 0 || hashes > 3 {
		return 0, "", false
	}
	if hashes >= len(trimmed) || trimmed[hashes] != ' ' {
		return 0, "", false
	}
	return hashes, strings.TrimSpace(trimmed[hashes+1:]), true
}

// ClassifyLine exports classifyLine for collaborators (the rebuilder) that
// need to walk the same heading grammar the parser uses.
func ClassifyLine(line string) (level int, title string, isHeading bool) {
	return classifyLine(line)
}

// SplitLines exports splitLinesKeepEnding for collaborators that need to
// walk the document line-by-line with trailing newlines preserved.
func SplitLines(text string) []string {
	return splitLinesKeepEnding(text)
}

// splitLinesKeepEnding splits text into lines, each retaining its trailing
// newline (if any) so concatenation round-trips the original text.
func splitLinesKeepEnding(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
