// Package spoiler implements the ||hidden|| inline markup used in post and
// comment bodies. Parse splits raw text into literal and spoiler segments;
// the goldmark extension in this package renders spoiler segments as
// toggleable widgets inside rendered Markdown.
package spoiler

import "strings"

// Delimiter is the exact two-character marker opening and closing a span.
const Delimiter = "||"

// Segment is either a literal text run or a spoiler span wrapping one.
type Segment struct {
	Text    string
	Spoiler bool
}

// Parse splits text into an ordered sequence of segments. Matching is
// non-greedy and left-to-right: each opening delimiter pairs with the
// nearest closing delimiter on the same line. Spans do not nest and never
// cross a newline, matching the inline rule the Markdown renderer applies.
// An unmatched delimiter is literal text and never consumes to
// end-of-string. The worst case is zero spans, which is valid.
func Parse(text string) []Segment {
	var segs []Segment
	lit := 0 // start of the pending literal run
	i := 0
	for {
		open := strings.Index(text[i:], Delimiter)
		if open < 0 {
			break
		}
		open += i
		end := strings.Index(text[open+len(Delimiter):], Delimiter)
		if end < 0 {
			// Unterminated opener: everything from here on is literal.
			break
		}
		span := text[open+len(Delimiter) : open+len(Delimiter)+end]
		if strings.ContainsRune(span, '\n') {
			// The nearest closer sits on a later line; this opener is
			// literal and scanning resumes after it.
			i = open + len(Delimiter)
			continue
		}
		if open > lit {
			segs = append(segs, Segment{Text: text[lit:open]})
		}
		segs = append(segs, Segment{Text: span, Spoiler: true})
		i = open + len(Delimiter) + end + len(Delimiter)
		lit = i
	}
	if lit < len(text) {
		segs = append(segs, Segment{Text: text[lit:]})
	}
	return segs
}

// Reconstruct re-assembles the original text from segments, re-inserting
// the delimiters around spoiler spans. Parse followed by Reconstruct is the
// identity on every input.
func Reconstruct(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		if s.Spoiler {
			b.WriteString(Delimiter)
			b.WriteString(s.Text)
			b.WriteString(Delimiter)
		} else {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// Count returns the number of spoiler spans in text.
func Count(text string) int {
	n := 0
	for _, s := range Parse(text) {
		if s.Spoiler {
			n++
		}
	}
	return n
}
