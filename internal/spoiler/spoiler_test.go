package spoiler

import (
	"strings"
	"testing"
)

func TestParseBasic(t *testing.T) {
	segments := Parse("before ||hidden|| after")
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d: %#v", len(segments), segments)
	}
	if segments[0].Text != "before " || segments[0].Spoiler {
		t.Errorf("segment 0 wrong: %#v", segments[0])
	}
	if segments[1].Text != "hidden" || !segments[1].Spoiler {
		t.Errorf("segment 1 wrong: %#v", segments[1])
	}
	if segments[2].Text != " after" || segments[2].Spoiler {
		t.Errorf("segment 2 wrong: %#v", segments[2])
	}
}

func TestParseMultipleSpans(t *testing.T) {
	segments := Parse("||a|| and ||b||")
	spans := 0
	for _, s := range segments {
		if s.Spoiler {
			spans++
		}
	}
	if spans != 2 {
		t.Fatalf("expected 2 spans, got %d: %#v", spans, segments)
	}
}

func TestParseUnterminatedStaysLiteral(t *testing.T) {
	// A lone opener must not consume to end of string.
	segments := Parse("this || never closes")
	for _, s := range segments {
		if s.Spoiler {
			t.Fatalf("unterminated delimiter produced a span: %#v", segments)
		}
	}
	if Reconstruct(segments) != "this || never closes" {
		t.Errorf("literal text mangled: %q", Reconstruct(segments))
	}
}

func TestParseNonGreedy(t *testing.T) {
	// Three delimiters: the first pair matches, the trailing one is literal.
	segments := Parse("||a|| b ||")
	if len(segments) < 2 {
		t.Fatalf("unexpected segmentation: %#v", segments)
	}
	if !segments[0].Spoiler || segments[0].Text != "a" {
		t.Errorf("first span should be %q, got %#v", "a", segments[0])
	}
	rest := Reconstruct(segments[1:])
	if rest != " b ||" {
		t.Errorf("trailing delimiter should stay literal, got %q", rest)
	}
}

func TestParseEmptySpan(t *testing.T) {
	// |||| is an open immediately followed by a close: an empty span.
	segments := Parse("x||||y")
	count := 0
	for _, s := range segments {
		if s.Spoiler {
			count++
			if s.Text != "" {
				t.Errorf("expected empty span text, got %q", s.Text)
			}
		}
	}
	if count != 1 {
		t.Errorf("expected 1 empty span, got %d", count)
	}
}

func TestParseDelimitersPairWithinOneLine(t *testing.T) {
	// A pair split across a newline stays literal, same as the inline rule
	// the Markdown renderer applies.
	segments := Parse("||a\nb||")
	for _, s := range segments {
		if s.Spoiler {
			t.Fatalf("cross-line delimiters produced a span: %#v", segments)
		}
	}
	if got := Reconstruct(segments); got != "||a\nb||" {
		t.Errorf("cross-line literal mangled: %q", got)
	}

	// Pairing resumes after a rejected opener.
	in := "||x|| then ||a\nb|| and ||y||"
	if n := Count(in); n != 2 {
		t.Errorf("Count(%q) = %d, want 2", in, n)
	}
	if got := Reconstruct(Parse(in)); got != in {
		t.Errorf("Reconstruct(Parse(%q)) = %q", in, got)
	}
}

func TestParseNoDelimiters(t *testing.T) {
	segments := Parse("plain text")
	if len(segments) != 1 || segments[0].Spoiler {
		t.Fatalf("plain text should be one literal segment: %#v", segments)
	}
}

func TestReconstructRoundTrip(t *testing.T) {
	// Parse followed by Reconstruct is the identity on every input.
	inputs := []string{
		"a ||b|| c",
		"||x||||y||",
		"no spans at all",
		"broken || here",
		"|| leading|| tail",
		"",
	}
	for _, in := range inputs {
		got := Reconstruct(Parse(in))
		if got != in {
			t.Errorf("Reconstruct(Parse(%q)) = %q", in, got)
		}
	}
}

func TestConcatenationStripsMarkers(t *testing.T) {
	// Joining the segments' text yields the original with the markers
	// removed but the hidden substrings preserved.
	cases := map[string]string{
		"a ||b|| c":         "a b c",
		"||x||||y||":        "xy",
		"|| leading|| tail": " leading tail",
	}
	for in, want := range cases {
		var b strings.Builder
		for _, s := range Parse(in) {
			b.WriteString(s.Text)
		}
		if b.String() != want {
			t.Errorf("concat(Parse(%q)) = %q, want %q", in, b.String(), want)
		}
	}
}

func TestCount(t *testing.T) {
	if n := Count("||a|| ||b|| ||c||"); n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}
	if n := Count("nothing"); n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}
}

func TestParseLongInput(t *testing.T) {
	// Many spans in one body still resolve left-to-right.
	input := strings.Repeat("||s|| ", 50)
	if n := Count(input); n != 50 {
		t.Fatalf("Count = %d, want 50", n)
	}
}
