package main

import (
	"strings"
	"testing"

	"forum-server/internal/reveal"
)

func TestRenderBodyPlainMarkdown(t *testing.T) {
	out := string(renderBody("hello **world**", renderOptions{DocID: "post:1", Store: reveal.New()}))
	if !strings.Contains(out, "<strong>world</strong>") {
		t.Errorf("markdown not rendered: %s", out)
	}
}

func TestRenderBodyHiddenSpan(t *testing.T) {
	store := reveal.New()
	out := string(renderBody("the killer is ||the butler||", renderOptions{DocID: "post:2", Store: store}))

	// Hidden: the span text must not appear anywhere in the output.
	if strings.Contains(out, "butler") {
		t.Errorf("hidden span leaked its text: %s", out)
	}
	if !strings.Contains(out, `class="spoiler"`) {
		t.Errorf("no spoiler widget in output: %s", out)
	}
	if !strings.Contains(out, "/spoiler/toggle?doc=post%3A2&amp;span=0") &&
		!strings.Contains(out, "/spoiler/toggle?doc=post%3A2&span=0") {
		t.Errorf("no toggle href in output: %s", out)
	}
}

func TestRenderBodyRevealedSpan(t *testing.T) {
	store := reveal.New()
	store.Toggle("post:3", 0)
	out := string(renderBody("a ||secret|| here", renderOptions{DocID: "post:3", Store: store}))
	if !strings.Contains(out, "secret") {
		t.Errorf("revealed span text missing: %s", out)
	}
	if !strings.Contains(out, "spoiler-revealed") {
		t.Errorf("revealed styling missing: %s", out)
	}
}

func TestRenderBodySpanIndependence(t *testing.T) {
	store := reveal.New()
	store.Toggle("post:4", 1)
	out := string(renderBody("||first|| and ||second||", renderOptions{DocID: "post:4", Store: store}))
	if strings.Contains(out, "first") {
		t.Errorf("span 0 should stay hidden: %s", out)
	}
	if !strings.Contains(out, "second") {
		t.Errorf("span 1 should be revealed: %s", out)
	}
}

func TestRenderBodyUnterminatedDelimiterIsLiteral(t *testing.T) {
	out := string(renderBody("watch out || nothing hidden", renderOptions{DocID: "post:5", Store: reveal.New()}))
	if strings.Contains(out, `class="spoiler"`) {
		t.Errorf("unterminated delimiter produced a widget: %s", out)
	}
	if !strings.Contains(out, "nothing hidden") {
		t.Errorf("literal text lost: %s", out)
	}
}

func TestRenderBodyWholeGateShut(t *testing.T) {
	store := reveal.New()
	out := string(renderBody("plot: ||the twist|| ending", renderOptions{
		DocID: "post:6", WholeSpoiler: true, Store: store,
	}))
	// A shut gate short-circuits: no body content at all, only the prompt.
	if strings.Contains(out, "plot") || strings.Contains(out, "twist") {
		t.Errorf("gated body leaked content: %s", out)
	}
	if !strings.Contains(out, "spoiler-gate") {
		t.Errorf("no gate prompt: %s", out)
	}
	if !strings.Contains(out, "/spoiler/whole?doc=post%3A6") {
		t.Errorf("no whole-reveal href: %s", out)
	}
}

func TestRenderBodyWholeGateOpenKeepsSpansHidden(t *testing.T) {
	store := reveal.New()
	store.RevealWhole("post:7")
	out := string(renderBody("plot: ||the twist|| ending", renderOptions{
		DocID: "post:7", WholeSpoiler: true, Store: store,
	}))
	// The gate and the inline spans are orthogonal layers.
	if !strings.Contains(out, "plot") {
		t.Errorf("open gate should render the body: %s", out)
	}
	if strings.Contains(out, "twist") {
		t.Errorf("inline span must stay hidden behind an open gate: %s", out)
	}
}

func TestRenderBodyLazyImages(t *testing.T) {
	out := string(renderBody("![cat](https://example.com/cat.png)", renderOptions{DocID: "post:8", Store: reveal.New()}))
	if !strings.Contains(out, `loading="lazy"`) {
		t.Errorf("image not lazy: %s", out)
	}
	if !strings.Contains(out, `class="md-image"`) {
		t.Errorf("image class missing: %s", out)
	}
}

func TestRenderBodyExtendedSyntax(t *testing.T) {
	table := "| a | b |\n|---|---|\n| 1 | 2 |"
	plain := string(renderBody(table, renderOptions{DocID: "c:1", Store: reveal.New()}))
	extended := string(renderBody(table, renderOptions{DocID: "p:1", Extended: true, Store: reveal.New()}))
	if strings.Contains(plain, "<table") {
		t.Errorf("tables should be off without the extended set: %s", plain)
	}
	if !strings.Contains(extended, "<table") {
		t.Errorf("tables should render with the extended set: %s", extended)
	}
}

func TestRenderBodySanitizesScript(t *testing.T) {
	out := string(renderBody(`hello <script>alert(1)</script>`, renderOptions{DocID: "post:9", Store: reveal.New()}))
	if strings.Contains(out, "<script") {
		t.Errorf("script tag survived sanitization: %s", out)
	}
}
