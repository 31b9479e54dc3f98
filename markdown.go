package main

import (
	"bytes"
	"fmt"
	stdhtml "html"
	"html/template"
	"net/url"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"forum-server/internal/reveal"
	"forum-server/internal/spoiler"
)

// sanitizer is the single HTML policy applied to every rendered body.
// Fully qualified links open externally; relative hrefs (the spoiler
// toggles) stay as-is.
var sanitizer = buildSanitizer()

func buildSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "data-span", "rel").OnElements("a")
	p.AllowAttrs("class", "loading").OnElements("img")
	p.AllowAttrs("target").OnElements("a")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// lazyImageRenderer overrides goldmark's image output: bounded-width via
// the md-image class, lazy loading so images never block the rest of the
// document.
type lazyImageRenderer struct{}

func (r *lazyImageRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindImage, r.renderImage)
}

func (r *lazyImageRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	fmt.Fprintf(w, `<img src="%s" alt="%s" class="md-image" loading="lazy">`,
		stdhtml.EscapeString(string(n.Destination)),
		stdhtml.EscapeString(string(n.Text(source))))
	return ast.WalkSkipChildren, nil
}

// renderOptions configures one body render.
type renderOptions struct {
	// DocID addresses reveal state: one rendered post or comment body.
	DocID string
	// WholeSpoiler is the entity's is_spoiler flag. While the gate is shut
	// the body renders as a reveal prompt and no inline content at all.
	WholeSpoiler bool
	// Extended enables the table/strikethrough syntax set.
	Extended bool
	// Store holds reveal state; nil renders everything hidden.
	Store *reveal.Store
}

// spoilerToggleHref builds the hypermedia action that flips one span.
func spoilerToggleHref(docID string, span int) string {
	return fmt.Sprintf("/spoiler/toggle?doc=%s&span=%d", url.QueryEscape(docID), span)
}

// wholeRevealHref builds the action opening the whole-body gate.
func wholeRevealHref(docID string) string {
	return "/spoiler/whole?doc=" + url.QueryEscape(docID)
}

// renderBody turns raw markup into sanitized HTML. The whole-body gate is
// checked first: a shut gate short-circuits before any Markdown work, so
// hidden bodies leak nothing, not even their inline span count. Rendering
// is pure with respect to fetched data; reveal state is consulted only
// here.
func renderBody(raw string, opts renderOptions) template.HTML {
	if opts.WholeSpoiler && (opts.Store == nil || !opts.Store.WholeRevealed(opts.DocID)) {
		gate := fmt.Sprintf(
			`<div class="spoiler-gate"><a href="%s" rel="nofollow">Spoiler: click to reveal</a></div>`,
			stdhtml.EscapeString(wholeRevealHref(opts.DocID)))
		return template.HTML(gate)
	}

	exts := []goldmark.Extender{
		extension.Linkify,
		spoiler.NewExtension(spoiler.Config{
			Revealed: func(i int) bool {
				return opts.Store != nil && opts.Store.IsRevealed(opts.DocID, i)
			},
			ToggleHref: func(i int) string {
				return spoilerToggleHref(opts.DocID, i)
			},
		}),
	}
	if opts.Extended {
		exts = append(exts, extension.Table, extension.Strikethrough)
	}

	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			renderer.WithNodeRenderers(util.Prioritized(&lazyImageRenderer{}, 500)),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(raw), &buf); err != nil {
		// Markdown conversion does not fail on user input in practice;
		// degrade to escaped plain text if it ever does.
		return template.HTML("<p>" + stdhtml.EscapeString(raw) + "</p>")
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}
