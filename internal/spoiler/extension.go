package spoiler

import (
	"bytes"
	"fmt"
	stdhtml "html"
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Span is an inline AST node for one ||...|| occurrence. Index is the
// document-order position among all spans found in the same input, which is
// what reveal state is addressed by.
type Span struct {
	ast.BaseInline
	Index int
}

// KindSpan is the node kind of Span.
var KindSpan = ast.NewNodeKind("SpoilerSpan")

func (n *Span) Kind() ast.NodeKind { return KindSpan }

func (n *Span) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Index": strconv.Itoa(n.Index),
	}, nil)
}

var indexKey = parser.NewContextKey()

// nextIndex hands out document-order span indexes. goldmark creates a fresh
// parser.Context per Convert call, so the counter restarts per document.
func nextIndex(pc parser.Context) int {
	i := 0
	if v := pc.Get(indexKey); v != nil {
		i = v.(int)
	}
	pc.Set(indexKey, i+1)
	return i
}

type inlineParser struct{}

func (p *inlineParser) Trigger() []byte { return []byte{'|'} }

func (p *inlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, seg := block.PeekLine()
	if len(line) < 2*len(Delimiter) || line[0] != '|' || line[1] != '|' {
		return nil
	}
	// Nearest closer wins; an unterminated opener stays literal text.
	closer := bytes.Index(line[len(Delimiter):], []byte(Delimiter))
	if closer < 0 {
		return nil
	}
	node := &Span{Index: nextIndex(pc)}
	inner := text.NewSegment(seg.Start+len(Delimiter), seg.Start+len(Delimiter)+closer)
	node.AppendChild(node, ast.NewTextSegment(inner))
	block.Advance(len(Delimiter) + closer + len(Delimiter))
	return node
}

// Config controls how spans render. Revealed decides per-index visibility
// for the document being rendered; ToggleHref produces the hypermedia
// action flipping one span. Both may be nil, in which case every span
// renders hidden with a "#" href.
type Config struct {
	Revealed    func(index int) bool
	ToggleHref  func(index int) string
	HiddenLabel string
}

type htmlRenderer struct {
	cfg Config
}

func (r *htmlRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindSpan, r.render)
}

func (r *htmlRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*Span)
	revealed := r.cfg.Revealed != nil && r.cfg.Revealed(n.Index)
	href := "#"
	if r.cfg.ToggleHref != nil {
		href = r.cfg.ToggleHref(n.Index)
	}

	if entering {
		if revealed {
			fmt.Fprintf(w, `<a href="%s" class="spoiler spoiler-revealed" data-span="%d">`,
				stdhtml.EscapeString(href), n.Index)
			return ast.WalkContinue, nil
		}
		label := r.cfg.HiddenLabel
		if label == "" {
			label = "spoiler"
		}
		// Hidden spans do not emit their text at all.
		fmt.Fprintf(w, `<a href="%s" class="spoiler" data-span="%d" rel="nofollow">%s</a>`,
			stdhtml.EscapeString(href), n.Index, stdhtml.EscapeString(label))
		return ast.WalkSkipChildren, nil
	}

	if revealed {
		_, _ = w.WriteString("</a>")
	}
	return ast.WalkContinue, nil
}

type extension struct {
	cfg Config
}

// NewExtension returns a goldmark extender wiring the ||...|| inline syntax
// into parsing and HTML rendering.
func NewExtension(cfg Config) goldmark.Extender {
	return &extension{cfg: cfg}
}

func (e *extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(&inlineParser{}, 500),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&htmlRenderer{cfg: e.cfg}, 500),
	))
}
