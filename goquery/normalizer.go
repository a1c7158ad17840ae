package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/ragdoc"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Ensure Normalizer implements ragdoc.Normalizer at compile time.
var _ ragdoc.Normalizer = (*Normalizer)(nil)

// BoilerplateSelectors match navigation, search UI, sidebars and other
// decorative elements that never carry documentation content.
var BoilerplateSelectors = []string{
	"nav", "header", "footer", "aside", "script", "style", "noscript",
	"button", "form", "svg", "template", "iframe",
	"div.sidebar", "div.toctree", "div.md-sidebar", "div.related",
	"div.breadcrumbs", "div.navbar", "div.md-nav", "div.md-search",
	"div.toc", "div.table-of-contents",
	"a.edit-this-page", "a.headerlink", ".md-content__button",
	".prev-next-nav", ".md-footer-meta",
	"[role='navigation']", "[role='search']", "[role='banner']", "[role='contentinfo']",
	".skip-link", ".sr-only", ".visually-hidden",
}

var boilerplateSelector = strings.Join(BoilerplateSelectors, ", ")

// Normalizer converts documentation HTML into heading-annotated markdown
// by walking the DOM in document order.
type Normalizer struct {
	Sections ragdoc.SectionConfig
}

// NewNormalizer creates a Normalizer that infers sections from the given
// categories.
func NewNormalizer(sections ragdoc.SectionConfig) *Normalizer {
	return &Normalizer{Sections: sections}
}

// Normalize implements ragdoc.Normalizer.
func (n *Normalizer) Normalize(rawHTML, sourceURL string) (*ragdoc.NormalizedPage, error) {
	doc, meta, err := Prepare(rawHTML, sourceURL, n.Sections)
	if err != nil {
		return nil, err
	}

	var title string
	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		title = ragdoc.CleanHeading(inlineText(h1.Get(0)))
	}

	w := &blockWriter{}
	for _, node := range doc.Nodes {
		w.walk(node)
	}
	w.flush()

	return &ragdoc.NormalizedPage{
		Title: title,
		Meta:  meta,
		Body:  ragdoc.NormalizeWhitespace(strings.Join(w.blocks, "\n\n")),
	}, nil
}

// Prepare parses rawHTML, resolves the page metadata and strips
// boilerplate elements from the returned document.
// Returns EINVALID for blank input.
func Prepare(rawHTML, sourceURL string, sections ragdoc.SectionConfig) (*goquery.Document, ragdoc.PageMeta, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, ragdoc.PageMeta{}, ragdoc.Errorf(ragdoc.EINVALID, "empty HTML")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, ragdoc.PageMeta{}, ragdoc.Errorf(ragdoc.EINVALID, "failed to parse HTML: %v", err)
	}

	canonical, _ := doc.Find(`link[rel~="canonical"]`).First().Attr("href")
	canonical = strings.TrimSpace(canonical)
	if canonical == "" {
		canonical = strings.TrimSpace(sourceURL)
	}

	meta := ragdoc.PageMeta{
		CanonicalURL: canonical,
		Section:      ragdoc.InferSection(sourceURL, sections),
	}

	doc.Find(boilerplateSelector).Remove()

	return doc, meta, nil
}

// blockElements end the current paragraph when they start and when they
// end.
var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Blockquote: true,
	atom.Body: true, atom.Dd: true, atom.Details: true, atom.Dialog: true,
	atom.Div: true, atom.Dl: true, atom.Dt: true, atom.Fieldset: true,
	atom.Figcaption: true, atom.Figure: true, atom.Hgroup: true,
	atom.Hr: true, atom.Html: true, atom.Li: true, atom.Main: true,
	atom.P: true, atom.Section: true, atom.Summary: true,
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1, atom.H2: 2, atom.H3: 3, atom.H4: 4, atom.H5: 5, atom.H6: 6,
}

var spaceRe = regexp.MustCompile(`\s+`)

// blockWriter accumulates markdown blocks. Running text is buffered until
// a block boundary flushes it as a paragraph.
type blockWriter struct {
	blocks []string
	inline strings.Builder

	// flat renders nested lists as running text inside a list item.
	flat bool
}

// flush emits the buffered running text as a paragraph.
func (w *blockWriter) flush() {
	text := strings.TrimSpace(spaceRe.ReplaceAllString(w.inline.String(), " "))
	w.inline.Reset()
	if text != "" {
		w.blocks = append(w.blocks, text)
	}
}

// block emits s as a standalone block.
func (w *blockWriter) block(s string) {
	w.flush()
	if s != "" {
		w.blocks = append(w.blocks, s)
	}
}

func (w *blockWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.inline.WriteString(n.Data)
		return
	case html.DocumentNode:
		w.walkChildren(n)
		return
	case html.ElementNode:
	default:
		return
	}

	if level, ok := headingLevels[n.DataAtom]; ok {
		w.block(heading(n, level))
		return
	}

	switch n.DataAtom {
	case atom.Head:
	case atom.Pre:
		w.block(fence(n))
	case atom.Table:
		w.block(table(n))
	case atom.Ul, atom.Ol:
		switch {
		case w.flat:
			w.flush()
			w.walkChildren(n)
			w.flush()
		case n.DataAtom == atom.Ul:
			w.block(list(n, "-"))
		default:
			w.block(list(n, "1."))
		}
	case atom.Code:
		w.inline.WriteString(inlineCode(n))
	case atom.Br:
		w.inline.WriteString(" ")
	default:
		if blockElements[n.DataAtom] {
			w.flush()
			w.walkChildren(n)
			w.flush()
			return
		}
		w.walkChildren(n)
	}
}

func (w *blockWriter) walkChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

// inlineText renders the content of n as a single whitespace-collapsed line.
func inlineText(n *html.Node) string {
	w := &blockWriter{}
	w.walkChildren(n)
	w.flush()
	return strings.Join(w.blocks, " ")
}

// heading renders an ATX heading with an explicit anchor. The anchor is the
// element id or a slug of the visible text.
func heading(n *html.Node, level int) string {
	text := ragdoc.CleanHeading(inlineText(n))
	if text == "" {
		return ""
	}
	anchor := strings.TrimSpace(attr(n, "id"))
	if anchor == "" {
		anchor = ragdoc.Slugify(text)
	}
	line := strings.Repeat("#", level) + " " + text
	if anchor != "" {
		line += " {#" + anchor + "}"
	}
	return line
}

// list renders the direct li children of n as bullet lines. Nested lists
// are flattened into their item without bullets.
func list(n *html.Node, bullet string) string {
	var lines []string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		w := &blockWriter{flat: true}
		w.walkChildren(c)
		w.flush()
		if text := strings.Join(w.blocks, " "); text != "" {
			lines = append(lines, bullet+" "+text)
		}
	}
	return strings.Join(lines, "\n")
}

// table renders rows as pipe-delimited markdown with a separator after the
// first row.
func table(n *html.Node) string {
	var rows []string
	for _, tr := range descendants(n, atom.Tr) {
		var cells []string
		for c := tr.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.DataAtom == atom.Th || c.DataAtom == atom.Td) {
				cells = append(cells, cellText(c))
			}
		}
		if len(cells) == 0 {
			continue
		}
		rows = append(rows, "| "+strings.Join(cells, " | ")+" |")
		if len(rows) == 1 {
			sep := make([]string, len(cells))
			for i := range sep {
				sep[i] = "---"
			}
			rows = append(rows, "| "+strings.Join(sep, " | ")+" |")
		}
	}
	return strings.Join(rows, "\n")
}

// cellText concatenates the text of a table cell without separators
// between child nodes, so markup inside a word does not split it.
func cellText(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			sb.WriteString(n.Data)
		case n.Type == html.ElementNode && n.DataAtom == atom.Code:
			sb.WriteString(inlineCode(n))
		default:
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				visit(c)
			}
		}
	}
	visit(n)
	return strings.TrimSpace(spaceRe.ReplaceAllString(sb.String(), " "))
}

// fence renders a pre block as a fenced code block with its content
// verbatim.
func fence(pre *html.Node) string {
	src := pre
	if codes := descendants(pre, atom.Code); len(codes) > 0 {
		src = codes[0]
	}
	code := strings.ReplaceAll(textContent(src), "\u00a0", " ")
	code = strings.TrimSuffix(code, "\n")

	lang := language(src)
	if lang == "" && src != pre {
		lang = language(pre)
	}
	return "```" + lang + "\n" + code + "\n```"
}

// language returns the language named by a language-* or highlight-*
// class.
func language(n *html.Node) string {
	for _, cls := range strings.Fields(attr(n, "class")) {
		for _, prefix := range []string{"language-", "highlight-"} {
			if lang, ok := strings.CutPrefix(cls, prefix); ok && lang != "" {
				return lang
			}
		}
	}
	return ""
}

// inlineCode renders a code element as backtick-quoted raw text.
func inlineCode(n *html.Node) string {
	return "`" + strings.ReplaceAll(textContent(n), "\u00a0", " ") + "`"
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

// descendants returns the elements below n with the given tag in document
// order.
func descendants(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.DataAtom == a {
				out = append(out, c)
			}
			visit(c)
		}
	}
	visit(n)
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
