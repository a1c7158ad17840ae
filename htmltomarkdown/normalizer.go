package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/ragdoc"
	ragquery "github.com/fwojciec/ragdoc/goquery"
)

// Ensure Normalizer implements ragdoc.Normalizer at compile time.
var _ ragdoc.Normalizer = (*Normalizer)(nil)

// Normalizer converts documentation HTML to markdown with html-to-markdown
// and annotates every heading with an explicit anchor.
type Normalizer struct {
	Sections ragdoc.SectionConfig

	conv *converter.Converter
}

// NewNormalizer creates a new Normalizer.
func NewNormalizer(sections ragdoc.SectionConfig) *Normalizer {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Normalizer{Sections: sections, conv: conv}
}

// Normalize implements ragdoc.Normalizer.
func (n *Normalizer) Normalize(rawHTML, sourceURL string) (*ragdoc.NormalizedPage, error) {
	doc, meta, err := ragquery.Prepare(rawHTML, sourceURL, n.Sections)
	if err != nil {
		return nil, err
	}

	title := ragdoc.CleanHeading(strings.Join(strings.Fields(doc.Find("h1").First().Text()), " "))
	anchors := headingAnchors(doc)

	body, err := doc.Find("body").Html()
	if err != nil {
		return nil, ragdoc.Errorf(ragdoc.EINVALID, "failed to render HTML: %v", err)
	}

	md, err := n.conv.ConvertString(body)
	if err != nil {
		return nil, err
	}

	return &ragdoc.NormalizedPage{
		Title: title,
		Meta:  meta,
		Body:  ragdoc.NormalizeWhitespace(annotateHeadings(md, anchors)),
	}, nil
}

// headingAnchors maps cleaned heading text to the element ids of headings
// carrying that text, in document order.
func headingAnchors(doc *goquery.Document) map[string][]string {
	anchors := make(map[string][]string)
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		text := ragdoc.CleanHeading(strings.Join(strings.Fields(sel.Text()), " "))
		id, _ := sel.Attr("id")
		if text == "" {
			return
		}
		key := headingKey(text)
		anchors[key] = append(anchors[key], strings.TrimSpace(id))
	})
	return anchors
}

var (
	mdLinkRe   = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdMarkupRe = regexp.MustCompile("[`*\\\\]")
)

// headingKey reduces heading text from either the DOM or the converted
// markdown to the same form: links become their text and inline markup
// characters are dropped.
func headingKey(text string) string {
	text = mdLinkRe.ReplaceAllString(text, "$1")
	text = mdMarkupRe.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

var atxHeadingRe = regexp.MustCompile(`^(#{1,6})[ \t]+(.+?)[ \t#]*$`)

// annotateHeadings rewrites ATX headings outside code fences as
// "# text {#anchor}". Anchors come from the matching element id, else a
// slug of the heading text.
func annotateHeadings(md string, anchors map[string][]string) string {
	lines := strings.Split(md, "\n")
	inFence := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		m := atxHeadingRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := ragdoc.CleanHeading(m[2])
		if text == "" {
			continue
		}

		var anchor string
		key := headingKey(text)
		if ids := anchors[key]; len(ids) > 0 {
			anchor = ids[0]
			anchors[key] = ids[1:]
		}
		if anchor == "" {
			anchor = ragdoc.Slugify(text)
		}

		lines[i] = m[1] + " " + text
		if anchor != "" {
			lines[i] += " {#" + anchor + "}"
		}
	}
	return strings.Join(lines, "\n")
}
