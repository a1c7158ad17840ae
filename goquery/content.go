package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/ragdoc"
)

// Ensure ContentExtractor implements ragdoc.Extractor at compile time.
var _ ragdoc.Extractor = (*ContentExtractor)(nil)

// contentSelectors lists, per framework, the containers that hold the page
// body, most specific first.
var contentSelectors = map[Framework][]string{
	FrameworkDocusaurus: {".theme-doc-markdown", "article", "main"},
	FrameworkMkDocs:     {"article.md-content__inner", ".md-content", "main"},
	FrameworkSphinx:     {"div[role='main']", "div.body", "div.document"},
	FrameworkVitePress:  {".vp-doc", "#VPContent main", "main"},
	FrameworkVuePress:   {".theme-default-content", "main"},
	FrameworkGitBook:    {"main"},
	FrameworkNextra:     {"article", "main"},
	FrameworkUnknown:    {"main", "[role='main']", "article"},
}

// ContentExtractor narrows a page to the content container of the
// documentation framework that generated it. Pages without a known
// container are returned whole.
type ContentExtractor struct{}

// NewContentExtractor returns a new ContentExtractor.
func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

// Extract implements ragdoc.Extractor.
func (e *ContentExtractor) Extract(rawHTML, sourceURL string) (*ragdoc.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, ragdoc.Errorf(ragdoc.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, ragdoc.Errorf(ragdoc.EINVALID, "failed to parse HTML: %v", err)
	}

	result := &ragdoc.ExtractResult{ContentHTML: rawHTML}
	if canonical, ok := doc.Find(`link[rel~="canonical"]`).First().Attr("href"); ok {
		result.CanonicalURL = strings.TrimSpace(canonical)
	}

	framework := DetectFramework(doc)
	for _, sel := range contentSelectors[framework] {
		content := doc.Find(sel).First()
		if content.Length() == 0 || strings.TrimSpace(content.Text()) == "" {
			continue
		}
		if h1 := content.Find("h1").First(); h1.Length() > 0 {
			result.Title = ragdoc.CleanHeading(strings.Join(strings.Fields(h1.Text()), " "))
		}
		html, err := goquery.OuterHtml(content)
		if err != nil {
			return nil, ragdoc.Errorf(ragdoc.EINTERNAL, "render content: %v", err)
		}
		result.ContentHTML = html
		break
	}
	return result, nil
}
