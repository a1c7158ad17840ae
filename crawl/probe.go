package crawl

import (
	"context"

	"github.com/fwojciec/ragdoc"
)

// JSDetector reports whether a page needs JavaScript rendering to show
// its content. known is false when the page gives no indication.
type JSDetector func(html string) (requiresJS, known bool)

// ContentDiffers reports whether rendering adds meaningful content: the
// content extracted from renderedHTML is more than 50% longer than that of
// plainHTML. Extraction errors count as a difference.
func ContentDiffers(plainHTML, renderedHTML, sourceURL string, extractor ragdoc.Extractor) bool {
	plain, err := extractor.Extract(plainHTML, sourceURL)
	if err != nil {
		return true
	}
	rendered, err := extractor.Extract(renderedHTML, sourceURL)
	if err != nil {
		return true
	}

	plainLen, renderedLen := len(plain.ContentHTML), len(rendered.ContentHTML)
	if plainLen == 0 {
		return renderedLen > 0
	}
	return float64(renderedLen) > float64(plainLen)*1.5
}

// ChooseFetcher probes sourceURL and returns the fetcher to scrape the
// site with. A plain fetch that fails selects the browser. Pages the
// detector recognizes decide directly; other pages are fetched with both
// and compared. It always returns one of the two fetchers.
func ChooseFetcher(ctx context.Context, sourceURL string, plain, browser ragdoc.Fetcher, extractor ragdoc.Extractor, detect JSDetector) ragdoc.Fetcher {
	plainHTML, err := plain.Fetch(ctx, sourceURL)
	if err != nil {
		return browser
	}

	if detect != nil {
		if requiresJS, known := detect(plainHTML); known {
			if requiresJS {
				return browser
			}
			return plain
		}
	}

	renderedHTML, err := browser.Fetch(ctx, sourceURL)
	if err != nil {
		return plain
	}
	if ContentDiffers(plainHTML, renderedHTML, sourceURL, extractor) {
		return browser
	}
	return plain
}
