package ragdoc

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// CanonicalURL is the page URL declared in metadata, if any.
	CanonicalURL string

	// ContentHTML is the main content as clean HTML.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	// Extract processes raw HTML and returns the main content.
	// sourceURL is the address the page was fetched from.
	Extract(html, sourceURL string) (*ExtractResult, error)
}
