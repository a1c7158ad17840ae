package ragdoc

import (
	"net/url"
	"regexp"
	"strings"
)

// Default section settings.
const DefaultUnknownSection = "unknown"

// DefaultSectionCategories lists the recognized section names, in match order.
func DefaultSectionCategories() []string {
	return []string{"tutorial", "advanced", "reference", "alternatives", "deployment", "benchmarks"}
}

// SectionConfig controls section inference from URL paths.
type SectionConfig struct {
	// Categories are matched in order against "/{category}/" in the URL path.
	Categories []string

	// Unknown is the sentinel used when no category matches.
	Unknown string
}

// DefaultSectionConfig returns the default section settings.
func DefaultSectionConfig() SectionConfig {
	return SectionConfig{
		Categories: DefaultSectionCategories(),
		Unknown:    DefaultUnknownSection,
	}
}

func (c SectionConfig) unknown() string {
	if c.Unknown == "" {
		return DefaultUnknownSection
	}
	return c.Unknown
}

// PageMeta is the page-level metadata carried by the header comment.
type PageMeta struct {
	CanonicalURL string `json:"canonical_url"`
	Section      string `json:"section"`
}

// InferSection returns the first category whose "/{category}/" segment
// occurs in the lower-cased path of rawURL, or the unknown sentinel.
func InferSection(rawURL string, cfg SectionConfig) string {
	if rawURL == "" {
		return cfg.unknown()
	}
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	path = strings.ToLower(path)
	for _, category := range cfg.Categories {
		if category == "" {
			continue
		}
		if strings.Contains(path, "/"+strings.ToLower(category)+"/") {
			return category
		}
	}
	return cfg.unknown()
}

// FormatMetaHeader renders meta as the leading comment line of a page.
func FormatMetaHeader(meta PageMeta) string {
	return "<!-- CANONICAL_URL: " + meta.CanonicalURL + " | SECTION: " + meta.Section + " -->"
}

var (
	metaHeaderRe = regexp.MustCompile(`^\s*<!--\s*((?s).*?)\s*-->\s*`)
	metaFieldRe  = regexp.MustCompile(`\b([A-Z_]+):\s*([^|]+)`)
)

// ParseMetaHeader strips an optional leading metadata comment from text and
// returns the remaining body with the parsed metadata. The canonical URL
// falls back to pageURL; an unknown section is inferred from pageURL.
func ParseMetaHeader(text, pageURL string, cfg SectionConfig) (string, PageMeta) {
	meta := PageMeta{
		CanonicalURL: pageURL,
		Section:      cfg.unknown(),
	}

	if loc := metaHeaderRe.FindStringSubmatchIndex(text); loc != nil {
		blob := text[loc[2]:loc[3]]
		for _, m := range metaFieldRe.FindAllStringSubmatch(blob, -1) {
			val := strings.TrimSpace(m[2])
			if val == "" {
				continue
			}
			switch m[1] {
			case "CANONICAL_URL":
				meta.CanonicalURL = val
			case "SECTION":
				meta.Section = val
			}
		}
		text = text[loc[1]:]
	}

	if meta.Section == cfg.unknown() {
		meta.Section = InferSection(pageURL, cfg)
	}
	return text, meta
}
