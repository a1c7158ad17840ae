package ragdoc

import (
	"cmp"
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

// Default context assembly limits.
const (
	DefaultMaxPerURL       = 1
	DefaultMaxContextChars = 5000
)

// UnknownURL is the context item URL used when a chunk carries none.
const UnknownURL = "unknown"

// ChunkMetadata is the metadata object stored with each indexed chunk and
// returned by nearest-neighbor queries.
type ChunkMetadata struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	ChunkIndex   *int   `json:"chunk_index,omitempty"`
	NChars       int    `json:"n_chars"`
	Section      string `json:"section"`
	Anchor       string `json:"anchor"`
	Heading      string `json:"heading"`
	HeadingPath  string `json:"heading_path"`
	CanonicalURL string `json:"canonical_url"`
}

// QueryResult is a raw nearest-neighbor response: parallel lists with one
// row per query. Lower distances are more similar.
type QueryResult struct {
	IDs       [][]string        `json:"ids,omitempty"`
	Documents [][]string        `json:"documents"`
	Metadatas [][]ChunkMetadata `json:"metadatas"`
	Distances [][]float64       `json:"distances"`
}

// ContextItem is one ranked retrieval candidate for a single query.
type ContextItem struct {
	Doc         string  `json:"doc"`
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	Section     string  `json:"section"`
	Heading     string  `json:"heading"`
	HeadingPath string  `json:"heading_path"`
	ChunkIndex  *int    `json:"chunk_index"`
	Distance    float64 `json:"distance"`
	Overlap     int     `json:"overlap"`
	NChars      int     `json:"n_chars"`
}

// ContextConfig holds the context assembly limits.
type ContextConfig struct {
	// MaxPerURL caps the number of items kept per source URL.
	MaxPerURL int

	// MaxContextChars is the total character budget of the assembled context.
	MaxContextChars int
}

// DefaultContextConfig returns the default context assembly limits.
func DefaultContextConfig() ContextConfig {
	return ContextConfig{
		MaxPerURL:       DefaultMaxPerURL,
		MaxContextChars: DefaultMaxContextChars,
	}
}

var wordRe = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// KeywordOverlap counts the distinct lower-cased word tokens shared by
// query and doc.
func KeywordOverlap(query, doc string) int {
	terms := make(map[string]struct{})
	for _, w := range wordRe.FindAllString(strings.ToLower(query), -1) {
		terms[w] = struct{}{}
	}

	shared := make(map[string]struct{})
	for _, w := range wordRe.FindAllString(strings.ToLower(doc), -1) {
		if _, ok := terms[w]; ok {
			shared[w] = struct{}{}
		}
	}
	return len(shared)
}

// Assemble ranks the first row of raw for query and returns an ordered
// context within the configured limits. Items are capped per URL by
// keyword overlap, distance and page position, then ordered globally by
// distance with overlap breaking ties. The item that crosses the character
// budget is truncated and ends the context.
func Assemble(raw *QueryResult, query string, cfg ContextConfig) []ContextItem {
	items := contextItems(raw, query)

	groups := make(map[string][]ContextItem)
	var order []string
	for _, item := range items {
		if _, ok := groups[item.URL]; !ok {
			order = append(order, item.URL)
		}
		groups[item.URL] = append(groups[item.URL], item)
	}

	var selected []ContextItem
	for _, url := range order {
		grp := groups[url]
		slices.SortStableFunc(grp, func(a, b ContextItem) int {
			return cmp.Or(
				cmp.Compare(b.Overlap, a.Overlap),
				cmp.Compare(a.Distance, b.Distance),
				cmp.Compare(indexKey(a), indexKey(b)),
			)
		})
		n := min(max(cfg.MaxPerURL, 0), len(grp))
		selected = append(selected, grp[:n]...)
	}

	slices.SortStableFunc(selected, func(a, b ContextItem) int {
		return cmp.Or(
			cmp.Compare(a.Distance, b.Distance),
			cmp.Compare(b.Overlap, a.Overlap),
		)
	})

	ctx := make([]ContextItem, 0, len(selected))
	acc := 0
	for _, item := range selected {
		snippet := strings.TrimSpace(item.Doc)
		if snippet == "" {
			continue
		}
		n := utf8.RuneCountInString(snippet)
		if acc+n > cfg.MaxContextChars {
			remain := cfg.MaxContextChars - acc
			if remain <= 0 {
				break
			}
			snippet = string([]rune(snippet)[:remain])
			n = remain
		}
		acc += n
		item.Doc = snippet
		ctx = append(ctx, item)
		if acc >= cfg.MaxContextChars {
			break
		}
	}
	return ctx
}

// DedupeByURL keeps the first item of every URL, preserving order.
func DedupeByURL(items []ContextItem) []ContextItem {
	seen := make(map[string]bool, len(items))
	out := make([]ContextItem, 0, len(items))
	for _, item := range items {
		if seen[item.URL] {
			continue
		}
		seen[item.URL] = true
		out = append(out, item)
	}
	return out
}

// contextItems flattens the first result row into context items.
func contextItems(raw *QueryResult, query string) []ContextItem {
	if raw == nil || len(raw.Documents) == 0 {
		return nil
	}
	docs := raw.Documents[0]
	var metas []ChunkMetadata
	if len(raw.Metadatas) > 0 {
		metas = raw.Metadatas[0]
	}
	var dists []float64
	if len(raw.Distances) > 0 {
		dists = raw.Distances[0]
	}

	n := min(len(docs), len(metas), len(dists))
	items := make([]ContextItem, 0, n)
	for i := range n {
		doc, meta := docs[i], metas[i]

		url := strings.TrimSpace(meta.CanonicalURL)
		if url == "" {
			url = strings.TrimSpace(meta.URL)
		}
		if url == "" {
			url = UnknownURL
		}

		nChars := meta.NChars
		if nChars == 0 {
			nChars = utf8.RuneCountInString(doc)
		}

		items = append(items, ContextItem{
			Doc:         doc,
			URL:         url,
			Title:       meta.Title,
			Section:     meta.Section,
			Heading:     meta.Heading,
			HeadingPath: meta.HeadingPath,
			ChunkIndex:  meta.ChunkIndex,
			Distance:    dists[i],
			Overlap:     KeywordOverlap(query, doc),
			NChars:      nChars,
		})
	}
	return items
}

// indexKey orders items without a chunk index after all others.
func indexKey(item ContextItem) int {
	if item.ChunkIndex == nil {
		return math.MaxInt
	}
	return *item.ChunkIndex
}
