package ragdoc

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Default segmentation limits, in characters.
const (
	DefaultMaxChars     = 1000
	DefaultOverlapChars = 100
)

// Chunk is a bounded slice of one page's normalized text, the unit that is
// embedded and indexed.
type Chunk struct {
	URL          string `json:"url"`
	Title        string `json:"title"`
	ID           string `json:"chunk_id"`
	Index        int    `json:"chunk_index"`
	Text         string `json:"text"`
	NChars       int    `json:"n_chars"`
	Anchor       string `json:"anchor"`
	Heading      string `json:"heading"`
	HeadingPath  string `json:"heading_path"`
	Section      string `json:"section"`
	CanonicalURL string `json:"canonical_url"`
}

// Metadata returns the chunk fields stored next to its embedding.
func (c *Chunk) Metadata() ChunkMetadata {
	index := c.Index
	return ChunkMetadata{
		URL:          c.URL,
		Title:        c.Title,
		ChunkIndex:   &index,
		NChars:       c.NChars,
		Section:      c.Section,
		Anchor:       c.Anchor,
		Heading:      c.Heading,
		HeadingPath:  c.HeadingPath,
		CanonicalURL: c.CanonicalURL,
	}
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return Errorf(EINVALID, "chunk ID required")
	}
	if c.Text == "" {
		return Errorf(EINVALID, "chunk text required")
	}
	return nil
}

// ChunkConfig holds the segmentation settings.
type ChunkConfig struct {
	MaxChars     int
	OverlapChars int
	Sections     SectionConfig
}

// DefaultChunkConfig returns the default segmentation settings.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxChars:     DefaultMaxChars,
		OverlapChars: DefaultOverlapChars,
		Sections:     DefaultSectionConfig(),
	}
}

// Validate returns an error if the limits cannot produce chunks.
// An overlap of MaxChars or more is accepted; windows then advance by
// MaxChars.
func (c ChunkConfig) Validate() error {
	if c.MaxChars <= 0 {
		return Errorf(EINVALID, "max chars must be positive, got %d", c.MaxChars)
	}
	if c.OverlapChars < 0 {
		return Errorf(EINVALID, "overlap chars must not be negative, got %d", c.OverlapChars)
	}
	return nil
}

// ChunkID derives the stable chunk identifier: the first 16 hex characters
// of the SHA-256 digest of "{url}|{anchorOrHeading}|{index}".
func ChunkID(url, anchorOrHeading string, index int) string {
	sum := sha256.Sum256([]byte(url + "|" + anchorOrHeading + "|" + strconv.Itoa(index)))
	return hex.EncodeToString(sum[:])[:16]
}

// ChunkPage segments a page into chunks. Chunk indexes run across the whole
// page in emission order. A page with blank text yields no chunks.
func ChunkPage(page *Page, cfg ChunkConfig) []*Chunk {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	if cfg.OverlapChars < 0 {
		cfg.OverlapChars = 0
	}

	url := strings.TrimSpace(page.URL)
	title := strings.TrimSpace(page.Title)

	body, meta := ParseMetaHeader(page.Text, url, cfg.Sections)

	var chunks []*Chunk
	for _, sec := range ParseSections(body) {
		baseText := sec.Body
		if sec.Heading != "" {
			baseText = strings.TrimSpace(sec.Heading + "\n\n" + sec.Body)
		}

		key := sec.Anchor
		if key == "" {
			key = sec.Heading
		}

		for _, piece := range packWithOverlap(baseText, cfg.MaxChars, cfg.OverlapChars) {
			index := len(chunks)
			chunks = append(chunks, &Chunk{
				URL:          url,
				Title:        title,
				ID:           ChunkID(url, key, index),
				Index:        index,
				Text:         piece,
				NChars:       utf8.RuneCountInString(piece),
				Anchor:       sec.Anchor,
				Heading:      sec.Heading,
				HeadingPath:  sec.HeadingPath,
				Section:      meta.Section,
				CanonicalURL: meta.CanonicalURL,
			})
		}
	}
	return chunks
}

var paragraphSplitRe = regexp.MustCompile(`\n{2,}`)

// packWithOverlap packs blank-line separated paragraphs into pieces of at
// most maxChars characters. Each flushed piece seeds the next buffer with
// its last overlap characters followed by the paragraph that did not fit,
// keeping only the last maxChars characters of the seed. A paragraph that
// alone exceeds maxChars with nothing buffered is cut into fixed windows.
//
// The seed cut drops the head of an oversized paragraph that follows
// buffered text. Stored chunk ids depend on this packing, so it is kept.
func packWithOverlap(text string, maxChars, overlap int) []string {
	var out []string
	buf := ""

	for _, p := range paragraphSplitRe.Split(text, -1) {
		candidate := p
		if buf != "" {
			candidate = strings.TrimSpace(buf + "\n\n" + p)
		}
		if utf8.RuneCountInString(candidate) <= maxChars {
			buf = candidate
			continue
		}

		if buf != "" {
			out = append(out, buf)
			tail := ""
			if overlap > 0 {
				tail = lastRunes(buf, overlap)
			}
			buf = lastRunes(tail+"\n\n"+p, maxChars)
			continue
		}

		step := maxChars - overlap
		if overlap >= maxChars {
			step = maxChars
		}
		runes := []rune(p)
		for start := 0; start < len(runes); start += step {
			end := min(start+maxChars, len(runes))
			out = append(out, string(runes[start:end]))
		}
	}
	if buf != "" {
		out = append(out, buf)
	}

	pieces := out[:0]
	for _, piece := range out {
		if piece = strings.TrimSpace(piece); piece != "" {
			pieces = append(pieces, piece)
		}
	}
	return pieces
}

// lastRunes returns the last n characters of s.
func lastRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[len(runes)-n:])
}
