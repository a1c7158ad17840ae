package ragdoc_test

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fwojciec/ragdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunkConfig(maxChars, overlap int) ragdoc.ChunkConfig {
	cfg := ragdoc.DefaultChunkConfig()
	cfg.MaxChars = maxChars
	cfg.OverlapChars = overlap
	return cfg
}

func chunkTexts(chunks []*ragdoc.Chunk) []string {
	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Text)
	}
	return texts
}

func TestChunkID(t *testing.T) {
	t.Parallel()

	sum := sha256.Sum256([]byte("https://example.com/a|install|3"))
	want := hex.EncodeToString(sum[:])[:16]

	assert.Equal(t, want, ragdoc.ChunkID("https://example.com/a", "install", 3))
	assert.Len(t, ragdoc.ChunkID("", "", 0), 16)
	assert.NotEqual(t, ragdoc.ChunkID("u", "a", 0), ragdoc.ChunkID("u", "a", 1))
}

func TestChunkConfig_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ragdoc.DefaultChunkConfig().Validate())
	assert.NoError(t, chunkConfig(10, 10).Validate())
	assert.Equal(t, ragdoc.EINVALID, ragdoc.ErrorCode(chunkConfig(0, 0).Validate()))
	assert.Equal(t, ragdoc.EINVALID, ragdoc.ErrorCode(chunkConfig(10, -1).Validate()))
}

func TestChunkPage(t *testing.T) {
	t.Parallel()

	t.Run("empty text yields no chunks", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, ragdoc.ChunkPage(&ragdoc.Page{URL: "https://example.com"}, ragdoc.DefaultChunkConfig()))
		assert.Empty(t, ragdoc.ChunkPage(&ragdoc.Page{URL: "https://example.com", Text: " \n\n "}, ragdoc.DefaultChunkConfig()))
	})

	t.Run("header-only text yields no chunks", func(t *testing.T) {
		t.Parallel()

		page := &ragdoc.Page{URL: "u", Text: "<!-- CANONICAL_URL: u | SECTION: tutorial -->\n\n"}

		assert.Empty(t, ragdoc.ChunkPage(page, ragdoc.DefaultChunkConfig()))
	})

	t.Run("populates every field", func(t *testing.T) {
		t.Parallel()

		page := &ragdoc.Page{
			URL:   " https://example.com/tutorial/intro/ ",
			Title: " Intro ",
			Text: "<!-- CANONICAL_URL: https://docs.example.com/tutorial/intro/ | SECTION: tutorial -->\n\n" +
				"# Intro {#intro}\n\nLead text.\n\n" +
				"## Install {#install}\n\nRun pip.\n\n" +
				"### Options\n\nUse flags.",
		}

		chunks := ragdoc.ChunkPage(page, ragdoc.DefaultChunkConfig())

		require.Len(t, chunks, 3)
		assert.Equal(t, []string{
			"# Intro {#intro}\n\nLead text.",
			"Install\n\nRun pip.",
			"Options\n\nUse flags.",
		}, chunkTexts(chunks))

		url := "https://example.com/tutorial/intro/"
		for i, c := range chunks {
			assert.Equal(t, url, c.URL)
			assert.Equal(t, "Intro", c.Title)
			assert.Equal(t, i, c.Index)
			assert.Equal(t, utf8.RuneCountInString(c.Text), c.NChars)
			assert.Equal(t, "tutorial", c.Section)
			assert.Equal(t, "https://docs.example.com/tutorial/intro/", c.CanonicalURL)
		}

		assert.Empty(t, chunks[0].Anchor)
		assert.Empty(t, chunks[0].Heading)
		assert.Empty(t, chunks[0].HeadingPath)
		assert.Equal(t, ragdoc.ChunkID(url, "", 0), chunks[0].ID)

		assert.Equal(t, "install", chunks[1].Anchor)
		assert.Equal(t, "Install", chunks[1].HeadingPath)
		assert.Equal(t, ragdoc.ChunkID(url, "install", 1), chunks[1].ID)

		assert.Equal(t, "options", chunks[2].Anchor)
		assert.Equal(t, "Options", chunks[2].Heading)
		assert.Equal(t, "Install > Options", chunks[2].HeadingPath)
		assert.Equal(t, ragdoc.ChunkID(url, "options", 2), chunks[2].ID)
	})

	t.Run("infers section and canonical URL without header", func(t *testing.T) {
		t.Parallel()

		page := &ragdoc.Page{URL: "https://example.com/advanced/security/", Text: "Plain text."}

		chunks := ragdoc.ChunkPage(page, ragdoc.DefaultChunkConfig())

		require.Len(t, chunks, 1)
		assert.Equal(t, "advanced", chunks[0].Section)
		assert.Equal(t, page.URL, chunks[0].CanonicalURL)
		assert.Equal(t, "Plain text.", chunks[0].Text)
	})

	t.Run("packs paragraphs with overlap", func(t *testing.T) {
		t.Parallel()

		page := &ragdoc.Page{URL: "u", Text: "aaaaaaaaaa\n\nbbbbbbbbbb\n\ncccccccccc"}

		chunks := ragdoc.ChunkPage(page, chunkConfig(20, 5))

		assert.Equal(t, []string{
			"aaaaaaaaaa",
			"aaaaa\n\nbbbbbbbbbb",
			"bbbbb\n\ncccccccccc",
		}, chunkTexts(chunks))
	})

	t.Run("hard splits an oversized paragraph", func(t *testing.T) {
		t.Parallel()

		page := &ragdoc.Page{URL: "u", Text: "abcdefghijklmnopqrstuvwxy"}

		chunks := ragdoc.ChunkPage(page, chunkConfig(10, 3))

		assert.Equal(t, []string{"abcdefghij", "hijklmnopq", "opqrstuvwx", "vwxy"}, chunkTexts(chunks))
	})

	t.Run("advances by max chars when overlap is not smaller", func(t *testing.T) {
		t.Parallel()

		page := &ragdoc.Page{URL: "u", Text: "abcdefghijklmnopqrstuvwxy"}

		chunks := ragdoc.ChunkPage(page, chunkConfig(10, 15))

		assert.Equal(t, []string{"abcdefghij", "klmnopqrst", "uvwxy"}, chunkTexts(chunks))
	})

	t.Run("counts characters not bytes", func(t *testing.T) {
		t.Parallel()

		page := &ragdoc.Page{URL: "u", Text: "äöüäöü"}

		chunks := ragdoc.ChunkPage(page, chunkConfig(4, 0))

		assert.Equal(t, []string{"äöüä", "öü"}, chunkTexts(chunks))
		assert.Equal(t, 4, chunks[0].NChars)
	})

	t.Run("chunk index runs across sections", func(t *testing.T) {
		t.Parallel()

		page := &ragdoc.Page{URL: "u", Text: "## A\n\n" + strings.Repeat("x", 25) + "\n\n## B\n\nshort"}

		chunks := ragdoc.ChunkPage(page, chunkConfig(10, 0))

		require.Len(t, chunks, 3)
		for i, c := range chunks {
			assert.Equal(t, i, c.Index)
		}
		assert.Equal(t, "B\n\nshort", chunks[2].Text)
		assert.Equal(t, ragdoc.ChunkID("u", "b", 2), chunks[2].ID)
	})

	t.Run("oversized paragraph after buffered text seeds the next buffer", func(t *testing.T) {
		t.Parallel()

		page := &ragdoc.Page{URL: "u", Text: "short para\n\n" + strings.Repeat("x", 25)}

		chunks := ragdoc.ChunkPage(page, chunkConfig(10, 3))

		assert.Equal(t, []string{"short para", "xxxxxxxxxx"}, chunkTexts(chunks))
	})

	t.Run("seed keeps the most recent characters", func(t *testing.T) {
		t.Parallel()

		page := &ragdoc.Page{URL: "u", Text: "abcdefgh\n\n0123456789XYZ"}

		chunks := ragdoc.ChunkPage(page, chunkConfig(10, 3))

		assert.Equal(t, []string{"abcdefgh", "3456789XYZ"}, chunkTexts(chunks))
	})
}

// docPage builds a page of numbered, distinct paragraphs under headings.
func docPage() (*ragdoc.Page, []string) {
	var sb strings.Builder
	var paragraphs []string
	sb.WriteString("Lead paragraph before any heading.\n\n")
	paragraphs = append(paragraphs, "Lead paragraph before any heading.")
	for s := range 4 {
		fmt.Fprintf(&sb, "## Section %d {#section-%d}\n\n", s, s)
		for p := range 6 {
			para := fmt.Sprintf("Paragraph %d.%d says %s.", s, p, strings.Repeat(fmt.Sprintf("w%d%d ", s, p), 5+p*3))
			paragraphs = append(paragraphs, para)
			sb.WriteString(para + "\n\n")
		}
	}
	return &ragdoc.Page{URL: "https://example.com/reference/page/", Title: "Page", Text: sb.String()}, paragraphs
}

func TestChunkPage_Properties(t *testing.T) {
	t.Parallel()

	cfg := chunkConfig(200, 40)
	page, paragraphs := docPage()
	chunks := ragdoc.ChunkPage(page, cfg)
	require.NotEmpty(t, chunks)

	t.Run("size bound", func(t *testing.T) {
		t.Parallel()

		for _, c := range chunks {
			assert.LessOrEqual(t, c.NChars, cfg.MaxChars)
			assert.Equal(t, utf8.RuneCountInString(c.Text), c.NChars)
		}
	})

	t.Run("coverage", func(t *testing.T) {
		t.Parallel()

		joined := strings.Join(chunkTexts(chunks), "\n")
		for _, p := range paragraphs {
			assert.Contains(t, joined, p)
		}
	})

	t.Run("overlap bound", func(t *testing.T) {
		t.Parallel()

		for i := 1; i < len(chunks); i++ {
			prev, next := chunks[i-1], chunks[i]
			if prev.Anchor != next.Anchor {
				continue
			}
			shared := 0
			for k := min(len(prev.Text), len(next.Text)); k > 0; k-- {
				if strings.HasSuffix(prev.Text, next.Text[:k]) {
					shared = k
					break
				}
			}
			assert.LessOrEqual(t, shared, cfg.OverlapChars, "chunks %d and %d", i-1, i)
		}
	})

	t.Run("determinism", func(t *testing.T) {
		t.Parallel()

		again := ragdoc.ChunkPage(page, cfg)

		require.Len(t, again, len(chunks))
		for i := range chunks {
			assert.Equal(t, chunks[i].ID, again[i].ID)
			assert.Equal(t, chunks[i].Text, again[i].Text)
		}
	})

	t.Run("unique ids", func(t *testing.T) {
		t.Parallel()

		seen := make(map[string]bool)
		for _, c := range chunks {
			assert.False(t, seen[c.ID], c.ID)
			seen[c.ID] = true
		}
	})
}
