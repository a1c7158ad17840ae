package ragdoc_test

import (
	"testing"

	"github.com/fwojciec/ragdoc"
	"github.com/stretchr/testify/assert"
)

func TestInferSection(t *testing.T) {
	t.Parallel()

	cfg := ragdoc.DefaultSectionConfig()

	assert.Equal(t, "tutorial", ragdoc.InferSection("https://fastapi.tiangolo.com/tutorial/body/", cfg))
	assert.Equal(t, "advanced", ragdoc.InferSection("https://example.com/ADVANCED/security/", cfg))
	assert.Equal(t, "unknown", ragdoc.InferSection("https://example.com/tutorial", cfg))
	assert.Equal(t, "unknown", ragdoc.InferSection("", cfg))

	t.Run("first configured category wins", func(t *testing.T) {
		t.Parallel()

		cfg := ragdoc.SectionConfig{Categories: []string{"reference", "tutorial"}, Unknown: "other"}

		assert.Equal(t, "reference", ragdoc.InferSection("https://example.com/tutorial/reference/x", cfg))
		assert.Equal(t, "other", ragdoc.InferSection("https://example.com/guide/", cfg))
	})
}

func TestParseMetaHeader(t *testing.T) {
	t.Parallel()

	cfg := ragdoc.DefaultSectionConfig()

	t.Run("strips header and reads fields", func(t *testing.T) {
		t.Parallel()

		text := "<!-- CANONICAL_URL: https://docs.example.com/a/ | SECTION: reference -->\n\n# Title\n\nBody"

		body, meta := ragdoc.ParseMetaHeader(text, "https://example.com/a/", cfg)

		assert.Equal(t, "# Title\n\nBody", body)
		assert.Equal(t, "https://docs.example.com/a/", meta.CanonicalURL)
		assert.Equal(t, "reference", meta.Section)
	})

	t.Run("falls back to page URL without header", func(t *testing.T) {
		t.Parallel()

		body, meta := ragdoc.ParseMetaHeader("Body only", "https://example.com/deployment/docker/", cfg)

		assert.Equal(t, "Body only", body)
		assert.Equal(t, "https://example.com/deployment/docker/", meta.CanonicalURL)
		assert.Equal(t, "deployment", meta.Section)
	})

	t.Run("infers section when header says unknown", func(t *testing.T) {
		t.Parallel()

		text := "<!-- CANONICAL_URL:  | SECTION: unknown -->\nBody"

		body, meta := ragdoc.ParseMetaHeader(text, "https://example.com/benchmarks/run/", cfg)

		assert.Equal(t, "Body", body)
		assert.Equal(t, "https://example.com/benchmarks/run/", meta.CanonicalURL)
		assert.Equal(t, "benchmarks", meta.Section)
	})

	t.Run("round trips the normalizer header", func(t *testing.T) {
		t.Parallel()

		page := &ragdoc.NormalizedPage{
			Meta: ragdoc.PageMeta{CanonicalURL: "https://example.com/x", Section: "advanced"},
			Body: "## Heading {#heading}\n\ntext",
		}

		body, meta := ragdoc.ParseMetaHeader(page.Text(), "https://example.com/y", cfg)

		assert.Equal(t, page.Body, body)
		assert.Equal(t, page.Meta, meta)
	})
}

func TestNormalizedPage_PageTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Given", (&ragdoc.NormalizedPage{Title: "Given", Body: "# Other"}).PageTitle())
	assert.Equal(t, "First Steps", (&ragdoc.NormalizedPage{Body: "# First Steps {#first-steps}\n\ntext"}).PageTitle())
	assert.Empty(t, (&ragdoc.NormalizedPage{}).PageTitle())
}
