package goquery_test

import (
	"strings"
	"testing"

	gq "github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/ragdoc/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, html string) *gq.Document {
	t.Helper()
	doc, err := gq.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestDetectFramework(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want goquery.Framework
	}{
		{
			name: "docusaurus skip link",
			html: `<html><body><a id="__docusaurus_skipToContent_fallback" href="#">Skip</a></body></html>`,
			want: goquery.FrameworkDocusaurus,
		},
		{
			name: "mkdocs material color scheme",
			html: `<html><body data-md-color-scheme="default"><nav class="md-nav md-nav--primary"></nav></body></html>`,
			want: goquery.FrameworkMkDocs,
		},
		{
			name: "sphinx read the docs theme",
			html: `<html><body><nav class="wy-nav-side"></nav><div class="toctree-wrapper"></div></body></html>`,
			want: goquery.FrameworkSphinx,
		},
		{
			name: "vitepress content root",
			html: `<html><body><div id="VPContent"><div class="VPDoc"></div></div></body></html>`,
			want: goquery.FrameworkVitePress,
		},
		{
			name: "vuepress default theme",
			html: `<html><body><div class="theme-default-content"></div></body></html>`,
			want: goquery.FrameworkVuePress,
		},
		{
			name: "gitbook html classes",
			html: `<html class="circular-corners theme-clean"><body></body></html>`,
			want: goquery.FrameworkGitBook,
		},
		{
			name: "nextra sidebar",
			html: `<html><body><aside class="nextra-sidebar"></aside></body></html>`,
			want: goquery.FrameworkNextra,
		},
		{
			name: "meta generator wins over markers",
			html: `<html><head><meta name="generator" content="Sphinx 7.2.6"></head><body><div class="theme-default-content"></div></body></html>`,
			want: goquery.FrameworkSphinx,
		},
		{
			name: "vitepress generator is not vuepress",
			html: `<html><head><meta name="generator" content="VitePress v1.0.0"></head><body></body></html>`,
			want: goquery.FrameworkVitePress,
		},
		{
			name: "single gitbook class is not enough",
			html: `<html class="tint"><body></body></html>`,
			want: goquery.FrameworkUnknown,
		},
		{
			name: "plain page",
			html: `<html><body><main><p>Hello</p></main></body></html>`,
			want: goquery.FrameworkUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, goquery.DetectFramework(parse(t, tt.html)))
		})
	}
}

func TestRequiresJS(t *testing.T) {
	t.Parallel()

	t.Run("gitbook renders client side", func(t *testing.T) {
		t.Parallel()
		requires, known := goquery.RequiresJS(`<html class="theme-clean tint"><body></body></html>`)
		assert.True(t, requires)
		assert.True(t, known)
	})

	t.Run("sphinx is static", func(t *testing.T) {
		t.Parallel()
		requires, known := goquery.RequiresJS(`<html><body><div class="sphinxsidebar"></div></body></html>`)
		assert.False(t, requires)
		assert.True(t, known)
	})

	t.Run("unknown pages are undecided", func(t *testing.T) {
		t.Parallel()
		_, known := goquery.RequiresJS(`<html><body><div id="root"></div></body></html>`)
		assert.False(t, known)
	})
}
