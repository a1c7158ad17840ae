package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/crawl"
	"github.com/google/uuid"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Sections ragdoc.SectionConfig

	Sitemaps     ragdoc.SitemapService
	Scraper      *crawl.Scraper
	Chunks       ragdoc.ChunkStore
	Searcher     ragdoc.Searcher
	Asker        ragdoc.Asker
	TokenCounter ragdoc.TokenCounter

	// Now and NewRunID default to the wall clock and random UUIDs.
	Now      func() time.Time
	NewRunID func() string
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Dependencies) newRunID() string {
	if d.NewRunID != nil {
		return d.NewRunID()
	}
	return uuid.NewString()
}

func (d *Dependencies) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config         kong.ConfigFlag `help:"YAML configuration file" placeholder:"FILE"`
	LogLevel       string          `name:"log-level" env:"RAGDOC_LOG_LEVEL" default:"warn" enum:"debug,info,warn,error" help:"Log level (debug, info, warn, error)"`
	DB             string          `name:"db" env:"RAGDOC_DB" help:"SQLite database path (default ~/.ragdoc/ragdoc.db)"`
	Sections       []string        `name:"sections" env:"RAGDOC_SECTIONS" default:"tutorial,advanced,reference,alternatives,deployment,benchmarks" help:"Section names recognized in URL paths"`
	UnknownSection string          `name:"unknown-section" env:"RAGDOC_UNKNOWN_SECTION" default:"unknown" help:"Section used when no name matches"`
	Model          string          `name:"model" env:"RAGDOC_MODEL" default:"gemini-2.5-flash" help:"Gemini model used to answer"`
	EmbeddingModel string          `name:"embedding-model" env:"RAGDOC_EMBEDDING_MODEL" default:"gemini-embedding-001" help:"Gemini embedding model"`

	Scrape ScrapeCmd `cmd:"" help:"Scrape a documentation site into a page feed"`
	Chunk  ChunkCmd  `cmd:"" help:"Split a page feed into overlapping chunks"`
	Ingest IngestCmd `cmd:"" help:"Embed a chunk feed into the vector store"`
	Query  QueryCmd  `cmd:"" help:"Show the context retrieved for a question"`
	Ask    AskCmd    `cmd:"" help:"Answer a question from the ingested documentation"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URL         string        `arg:"" help:"Documentation site or sitemap URL"`
	FeedDir     string        `name:"feed-dir" env:"RAGDOC_FEED_DIR" default:"data/pages" help:"Directory for page feeds"`
	Filter      []string      `short:"F" name:"filter" help:"Only scrape URLs matching regex (repeatable)"`
	Exclude     []string      `short:"x" name:"exclude" help:"Skip URLs matching regex (repeatable)"`
	Preview     bool          `short:"p" help:"List discovered URLs without scraping"`
	Extract     string        `default:"none" enum:"none,content,trafilatura,readability" help:"Main-content extractor run before normalizing (none, content, trafilatura, readability)"`
	Render      string        `default:"never" enum:"never,always,auto" help:"Render pages in headless Chrome (never, always, auto probes the site)"`
	Converter   string        `default:"goquery" enum:"goquery,markdown" help:"HTML normalizer (goquery, markdown)"`
	Concurrency int           `short:"c" name:"concurrency" env:"RAGDOC_CONCURRENCY" default:"8" help:"Concurrent fetch limit"`
	Rate        float64       `name:"rate" env:"RAGDOC_RATE" default:"2" help:"Requests per second per domain (0 disables)"`
	Email       string        `name:"email" env:"RAGDOC_EMAIL" help:"Contact address sent in the User-Agent"`
	Timeout     time.Duration `default:"30s" help:"Per-request timeout"`
}

// ChunkCmd is the "chunk" subcommand.
type ChunkCmd struct {
	Input        string `arg:"" optional:"" type:"path" help:"Page feed (default: newest in --feed-dir)"`
	FeedDir      string `name:"feed-dir" env:"RAGDOC_FEED_DIR" default:"data/pages" help:"Directory for page feeds"`
	ChunkDir     string `name:"chunk-dir" env:"RAGDOC_CHUNK_DIR" default:"data/chunks" help:"Directory for chunk feeds"`
	MaxChars     int    `name:"max-chars" env:"RAGDOC_MAX_CHARS" default:"1000" help:"Maximum characters per chunk"`
	OverlapChars int    `name:"overlap-chars" env:"RAGDOC_OVERLAP_CHARS" default:"100" help:"Characters carried into the next chunk"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	Input     string `arg:"" optional:"" type:"path" help:"Chunk feed (default: newest in --chunk-dir)"`
	ChunkDir  string `name:"chunk-dir" env:"RAGDOC_CHUNK_DIR" default:"data/chunks" help:"Directory for chunk feeds"`
	Replace   bool   `help:"Replace the chunks already in the store"`
	BatchSize int    `name:"batch-size" env:"RAGDOC_BATCH_SIZE" default:"1000" help:"Chunks embedded per batch"`
}

// RetrievalFlags configure context retrieval.
type RetrievalFlags struct {
	NResults    int `name:"n-results" short:"n" env:"RAGDOC_N_RESULTS" default:"3" help:"Nearest neighbors to fetch"`
	MaxPerURL   int `name:"max-per-url" env:"RAGDOC_MAX_PER_URL" default:"1" help:"Context items kept per source URL"`
	MaxCtxChars int `name:"max-ctx-chars" env:"RAGDOC_MAX_CTX_CHARS" default:"5000" help:"Character budget of the context"`
}

// Retriever returns a context retriever over searcher.
func (f RetrievalFlags) Retriever(searcher ragdoc.Searcher) *ragdoc.ContextRetriever {
	return &ragdoc.ContextRetriever{
		Searcher: searcher,
		Config: ragdoc.ContextConfig{
			MaxPerURL:       f.MaxPerURL,
			MaxContextChars: f.MaxCtxChars,
		},
		NResults: f.NResults,
	}
}

// QueryCmd is the "query" subcommand.
type QueryCmd struct {
	Question string `arg:"" help:"Question to retrieve context for"`
	RetrievalFlags `embed:""`
	JSON        bool `name:"json" help:"Print context items as JSON"`
	CountTokens bool `name:"count-tokens" help:"Report the prompt size in model tokens"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string `arg:"" help:"Question to ask about the documentation"`
	RetrievalFlags `embed:""`
	MaxOutputTokens int32 `name:"max-output-tokens" env:"RAGDOC_MAX_OUTPUT_TOKENS" default:"1024" help:"Maximum answer length in tokens"`
}
