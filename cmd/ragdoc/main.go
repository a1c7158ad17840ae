package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/crawl"
	"github.com/fwojciec/ragdoc/gemini"
	"github.com/fwojciec/ragdoc/goquery"
	"github.com/fwojciec/ragdoc/htmltomarkdown"
	raghttp "github.com/fwojciec/ragdoc/http"
	"github.com/fwojciec/ragdoc/readability"
	"github.com/fwojciec/ragdoc/rod"
	ragslog "github.com/fwojciec/ragdoc/slog"
	"github.com/fwojciec/ragdoc/sqlite"
	"github.com/fwojciec/ragdoc/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database used by the store and searcher.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("ragdoc"),
		kong.Description("Scrape, chunk, embed and question documentation sites."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
		kong.Configuration(YAMLConfig, DefaultConfigFile),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'ragdoc --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd, _, _ := strings.Cut(kongCtx.Command(), " ")

	var level slog.Level
	if err := level.UnmarshalText([]byte(cli.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cli.LogLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger
	deps.Sections = ragdoc.SectionConfig{
		Categories: cli.Sections,
		Unknown:    cli.UnknownSection,
	}

	switch cmd {
	case "scrape":
		userAgent := raghttp.UserAgent(cli.Scrape.Email)
		deps.Sitemaps = ragslog.NewLoggingSitemapService(raghttp.NewSitemapService(nil, userAgent), logger)
		if !cli.Scrape.Preview {
			base, err := newFetcher(ctx, &cli.Scrape, userAgent, logger)
			if err != nil {
				return err
			}
			fetcher := ragslog.NewLoggingFetcher(base, logger)
			defer fetcher.Close()

			deps.Scraper = &crawl.Scraper{
				Sitemaps:    deps.Sitemaps,
				Fetcher:     fetcher,
				Extractor:   newExtractor(cli.Scrape.Extract),
				Normalizer:  ragslog.NewLoggingNormalizer(newNormalizer(cli.Scrape.Converter, deps.Sections), logger),
				RateLimiter: crawl.NewDomainLimiter(cli.Scrape.Rate),
				Logger:      logger,
			}
		}

	case "ingest", "query", "ask":
		dbPath := cli.DB
		if dbPath == "" {
			dbPath = defaultDBPath()
		}
		m.DB = sqlite.NewDB(dbPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set RAGDOC_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
		}
		defer m.Close()

		client, err := newGeminiClient(ctx, stderr)
		if err != nil {
			return err
		}

		switch cmd {
		case "ingest":
			embedder := ragslog.NewLoggingEmbedder(gemini.NewEmbedder(client, cli.EmbeddingModel, gemini.TaskRetrievalDocument), logger)
			deps.Chunks = ragslog.NewLoggingChunkStore(sqlite.NewChunkStore(m.DB, embedder), logger)

		case "query":
			embedder := ragslog.NewLoggingEmbedder(gemini.NewEmbedder(client, cli.EmbeddingModel, gemini.TaskRetrievalQuery), logger)
			deps.Searcher = sqlite.NewSearcher(m.DB, embedder)
			if cli.Query.CountTokens {
				tokenCounter, err := gemini.NewTokenCounter(cli.Model)
				if err != nil {
					return fmt.Errorf("failed to create token counter: %w", err)
				}
				deps.TokenCounter = tokenCounter
			}

		case "ask":
			embedder := ragslog.NewLoggingEmbedder(gemini.NewEmbedder(client, cli.EmbeddingModel, gemini.TaskRetrievalQuery), logger)
			retriever := ragslog.NewLoggingRetriever(cli.Ask.Retriever(sqlite.NewSearcher(m.DB, embedder)), logger)
			asker := gemini.NewAsker(client, retriever)
			asker.Model = cli.Model
			asker.MaxOutputTokens = cli.Ask.MaxOutputTokens
			deps.Asker = ragslog.NewLoggingAsker(asker, logger)
		}
	}

	return kongCtx.Run(deps)
}

// newFetcher returns the fetcher selected by the render mode. In auto mode
// the source page is probed and the unused fetcher is closed.
func newFetcher(ctx context.Context, c *ScrapeCmd, userAgent string, logger *slog.Logger) (ragdoc.Fetcher, error) {
	plain := raghttp.NewFetcher(raghttp.WithUserAgent(userAgent), raghttp.WithTimeout(c.Timeout))
	if c.Render == "never" {
		return plain, nil
	}

	browser, err := rod.NewFetcher(rod.WithFetchTimeout(c.Timeout))
	if err != nil {
		if c.Render == "always" {
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		logger.Warn("browser unavailable, fetching over HTTP", "err", err)
		return plain, nil
	}
	if c.Render == "always" {
		_ = plain.Close()
		return browser, nil
	}

	chosen := crawl.ChooseFetcher(ctx, c.URL, plain, browser, goquery.NewContentExtractor(), goquery.RequiresJS)
	if chosen == ragdoc.Fetcher(browser) {
		_ = plain.Close()
		logger.Info("rendering pages in headless browser", "url", c.URL)
	} else {
		_ = browser.Close()
	}
	return chosen, nil
}

// newExtractor returns the main-content extractor selected by name, or nil.
func newExtractor(name string) ragdoc.Extractor {
	switch name {
	case "content":
		return goquery.NewContentExtractor()
	case "trafilatura":
		return trafilatura.NewExtractor()
	case "readability":
		return readability.NewExtractor()
	}
	return nil
}

// newNormalizer returns the normalizer selected by name.
func newNormalizer(name string, sections ragdoc.SectionConfig) ragdoc.Normalizer {
	if name == "markdown" {
		return htmltomarkdown.NewNormalizer(sections)
	}
	return goquery.NewNormalizer(sections)
}

func newGeminiClient(ctx context.Context, stderr io.Writer) (*genai.Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	return client, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "ragdoc.db"
	}
	dir := filepath.Join(home, ".ragdoc")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "ragdoc.db")
}
