package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pricecrawl/pricecrawl/crawl"
	"github.com/pricecrawl/pricecrawl/fs"
	"github.com/pricecrawl/pricecrawl/gemini"
	"github.com/pricecrawl/pricecrawl/goquery"
	pricecrawlhttp "github.com/pricecrawl/pricecrawl/http"
	"github.com/pricecrawl/pricecrawl/pdf"
	pcslog "github.com/pricecrawl/pricecrawl/slog"
	"github.com/pricecrawl/pricecrawl/sqlite"
	"google.golang.org/genai"
)

const shutdownGrace = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Addr   string `default:":8000" help:"HTTP listen address"`
	DB     string `help:"Archive database path (overrides PRICECRAWL_DB)"`
	PDFDir string `name:"pdf-dir" default:"downloaded_pdfs" help:"Directory downloaded PDFs are saved to"`
}

// Run starts the HTTP API and serves until ctx is cancelled.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pricecrawld"),
		kong.Description("HTTP API for crawling websites for price information"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	if cli.DB != "" {
		m.DBPath = cli.DB
	}

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set PRICECRAWL_DB or pass --db to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	logger := slog.New(slog.NewJSONHandler(stderr, nil))

	fetcher := pricecrawlhttp.NewFetcher()
	defer fetcher.Close()

	crawler := &crawl.Crawler{
		Fetcher:   pcslog.NewLoggingFetcher(fetcher, logger),
		Parser:    goquery.NewParser(),
		Extractor: pdf.NewExtractor(),
		Store:     fs.NewPDFStore(cli.PDFDir),
		Sitemaps:  pcslog.NewLoggingSitemapService(pricecrawlhttp.NewSitemapService(), logger),
	}

	opts := []pricecrawlhttp.ServerOption{
		pricecrawlhttp.WithArchive(sqlite.NewRunService(m.DB), sqlite.NewExcerptService(m.DB)),
	}

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		opts = append(opts, pricecrawlhttp.WithCategorizer(pcslog.NewLoggingCategorizer(gemini.NewCategorizer(client), logger)))
	} else {
		logger.Info("GEMINI_API_KEY not set, price list formatting disabled")
	}

	srv := pricecrawlhttp.NewServer(crawler, opts...)

	ln, err := net.Listen("tcp", cli.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cli.Addr, err)
	}

	// No WriteTimeout: scrape requests legitimately run for minutes.
	httpServer := &http.Server{
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown error", "error", err)
		}
	}()

	fmt.Fprintf(stdout, "pricecrawld listening on %s\n", ln.Addr())
	logger.Info("server started", "addr", ln.Addr().String(), "db", m.DBPath)

	if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func defaultDBPath() string {
	if path := os.Getenv("PRICECRAWL_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "pricecrawl.db"
	}
	dir := filepath.Join(home, ".pricecrawl")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "pricecrawl.db")
}
