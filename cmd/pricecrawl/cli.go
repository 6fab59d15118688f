package main

import (
	"context"
	"io"
	"time"

	"github.com/pricecrawl/pricecrawl"
	"github.com/pricecrawl/pricecrawl/crawl"
	"github.com/pricecrawl/pricecrawl/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	DB          *sqlite.DB
	Runs        pricecrawl.RunService
	Excerpts    pricecrawl.ExcerptService
	Crawler     *crawl.Crawler
	Categorizer pricecrawl.Categorizer
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB string `help:"Archive database path (overrides PRICECRAWL_DB)"`

	Crawl CrawlCmd `cmd:"" help:"Crawl a website for price information"`
	Runs  RunsCmd  `cmd:"" help:"Inspect archived crawl runs"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	URL        string        `arg:"" help:"Site to crawl"`
	MaxPages   int           `default:"50" help:"Page cap for the crawl"`
	Workers    int           `short:"w" default:"5" help:"Concurrent page fetches"`
	Timeout    time.Duration `default:"5m" help:"Wall-clock budget for the whole crawl"`
	PDFDir     string        `name:"pdf-dir" default:"downloaded_pdfs" help:"Directory downloaded PDFs are saved to"`
	Format     bool          `help:"Clean the excerpts into an itemized price list with Gemini"`
	Categorize bool          `help:"Group the formatted list into categories (implies --format)"`
	Output     string        `short:"o" help:"Write the excerpt corpus to a file instead of stdout"`
}

// RunsCmd groups the archive inspection subcommands.
type RunsCmd struct {
	List   RunsListCmd   `cmd:"" help:"List archived runs"`
	Show   RunsShowCmd   `cmd:"" help:"Show one archived run in detail"`
	Delete RunsDeleteCmd `cmd:"" help:"Delete a run and its excerpts"`
}

// RunsListCmd is the "runs list" subcommand.
type RunsListCmd struct {
	URL    string `help:"Filter by start URL"`
	Status string `help:"Filter by run status"`
	Limit  int    `default:"20" help:"Maximum runs to show"`
	Offset int    `help:"Runs to skip"`
}

// RunsShowCmd is the "runs show" subcommand.
type RunsShowCmd struct {
	ID       string `arg:"" help:"Run ID"`
	Excerpts bool   `help:"Include the stored excerpts"`
}

// RunsDeleteCmd is the "runs delete" subcommand.
type RunsDeleteCmd struct {
	ID    string `arg:"" help:"Run ID"`
	Force bool   `help:"Confirm deletion"`
}
