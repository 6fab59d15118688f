package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/pricecrawl/pricecrawl"
	"github.com/pricecrawl/pricecrawl/crawl"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	deps.Crawler.Progress = renderProgress(deps.Stdout, deps.Stderr)

	result, err := deps.Crawler.Crawl(deps.Ctx, c.URL, pricecrawl.CrawlOptions{
		MaxPages: c.MaxPages,
		Workers:  c.Workers,
		Budget:   c.Timeout,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricecrawl.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Crawled %d pages: %d with prices, %d unique prices\n",
		result.TotalPages, result.PricedPageCount(), len(result.UniquePrices()))
	if len(result.PDFs) > 0 {
		var size int
		for _, doc := range result.PDFs {
			size += doc.Size
		}
		fmt.Fprintf(deps.Stdout, "Saved %d PDFs (%s) to %s\n",
			len(result.PDFs), crawl.FormatBytes(size), c.PDFDir)
	}

	excerpts := pricecrawl.AssembleExcerpts(result)
	if len(excerpts) == 0 {
		fmt.Fprintln(deps.Stdout, "No pricing information found.")
		return nil
	}

	corpus := pricecrawl.FormatCorpus(c.URL, time.Now(), excerpts)

	if c.Output != "" {
		if err := os.WriteFile(c.Output, []byte(corpus), 0644); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
		fmt.Fprintf(deps.Stdout, "Wrote %d excerpts to %s\n", len(excerpts), c.Output)
	}

	var formatted string
	if (c.Format || c.Categorize) && deps.Categorizer != nil {
		formatted, err = deps.Categorizer.FormatPriceList(deps.Ctx, corpus)
		if err != nil {
			// The raw corpus is still useful when the model is down.
			fmt.Fprintf(deps.Stderr, "warning: price list formatting failed: %s\n", pricecrawl.ErrorMessage(err))
			formatted = ""
		}
	}

	switch {
	case formatted != "":
		fmt.Fprintf(deps.Stdout, "\nFormatted price list:\n%s\n", formatted)
		if c.Categorize {
			categories, err := deps.Categorizer.Categorize(deps.Ctx, formatted)
			if err != nil {
				fmt.Fprintf(deps.Stderr, "warning: categorization failed: %s\n", pricecrawl.ErrorMessage(err))
			} else {
				printCategories(deps.Stdout, categories)
			}
		}
	case c.Output == "":
		fmt.Fprint(deps.Stdout, corpus)
	}

	if runID := c.archive(deps, result, excerpts, formatted); runID != "" {
		fmt.Fprintf(deps.Stdout, "\nArchived run %s\n", runID)
	}

	return nil
}

// archive persists the run; a storage failure costs the archive entry, not
// the crawl output.
func (c *CrawlCmd) archive(deps *Dependencies, result *pricecrawl.CrawlResult, excerpts []*pricecrawl.PriceExcerpt, formatted string) string {
	run := &pricecrawl.CrawlRun{
		StartURL:        c.URL,
		PageCap:         c.MaxPages,
		Workers:         c.Workers,
		Status:          pricecrawl.RunCompleted,
		TotalPages:      result.TotalPages,
		PricedPages:     result.PricedPageCount(),
		PricesFound:     len(result.UniquePrices()),
		PDFsStored:      len(result.PDFs),
		ExcerptCount:    len(excerpts),
		FormattedPrices: formatted,
		FinishedAt:      time.Now(),
	}
	if err := deps.Runs.CreateRun(deps.Ctx, run); err != nil {
		fmt.Fprintf(deps.Stderr, "warning: could not archive run: %s\n", pricecrawl.ErrorMessage(err))
		return ""
	}
	if err := deps.Excerpts.CreateExcerpts(deps.Ctx, run.ID, excerpts); err != nil {
		fmt.Fprintf(deps.Stderr, "warning: could not archive excerpts: %s\n", pricecrawl.ErrorMessage(err))
	}
	return run.ID
}

// renderProgress returns a ProgressFunc that renders crawl events as console
// lines. Failures go to stderr so a piped corpus stays clean.
func renderProgress(stdout, stderr io.Writer) crawl.ProgressFunc {
	return func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			fmt.Fprintf(stdout, "Crawling %s (up to %d pages)\n", event.URL, event.Total)
		case crawl.ProgressPriced:
			fmt.Fprintf(stdout, "  [%d/%d] %s: %d prices\n",
				event.Completed, event.Total, crawl.TruncateURL(event.URL, 60), event.Prices)
		case crawl.ProgressFailed:
			fmt.Fprintf(stderr, "  skip %s: %v\n", crawl.TruncateURL(event.URL, 60), event.Error)
		case crawl.ProgressPDF:
			fmt.Fprintf(stdout, "  pdf %s: %d prices\n", crawl.TruncateURL(event.URL, 60), event.Prices)
		}
	}
}

// printCategories prints the grouped listing. Map order is random, so the
// categories print sorted with "Other Services" last, the order the model
// is asked for.
func printCategories(w io.Writer, categories map[string][]string) {
	names := make([]string, 0, len(categories))
	for name := range categories {
		if name != "Other Services" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := categories["Other Services"]; ok {
		names = append(names, "Other Services")
	}

	for _, name := range names {
		fmt.Fprintf(w, "\n%s:\n", name)
		for _, item := range categories[name] {
			fmt.Fprintf(w, "  %s\n", item)
		}
	}
}
