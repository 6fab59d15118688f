package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/pricecrawl/pricecrawl"
)

// Run executes the runs show command.
func (c *RunsShowCmd) Run(deps *Dependencies) error {
	run, err := deps.Runs.FindRunByID(deps.Ctx, c.ID)
	if err != nil {
		if pricecrawl.ErrorCode(err) == pricecrawl.ENOTFOUND {
			fmt.Fprintf(deps.Stderr, "error: run %q not found. Use 'pricecrawl runs list' to see archived runs.\n", c.ID)
			return err
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricecrawl.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Run %s\n", run.ID)
	fmt.Fprintf(deps.Stdout, "  URL:       %s\n", run.StartURL)
	fmt.Fprintf(deps.Stdout, "  Status:    %s\n", run.Status)
	fmt.Fprintf(deps.Stdout, "  Started:   %s\n", run.CreatedAt.Format(time.RFC3339))
	if !run.FinishedAt.IsZero() {
		fmt.Fprintf(deps.Stdout, "  Finished:  %s\n", run.FinishedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(deps.Stdout, "  Pages:     %d crawled, %d with prices (cap %d, %d workers)\n",
		run.TotalPages, run.PricedPages, run.PageCap, run.Workers)
	fmt.Fprintf(deps.Stdout, "  Prices:    %d unique\n", run.PricesFound)
	fmt.Fprintf(deps.Stdout, "  PDFs:      %d stored\n", run.PDFsStored)
	fmt.Fprintf(deps.Stdout, "  Excerpts:  %d\n", run.ExcerptCount)

	if run.FormattedPrices != "" {
		fmt.Fprintf(deps.Stdout, "\nFormatted price list:\n%s\n", run.FormattedPrices)
	}

	if c.Excerpts {
		excerpts, err := deps.Excerpts.FindExcerptsByRun(deps.Ctx, run.ID)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", pricecrawl.ErrorMessage(err))
			return err
		}
		for i, e := range excerpts {
			fmt.Fprintf(deps.Stdout, "\n[%d] %s (%s)\n%s\n", i+1, e.Source, e.Kind, e.Text)
			if len(e.Prices) > 0 {
				fmt.Fprintf(deps.Stdout, "Prices: %s\n", strings.Join(e.Prices, ", "))
			}
		}
	}

	return nil
}
