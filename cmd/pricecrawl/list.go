package main

import (
	"fmt"

	"github.com/pricecrawl/pricecrawl"
)

// Run executes the runs list command.
func (c *RunsListCmd) Run(deps *Dependencies) error {
	filter := pricecrawl.CrawlRunFilter{Limit: c.Limit, Offset: c.Offset}
	if c.URL != "" {
		filter.StartURL = &c.URL
	}
	if c.Status != "" {
		filter.Status = &c.Status
	}

	runs, total, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pricecrawl.ErrorMessage(err))
		return err
	}

	if total == 0 {
		fmt.Fprintln(deps.Stdout, "No runs archived. Use 'pricecrawl crawl' to create one.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %-9s  %3d pages  %3d prices  %s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Status, r.TotalPages, r.PricesFound, r.StartURL)
	}
	if len(runs) < total {
		fmt.Fprintf(deps.Stdout, "Showing %d of %d runs.\n", len(runs), total)
	}

	return nil
}
