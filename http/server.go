package http

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pricecrawl/pricecrawl"
)

// Version reported by the health and banner endpoints.
const Version = "1.0.0"

// Scrape endpoint limits. Callers may ask for more; the effective values
// are capped to keep a single request from monopolizing the service.
const (
	DefaultMaxPages   = 50
	DefaultMaxWorkers = 5

	requestPageLimit   = 200
	requestWorkerLimit = 10
	hardPageCap        = 100
	hardWorkerCap      = 5

	DefaultCrawlBudget = 5 * time.Minute
	DefaultAIBudget    = 2 * time.Minute
)

// Server exposes the crawler over HTTP.
type Server struct {
	mux *http.ServeMux

	crawler     pricecrawl.CrawlService
	categorizer pricecrawl.Categorizer
	runs        pricecrawl.RunService
	excerpts    pricecrawl.ExcerptService

	crawlBudget time.Duration
	aiBudget    time.Duration
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithCategorizer enables the LLM post-processing step.
func WithCategorizer(c pricecrawl.Categorizer) ServerOption {
	return func(s *Server) {
		s.categorizer = c
	}
}

// WithArchive enables persisting runs and their excerpts.
func WithArchive(runs pricecrawl.RunService, excerpts pricecrawl.ExcerptService) ServerOption {
	return func(s *Server) {
		s.runs = runs
		s.excerpts = excerpts
	}
}

// WithCrawlBudget sets the wall-clock budget for one crawl.
func WithCrawlBudget(d time.Duration) ServerOption {
	return func(s *Server) {
		s.crawlBudget = d
	}
}

// WithAIBudget sets the wall-clock budget for LLM post-processing.
func WithAIBudget(d time.Duration) ServerOption {
	return func(s *Server) {
		s.aiBudget = d
	}
}

// NewServer wires handlers onto an HTTP mux.
func NewServer(crawler pricecrawl.CrawlService, opts ...ServerOption) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		crawler:     crawler,
		crawlBudget: DefaultCrawlBudget,
		aiBudget:    DefaultAIBudget,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP satisfies the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handleRoot)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/scrape", s.handleScrape)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, http.MethodGet, http.MethodHead)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":   "pricecrawl",
		"message":   "price crawler API is running",
		"status":    "healthy",
		"version":   Version,
		"endpoints": []string{"/", "/scrape", "/health"},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		methodNotAllowed(w, http.MethodGet, http.MethodHead)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "healthy",
		"timestamp":          time.Now().UTC().Format(time.RFC3339),
		"version":            Version,
		"ai_configured":      s.categorizer != nil,
		"archive_configured": s.runs != nil,
	})
}

type scrapeRequest struct {
	URL        string `json:"url"`
	MaxPages   *int   `json:"max_pages"`
	MaxWorkers *int   `json:"max_workers"`
	Categorize bool   `json:"categorize"`
}

type scrapeStats struct {
	TotalPagesScraped int      `json:"total_pages_scraped"`
	PagesWithPrices   int      `json:"pages_with_prices"`
	UniquePricesFound int      `json:"unique_prices_found"`
	PDFsDownloaded    int      `json:"pdfs_downloaded"`
	FormattedItems    int      `json:"formatted_items_count,omitempty"`
	SamplePrices      []string `json:"sample_prices,omitempty"`
	Suggestions       []string `json:"suggestions,omitempty"`
}

type aiStats struct {
	Provider       string  `json:"provider"`
	ItemsProcessed int     `json:"items_processed"`
	ProcessingTime float64 `json:"processing_time"`
}

type perfStats struct {
	TotalTime   float64 `json:"total_time"`
	ScrapeTime  float64 `json:"scrape_time"`
	ExcerptTime float64 `json:"excerpt_time"`
	WorkersUsed int     `json:"workers_used"`
}

type scrapeData struct {
	ScrapeResults scrapeStats `json:"scrape_results"`
	AIProcessing  *aiStats    `json:"ai_processing,omitempty"`
	Performance   *perfStats  `json:"performance,omitempty"`
}

type scrapeResponse struct {
	Success         bool                `json:"success"`
	Message         string              `json:"message"`
	RunID           string              `json:"run_id,omitempty"`
	Data            *scrapeData         `json:"data,omitempty"`
	FormattedPrices string              `json:"formatted_prices,omitempty"`
	Categories      map[string][]string `json:"categories,omitempty"`
	ProcessingTime  float64             `json:"processing_time"`
}

// emptySuggestions is returned when a crawl produced nothing usable, so
// callers get guidance instead of a bare failure.
var emptySuggestions = []string{
	"Try a different URL or website",
	"Check for 'General Price List' or 'GPL' links",
	"The website may require JavaScript or block automated access",
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if u, err := url.Parse(req.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		writeError(w, http.StatusBadRequest, "url must start with http:// or https://")
		return
	}
	maxPages := DefaultMaxPages
	if req.MaxPages != nil {
		maxPages = *req.MaxPages
	}
	if maxPages < 1 || maxPages > requestPageLimit {
		writeError(w, http.StatusBadRequest, "max_pages must be between 1 and 200")
		return
	}
	maxWorkers := DefaultMaxWorkers
	if req.MaxWorkers != nil {
		maxWorkers = *req.MaxWorkers
	}
	if maxWorkers < 1 || maxWorkers > requestWorkerLimit {
		writeError(w, http.StatusBadRequest, "max_workers must be between 1 and 10")
		return
	}
	pages := min(maxPages, hardPageCap)
	workers := min(maxWorkers, hardWorkerCap)

	start := time.Now()
	result, err := s.crawler.Crawl(r.Context(), req.URL, pricecrawl.CrawlOptions{
		MaxPages: pages,
		Workers:  workers,
		Budget:   s.crawlBudget,
	})
	if err != nil {
		writeJSON(w, http.StatusOK, scrapeResponse{
			Success: false,
			Message: "Could not crawl the website: " + pricecrawl.ErrorMessage(err),
			Data: &scrapeData{ScrapeResults: scrapeStats{
				Suggestions: emptySuggestions,
			}},
			ProcessingTime: round2(time.Since(start).Seconds()),
		})
		return
	}
	scrapeElapsed := time.Since(start)

	excerpts := pricecrawl.AssembleExcerpts(result)
	if (len(result.AllPrices) == 0 && len(result.PDFs) == 0) || len(excerpts) == 0 {
		writeJSON(w, http.StatusOK, scrapeResponse{
			Success: false,
			Message: "No pricing information found on the website.",
			Data: &scrapeData{ScrapeResults: scrapeStats{
				TotalPagesScraped: result.TotalPages,
				Suggestions:       emptySuggestions,
			}},
			ProcessingTime: round2(time.Since(start).Seconds()),
		})
		return
	}
	excerptElapsed := time.Since(start) - scrapeElapsed

	corpus := pricecrawl.FormatCorpus(req.URL, time.Now(), excerpts)

	var (
		formatted  string
		categories map[string][]string
		ai         *aiStats
	)
	if s.categorizer != nil {
		aiStart := time.Now()
		aiCtx, cancel := context.WithTimeout(r.Context(), s.aiBudget)
		defer cancel()

		formatted, err = s.categorizer.FormatPriceList(aiCtx, corpus)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "AI processing error: "+pricecrawl.ErrorMessage(err))
			return
		}
		if req.Categorize {
			// Categorization is an extra; losing it does not fail the
			// request.
			categories, _ = s.categorizer.Categorize(aiCtx, formatted)
		}
		ai = &aiStats{
			Provider:       "Google Gemini",
			ItemsProcessed: countFormattedItems(formatted),
			ProcessingTime: round2(time.Since(aiStart).Seconds()),
		}
	}

	runID := s.archive(r, result, excerpts, pages, workers, formatted)

	sample := result.UniquePrices()
	if len(sample) > 20 {
		sample = sample[:20]
	}
	total := time.Since(start)
	writeJSON(w, http.StatusOK, scrapeResponse{
		Success: true,
		Message: formatSuccessMessage(countFormattedItems(formatted), len(excerpts), total),
		RunID:   runID,
		Data: &scrapeData{
			ScrapeResults: scrapeStats{
				TotalPagesScraped: result.TotalPages,
				PagesWithPrices:   result.PricedPageCount(),
				UniquePricesFound: len(result.UniquePrices()),
				PDFsDownloaded:    len(result.PDFs),
				FormattedItems:    countFormattedItems(formatted),
				SamplePrices:      sample,
			},
			AIProcessing: ai,
			Performance: &perfStats{
				TotalTime:   round2(total.Seconds()),
				ScrapeTime:  round2(scrapeElapsed.Seconds()),
				ExcerptTime: round2(excerptElapsed.Seconds()),
				WorkersUsed: workers,
			},
		},
		FormattedPrices: formatted,
		Categories:      categories,
		ProcessingTime:  round2(total.Seconds()),
	})
}

// archive persists the run and its excerpts when an archive is configured.
// Archival is best effort; a storage failure never fails the request.
func (s *Server) archive(r *http.Request, result *pricecrawl.CrawlResult, excerpts []*pricecrawl.PriceExcerpt, pages, workers int, formatted string) string {
	if s.runs == nil {
		return ""
	}
	run := &pricecrawl.CrawlRun{
		StartURL:        result.StartURL,
		PageCap:         pages,
		Workers:         workers,
		Status:          pricecrawl.RunCompleted,
		TotalPages:      result.TotalPages,
		PricedPages:     result.PricedPageCount(),
		PricesFound:     len(result.UniquePrices()),
		PDFsStored:      len(result.PDFs),
		ExcerptCount:    len(excerpts),
		FormattedPrices: formatted,
		FinishedAt:      time.Now(),
	}
	if err := s.runs.CreateRun(r.Context(), run); err != nil {
		return ""
	}
	if s.excerpts != nil {
		_ = s.excerpts.CreateExcerpts(r.Context(), run.ID, excerpts)
	}
	return run.ID
}

// countFormattedItems counts usable "Name: $Price" lines in the LLM output.
func countFormattedItems(formatted string) int {
	n := 0
	for _, line := range strings.Split(formatted, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && strings.Contains(line, ":") && strings.Contains(line, "$") {
			n++
		}
	}
	return n
}

func formatSuccessMessage(items, excerpts int, elapsed time.Duration) string {
	if items > 0 {
		return fmt.Sprintf("Successfully processed %d items in %.2f seconds", items, elapsed.Seconds())
	}
	return fmt.Sprintf("Extracted %d price excerpts in %.2f seconds", excerpts, elapsed.Seconds())
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
