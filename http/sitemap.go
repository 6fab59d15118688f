package http

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/pricecrawl/pricecrawl"
)

// DefaultSitemapTimeout bounds each sitemap-related request.
const DefaultSitemapTimeout = 10 * time.Second

// SitemapService discovers page URLs advertised by a site's sitemap. It
// follows robots.txt declarations first and falls back to the
// conventional /sitemap.xml location, descending into sitemap indexes as
// needed.
type SitemapService struct {
	client *http.Client
}

var _ pricecrawl.SitemapService = (*SitemapService)(nil)

// SitemapOption configures a SitemapService.
type SitemapOption func(*SitemapService)

// WithSitemapTimeout sets the per-request timeout.
func WithSitemapTimeout(d time.Duration) SitemapOption {
	return func(s *SitemapService) {
		s.client.Timeout = d
	}
}

// NewSitemapService returns a SitemapService with default settings.
func NewSitemapService(opts ...SitemapOption) *SitemapService {
	s := &SitemapService{
		client: &http.Client{Timeout: DefaultSitemapTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DiscoverURLs returns up to limit page URLs from the sitemaps of the
// site hosting baseURL. A site without any sitemap yields an empty slice
// and no error; seeding is best effort.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, pricecrawl.Errorf(pricecrawl.EINVALID, "invalid base URL %q", baseURL)
	}
	root := base.Scheme + "://" + base.Host

	sitemaps, err := s.findSitemapURLs(ctx, root)
	if err != nil {
		return nil, err
	}

	var urls []string
	seen := make(map[string]bool)
	for _, sm := range sitemaps {
		urls = s.processSitemap(ctx, sm, urls, limit, seen)
		if len(urls) >= limit {
			break
		}
	}
	return urls, nil
}

// findSitemapURLs locates sitemap documents for the site root, preferring
// robots.txt declarations over the conventional default path.
func (s *SitemapService) findSitemapURLs(ctx context.Context, root string) ([]string, error) {
	robots, err := s.fetchURL(ctx, root+"/robots.txt")
	if err == nil {
		if sitemaps := parseSitemapsFromRobots(robots); len(sitemaps) > 0 {
			return sitemaps, nil
		}
	}

	fallback := root + "/sitemap.xml"
	if s.urlExists(ctx, fallback) {
		return []string{fallback}, nil
	}
	return nil, nil
}

// parseSitemapsFromRobots extracts Sitemap declarations from a robots.txt
// body. The directive is case-insensitive per the robots convention.
func parseSitemapsFromRobots(body []byte) []string {
	var sitemaps []string
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			if sm := strings.TrimSpace(line[len("sitemap:"):]); sm != "" {
				sitemaps = append(sitemaps, sm)
			}
		}
	}
	return sitemaps
}

// processSitemap appends page URLs from one sitemap document to urls,
// recursing into sitemap indexes. seen guards against index cycles.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, urls []string, limit int, seen map[string]bool) []string {
	if len(urls) >= limit || seen[sitemapURL] {
		return urls
	}
	seen[sitemapURL] = true

	body, err := s.fetchURL(ctx, sitemapURL)
	if err != nil {
		return urls
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return urls
	}
	root := doc.Root()
	if root == nil {
		return urls
	}

	if root.Tag == "sitemapindex" {
		for _, sm := range root.SelectElements("sitemap") {
			loc := sm.SelectElement("loc")
			if loc == nil {
				continue
			}
			urls = s.processSitemap(ctx, strings.TrimSpace(loc.Text()), urls, limit, seen)
			if len(urls) >= limit {
				break
			}
		}
		return urls
	}

	for _, entry := range root.SelectElements("url") {
		loc := entry.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			urls = append(urls, u)
			if len(urls) >= limit {
				break
			}
		}
	}
	return urls
}

func (s *SitemapService) fetchURL(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgents[0])

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, u)
	}
	return io.ReadAll(io.LimitReader(resp.Body, DefaultBodyLimit))
}

func (s *SitemapService) urlExists(ctx context.Context, u string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", UserAgents[0])

	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
