package pricecrawl

import "context"

// SitemapService discovers crawlable URLs declared by a site.
type SitemapService interface {
	// DiscoverURLs finds URLs via robots.txt Sitemap directives, falling
	// back to /sitemap.xml, recursing into sitemap indexes. At most limit
	// URLs are returned; a non-positive limit yields none.
	DiscoverURLs(ctx context.Context, baseURL string, limit int) ([]string, error)
}
