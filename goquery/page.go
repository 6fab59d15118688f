// Package goquery extracts titles, visible text, and links from HTML pages
// using the goquery library.
package goquery

import (
	"bytes"
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pricecrawl/pricecrawl"
)

// Ensure Parser implements pricecrawl.PageParser.
var _ pricecrawl.PageParser = (*Parser)(nil)

// Parser turns raw HTML into flattened page content. It keeps the whole
// visible text of the page: price lines often live in navigation, footers,
// and tables that boilerplate removers would discard.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Parse extracts title, text, and link targets from an HTML document.
// Malformed markup is tolerated; only unreadable input fails.
func (p *Parser) Parse(ctx context.Context, baseURL string, rawHTML []byte) (*pricecrawl.PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rawHTML))
	if err != nil {
		return nil, pricecrawl.Errorf(pricecrawl.EINTERNAL, "parse page %s: %v", baseURL, err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, pricecrawl.Errorf(pricecrawl.EINVALID, "invalid base URL %q", baseURL)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = "No title"
	}

	doc.Find("script, style, meta, link").Remove()

	var links, pdfLinks []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		link, ok := resolveURL(base, href)
		if !ok {
			return
		}
		links = append(links, link)
		if strings.HasSuffix(strings.ToLower(link), ".pdf") {
			pdfLinks = append(pdfLinks, link)
		}
	})

	return &pricecrawl.PageContent{
		Title:    title,
		Text:     flattenText(doc),
		Links:    links,
		PDFLinks: pdfLinks,
	}, nil
}

// flattenText joins text nodes with single spaces so values split by tag
// boundaries (table cells, spans) stay separated words, then collapses
// whitespace runs.
func flattenText(doc *goquery.Document) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Selection.Nodes {
		walk(n)
	}
	return whitespaceRun.ReplaceAllString(strings.Join(parts, " "), " ")
}

// resolveURL makes href absolute against base. Fragments are dropped;
// non-HTTP schemes and unparsable references resolve to nothing.
func resolveURL(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || isNonHTTPLink(href) {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	abs.Fragment = ""
	return abs.String(), true
}

func isNonHTTPLink(href string) bool {
	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:", "ftp:"} {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
