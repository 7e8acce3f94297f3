// Package web fetches landing pages and downloadable files over HTTP.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/custodia-labs/ocm-extractor/internal/core/ports/driven"
)

// UserAgent is sent with every request. Some data portals reject clients
// without a browser-like agent.
const UserAgent = "Mozilla/5.0"

// DefaultTimeout bounds a single page fetch.
const DefaultTimeout = 30 * time.Second

// maxPageSize caps how much of a landing page is parsed.
const maxPageSize = 10 << 20

var _ driven.LinkScraper = (*LinkScraper)(nil)

// LinkScraper finds anchors on HTML pages.
type LinkScraper struct {
	client *http.Client
}

// NewLinkScraper creates a scraper. A nil client uses one with DefaultTimeout.
func NewLinkScraper(client *http.Client) *LinkScraper {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &LinkScraper{client: client}
}

// FindLinks returns the href of every anchor on pageURL that starts with
// prefix, in document order.
func (s *LinkScraper) FindLinks(ctx context.Context, pageURL, prefix string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	return anchorsWithPrefix(doc, prefix), nil
}

func anchorsWithPrefix(doc *html.Node, prefix string) []string {
	var links []string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" && strings.HasPrefix(href, prefix) {
				links = append(links, href)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return links
}

func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// StatusError reports a non-200 response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}
