package driven

import "context"

// LinkScraper extracts links from a web page.
type LinkScraper interface {
	// FindLinks returns the href of every anchor on pageURL that starts with prefix,
	// in document order.
	FindLinks(ctx context.Context, pageURL, prefix string) ([]string, error)
}

// Downloader fetches a URL into a local file.
type Downloader interface {
	// Download replaces targetPath with the body served at url.
	Download(ctx context.Context, url, targetPath string) error
}
