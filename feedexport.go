package yuquemd

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/mmcdole/gofeed"
	"github.com/pevans/yuquemd/yuque"
)

// FetchFeed fetches and parses an RSS or Atom feed from the given URL. The
// gofeed library automatically detects and handles both formats.
func FetchFeed(ctx context.Context, url string) (*gofeed.Feed, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return feed, nil
}

// DocLinks returns the links of feed items that match pattern, in feed
// order and without duplicates. A nil pattern means yuque.DocURLPattern.
func DocLinks(feed *gofeed.Feed, pattern *regexp.Regexp) []string {
	if pattern == nil {
		pattern = yuque.DocURLPattern
	}

	seen := map[string]bool{}
	links := make([]string, 0, len(feed.Items))
	for _, item := range feed.Items {
		// gofeed normalizes <link> (RSS) and <link rel="alternate"> (Atom)
		// to item.Link; fall back to the first of item.Links
		link := item.Link
		if link == "" && len(item.Links) > 0 {
			link = item.Links[0]
		}
		if link == "" || seen[link] || !pattern.MatchString(link) {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}
	return links
}

// FeedItemError describes a feed entry that could not be exported.
type FeedItemError struct {
	URL string
	Err error
}

func (e *FeedItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.URL, e.Err)
}

func (e *FeedItemError) Unwrap() error {
	return e.Err
}

// FeedExportResult contains the documents exported from a feed. Entries
// that failed are collected in Errors rather than stopping the run.
type FeedExportResult struct {
	Feed     *gofeed.Feed
	Exported []*ExportResult
	Errors   []FeedItemError
}

// ExportFeed exports every document linked from the feed at feedURL into
// dir, creating it when missing. Only links matching pattern are followed (nil means
// yuque.DocURLPattern).
func (e *Exporter) ExportFeed(ctx context.Context, feedURL, dir string, pattern *regexp.Regexp) (*FeedExportResult, error) {
	if dir == "" {
		dir = "."
	}
	// dir must be a directory so each document gets its own <title>.md
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	feed, err := FetchFeed(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	result := &FeedExportResult{Feed: feed}
	for _, link := range DocLinks(feed, pattern) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		exported, err := e.Export(ctx, link, dir)
		if err != nil {
			result.Errors = append(result.Errors, FeedItemError{URL: link, Err: err})
			continue
		}
		result.Exported = append(result.Exported, exported)
	}

	return result, nil
}
