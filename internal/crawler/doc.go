// Package crawler provides breadth-first web crawling for scan targets.
//
// # Architecture
//
// The crawler package is designed around the Spider type, which coordinates
// the crawling process. It uses a work queue to manage URLs to visit and
// respects depth limits and politeness settings. Fetching itself is
// delegated to the client package so that crawled pages carry the same
// headers, size caps and proxy routing as single-page scans.
//
// Design decision: We implement our own crawler rather than using a
// third-party library because:
//  1. The crawl is deliberately small (shallow depth, low page caps)
//  2. We need tight control over request timing to avoid overwhelming targets
//  3. Only same-host links matter; full-web crawling features are dead weight
//  4. Reduces external dependencies and potential security issues
//
// # Components
//
//   - Spider: The main crawler that coordinates the crawling process
//   - Parser: HTML parser that extracts the page title and links
//
// # Politeness
//
// The crawler is designed to be polite:
//   - Delays between requests (configurable)
//   - Stays on the target host
//   - Respects max depth and max page settings
//   - Glob ignore/follow patterns keep it away from logout and admin paths
//
// # Usage
//
//	spider := crawler.NewSpider(fetchClient, crawler.WithMaxDepth(3))
//	pages, err := spider.Crawl(ctx, "https://staging.example.com")
package crawler
