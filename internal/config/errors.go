package config

import "errors"

var (
	// ErrNoTarget is returned when no scan target is specified.
	ErrNoTarget = errors.New("no target specified: provide at least one URL to scan")

	// ErrInvalidTimeout is returned when the timeout value is invalid.
	ErrInvalidTimeout = errors.New("timeout must be greater than 0")

	// ErrInvalidBatchSize is returned when the batch size is invalid.
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")

	// ErrInvalidFormat is returned when the report format is not one of
	// simple, json or markdown.
	ErrInvalidFormat = errors.New("invalid report format: must be simple, json or markdown")

	// ErrInvalidCrawlDelay is returned when the crawl delay is negative.
	ErrInvalidCrawlDelay = errors.New("crawl delay must be non-negative")

	// ErrInvalidCrawlDepth is returned when the crawl depth is negative.
	ErrInvalidCrawlDepth = errors.New("crawl depth must be non-negative")

	// ErrInvalidMaxPages is returned when the max pages value is negative.
	ErrInvalidMaxPages = errors.New("max pages must be non-negative")

	// ErrInvalidMaxRedirects is returned when the max redirects value is negative.
	ErrInvalidMaxRedirects = errors.New("max redirects must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("max body size must be non-negative")
)
