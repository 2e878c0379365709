// Package main provides the entry point for the vscan CLI.
//
// vscan fetches URLs and inspects the HTTP responses for verbose error
// pages: stack traces, database error fragments, framework debug pages,
// and other internals that servers leak when error handling is
// misconfigured.
//
// Usage:
//
//	vscan scan <url>...
//	vscan compare <url>
//
// See --help for all available options.
package main

// main is the entry point for vscan.
func main() {
	Execute()
}
