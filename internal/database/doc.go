// Package database provides SQLite-based storage for vscan.
//
// This package implements the ScanDB, which stores:
//   - Fetched page records with content and metadata
//   - Scan reports for historical analysis
//
// It also implements the comparison between two scan reports of the
// same host, which the compare command uses to show new and resolved
// findings between deploys.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
