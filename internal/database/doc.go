// Package database provides SQLite-based crawl history for pagecrawl.
//
// This package implements the CrawlDB, which stores:
//   - One row per crawl run with its seeds and final statistics
//   - One row per visited page with its extracted data and output files
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode lets `pagecrawl history` read while a crawl is writing
package database
