// Package model defines the core data structures used throughout pagecrawl.
//
// This package contains the following main types:
//   - PageResult: The per-page record written to JSON batch files
//   - VisitedPage: The entry kept in the crawler's visited map
//   - CrawlStats: Counters describing a finished (or interrupted) crawl
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The crawler, report and database packages all use these
// types, so centralizing them prevents import cycles.
package model
