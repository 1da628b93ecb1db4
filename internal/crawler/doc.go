// Package crawler provides the sequential web crawl loop of pagecrawl.
//
// # Architecture
//
// The package is built around the Crawler type, which owns all crawl state:
// a Frontier (a stack of pending URLs), the visited map, the batch of page
// records not yet written and the completed-page counter. There is no
// global state; two Crawlers never share anything.
//
// # Components
//
//   - Crawler: pops URLs, fetches them and applies the effects of a visit
//   - Frontier: LIFO stack of pending URLs with O(1) membership checks
//   - Extractor: goquery-based extraction of links, title, paragraphs and images
//
// # Page states
//
// Every URL popped from the frontier ends in one of three states:
//   - visited: HTTP 200, the page is archived, recorded and batched
//   - failed: transport error, logged, not marked visited
//   - dropped: any other status code, discarded silently
//
// Failed and dropped URLs may be pushed again if another page links to them.
// Links are compared by exact string; no URL normalization is applied.
//
// # Usage
//
//	c := crawler.New(client, archive, batches, crawler.WithBatchSize(100))
//	c.Seed("https://example.com/")
//	stats, err := c.Run(ctx)
package crawler
