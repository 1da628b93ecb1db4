// Package main provides the entry point for the pagecrawl CLI.
//
// pagecrawl is a sequential web crawler. It follows links depth-first from
// one or more seed pages, saves every fetched page as raw HTML and writes
// the extracted title, paragraphs and image URLs to JSON batch files.
//
// Usage:
//
//	pagecrawl crawl [seed-url...]
//	pagecrawl history [run-id]
//
// See --help for all available options.
package main

// main is the entry point for pagecrawl.
func main() {
	Execute()
}
