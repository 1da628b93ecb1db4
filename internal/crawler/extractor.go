package crawler

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// NoTitle is returned by ExtractTitle when a document has no <title> element.
const NoTitle = "None"

// Extractor pulls links, title, paragraphs and image URLs out of an HTML page.
//
// Design decision: We query the document with goquery rather than walking
// golang.org/x/net/html nodes by hand because:
//  1. CSS selectors like "a[href]" state exactly which elements count
//  2. goquery sits on top of x/net/html, so malformed markup degrades the
//     same way browsers do
//  3. Text() already concatenates descendant text nodes
type Extractor struct {
	// baseURL is the URL the page was fetched from, used to resolve
	// relative hrefs and srcs.
	baseURL *url.URL
}

// Extraction holds everything the Extractor found on one page.
type Extraction struct {
	// Links are absolute http(s) anchor targets in document order.
	// Duplicates are kept.
	Links []string

	// Title is the trimmed text of the first <title>, or NoTitle.
	Title string

	// Paragraphs is the trimmed text of every <p> in document order.
	Paragraphs []string

	// ImageURLs are the unique absolute http(s) image sources.
	ImageURLs []string
}

// NewExtractor creates an Extractor that resolves against baseURL.
func NewExtractor(baseURL string) (*Extractor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Extractor{baseURL: u}, nil
}

// Extract parses content once and runs every extraction on the result.
func (e *Extractor) Extract(content io.Reader) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(content)
	if err != nil {
		return nil, err
	}

	return &Extraction{
		Links:      e.ExtractLinks(doc),
		Title:      ExtractTitle(doc),
		Paragraphs: ExtractParagraphs(doc),
		ImageURLs:  e.ExtractImageURLs(doc),
	}, nil
}

// ExtractLinks returns the absolute http(s) URL of every anchor with an
// href attribute, in document order.
func (e *Extractor) ExtractLinks(doc *goquery.Document) []string {
	links := make([]string, 0)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if resolved, ok := e.resolve(href); ok {
			links = append(links, resolved)
		}
	})
	return links
}

// ExtractImageURLs returns the absolute http(s) URL of every image with a
// src attribute. Each URL appears once.
func (e *Extractor) ExtractImageURLs(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	images := make([]string, 0)
	doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		resolved, ok := e.resolve(src)
		if !ok || seen[resolved] {
			return
		}
		seen[resolved] = true
		images = append(images, resolved)
	})
	return images
}

// ExtractTitle returns the trimmed text of the first <title> element.
func ExtractTitle(doc *goquery.Document) string {
	title := doc.Find("title").First()
	if title.Length() == 0 {
		return NoTitle
	}
	return strings.TrimSpace(title.Text())
}

// ExtractParagraphs returns the trimmed text of every <p> element.
// Empty paragraphs produce empty strings.
func ExtractParagraphs(doc *goquery.Document) []string {
	paragraphs := make([]string, 0)
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		paragraphs = append(paragraphs, strings.TrimSpace(s.Text()))
	})
	return paragraphs
}

// resolve turns ref into an absolute URL and reports whether it uses the
// http or https scheme. Refs that fail to parse are rejected.
func (e *Extractor) resolve(ref string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", false
	}

	resolved := e.baseURL.ResolveReference(u)
	if !isHTTPScheme(resolved.Scheme) {
		return "", false
	}
	return resolved.String(), true
}

// isHTTPScheme reports whether scheme is http or https.
func isHTTPScheme(scheme string) bool {
	return scheme == "http" || scheme == "https"
}
