package crawler

import (
	"strings"
	"testing"
)

// extract is a helper that runs the full extraction on html.
func extract(t *testing.T, baseURL, html string) *Extraction {
	t.Helper()

	extractor, err := NewExtractor(baseURL)
	if err != nil {
		t.Fatalf("failed to create extractor: %v", err)
	}

	result, err := extractor.Extract(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to extract: %v", err)
	}
	return result
}

// TestExtractLinks tests anchor extraction and resolution.
func TestExtractLinks(t *testing.T) {
	t.Parallel()

	t.Run("resolves relative href against base", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/a/", `<a href="b.html">B</a>`)
		if len(result.Links) != 1 {
			t.Fatalf("expected 1 link, got %d: %v", len(result.Links), result.Links)
		}
		if result.Links[0] != "https://x.com/a/b.html" {
			t.Errorf("expected 'https://x.com/a/b.html', got %q", result.Links[0])
		}
	})

	t.Run("keeps document order and duplicates", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="/one">1</a>
			<a href="http://other.com/two">2</a>
			<a href="/one">1 again</a>
		</body></html>`

		result := extract(t, "https://x.com/page", html)
		want := []string{"https://x.com/one", "http://other.com/two", "https://x.com/one"}
		if len(result.Links) != len(want) {
			t.Fatalf("expected %d links, got %d: %v", len(want), len(result.Links), result.Links)
		}
		for i, link := range want {
			if result.Links[i] != link {
				t.Errorf("link %d: expected %q, got %q", i, link, result.Links[i])
			}
		}
	})

	t.Run("drops non-http schemes", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<a href="mailto:me@x.com">mail</a>
			<a href="javascript:void(0)">js</a>
			<a href="ftp://x.com/file">ftp</a>
			<a href="tel:+123">tel</a>
			<a href="https://x.com/ok">ok</a>
		</body></html>`

		result := extract(t, "https://x.com/", html)
		if len(result.Links) != 1 || result.Links[0] != "https://x.com/ok" {
			t.Errorf("expected only https://x.com/ok, got %v", result.Links)
		}
	})

	t.Run("ignores anchors without href", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/", `<a name="top">Top</a><a id="x">X</a>`)
		if len(result.Links) != 0 {
			t.Errorf("expected no links, got %v", result.Links)
		}
	})

	t.Run("skips unparseable href", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/", `<a href="http://[::1">bad</a><a href="/good">good</a>`)
		if len(result.Links) != 1 || result.Links[0] != "https://x.com/good" {
			t.Errorf("expected only https://x.com/good, got %v", result.Links)
		}
	})

	t.Run("trims whitespace around href", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/", `<a href="  /spaced  ">s</a>`)
		if len(result.Links) != 1 || result.Links[0] != "https://x.com/spaced" {
			t.Errorf("expected https://x.com/spaced, got %v", result.Links)
		}
	})

	t.Run("all links are absolute http or https", func(t *testing.T) {
		t.Parallel()

		html := `<a href="a">a</a><a href="../b">b</a><a href="//cdn.x.com/c">c</a>
			<a href="?q=1">q</a><a href="#frag">f</a><a href="data:text/html,hi">d</a>`

		result := extract(t, "https://x.com/dir/page.html", html)
		for _, link := range result.Links {
			if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
				t.Errorf("expected absolute http(s) link, got %q", link)
			}
		}
		if len(result.Links) != 5 {
			t.Errorf("expected 5 links, got %d: %v", len(result.Links), result.Links)
		}
	})
}

// TestExtractTitle tests title extraction.
func TestExtractTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "trims surrounding whitespace",
			html: `<html><head><title>  Focus Quotes  </title></head></html>`,
			want: "Focus Quotes",
		},
		{
			name: "missing title returns None",
			html: `<html><head></head><body><p>no title</p></body></html>`,
			want: NoTitle,
		},
		{
			name: "first title wins",
			html: `<html><head><title>First</title><title>Second</title></head></html>`,
			want: "First",
		},
		{
			name: "empty title is empty string",
			html: `<html><head><title>   </title></head></html>`,
			want: "",
		},
		{
			name: "entities are decoded",
			html: `<html><head><title>Tom &amp; Jerry</title></head></html>`,
			want: "Tom & Jerry",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := extract(t, "https://x.com/", tt.html)
			if result.Title != tt.want {
				t.Errorf("expected title %q, got %q", tt.want, result.Title)
			}
		})
	}
}

// TestExtractParagraphs tests paragraph extraction.
func TestExtractParagraphs(t *testing.T) {
	t.Parallel()

	t.Run("preserves order and trims", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<p>  first  </p>
			<div><p>
				second <b>bold</b>
			</p></div>
			<p></p>
			<p>third</p>
		</body></html>`

		result := extract(t, "https://x.com/", html)
		want := []string{"first", "second bold", "", "third"}
		if len(result.Paragraphs) != len(want) {
			t.Fatalf("expected %d paragraphs, got %d: %q", len(want), len(result.Paragraphs), result.Paragraphs)
		}
		for i, p := range want {
			if result.Paragraphs[i] != p {
				t.Errorf("paragraph %d: expected %q, got %q", i, p, result.Paragraphs[i])
			}
		}
	})

	t.Run("no paragraphs returns empty slice", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/", `<html><body><div>text</div></body></html>`)
		if result.Paragraphs == nil {
			t.Error("expected non-nil slice")
		}
		if len(result.Paragraphs) != 0 {
			t.Errorf("expected no paragraphs, got %q", result.Paragraphs)
		}
	})
}

// TestExtractImageURLs tests image extraction.
func TestExtractImageURLs(t *testing.T) {
	t.Parallel()

	t.Run("resolves and deduplicates", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
			<img src="/img/a.png">
			<img src="https://x.com/img/a.png">
			<img src="img/b.png">
			<img alt="no src">
		</body></html>`

		result := extract(t, "https://x.com/", html)
		if len(result.ImageURLs) != 2 {
			t.Fatalf("expected 2 images, got %d: %v", len(result.ImageURLs), result.ImageURLs)
		}

		seen := make(map[string]bool)
		for _, img := range result.ImageURLs {
			if seen[img] {
				t.Errorf("duplicate image url %q", img)
			}
			seen[img] = true
		}
		if !seen["https://x.com/img/a.png"] || !seen["https://x.com/img/b.png"] {
			t.Errorf("unexpected images: %v", result.ImageURLs)
		}
	})

	t.Run("excludes data URIs", func(t *testing.T) {
		t.Parallel()

		html := `<img src="data:image/png;base64,iVBORw0KGgo="><img src="http://x.com/real.jpg">`

		result := extract(t, "https://x.com/", html)
		if len(result.ImageURLs) != 1 || result.ImageURLs[0] != "http://x.com/real.jpg" {
			t.Errorf("expected only http://x.com/real.jpg, got %v", result.ImageURLs)
		}
	})
}

// TestExtractorErrorCases tests degenerate inputs.
func TestExtractorErrorCases(t *testing.T) {
	t.Parallel()

	t.Run("invalid base URL", func(t *testing.T) {
		t.Parallel()

		_, err := NewExtractor("http://[::1")
		if err == nil {
			t.Error("expected error for invalid base URL")
		}
	})

	t.Run("malformed HTML degrades gracefully", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title>Broken</title><body><p>unclosed<p>second<a href="/x">x`

		result := extract(t, "https://x.com/", html)
		if result.Title != "Broken" {
			t.Errorf("expected title 'Broken', got %q", result.Title)
		}
		if len(result.Paragraphs) != 2 {
			t.Errorf("expected 2 paragraphs, got %q", result.Paragraphs)
		}
		if len(result.Links) != 1 {
			t.Errorf("expected 1 link, got %v", result.Links)
		}
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()

		result := extract(t, "https://x.com/", "")
		if result.Title != NoTitle {
			t.Errorf("expected %q, got %q", NoTitle, result.Title)
		}
		if len(result.Links) != 0 || len(result.Paragraphs) != 0 || len(result.ImageURLs) != 0 {
			t.Errorf("expected empty extraction, got %+v", result)
		}
	})
}
