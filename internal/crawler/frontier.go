package crawler

// Frontier is the stack of URLs waiting to be fetched.
// The most recently pushed URL is popped first, which gives the crawl a
// depth-first bias.
//
// Design decision: We keep a membership count next to the slice so that
// Contains stays O(1) on large frontiers. A count rather than a bool is
// needed because Seed may push the same URL more than once.
type Frontier struct {
	items   []string
	pending map[string]int
}

// NewFrontier creates an empty Frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		items:   make([]string, 0),
		pending: make(map[string]int),
	}
}

// Push adds url to the top of the stack.
func (f *Frontier) Push(url string) {
	f.items = append(f.items, url)
	f.pending[url]++
}

// PushIfAbsent adds url only when it is not already waiting.
// It reports whether url was pushed.
func (f *Frontier) PushIfAbsent(url string) bool {
	if f.Contains(url) {
		return false
	}
	f.Push(url)
	return true
}

// Pop removes and returns the most recently pushed URL.
// The boolean is false when the frontier is empty.
func (f *Frontier) Pop() (string, bool) {
	if len(f.items) == 0 {
		return "", false
	}

	last := len(f.items) - 1
	url := f.items[last]
	f.items = f.items[:last]

	f.pending[url]--
	if f.pending[url] <= 0 {
		delete(f.pending, url)
	}
	return url, true
}

// Contains reports whether url is waiting in the frontier.
func (f *Frontier) Contains(url string) bool {
	return f.pending[url] > 0
}

// Len returns the number of entries, duplicates included.
func (f *Frontier) Len() int {
	return len(f.items)
}

// IsEmpty reports whether nothing is left to fetch.
func (f *Frontier) IsEmpty() bool {
	return len(f.items) == 0
}

// Items returns a copy of the pending URLs from bottom to top.
func (f *Frontier) Items() []string {
	items := make([]string, len(f.items))
	copy(items, f.items)
	return items
}
