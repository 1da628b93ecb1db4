package crawler

import "testing"

// TestFrontier tests the LIFO stack behavior.
func TestFrontier(t *testing.T) {
	t.Parallel()

	t.Run("pops most recent first", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier()
		f.Push("a")
		f.Push("b")
		f.Push("c")

		for _, want := range []string{"c", "b", "a"} {
			got, ok := f.Pop()
			if !ok {
				t.Fatalf("expected %q, got empty frontier", want)
			}
			if got != want {
				t.Errorf("expected %q, got %q", want, got)
			}
		}

		if !f.IsEmpty() {
			t.Error("expected frontier to be empty")
		}
	})

	t.Run("pop on empty frontier", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier()
		url, ok := f.Pop()
		if ok {
			t.Error("expected ok to be false")
		}
		if url != "" {
			t.Errorf("expected empty url, got %q", url)
		}
	})

	t.Run("push if absent", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier()
		if !f.PushIfAbsent("a") {
			t.Error("expected first push to succeed")
		}
		if f.PushIfAbsent("a") {
			t.Error("expected duplicate push to be rejected")
		}
		if f.Len() != 1 {
			t.Errorf("expected length 1, got %d", f.Len())
		}

		f.Pop()
		if !f.PushIfAbsent("a") {
			t.Error("expected push to succeed after pop")
		}
	})

	t.Run("duplicate seeds are tracked", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier()
		f.Push("a")
		f.Push("a")

		f.Pop()
		if !f.Contains("a") {
			t.Error("expected second copy to remain")
		}
		f.Pop()
		if f.Contains("a") {
			t.Error("expected no copies to remain")
		}
	})

	t.Run("items is a copy", func(t *testing.T) {
		t.Parallel()

		f := NewFrontier()
		f.Push("a")
		f.Push("b")

		items := f.Items()
		if len(items) != 2 || items[0] != "a" || items[1] != "b" {
			t.Fatalf("expected [a b], got %v", items)
		}

		items[0] = "changed"
		if f.Items()[0] != "a" {
			t.Error("expected frontier to be unaffected by caller changes")
		}
	})
}
