package archive

import (
	"os"
	"path/filepath"
	"testing"
)

// TestStore tests raw page persistence.
func TestStore(t *testing.T) {
	t.Parallel()

	t.Run("writes numbered html file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s := NewStore(dir, "azquotes")

		path, err := s.Save(7, []byte("<html>seven</html>"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path != filepath.Join(dir, "azquotes7.html") {
			t.Errorf("unexpected path %q", path)
		}

		data, err := os.ReadFile(path) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("failed to read: %v", err)
		}
		if string(data) != "<html>seven</html>" {
			t.Errorf("unexpected content %q", data)
		}
	})

	t.Run("distinct sequences never collide", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s := NewStore(dir, "p")

		for seq := 1; seq <= 3; seq++ {
			if _, err := s.Save(seq, []byte{byte('0' + seq)}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("failed to read dir: %v", err)
		}
		if len(entries) != 3 {
			t.Errorf("expected 3 files, got %d", len(entries))
		}
	})

	t.Run("replaces existing file", func(t *testing.T) {
		t.Parallel()

		s := NewStore(t.TempDir(), "p")
		if _, err := s.Save(1, []byte("first version that is longer")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		path, err := s.Save(1, []byte("second"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(path) //nolint:gosec // test file
		if err != nil {
			t.Fatalf("failed to read: %v", err)
		}
		if string(data) != "second" {
			t.Errorf("expected truncated content, got %q", data)
		}
	})

	t.Run("creates missing directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "a", "b")
		s := NewStore(dir, "p")

		if _, err := s.Save(1, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(s.Path(1)); err != nil {
			t.Errorf("expected file to exist: %v", err)
		}
	})

	t.Run("fails when directory is a file", func(t *testing.T) {
		t.Parallel()

		blocker := filepath.Join(t.TempDir(), "blocker")
		if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}

		if _, err := NewStore(blocker, "p").Save(1, []byte("x")); err == nil {
			t.Error("expected error")
		}
	})
}
