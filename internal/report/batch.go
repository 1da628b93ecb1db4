package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/pagecrawl/internal/model"
)

// BatchIndent is the indentation used inside batch files.
const BatchIndent = "    "

// BatchFileWriter writes batches of page records as JSON array files
// named <prefix><seq>.json inside dir.
//
// Design decision: Records are written with HTML escaping disabled so that
// paragraph text containing <, > or & stays readable in the files.
type BatchFileWriter struct {
	dir    string
	prefix string
}

// NewBatchFileWriter creates a BatchFileWriter for dir and prefix.
func NewBatchFileWriter(dir, prefix string) *BatchFileWriter {
	return &BatchFileWriter{dir: dir, prefix: prefix}
}

// Path returns the file path used for batch seq.
func (w *BatchFileWriter) Path(seq int) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s%d.json", w.prefix, seq))
}

// Flush writes records to the file for seq, replacing any existing file.
func (w *BatchFileWriter) Flush(records []model.PageResult, seq int) (string, error) {
	if err := os.MkdirAll(w.dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := w.Path(seq)
	f, err := os.Create(path) //nolint:gosec // path is built from configured dir and prefix
	if err != nil {
		return "", fmt.Errorf("failed to create batch file: %w", err)
	}

	if err := encodeBatch(f, records); err != nil {
		_ = f.Close() //nolint:errcheck // already returning the encode error
		return "", fmt.Errorf("failed to write batch file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close batch file %s: %w", path, err)
	}
	return path, nil
}

// encodeBatch writes records as an indented JSON array.
func encodeBatch(w io.Writer, records []model.PageResult) error {
	if records == nil {
		records = []model.PageResult{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", BatchIndent)
	enc.SetEscapeHTML(false)
	return enc.Encode(records)
}
