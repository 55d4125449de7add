// Package output provides adapters for writing application output.
package output

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/MyCarrier-DevOps/resolve-git-ref/internal/domain"
)

// Writer writes resolutions to the configured output destination.
// By default, it writes to stdout.
type Writer struct {
	out io.Writer
}

// NewWriter creates a new Writer that writes to stdout.
func NewWriter() *Writer {
	return &Writer{out: os.Stdout}
}

// NewWriterWithOutput creates a new Writer with a custom output destination.
// This is useful for testing.
func NewWriterWithOutput(out io.Writer) *Writer {
	return &Writer{out: out}
}

// WriteResolution writes the resolution as a single-line JSON object,
// the same body the HTTP handler returns.
func (w *Writer) WriteResolution(res *domain.Resolution) error {
	if res == nil {
		return errors.New("nil resolution")
	}
	return json.NewEncoder(w.out).Encode(res)
}
