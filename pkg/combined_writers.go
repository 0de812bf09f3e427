package pkg

import (
	"io"

	"go.uber.org/multierr"
)

type CombinedWriter struct {
	writers []io.Writer
}

// NewCombinedWriter creates a writer which duplicates its
// writes to all provided writers
func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		writers: writers,
	}
}

func (w *CombinedWriter) Write(p []byte) (int, error) {
	var errs error
	for _, writer := range w.writers {
		if _, err := writer.Write(p); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return len(p), errs
}
