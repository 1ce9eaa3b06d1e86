// Package writer serializes record sets into the flat files read by the
// PoE-ItemInfo AutoHotkey script, or into JSON Lines.
package writer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/encoding"

	"poewiki/internal/model"
)

type Writer interface {
	Write(rs model.RecordSet) error
}

// LineFormatter turns a record set into output lines, without line endings.
type LineFormatter interface {
	Lines(rs model.RecordSet) ([]string, error)
}

// FileWriter overwrites Path with the header followed by one line per
// formatted record. Every line ends with "\n".
//
// The whole file is built and encoded in memory before anything touches the
// disk, so a formatting or encoding error leaves the previous file in place.
type FileWriter struct {
	Path   string
	Header func(now time.Time) []string
	Lines  LineFormatter
	// Encoding of the file; nil writes UTF-8.
	Encoding encoding.Encoding
	Now      func() time.Time
}

func (w *FileWriter) Write(rs model.RecordSet) error {
	lines, err := w.Lines.Lines(rs)
	if err != nil {
		return fmt.Errorf("format %s: %w", w.Path, err)
	}

	var buf bytes.Buffer
	if w.Header != nil {
		for _, l := range w.Header(w.now()) {
			buf.WriteString(l)
			buf.WriteByte('\n')
		}
	}
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}

	data := buf.Bytes()
	if w.Encoding != nil {
		data, err = w.Encoding.NewEncoder().Bytes(data)
		if err != nil {
			return fmt.Errorf("encode %s: %w", w.Path, err)
		}
	}

	if dir := filepath.Dir(w.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(w.Path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", w.Path, err)
	}
	return nil
}

func (w *FileWriter) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}
