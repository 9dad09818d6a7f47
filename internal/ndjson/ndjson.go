// Package ndjson reads and writes line-delimited JSON files.
//
// Reads skip blank lines and tolerate very long lines (a single DOM snapshot
// record can run to several megabytes). Writes are staged in a temporary file
// and renamed into place on Close so a failed run never leaves a partially
// written output behind.
package ndjson

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// maxLineSize bounds a single input line.
const maxLineSize = 64 * 1024 * 1024

// LineFunc is called for each non-blank line. lineNum is 1-based and counts
// all physical lines, including blank ones.
type LineFunc func(lineNum int, raw string) error

// ScanFile opens path and calls fn for every non-blank line.
func ScanFile(path string, fn LineFunc) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return Scan(f, fn)
}

// Scan reads non-blank lines from r and passes them to fn.
func Scan(r io.Reader, fn LineFunc) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(lineNum, line); err != nil {
			return err
		}
	}

	return scanner.Err()
}

// Writer writes records as compact JSON, one per line.
type Writer struct {
	path string
	tmp  *os.File
	gz   *gzip.Writer
	buf  *bufio.Writer
	done bool
}

// NewWriter creates a writer staging output for path. When compress is true
// the stream is gzipped; callers are expected to have given path a .gz suffix.
func NewWriter(path string, compress bool) (*Writer, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("staging output file: %w", err)
	}

	w := &Writer{path: path, tmp: tmp}
	if compress {
		w.gz = gzip.NewWriter(tmp)
		w.buf = bufio.NewWriter(w.gz)
	} else {
		w.buf = bufio.NewWriter(tmp)
	}
	return w, nil
}

// Write appends one record as a compact JSON line.
func (w *Writer) Write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	if _, err := w.buf.Write(data); err != nil {
		return err
	}
	return w.buf.WriteByte('\n')
}

// Close flushes the stream and renames the staged file into place.
func (w *Writer) Close() error {
	if w.done {
		return nil
	}
	w.done = true

	if err := w.buf.Flush(); err != nil {
		w.cleanup()
		return err
	}
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			w.cleanup()
			return err
		}
	}
	if err := w.tmp.Close(); err != nil {
		w.remove()
		return err
	}
	if err := os.Rename(w.tmp.Name(), w.path); err != nil {
		w.remove()
		return fmt.Errorf("replacing output file: %w", err)
	}
	return nil
}

// Discard abandons the staged file. Safe to call after Close.
func (w *Writer) Discard() {
	if w.done {
		return
	}
	w.done = true
	w.cleanup()
}

func (w *Writer) cleanup() {
	w.tmp.Close()
	w.remove()
}

func (w *Writer) remove() {
	os.Remove(w.tmp.Name())
}
