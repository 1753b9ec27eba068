package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jszwec/csvutil"
	"tweetcsv/pkg/record"
)

// FileSuffix is appended to the hashtag to name the output file.
const FileSuffix = "-tweets.csv"

// FileName returns the output file name for a hashtag, without its leading '#'.
func FileName(hashtag string) string {
	return strings.TrimPrefix(hashtag, "#") + FileSuffix
}

// CSVWriter appends records to <dir>/<hashtag>-tweets.csv. The file is opened
// in append mode for every record and closed again, so each row is on disk
// before the next one is fetched.
type CSVWriter struct {
	path string
	mu   sync.Mutex
}

// NewCSVWriter creates the output directory if needed. The file itself is
// created on the first Append.
func NewCSVWriter(dir, hashtag string) (*CSVWriter, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &CSVWriter{path: filepath.Join(dir, FileName(hashtag))}, nil
}

// Path returns the output file path
func (w *CSVWriter) Path() string {
	return w.path
}

// Append writes one row. No header is ever written.
func (w *CSVWriter) Append(rec record.Record) (err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	enc := csvutil.NewEncoder(&rowWriter{w: f})
	enc.AutoHeader = false
	if err := enc.Encode(rec); err != nil {
		return fmt.Errorf("failed to write record %s: %w", rec.ID, err)
	}
	return nil
}

// rowWriter writes comma-separated rows ending in '\n'. A field is quoted
// only when it contains the delimiter, a quote or a line break; leading
// spaces are written as-is.
type rowWriter struct {
	w io.Writer
}

func (rw *rowWriter) Write(fields []string) error {
	var b strings.Builder
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		if strings.ContainsAny(field, ",\"\r\n") {
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(field, `"`, `""`))
			b.WriteByte('"')
			continue
		}
		b.WriteString(field)
	}
	b.WriteByte('\n')
	_, err := io.WriteString(rw.w, b.String())
	return err
}

// Rows counts the rows already in the file. A missing file has zero rows.
func (w *CSVWriter) Rows() (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := 0
	err := readFile(w.path, func(record.Record) { n++ })
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	return n, err
}

// ReadAll decodes every row of an output file.
func ReadAll(path string) ([]record.Record, error) {
	var recs []record.Record
	err := readFile(path, func(r record.Record) { recs = append(recs, r) })
	return recs, err
}

func readFile(path string, fn func(record.Record)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec, err := csvutil.NewDecoder(csv.NewReader(f), record.Header()...)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	for {
		var rec record.Record
		if err := dec.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to decode %s: %w", path, err)
		}
		fn(rec)
	}
}
