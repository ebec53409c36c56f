// Package source discovers and parses input files into raw field rows.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Column names every input must provide.
const (
	ColumnProductName = "productName"
	ColumnTimestamp   = "timestamp"
)

var (
	// ErrUnreadable means the file could not be opened or read to the end.
	ErrUnreadable = errors.New("file unreadable")
	// ErrUnsupportedShape means the file lacks the required columns or is not a JSON array.
	ErrUnsupportedShape = errors.New("unsupported file shape")
	// ErrMalformedRow means a single row could not be split into fields.
	ErrMalformedRow = errors.New("malformed row")
)

// Row is one data row in file order.
type Row struct {
	// Line is the CSV line number, or the 1-based array index for JSON.
	Line   int
	Fields map[string]string
	// Err is set when the row itself could not be parsed.
	Err error
}

// File is a parsed input file.
// When Err wraps ErrUnreadable and Rows is non-empty, Rows holds what was read
// before the failure.
type File struct {
	Path string
	Rows []Row
	Err  error
}

// Partial reports whether the file was cut short after some rows were read.
func (f *File) Partial() bool {
	return errors.Is(f.Err, ErrUnreadable) && len(f.Rows) > 0
}

// Discover lists the .csv and .json files directly under dir, sorted by name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir %s: %w", dir, err)
	}

	// os.ReadDir returns entries sorted by filename
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".json":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}

// Load parses one file by extension. Problems are reported in File.Err.
func Load(path string) *File {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return loadCSV(path)
	case ".json":
		return loadJSON(path)
	default:
		return &File{Path: path, Err: fmt.Errorf("%w: unknown extension", ErrUnsupportedShape)}
	}
}

// LoadAll parses files with at most workers in flight.
// The result keeps the order of paths. Only context cancellation returns an error.
func LoadAll(ctx context.Context, paths []string, workers int) ([]*File, error) {
	if workers <= 0 {
		workers = 1
	}

	files := make([]*File, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			files[i] = Load(path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
