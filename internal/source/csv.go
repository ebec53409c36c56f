package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

const utf8BOM = "\ufeff"

func loadCSV(path string) *File {
	out := &File{Path: path}

	f, err := os.Open(path)
	if err != nil {
		out.Err = fmt.Errorf("%w: %v", ErrUnreadable, err)
		return out
	}
	defer f.Close()

	rows, err := readCSV(f)
	out.Rows = rows
	out.Err = err
	return out
}

// readCSV maps each data row onto the cleaned header names.
func readCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrUnsupportedShape)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrUnreadable, err)
	}

	headers := cleanHeaders(header)
	if err := requireColumns(headers); err != nil {
		return nil, err
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			rows = append(rows, Row{
				Line: parseErr.StartLine,
				Err:  fmt.Errorf("%w: %v", ErrMalformedRow, parseErr.Err),
			})
			continue
		}
		if err != nil {
			return rows, fmt.Errorf("%w: %v", ErrUnreadable, err)
		}

		line, _ := reader.FieldPos(0)
		fields := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" || i >= len(record) {
				continue
			}
			fields[h] = record[i]
		}
		rows = append(rows, Row{Line: line, Fields: fields})
	}
}

// cleanHeaders trims whitespace, stray quotes and a leading byte order mark.
func cleanHeaders(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		h = strings.ReplaceAll(h, `"`, "")
		out[i] = h
	}
	return out
}

func requireColumns(headers []string) error {
	seen := make(map[string]bool, len(headers))
	for _, h := range headers {
		seen[h] = true
	}
	for _, col := range []string{ColumnProductName, ColumnTimestamp} {
		if !seen[col] {
			return fmt.Errorf("%w: missing column %q", ErrUnsupportedShape, col)
		}
	}
	return nil
}
