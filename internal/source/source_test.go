package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDiscover_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "")
	writeFile(t, dir, "a.JSON", "")
	writeFile(t, dir, "notes.txt", "")
	writeFile(t, dir, "c.csv", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "d.csv"), 0o755))

	paths, err := Discover(dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.JSON"),
		filepath.Join(dir, "b.csv"),
		filepath.Join(dir, "c.csv"),
	}, paths)
}

func TestDiscover_MissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantErr   error
		wantRows  int
		wantFirst map[string]string
		wantLine  int
	}{
		{
			name:      "basic rows",
			input:     "productName,timestamp,quantity\nR32,2024-01-03,10\nR46,2024-01-04,2\n",
			wantRows:  2,
			wantFirst: map[string]string{"productName": "R32", "timestamp": "2024-01-03", "quantity": "10"},
			wantLine:  2,
		},
		{
			name:      "bom and quoted header",
			input:     "\ufeff\"productName\", \"timestamp\"\nR68,2024-02-01T00:00:00Z\n",
			wantRows:  1,
			wantFirst: map[string]string{"productName": "R68", "timestamp": "2024-02-01T00:00:00Z"},
			wantLine:  2,
		},
		{
			name:      "short row keeps present fields",
			input:     "productName,timestamp,custPlace\n\nR32\n",
			wantRows:  1,
			wantFirst: map[string]string{"productName": "R32"},
			wantLine:  3,
		},
		{
			name:    "missing timestamp column",
			input:   "productName,date\nR32,2024-01-03\n",
			wantErr: ErrUnsupportedShape,
		},
		{
			name:    "empty file",
			input:   "",
			wantErr: ErrUnsupportedShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := readCSV(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, rows, tt.wantRows)
			require.Equal(t, tt.wantFirst, rows[0].Fields)
			require.Equal(t, tt.wantLine, rows[0].Line)
		})
	}
}

func TestReadCSV_ReadFailureKeepsRowsReadSoFar(t *testing.T) {
	r := io.MultiReader(
		strings.NewReader("productName,timestamp\nR32,2024-01-03\nR46,2024-01-04\n"),
		iotest.ErrReader(errors.New("disk gone")),
	)

	rows, err := readCSV(r)
	require.ErrorIs(t, err, ErrUnreadable)
	require.Len(t, rows, 2)

	f := &File{Rows: rows, Err: err}
	require.True(t, f.Partial())
}

func TestReadJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantErr  error
		wantRows []Row
	}{
		{
			name:  "array of objects",
			input: `[{"productName":"R32","timestamp":"2024-01-03","quantity":10.50,"salesAmount":null,"flag":true}]`,
			wantRows: []Row{{Line: 1, Fields: map[string]string{
				"productName": "R32",
				"timestamp":   "2024-01-03",
				"quantity":    "10.50",
				"salesAmount": "",
				"flag":        "true",
			}}},
		},
		{
			name:  "non object element",
			input: `[{"productName":"R32"}, 42]`,
			wantRows: []Row{
				{Line: 1, Fields: map[string]string{"productName": "R32"}},
				{Line: 2, Err: ErrMalformedRow},
			},
		},
		{
			name:    "top-level object",
			input:   `{"productName":"R32"}`,
			wantErr: ErrUnsupportedShape,
		},
		{
			name:    "empty file",
			input:   ``,
			wantErr: ErrUnsupportedShape,
		},
		{
			name:    "syntax error",
			input:   `[{"productName": }]`,
			wantErr: ErrUnsupportedShape,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := readJSON(strings.NewReader(tt.input))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, rows, len(tt.wantRows))
			for i, want := range tt.wantRows {
				require.Equal(t, want.Line, rows[i].Line)
				require.Equal(t, want.Fields, rows[i].Fields)
				if want.Err != nil {
					require.ErrorIs(t, rows[i].Err, want.Err)
				}
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	f := Load(writeFile(t, dir, "a.csv", "productName,timestamp\nR32,2024-01-03\n"))
	require.NoError(t, f.Err)
	require.Len(t, f.Rows, 1)

	f = Load(filepath.Join(dir, "missing.csv"))
	require.ErrorIs(t, f.Err, ErrUnreadable)
	require.False(t, f.Partial())

	f = Load(writeFile(t, dir, "a.txt", "x"))
	require.ErrorIs(t, f.Err, ErrUnsupportedShape)
}

func TestLoadAll_KeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.csv", "b.json", "c.csv", "d.csv"} {
		body := "productName,timestamp\nR32,2024-01-03\n"
		if strings.HasSuffix(name, ".json") {
			body = `[{"productName":"R32","timestamp":"2024-01-03"}]`
		}
		paths = append(paths, writeFile(t, dir, name, body))
	}

	files, err := LoadAll(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, files, len(paths))
	for i, f := range files {
		require.Equal(t, paths[i], f.Path)
		require.NoError(t, f.Err)
		require.Len(t, f.Rows, 1)
	}
}

func TestLoadAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadAll(ctx, []string{"a.csv"}, 1)
	require.ErrorIs(t, err, context.Canceled)
}
