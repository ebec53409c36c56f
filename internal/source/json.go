package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

func loadJSON(path string) *File {
	out := &File{Path: path}

	f, err := os.Open(path)
	if err != nil {
		out.Err = fmt.Errorf("%w: %v", ErrUnreadable, err)
		return out
	}
	defer f.Close()

	rows, err := readJSON(f)
	out.Rows = rows
	out.Err = err
	return out
}

// readJSON streams a top-level array of objects.
// Numbers keep their textual form so decimals parse exactly downstream.
func readJSON(r io.Reader) ([]Row, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty file", ErrUnsupportedShape)
	}
	if err != nil {
		return nil, classifyJSONError(err, "read array start")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("%w: top-level value is not an array", ErrUnsupportedShape)
	}

	var rows []Row
	for index := 1; dec.More(); index++ {
		var item any
		if err := dec.Decode(&item); err != nil {
			return rows, classifyJSONError(err, fmt.Sprintf("element %d", index))
		}

		obj, ok := item.(map[string]any)
		if !ok {
			rows = append(rows, Row{
				Line: index,
				Err:  fmt.Errorf("%w: element is not an object", ErrMalformedRow),
			})
			continue
		}

		fields := make(map[string]string, len(obj))
		for k, v := range obj {
			fields[k] = stringify(v)
		}
		rows = append(rows, Row{Line: index, Fields: fields})
	}

	if _, err := dec.Token(); err != nil {
		return rows, classifyJSONError(err, "read array end")
	}
	return rows, nil
}

func classifyJSONError(err error, what string) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: %s: %v", ErrUnsupportedShape, what, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrUnreadable, what, err)
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
