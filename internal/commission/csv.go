package commission

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var ErrEmptyFile = errors.New("empty or malformed file")

// ColumnsError reports the required concepts no header could be resolved for.
type ColumnsError struct {
	Concepts []string
}

func (e *ColumnsError) Error() string {
	return "columns not identified: " + strings.Join(e.Concepts, ", ")
}

type Field struct {
	Header string
	Value  string
}

// Row keeps the header order of the source sheet.
type Row []Field

func (r Row) Get(header string) string {
	for _, f := range r {
		if f.Header == header {
			return f.Value
		}
	}
	return ""
}

func (r Row) Headers() []string {
	out := make([]string, len(r))
	for i, f := range r {
		out[i] = f.Header
	}
	return out
}

func newRow(headers, values []string) Row {
	row := make(Row, len(headers))
	for i, h := range headers {
		v := ""
		if i < len(values) {
			v = strings.TrimSpace(values[i])
		}
		row[i] = Field{Header: h, Value: v}
	}
	return row
}

// ParseCSV reads comma separated text with a header line. Double quotes toggle
// quoting so commas inside quotes stay in the field; there is no quote escaping
// beyond that.
func ParseCSV(text string) ([]Row, error) {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyFile
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) < 2 {
		return nil, ErrEmptyFile
	}

	headers := strings.Split(lines[0], ",")
	for i, h := range headers {
		h = strings.TrimSpace(h)
		h = strings.TrimPrefix(h, `"`)
		h = strings.TrimSuffix(h, `"`)
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, newRow(headers, splitCSVLine(line)))
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

func splitCSVLine(line string) []string {
	var (
		out      []string
		current  strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			out = append(out, current.String())
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	return append(out, current.String())
}

// ParseXLSX reads the first sheet of a workbook into rows keyed by its header line.
func ParseXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptyFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(cells) < 2 {
		return nil, ErrEmptyFile
	}

	headers := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(cells)-1)
	for _, values := range cells[1:] {
		if blank(values) {
			continue
		}
		rows = append(rows, newRow(headers, values))
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

func blank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ParseFile picks the reader by file extension; anything that is not a workbook
// is treated as CSV text.
func ParseFile(name string, content []byte) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return ParseXLSX(bytes.NewReader(content))
	default:
		return ParseCSV(string(content))
	}
}
