package spreadsheet

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeZip  = "application/zip"
	mimeCSV  = "text/csv"
	mimeText = "text/plain"
)

// ErrUnreadable is returned for files that are not a readable .xlsx or .csv.
var ErrUnreadable = errors.New("spreadsheet: unreadable file")

// Row is one data line of a sheet. Line is the 1-based line number in the
// source file; Values are aligned with Sheet.Header.
type Row struct {
	Line   int
	Values []string
}

type Sheet struct {
	Name   string
	Header []string
	Rows   []Row
}

// Value returns the cell of row under header column i, or "" when the row is short.
func (r Row) Value(i int) string {
	if i < 0 || i >= len(r.Values) {
		return ""
	}
	return r.Values[i]
}

type Workbook struct {
	Sheets []*Sheet
}

// Lookup finds a sheet by name: exact match first, then case-insensitive.
func (w *Workbook) Lookup(name string) (*Sheet, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	for _, s := range w.Sheets {
		if strings.EqualFold(strings.TrimSpace(s.Name), strings.TrimSpace(name)) {
			return s, true
		}
	}
	return nil, false
}

func (w *Workbook) At(i int) (*Sheet, bool) {
	if i < 0 || i >= len(w.Sheets) {
		return nil, false
	}
	return w.Sheets[i], true
}

func (w *Workbook) SheetNames() []string {
	names := make([]string, 0, len(w.Sheets))
	for _, s := range w.Sheets {
		names = append(names, s.Name)
	}
	return names
}

// Open reads a whole .xlsx or .csv file into memory. The format is sniffed
// from content, the extension only disambiguates plain text.
func Open(path string) (*Workbook, error) {
	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrUnreadable, "detect %s: %v", filepath.Base(path), err)
	}
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case mime.Is(mimeXLSX), mime.Is(mimeZip) && ext == ".xlsx":
		return openXLSX(path)
	case mime.Is(mimeCSV), mime.Is(mimeText) && ext == ".csv":
		return openCSV(path)
	default:
		return nil, errors.Wrapf(ErrUnreadable, "unsupported content type %s", mime.String())
	}
}

func openXLSX(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrUnreadable, "open %s: %v", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, errors.Wrapf(ErrUnreadable, "read sheet %q: %v", name, err)
		}
		wb.Sheets = append(wb.Sheets, buildSheet(name, rows))
	}
	return wb, nil
}

// buildSheet treats the first line as the header and drops blank lines.
func buildSheet(name string, lines [][]string) *Sheet {
	s := &Sheet{Name: name}
	if len(lines) == 0 {
		return s
	}
	s.Header = make([]string, len(lines[0]))
	for i, h := range lines[0] {
		s.Header[i] = strings.TrimSpace(h)
	}
	for i, values := range lines[1:] {
		if isBlank(values) {
			continue
		}
		s.Rows = append(s.Rows, Row{Line: i + 2, Values: values})
	}
	return s
}

func isBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
