package spreadsheet

import (
	"bufio"
	"encoding/csv"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/go-faster/errors"
)

// CSVSheetName is the name given to the single sheet of a .csv upload.
const CSVSheetName = "Sheet1"

func openCSV(path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrUnreadable, "open %s: %v", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(stripUTF8BOM(bufio.NewReader(f)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	lines, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(ErrUnreadable, "parse %s: %v", filepath.Base(path), err)
	}
	if len(lines) > 0 {
		for _, h := range lines[0] {
			if !utf8.ValidString(h) {
				return nil, errors.Wrap(ErrUnreadable, "invalid header encoding")
			}
		}
	}
	return &Workbook{Sheets: []*Sheet{buildSheet(CSVSheetName, lines)}}, nil
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}
