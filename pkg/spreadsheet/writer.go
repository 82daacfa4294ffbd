package spreadsheet

import (
	"bytes"
	"io"

	"github.com/go-faster/errors"
	"github.com/xuri/excelize/v2"
)

// SheetData describes one output sheet. Preamble lines are written above
// the header, one per row, in the first column.
type SheetData struct {
	Name     string
	Preamble []string
	Header   []string
	Rows     [][]string
}

type Writer struct {
	file   *excelize.File
	sheets int
	bold   int
}

func NewWriter() *Writer {
	return &Writer{file: excelize.NewFile(), bold: -1}
}

func (w *Writer) AddSheet(data SheetData) error {
	if data.Name == "" {
		return errors.New("sheet name is required")
	}
	if w.sheets == 0 {
		if err := w.file.SetSheetName(w.file.GetSheetName(0), data.Name); err != nil {
			return errors.Wrap(err, "rename default sheet")
		}
	} else {
		if _, err := w.file.NewSheet(data.Name); err != nil {
			return errors.Wrapf(err, "new sheet %q", data.Name)
		}
	}
	w.sheets++

	line := 1
	for _, text := range data.Preamble {
		if err := w.setRow(data.Name, line, []string{text}); err != nil {
			return err
		}
		line++
	}
	if len(data.Preamble) > 0 {
		line++
	}

	if len(data.Header) > 0 {
		if err := w.setRow(data.Name, line, data.Header); err != nil {
			return err
		}
		if err := w.boldRow(data.Name, line); err != nil {
			return err
		}
		line++
	}
	for _, values := range data.Rows {
		if err := w.setRow(data.Name, line, values); err != nil {
			return err
		}
		line++
	}
	return nil
}

func (w *Writer) setRow(sheet string, line int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return errors.Wrap(err, "cell name")
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := w.file.SetSheetRow(sheet, cell, &row); err != nil {
		return errors.Wrapf(err, "write %s row %d", sheet, line)
	}
	return nil
}

func (w *Writer) boldRow(sheet string, line int) error {
	if w.bold < 0 {
		style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return errors.Wrap(err, "header style")
		}
		w.bold = style
	}
	return w.file.SetRowStyle(sheet, line, line, w.bold)
}

func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	return w.file.WriteTo(out)
}

// Bytes renders the workbook as .xlsx content.
func (w *Writer) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "render workbook")
	}
	return buf.Bytes(), nil
}

func (w *Writer) SaveAs(path string) error {
	return w.file.SaveAs(path)
}

func (w *Writer) Close() error {
	return w.file.Close()
}
