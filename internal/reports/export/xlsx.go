package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Report"

// XLSXWriter writes a single-sheet workbook: title row, header row, data rows
// and a summary block two rows below the table.
type XLSXWriter struct {
	opts Options
}

// NewXLSXWriter builds a spreadsheet sink.
func NewXLSXWriter(opts Options) *XLSXWriter {
	return &XLSXWriter{opts: opts.withDefaults()}
}

func (x *XLSXWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (x *XLSXWriter) Extension() string { return "xlsx" }

// Write encodes doc as an XLSX workbook.
func (x *XLSXWriter) Write(_ context.Context, w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}
	styles, err := x.styles(f)
	if err != nil {
		return err
	}

	if err := setCell(f, 1, 1, doc.Title, styles.title); err != nil {
		return err
	}
	for i, h := range doc.Headers {
		if err := setCell(f, i+1, 3, h, styles.header); err != nil {
			return err
		}
	}
	row := 4
	for _, cells := range doc.Rows {
		for i, cell := range cells {
			if err := x.setValue(f, i+1, row, cell, styles); err != nil {
				return err
			}
		}
		row++
	}
	if len(doc.Summary) > 0 {
		row++
		for _, entry := range doc.Summary {
			if err := setCell(f, 1, row, entry.Label, styles.header); err != nil {
				return err
			}
			if err := x.setValue(f, 2, row, entry.Value, styles); err != nil {
				return err
			}
			row++
		}
	}
	if n := len(doc.Headers); n > 0 {
		last, _ := excelize.ColumnNumberToName(n)
		if err := f.SetColWidth(sheetName, "A", last, 20); err != nil {
			return err
		}
	}
	return f.Write(w)
}

type sheetStyles struct {
	title  int
	header int
	money  int
}

func (x *XLSXWriter) styles(f *excelize.File) (sheetStyles, error) {
	var s sheetStyles
	var err error
	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{x.opts.ThemeColor}},
	}); err != nil {
		return s, err
	}
	if s.money, err = f.NewStyle(&excelize.Style{NumFmt: 4}); err != nil {
		return s, err
	}
	return s, nil
}

func (x *XLSXWriter) setValue(f *excelize.File, col, row int, cell Cell, styles sheetStyles) error {
	switch cell.Kind {
	case KindNumber:
		return setCell(f, col, row, cell.Value.IntPart(), 0)
	case KindMoney:
		return setCell(f, col, row, cell.Value.InexactFloat64(), styles.money)
	default:
		return setCell(f, col, row, cell.Text, 0)
	}
}

func setCell(f *excelize.File, col, row int, value any, style int) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("xlsx cell %d,%d: %w", col, row, err)
	}
	if err := f.SetCellValue(sheetName, name, value); err != nil {
		return err
	}
	if style == 0 {
		return nil
	}
	return f.SetCellStyle(sheetName, name, name, style)
}
