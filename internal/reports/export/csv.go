package export

import (
	"context"
	"encoding/csv"
	"io"
)

// CSVWriter emits the table followed by a blank line and the summary rows.
type CSVWriter struct {
	opts Options
}

// NewCSVWriter builds a CSV sink.
func NewCSVWriter(opts Options) *CSVWriter {
	return &CSVWriter{opts: opts.withDefaults()}
}

func (c *CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

func (c *CSVWriter) Extension() string { return "csv" }

// Write serialises doc. Numbers are written plain so spreadsheets can parse them.
func (c *CSVWriter) Write(_ context.Context, w io.Writer, doc Document) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(doc.Headers); err != nil {
		return err
	}
	for _, row := range doc.Rows {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = plain(cell)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	if len(doc.Summary) > 0 {
		if err := writer.Write([]string{}); err != nil {
			return err
		}
		for _, entry := range doc.Summary {
			if err := writer.Write([]string{entry.Label, plain(entry.Value)}); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func plain(cell Cell) string {
	switch cell.Kind {
	case KindNumber:
		return cell.Value.String()
	case KindMoney:
		return cell.Value.StringFixed(2)
	default:
		return cell.Text
	}
}
