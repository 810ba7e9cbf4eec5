// Package export turns tabular report data into downloadable PDF, XLSX and
// CSV documents.
package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/minimarket/minimarket/internal/money"
	"github.com/minimarket/minimarket/internal/platform/httpx"
)

// ErrUnsupportedFormat is returned for an unknown export format.
var ErrUnsupportedFormat = fmt.Errorf("unsupported export format: %w", httpx.ErrValidation)

// CellKind tells sinks how to render a cell.
type CellKind int

const (
	KindText CellKind = iota
	KindNumber
	KindMoney
)

// Cell is one table value. Numeric cells keep their value so spreadsheets get numbers.
type Cell struct {
	Kind  CellKind
	Text  string
	Value decimal.Decimal
}

// Text builds a text cell.
func Text(s string) Cell {
	return Cell{Kind: KindText, Text: s}
}

// Number builds an integer cell.
func Number(n int64) Cell {
	return Cell{Kind: KindNumber, Value: decimal.NewFromInt(n)}
}

// Money builds a monetary cell.
func Money(v decimal.Decimal) Cell {
	return Cell{Kind: KindMoney, Value: money.Round(v)}
}

// Display renders the cell as text for locale.
func (c Cell) Display(locale string) string {
	switch c.Kind {
	case KindNumber:
		return c.Value.String()
	case KindMoney:
		return money.Format(c.Value, locale)
	default:
		return c.Text
	}
}

// SummaryEntry is one key/value pair printed after the table.
type SummaryEntry struct {
	Label string
	Value Cell
}

// Document is the structural content handed to a sink.
type Document struct {
	Title   string
	Headers []string
	Rows    [][]Cell
	Summary []SummaryEntry
}

// Format assembles a document. Row width is not checked against headers.
func Format(title string, headers []string, rows [][]Cell, summary []SummaryEntry) Document {
	doc := Document{
		Title:   title,
		Headers: append([]string(nil), headers...),
		Rows:    make([][]Cell, len(rows)),
		Summary: append([]SummaryEntry(nil), summary...),
	}
	for i, row := range rows {
		doc.Rows[i] = append([]Cell(nil), row...)
	}
	return doc
}

const maxFilenameBase = 50

// Filename sanitises title into a lower-case base of at most 50 characters and appends ext.
func Filename(title, ext string) string {
	var b strings.Builder
	for _, r := range title {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	base := strings.ToLower(b.String())
	if len(base) > maxFilenameBase {
		base = base[:maxFilenameBase]
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// Writer encodes a document into one file format.
type Writer interface {
	ContentType() string
	Extension() string
	Write(ctx context.Context, w io.Writer, doc Document) error
}

// Options are shared by every sink.
type Options struct {
	ThemeColor string
	Locale     string
}

func (o Options) withDefaults() Options {
	if o.ThemeColor == "" {
		o.ThemeColor = "#2563eb"
	}
	if o.Locale == "" {
		o.Locale = "id"
	}
	return o
}

// Sinks selects a writer by format name.
type Sinks struct {
	writers map[string]Writer
}

// NewSinks registers the PDF, XLSX and CSV writers. renderer may be nil, which
// leaves PDF unavailable.
func NewSinks(renderer Renderer, opts Options) *Sinks {
	opts = opts.withDefaults()
	s := &Sinks{writers: map[string]Writer{
		"xlsx": NewXLSXWriter(opts),
		"csv":  NewCSVWriter(opts),
	}}
	if renderer != nil {
		s.writers["pdf"] = NewPDFWriter(renderer, opts)
	}
	return s
}

// For returns the writer for format.
func (s *Sinks) For(format string) (Writer, error) {
	w, ok := s.writers[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return w, nil
}
