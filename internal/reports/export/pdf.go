package export

import (
	"context"
	"fmt"
	"html"
	"io"
	"strings"
)

// Renderer converts HTML into PDF bytes.
type Renderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// PDFWriter renders documents as HTML and hands them to a Renderer.
type PDFWriter struct {
	renderer Renderer
	opts     Options
}

// NewPDFWriter builds a PDF sink.
func NewPDFWriter(renderer Renderer, opts Options) *PDFWriter {
	return &PDFWriter{renderer: renderer, opts: opts.withDefaults()}
}

func (p *PDFWriter) ContentType() string { return "application/pdf" }

func (p *PDFWriter) Extension() string { return "pdf" }

// Write renders doc and copies the PDF into w.
func (p *PDFWriter) Write(ctx context.Context, w io.Writer, doc Document) error {
	if p == nil || p.renderer == nil {
		return fmt.Errorf("pdf renderer not initialised")
	}
	pdf, err := p.renderer.RenderHTML(ctx, p.HTML(doc))
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	_, err = w.Write(pdf)
	return err
}

// HTML builds the page sent to the renderer.
func (p *PDFWriter) HTML(doc Document) string {
	color := html.EscapeString(p.opts.ThemeColor)
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><style>")
	b.WriteString("body{font-family:sans-serif;margin:24px;}h1{font-size:20px;}table{width:100%;border-collapse:collapse;margin-bottom:16px;}th,td{border:1px solid #ddd;padding:6px;}td.num{text-align:right;}")
	fmt.Fprintf(&b, "th{background:%s;color:#fff;text-align:left;}", color)
	b.WriteString("</style></head><body>")
	fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(doc.Title))

	b.WriteString("<table><thead><tr>")
	for _, h := range doc.Headers {
		fmt.Fprintf(&b, "<th>%s</th>", html.EscapeString(h))
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range doc.Rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			writeCell(&b, cell, p.opts.Locale)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table>")

	if len(doc.Summary) > 0 {
		b.WriteString("<table class=\"summary\"><tbody>")
		for _, entry := range doc.Summary {
			fmt.Fprintf(&b, "<tr><th>%s</th>", html.EscapeString(entry.Label))
			writeCell(&b, entry.Value, p.opts.Locale)
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody></table>")
	}
	b.WriteString("</body></html>")
	return b.String()
}

func writeCell(b *strings.Builder, cell Cell, locale string) {
	if cell.Kind == KindText {
		fmt.Fprintf(b, "<td>%s</td>", html.EscapeString(cell.Display(locale)))
		return
	}
	fmt.Fprintf(b, "<td class=\"num\">%s</td>", html.EscapeString(cell.Display(locale)))
}
