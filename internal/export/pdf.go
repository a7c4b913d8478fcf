package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"docsight/internal/domain"
	"docsight/internal/normalize"
)

// TextPDF renders a parsed document's text as an A4 PDF, with a title
// line, an optional page-count line, and one bold heading per source
// page. Elements without a page land after the numbered pages.
func TextPDF(fileName string, parsed *domain.NormalizedDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, tr(fileName), "", 1, "L", false, 0, "")

	if pageCount, ok := parsed.Metadata["page_count"]; ok {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("%v pages", pageCount)), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	groups := normalize.GroupByPage(parsed.Elements)
	if len(groups.Pages) == 0 && len(groups.NoPage) == 0 {
		text := parsed.PlainText
		if text == "" {
			text = parsed.RawContent
		}
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 5, tr(text), "", "L", false)
	}

	for _, page := range groups.Pages {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, tr(fmt.Sprintf("Page %d", page.PageID+1)), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		writeParagraphs(pdf, tr, page.Elements)
		pdf.Ln(3)
	}

	if len(groups.NoPage) > 0 {
		pdf.SetFont("Helvetica", "", 11)
		writeParagraphs(pdf, tr, groups.NoPage)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeParagraphs(pdf *gofpdf.Fpdf, tr func(string) string, elements []domain.Element) {
	for _, elem := range elements {
		if text, ok := normalize.ParagraphText(elem); ok {
			pdf.MultiCell(0, 5, tr(text), "", "L", false)
			pdf.Ln(2)
		}
	}
}
