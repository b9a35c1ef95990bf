package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	// tables wider than this switch to landscape
	portraitColumns = 8
	rowHeight       = 7.0
	narrowWeight    = 1.0
	wideWeight      = 3.0
	narrowMaxRunes  = 5
)

// PDFExporter renders a dataset as a paged table. The header row is repeated
// on every page and pages are numbered in the footer.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates the PDF document.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("pdf"); err != nil {
		return nil, err
	}
	orientation := "P"
	if len(data.Headers) > portraitColumns {
		orientation = "L"
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AliasNbPages("")

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	widths, narrow := columnWidths(data, pageWidth-left-right)

	first := true
	pdf.SetHeaderFunc(func() {
		if first && data.Title != "" {
			pdf.SetFont("Arial", "B", 14)
			pdf.CellFormat(0, 10, data.Title, "", 1, "C", false, 0, "")
			if data.Subtitle != "" {
				pdf.SetFont("Arial", "", 10)
				pdf.CellFormat(0, 6, data.Subtitle, "", 1, "C", false, 0, "")
			}
			pdf.Ln(3)
		}
		first = false
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, header := range data.Headers {
			pdf.CellFormat(widths[i], rowHeight+1, header, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 8, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	for _, record := range data.Records() {
		for i, value := range record {
			align := "L"
			if narrow[i] {
				align = "C"
			}
			pdf.CellFormat(widths[i], rowHeight, value, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// columnWidths shares the printable width between columns, giving columns
// whose content stays short (week marks, scores) a narrow slot.
func columnWidths(data Dataset, total float64) ([]float64, []bool) {
	weights := make([]float64, len(data.Headers))
	narrow := make([]bool, len(data.Headers))
	sum := 0.0
	for i, header := range data.Headers {
		longest := len([]rune(header))
		for _, row := range data.Rows {
			if n := len([]rune(row[header])); n > longest {
				longest = n
			}
		}
		weights[i] = wideWeight
		if longest <= narrowMaxRunes {
			weights[i] = narrowWeight
			narrow[i] = true
		}
		sum += weights[i]
	}
	widths := make([]float64, len(weights))
	for i, w := range weights {
		widths[i] = total * w / sum
	}
	return widths, narrow
}
