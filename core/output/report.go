package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"github.com/cardpipe/cardpipe/core"
	"github.com/cardpipe/cardpipe/core/format"
)

// WritePDFReport renders a human-readable summary of a listing run as
// a PDF next to the JSON report. Optional; JSON remains the record of
// truth.
func (w *Writer) WritePDFReport(report *core.ListingReport) (string, error) {
	data, err := renderReportPDF(report)
	if err != nil {
		return "", fmt.Errorf("rendering report PDF: %w", err)
	}

	name := fmt.Sprintf("listing_report_%s.pdf", w.now().UTC().Format(timestampLayout))
	path := filepath.Join(w.OutputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

func renderReportPDF(report *core.ListingReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 8, "Card Extraction Report", "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, "Source: "+report.ListingURL, "", "L", false)
	pdf.MultiCell(0, 5, "Generated: "+report.GeneratedAt, "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	summary := fmt.Sprintf("Processed %d cards, %d failed, %d invalid URLs. Success rate %.0f%%, average confidence %.2f.",
		report.CardsProcessed, report.CardsFailed, len(report.InvalidURLs),
		report.SuccessRate*100, report.AvgConfidence)
	pdf.MultiCell(0, 5, summary, "", "L", false)
	pdf.Ln(4)

	for i := range report.Cards {
		renderCard(pdf, &report.Cards[i])
	}

	if len(report.FailedCards) > 0 {
		heading(pdf, "Failed Cards", 13)
		pdf.SetFont("Helvetica", "", 10)
		for _, f := range report.FailedCards {
			pdf.MultiCell(0, 5, fmt.Sprintf("• %s (%s): %s", f.Name, f.URL, f.Reason), "", "L", false)
		}
		pdf.Ln(2)
	}

	if len(report.InvalidURLs) > 0 {
		heading(pdf, "Invalid URLs", 13)
		pdf.SetFont("Helvetica", "", 10)
		for _, u := range report.InvalidURLs {
			pdf.MultiCell(0, 5, fmt.Sprintf("• %s — %s (%s)", u.URL, u.ErrorType, u.Name), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderCard(pdf *gofpdf.Fpdf, rec *core.ExtractionRecord) {
	heading(pdf, fmt.Sprintf("%s — %s", rec.Card.Bank, rec.Card.Name), 15)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, fmt.Sprintf("Confidence %.2f · %s", rec.Metadata.ConfidenceScore, rec.URL), "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)

	if len(rec.Rewards.Earning.Categories) > 0 {
		var lines []string
		for _, c := range rec.Rewards.Earning.Categories {
			lines = append(lines, c.Category, "- "+c.Rate)
			if c.Cap != "" {
				lines = append(lines, "- Cap: "+c.Cap)
			}
		}
		renderSection(pdf, format.Shape("Rewards", lines))
	}

	renderList(pdf, "Benefits", rec.Benefits)
	renderList(pdf, "Current Offers", rec.CurrentOffers)
	renderList(pdf, "Fees and Charges", rec.FeesAndCharges)
	pdf.Ln(3)
}

func renderSection(pdf *gofpdf.Fpdf, sec format.Section) {
	heading(pdf, sec.Title, 12)
	pdf.SetFont("Helvetica", "", 10)
	for _, g := range sec.Groups {
		if g.Title != "" {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.MultiCell(0, 5, g.Title, "", "L", false)
			pdf.SetFont("Helvetica", "", 10)
		}
		for _, item := range g.Items {
			pdf.MultiCell(0, 5, "• "+item, "", "L", false)
		}
	}
	for _, item := range sec.Items {
		pdf.MultiCell(0, 5, "• "+item, "", "L", false)
	}
	pdf.Ln(1)
}

func renderList(pdf *gofpdf.Fpdf, title string, items []string) {
	items = format.CleanList(items)
	if len(items) == 0 {
		return
	}
	renderSection(pdf, format.Section{Title: title, Items: items})
}

func heading(pdf *gofpdf.Fpdf, text string, size float64) {
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", size)
	pdf.MultiCell(0, size*0.6, text, "", "L", false)
	pdf.Ln(1)
}
