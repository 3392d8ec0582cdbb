package exports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// pdfReport renders the pasture history as a portrait A4 document with one
// table per ledger.
type pdfReport struct {
	pdf *gofpdf.Fpdf
}

func newPDFReport() *pdfReport {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	return &pdfReport{pdf: pdf}
}

func (r *pdfReport) addTitle(title string) {
	r.pdf.SetFont("Arial", "B", 16)
	r.pdf.SetTextColor(0, 0, 0)
	r.pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")

	r.pdf.SetFont("Arial", "", 9)
	r.pdf.SetTextColor(128, 128, 128)
	r.pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02")), "", 1, "R", false, 0, "")
	r.pdf.Ln(4)
}

func (r *pdfReport) addSectionHeading(text string) {
	r.pdf.SetFont("Arial", "B", 12)
	r.pdf.SetTextColor(0, 0, 0)
	r.pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
	r.pdf.Ln(1)
}

// addTable draws a fixed-layout table with a green header band and alternating
// row shading.
func (r *pdfReport) addTable(labels []string, rows [][]string) {
	pageWidth, _ := r.pdf.GetPageSize()
	available := pageWidth - 30
	colWidth := available / float64(len(labels))

	r.pdf.SetFont("Arial", "B", 10)
	r.pdf.SetFillColor(79, 121, 66)
	r.pdf.SetTextColor(255, 255, 255)
	for _, label := range labels {
		r.pdf.CellFormat(colWidth, 7, label, "1", 0, "C", true, 0, "")
	}
	r.pdf.Ln(-1)

	r.pdf.SetFont("Arial", "", 9)
	r.pdf.SetTextColor(0, 0, 0)
	for i, row := range rows {
		fill := i%2 == 1
		if fill {
			r.pdf.SetFillColor(242, 242, 242)
		}
		for _, cell := range row {
			r.pdf.CellFormat(colWidth, 6, cell, "1", 0, "L", fill, 0, "")
		}
		r.pdf.Ln(-1)
	}
	if len(rows) == 0 {
		r.pdf.SetTextColor(128, 128, 128)
		r.pdf.CellFormat(available, 6, "no records", "1", 1, "C", false, 0, "")
		r.pdf.SetTextColor(0, 0, 0)
	}
	r.pdf.Ln(6)
}

func (r *pdfReport) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func cellText(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// buildPDF renders the full pasture history as a PDF document.
func buildPDF(data *historyData) ([]byte, error) {
	report := newPDFReport()
	report.pdf.AddPage()
	report.addTitle(fmt.Sprintf("Pasture History: %s", data.Pasture.Name))

	report.addSectionHeading("Summary")
	summary := [][]string{
		{"Forage type", data.Pasture.ForageType},
		{"Water source", boolWord(data.Pasture.WaterSource)},
		{"Shade available", boolWord(data.Pasture.ShadeAvailable)},
		{"Quality rating", cellText(formatIntPtr(data.Pasture.QualityRating))},
		{"Area (acres)", cellText(formatFloatPtr(data.Acres))},
	}
	report.addTable([]string{"Field", "Value"}, summary)

	report.addSectionHeading("Grazing Rotations")
	rotationRows := make([][]string, 0, len(data.Rotations))
	for _, rot := range data.Rotations {
		rotationRows = append(rotationRows, []string{
			formatDate(rot.StartDate),
			formatDatePtr(rot.EndDate),
			rot.AnimalType,
			cellText(formatIntPtr(rot.AnimalCount)),
		})
	}
	report.addTable([]string{"Start", "End", "Animal Type", "Head Count"}, rotationRows)

	report.addSectionHeading("Rest Periods")
	restRows := make([][]string, 0, len(data.RestPeriods))
	for _, rest := range data.RestPeriods {
		restRows = append(restRows, []string{
			formatDate(rest.StartDate),
			formatDatePtr(rest.ActualEndDate),
			rest.Reason,
		})
	}
	report.addTable([]string{"Start", "End", "Reason"}, restRows)

	report.addSectionHeading("Observations")
	obsRows := make([][]string, 0, len(data.Observations))
	for _, obs := range data.Observations {
		obsRows = append(obsRows, []string{
			formatDate(obs.ObservationDate),
			cellText(formatIntPtr(obs.QualityRating)),
			obs.MoistureLevel,
			obs.WeedPressure,
			obs.ObservedBy,
		})
	}
	report.addTable([]string{"Date", "Quality", "Moisture", "Weed Pressure", "Observed By"}, obsRows)

	return report.bytes()
}
