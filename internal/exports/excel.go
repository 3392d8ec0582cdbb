package exports

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"hollowbrook-farm/farm-portal/farm-portal-backend/internal/pastures"
)

const (
	headerFillColor = "4F7942"
	headerFontColor = "FFFFFF"
)

// excelWorkbook builds the pasture history workbook: a summary sheet plus one
// sheet per ledger.
type excelWorkbook struct {
	file          *excelize.File
	headerStyleID int
}

func newExcelWorkbook() (*excelWorkbook, error) {
	file := excelize.NewFile()
	styleID, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: headerFontColor},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	return &excelWorkbook{file: file, headerStyleID: styleID}, nil
}

// addSheet writes one table sheet with a styled, frozen header row.
func (w *excelWorkbook) addSheet(name string, columns []string, rows [][]interface{}) error {
	if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := w.file.SetCellValue(name, cell, col); err != nil {
			return err
		}
		if err := w.file.SetCellStyle(name, cell, cell, w.headerStyleID); err != nil {
			return err
		}
	}
	if err := w.file.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	for rowIdx, row := range rows {
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := w.file.SetCellValue(name, cell, val); err != nil {
				return err
			}
		}
	}

	// Widen columns to roughly fit the longest value.
	for i, col := range columns {
		width := float64(len(col)) * 1.2
		for _, row := range rows {
			if i >= len(row) {
				continue
			}
			if cw := float64(len(fmt.Sprintf("%v", row[i]))) * 1.2; cw > width {
				width = cw
			}
		}
		if width < 10 {
			width = 10
		}
		if width > 50 {
			width = 50
		}
		colName, _ := excelize.ColumnNumberToName(i + 1)
		if err := w.file.SetColWidth(name, colName, colName, width); err != nil {
			return err
		}
	}
	return nil
}

func (w *excelWorkbook) bytes() ([]byte, error) {
	w.file.DeleteSheet("Sheet1")
	var buf bytes.Buffer
	if err := w.file.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

func formatIntPtr(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func formatFloatPtr(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func boolWord(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// buildExcel renders the full pasture history as an xlsx workbook.
func buildExcel(data *historyData) ([]byte, error) {
	workbook, err := newExcelWorkbook()
	if err != nil {
		return nil, err
	}

	summary := [][]interface{}{
		{"Name", data.Pasture.Name},
		{"Description", data.Pasture.Description},
		{"Forage type", data.Pasture.ForageType},
		{"Water source", boolWord(data.Pasture.WaterSource)},
		{"Shade available", boolWord(data.Pasture.ShadeAvailable)},
		{"Quality rating", formatIntPtr(data.Pasture.QualityRating)},
		{"Area (acres)", formatFloatPtr(data.Acres)},
	}
	if err := workbook.addSheet("Summary", []string{"Field", "Value"}, summary); err != nil {
		return nil, err
	}

	rotationRows := make([][]interface{}, 0, len(data.Rotations))
	for _, r := range data.Rotations {
		rotationRows = append(rotationRows, []interface{}{
			formatDate(r.StartDate),
			formatDatePtr(r.EndDate),
			r.AnimalType,
			formatIntPtr(r.AnimalCount),
			boolWord(r.IsCurrent),
			r.Notes,
		})
	}
	if err := workbook.addSheet("Grazing Rotations",
		[]string{"Start", "End", "Animal Type", "Head Count", "Current", "Notes"},
		rotationRows); err != nil {
		return nil, err
	}

	restRows := make([][]interface{}, 0, len(data.RestPeriods))
	for _, r := range data.RestPeriods {
		restRows = append(restRows, []interface{}{
			formatDate(r.StartDate),
			formatDatePtr(r.PlannedEndDate),
			formatDatePtr(r.ActualEndDate),
			r.Reason,
			boolWord(r.IsActive),
			r.Notes,
		})
	}
	if err := workbook.addSheet("Rest Periods",
		[]string{"Start", "Planned End", "Actual End", "Reason", "Active", "Notes"},
		restRows); err != nil {
		return nil, err
	}

	obsRows := make([][]interface{}, 0, len(data.Observations))
	for _, o := range data.Observations {
		obsRows = append(obsRows, []interface{}{
			formatDate(o.ObservationDate),
			formatIntPtr(o.QualityRating),
			formatFloatPtr(o.ForageHeight),
			o.MoistureLevel,
			o.WeedPressure,
			boolWord(o.NeedsReseeding),
			boolWord(o.NeedsMowing),
			o.ObservedBy,
		})
	}
	if err := workbook.addSheet("Observations",
		[]string{"Date", "Quality", "Forage Height", "Moisture", "Weed Pressure", "Reseed", "Mow", "Observed By"},
		obsRows); err != nil {
		return nil, err
	}

	return workbook.bytes()
}

// historyData is the joined dataset behind one pasture export.
type historyData struct {
	Pasture      *pastures.Pasture
	Acres        *float64
	Rotations    []pastures.GrazingRotation
	RestPeriods  []pastures.PastureRestPeriod
	Observations []pastures.PastureObservation
}
