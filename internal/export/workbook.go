// Package export writes spectrum data workbooks.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/ramancert/internal/model"
	"github.com/verte-zerg/ramancert/internal/spectrum"
	"github.com/verte-zerg/ramancert/internal/stats"
)

// Sheet names in the workbook.
const (
	SpectrumSheet = "Spectrum"
	SummarySheet  = "Summary"
)

// WriteWorkbook writes the spectrum table and its summary to an xlsx file,
// overwriting any existing file.
func WriteWorkbook(path string, s *spectrum.Spectrum, sum stats.Summary, rec model.CertificateRecord) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", SpectrumSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := writeSpectrumSheet(f, s, bold); err != nil {
		return err
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	if err := writeSummarySheet(f, sum, rec, bold); err != nil {
		return err
	}

	if err := f.SetDocProps(&excelize.DocProperties{
		Title:       fmt.Sprintf("%s spectrum", sum.Name),
		Subject:     rec.ID,
		Creator:     rec.Operator,
		Description: fmt.Sprintf("%s %s SN%d", rec.Device.Model, rec.Device.Type, rec.Device.Serial),
		Created:     rec.IssuedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("failed to set workbook properties: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeSpectrumSheet(f *excelize.File, s *spectrum.Spectrum, headerStyle int) error {
	header := []any{spectrum.ShiftColumn, spectrum.IntensityColumn, spectrum.NormalizedColumn}
	if err := f.SetSheetRow(SpectrumSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(SpectrumSheet, "A1", "C1", headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	for i, r := range s.Rows() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{r.Shift, r.Intensity, r.Normalized}
		if err := f.SetSheetRow(SpectrumSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	if err := f.SetPanes(SpectrumSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}
	if err := f.AutoFilter(SpectrumSheet, fmt.Sprintf("A1:C%d", s.Len()+1), nil); err != nil {
		return fmt.Errorf("failed to add filter: %w", err)
	}
	return f.SetColWidth(SpectrumSheet, "A", "C", 22)
}

func writeSummarySheet(f *excelize.File, sum stats.Summary, rec model.CertificateRecord, keyStyle int) error {
	rows := [][]any{
		{"Certificate", rec.ID},
		{"Issued", rec.IssuedAt.Format("2006-01-02")},
		{"Equipment", fmt.Sprintf("%s %s %s nm", rec.Device.Model, rec.Device.Type, rec.Device.Wavelength)},
		{"Serial number", rec.Device.Serial},
		{"Operator", rec.Operator},
		{"Source", sum.Name},
		{"Rows", sum.Rows},
		{"Dropped rows", sum.Dropped},
		{"Shift min, cm-1", sum.ShiftMin},
		{"Shift max, cm-1", sum.ShiftMax},
		{"Max intensity, %", sum.Max},
		{"Min intensity, %", sum.Min},
		{"Peak position, cm-1", sum.PeakPosition},
		{"Baseline", sum.Baseline},
		{"Test result", rec.Result},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", fmt.Sprintf("A%d", len(rows)), keyStyle); err != nil {
		return fmt.Errorf("failed to style summary keys: %w", err)
	}
	return f.SetColWidth(SummarySheet, "A", "B", 24)
}
