package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/ramancert/internal/model"
	"github.com/verte-zerg/ramancert/internal/store"
)

// BuildHistory loads register rows matching the filter, oldest first.
func BuildHistory(ctx context.Context, st *store.Store, filter model.HistoryFilter) ([]model.CertificateRecord, error) {
	records, err := st.ListCertificates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificates: %w", err)
	}
	return records, nil
}

// RenderHistory prints issued certificates as a table.
func RenderHistory(w io.Writer, records []model.CertificateRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No certificates found.")
		return err
	}
	headers := []string{"Issued", "Serial", "Device", "Operator", "Max, %", "Peak, cm-1", "Result", "Document"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.IssuedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d", r.Device.Serial),
			fmt.Sprintf("%s %s %s nm", r.Device.Model, r.Device.Type, r.Device.Wavelength),
			r.Operator,
			fmt.Sprintf("%.1f", r.MaxIntensity),
			fmt.Sprintf("%.1f", r.PeakPosition),
			r.Result,
			r.DocumentPath,
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{1: true, 4: true, 5: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
