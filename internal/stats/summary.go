package stats

import (
	"fmt"
	"io"
	"math"

	"github.com/verte-zerg/ramancert/internal/model"
	"github.com/verte-zerg/ramancert/internal/spectrum"
)

// Summary holds the scalar statistics of a loaded spectrum.
type Summary struct {
	Name         string
	Rows         int
	Dropped      int
	Min          float64
	Max          float64
	PeakPosition float64
	ShiftMin     float64
	ShiftMax     float64
	Baseline     float64
}

// Summarize computes the summary of a spectrum.
func Summarize(s *spectrum.Spectrum) Summary {
	lo, hi := s.ShiftRange()
	return Summary{
		Name:         s.Name,
		Rows:         s.Len(),
		Dropped:      s.Dropped,
		Min:          s.Min(),
		Max:          s.Max(),
		PeakPosition: s.PeakPosition(),
		ShiftMin:     lo,
		ShiftMax:     hi,
		Baseline:     s.Baseline(),
	}
}

// Evaluate applies the acceptance criteria. Without criteria the result is a pass.
func Evaluate(sum Summary, acc model.Acceptance) model.Verdict {
	v := model.Verdict{Pass: true}
	if acc.PeakTolerance > 0 {
		if delta := math.Abs(sum.PeakPosition - acc.PeakPosition); delta > acc.PeakTolerance {
			v.Pass = false
			v.Reasons = append(v.Reasons, fmt.Sprintf("peak at %.1f cm-1 is %.1f away from %.1f (tolerance %.1f)",
				sum.PeakPosition, delta, acc.PeakPosition, acc.PeakTolerance))
		}
	}
	if acc.MinIntensity > 0 && sum.Max < acc.MinIntensity {
		v.Pass = false
		v.Reasons = append(v.Reasons, fmt.Sprintf("max intensity %.1f%% is below %.1f%%", sum.Max, acc.MinIntensity))
	}
	return v
}

// RenderSummary prints the spectrum summary.
func RenderSummary(w io.Writer, sum Summary) error {
	lines := [][]string{
		{"Spectrum", sum.Name},
		{"Rows", fmt.Sprintf("%d", sum.Rows)},
		{"Dropped rows", fmt.Sprintf("%d", sum.Dropped)},
		{"Shift range", fmt.Sprintf("%.1f .. %.1f cm-1", sum.ShiftMin, sum.ShiftMax)},
		{"Min intensity", fmt.Sprintf("%.1f%%", sum.Min)},
		{"Max intensity", fmt.Sprintf("%.1f%%", sum.Max)},
		{"Peak position", fmt.Sprintf("%.1f cm-1", sum.PeakPosition)},
		{"Baseline", fmt.Sprintf("%.2f", sum.Baseline)},
	}
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	for _, line := range formatTable(nil, lines, nil) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSpectrumPlot prints the intensity (or normalized intensity) plot sized
// to totalWidth; zero picks the terminal width.
func RenderSpectrumPlot(w io.Writer, s *spectrum.Spectrum, normalized bool, totalWidth, height int, useColor bool) error {
	title := "Intensity, % vs Raman Shift, cm-1"
	values := s.Intensities()
	if normalized {
		title = fmt.Sprintf("Normalized Intensity vs Raman Shift, cm-1 (baseline %.2f)", s.Baseline())
		values = s.Normalized()
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, title, []Series{{X: s.Shifts(), Y: values}}, width, height, useColor)
}

// DataTableHeaders are the column titles of the spectrum table.
var DataTableHeaders = []string{spectrum.ShiftColumn, spectrum.IntensityColumn, spectrum.NormalizedColumn}

// DataTableRows formats spectrum rows as strings.
func DataTableRows(s *spectrum.Spectrum) [][]string {
	rows := s.Rows()
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			fmt.Sprintf("%.2f", r.Shift),
			fmt.Sprintf("%.2f", r.Intensity),
			fmt.Sprintf("%.4f", r.Normalized),
		})
	}
	return out
}

// RenderDataTable prints up to limit rows of the spectrum table; limit <= 0 prints all.
func RenderDataTable(w io.Writer, s *spectrum.Spectrum, limit int) error {
	rows := DataTableRows(s)
	truncated := 0
	if limit > 0 && len(rows) > limit {
		truncated = len(rows) - limit
		rows = rows[:limit]
	}
	for _, line := range formatTable(DataTableHeaders, rows, map[int]bool{0: true, 1: true, 2: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if truncated > 0 {
		if _, err := fmt.Fprintf(w, "... %d more rows\n", truncated); err != nil {
			return err
		}
	}
	return nil
}
