package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Test Plot", []Series{
		{Name: "A", X: []float64{100, 200, 300, 400, 500}, Y: []float64{1, 2, 3, 2, 1}},
		{Name: "B", X: []float64{100, 200, 300, 400, 500}, Y: []float64{1, 1, 2, 3, 4}},
	}, 5, 4)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend in output")
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	expected := 1 + 4 + 1 + 1
	if len(lines) != expected {
		t.Fatalf("expected %d lines of output, got %d", expected, len(lines))
	}
	axis := lines[5]
	if !strings.Contains(axis, "100") || !strings.HasSuffix(axis, "500") {
		t.Fatalf("unexpected x axis line: %q", axis)
	}
}

func TestPlotSeriesSingleUnnamedHasNoLegend(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "", []Series{{X: []float64{1, 2, 3}, Y: []float64{0, 1, 0}}}, 10, 3)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if strings.Contains(buf.String(), "Legend:") {
		t.Fatalf("did not expect legend for a single unnamed series")
	}
}

func TestPlotSeriesSkipsEmptyInput(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Empty", []Series{{Name: "bad", X: []float64{1, 2}, Y: []float64{1}}}, 10, 3)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestBinByXKeepsColumnMax(t *testing.T) {
	cols := binByX(Series{X: []float64{0, 1, 2, 3}, Y: []float64{1, 5, 2, 3}}, 2, 0, 3)
	if cols[0] != 5 || cols[1] != 3 {
		t.Fatalf("unexpected columns: %v", cols)
	}

	sparse := binByX(Series{X: []float64{0, 3}, Y: []float64{1, 2}}, 4, 0, 3)
	if sparse[0] != 1 || sparse[3] != 2 {
		t.Fatalf("unexpected edge columns: %v", sparse)
	}
	if !math.IsNaN(sparse[1]) || !math.IsNaN(sparse[2]) {
		t.Fatalf("expected empty middle columns, got %v", sparse)
	}
}

func TestPlotWidthFor(t *testing.T) {
	if got := PlotWidthFor(80); got != 80-axisLabelWidth-3 {
		t.Fatalf("expected width %d, got %d", 80-axisLabelWidth-3, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
	if got := PlotWidthFor(12); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}

func TestFormatAxisValue(t *testing.T) {
	cases := map[float64]string{
		0.5:    "0.50",
		1001.4: "1001",
		250000: "2.5e+05",
	}
	for in, want := range cases {
		if got := formatAxisValue(in); got != want {
			t.Fatalf("formatAxisValue(%v) = %q, want %q", in, got, want)
		}
	}
}
