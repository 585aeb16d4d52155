package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/ramancert/internal/model"
	"github.com/verte-zerg/ramancert/internal/spectrum"
)

const sampleTSV = "a\nb\nc\nd\ne\nf\ng\n" +
	"Raman Shift, cm-1\tIntensity, %\n" +
	"620.9\t30\n" +
	"1001.4\t100\n" +
	"1031.8\tnan\n" +
	"1602.3\t40\n" +
	"3054.3\t10\n"

func loadSample(t *testing.T) *spectrum.Spectrum {
	t.Helper()
	s, err := spectrum.Parse(strings.NewReader(sampleTSV), "polystyrene")
	if err != nil {
		t.Fatalf("parse sample: %v", err)
	}
	return s
}

func TestSummarize(t *testing.T) {
	sum := Summarize(loadSample(t))
	if sum.Name != "polystyrene" {
		t.Fatalf("unexpected name %q", sum.Name)
	}
	if sum.Rows != 4 || sum.Dropped != 1 {
		t.Fatalf("expected 4 rows and 1 dropped, got %d and %d", sum.Rows, sum.Dropped)
	}
	if sum.Max != 100 || sum.Min != 10 {
		t.Fatalf("unexpected min/max %v/%v", sum.Min, sum.Max)
	}
	if sum.PeakPosition != 1001.4 {
		t.Fatalf("unexpected peak position %v", sum.PeakPosition)
	}
	if sum.ShiftMin != 620.9 || sum.ShiftMax != 3054.3 {
		t.Fatalf("unexpected shift range %v..%v", sum.ShiftMin, sum.ShiftMax)
	}
	if sum.Baseline != 10 {
		t.Fatalf("expected baseline at the minimum, got %v", sum.Baseline)
	}
}

func TestEvaluate(t *testing.T) {
	sum := Summary{Max: 100, PeakPosition: 1001.4}

	if v := Evaluate(sum, model.Acceptance{}); !v.Pass || v.Label() != model.ResultPass {
		t.Fatalf("expected pass without criteria, got %+v", v)
	}

	pass := Evaluate(sum, model.Acceptance{PeakPosition: 1001.4, PeakTolerance: 2, MinIntensity: 50})
	if !pass.Pass || len(pass.Reasons) != 0 {
		t.Fatalf("expected pass, got %+v", pass)
	}

	shifted := Evaluate(sum, model.Acceptance{PeakPosition: 1010, PeakTolerance: 2})
	if shifted.Pass || shifted.Label() != model.ResultFail {
		t.Fatalf("expected fail for shifted peak, got %+v", shifted)
	}
	if len(shifted.Reasons) != 1 || !strings.Contains(shifted.Reasons[0], "1001.4") {
		t.Fatalf("unexpected reasons %v", shifted.Reasons)
	}

	both := Evaluate(Summary{Max: 20, PeakPosition: 500}, model.Acceptance{PeakPosition: 1001.4, PeakTolerance: 2, MinIntensity: 50})
	if both.Pass || len(both.Reasons) != 2 {
		t.Fatalf("expected two failures, got %+v", both)
	}
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSummary(&buf, Summarize(loadSample(t))); err != nil {
		t.Fatalf("RenderSummary failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Summary", "polystyrene", "Max intensity  100.0%", "Peak position  1001.4 cm-1", "620.9 .. 3054.3 cm-1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderDataTableTruncates(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderDataTable(&buf, loadSample(t), 2); err != nil {
		t.Fatalf("RenderDataTable failed: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, 2 rows and a note, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], spectrum.ShiftColumn) {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[3] != "... 2 more rows" {
		t.Fatalf("unexpected note %q", lines[3])
	}
}

func TestRenderSpectrumPlotNormalized(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSpectrumPlot(&buf, loadSample(t), true, 60, 5, false); err != nil {
		t.Fatalf("RenderSpectrumPlot failed: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "Normalized Intensity") {
		t.Fatalf("unexpected title:\n%s", out)
	}
	if !strings.Contains(out, "1.00") || !strings.Contains(out, "0.00") {
		t.Fatalf("expected unit axis labels:\n%s", out)
	}
}
