// Package certificate assembles quality certificates from measured spectra.
package certificate

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/verte-zerg/ramancert/internal/chart"
	"github.com/verte-zerg/ramancert/internal/model"
	"github.com/verte-zerg/ramancert/internal/spectrum"
	"github.com/verte-zerg/ramancert/internal/stats"
)

// Document widths in millimetres.
const (
	LogoWidth  = 2 * inch
	ChartWidth = 5 * inch
)

// Issued is the full outcome of a certificate run.
type Issued struct {
	Record   model.CertificateRecord
	Spectrum *spectrum.Spectrum
	Summary  stats.Summary
	Verdict  model.Verdict
}

// Generate issues a certificate and returns its record.
func Generate(cfg model.ReportConfig) (model.CertificateRecord, error) {
	issued, err := Issue(cfg)
	if err != nil {
		return model.CertificateRecord{}, err
	}
	return issued.Record, nil
}

// Issue loads the source spectrum, renders the chart, evaluates the verdict
// and writes the document. Existing output files are overwritten.
func Issue(cfg model.ReportConfig) (Issued, error) {
	if _, err := os.Stat(cfg.Logo); err != nil {
		return Issued{}, fmt.Errorf("failed to open logo: %w", err)
	}
	s, err := spectrum.Load(cfg.Source)
	if err != nil {
		return Issued{}, fmt.Errorf("failed to load spectrum: %w", err)
	}

	chartPath := cfg.Chart
	if chartPath == "" {
		chartPath = s.Name + ".png"
	}
	if err := chart.SaveFile(chartPath, chart.DefaultOptions(), chart.Trace{
		X:     s.Shifts(),
		Y:     s.Intensities(),
		Color: chart.Red,
	}); err != nil {
		return Issued{}, fmt.Errorf("failed to render chart: %w", err)
	}

	sum := stats.Summarize(s)
	verdict := stats.Evaluate(sum, cfg.Acceptance)

	date := cfg.Date
	if date.IsZero() {
		date = time.Now()
	}
	rec := model.CertificateRecord{
		ID:           uuid.NewString(),
		IssuedAt:     date,
		Device:       cfg.Device,
		Operator:     cfg.Operator,
		Source:       cfg.Source,
		Rows:         sum.Rows,
		MaxIntensity: sum.Max,
		PeakPosition: sum.PeakPosition,
		Result:       verdict.Label(),
		DocumentPath: cfg.Output,
		ChartPath:    chartPath,
	}

	doc, err := NewDocument(pageLayout(cfg), Meta{
		Title:   "Certificate of Quality",
		Author:  cfg.Operator,
		Subject: fmt.Sprintf("%s %s SN%d, certificate %s", cfg.Device.Model, cfg.Device.Type, cfg.Device.Serial, rec.ID),
		Created: date,
	})
	if err != nil {
		return Issued{}, err
	}
	if err := writeBody(doc, cfg, s, sum, verdict, chartPath, date); err != nil {
		return Issued{}, err
	}
	if err := doc.Save(cfg.Output); err != nil {
		return Issued{}, err
	}

	if abs, err := filepath.Abs(cfg.Output); err == nil {
		rec.DocumentPath = abs
	}
	return Issued{Record: rec, Spectrum: s, Summary: sum, Verdict: verdict}, nil
}

func pageLayout(cfg model.ReportConfig) Layout {
	return Layout{
		Logo:         cfg.Logo,
		LogoWidth:    LogoWidth,
		FooterLeft:   "TEST REPORT",
		FooterCenter: fmt.Sprintf("%s SN%d", cfg.Device.Model, cfg.Device.Serial),
	}
}

// bodyWriter is the block surface of a Document used to lay out the body.
type bodyWriter interface {
	AddTitle(text string)
	AddHeading(text string)
	AddParagraph(runs ...Run)
	AddBullet(runs ...Run)
	AddImage(path string, width float64, align Align) error
	AddSpacer(n int)
}

func writeBody(doc bodyWriter, cfg model.ReportConfig, s *spectrum.Spectrum, sum stats.Summary, verdict model.Verdict, chartPath string, date time.Time) error {
	doc.AddTitle("Certificate of Quality")
	doc.AddParagraph(Text(fmt.Sprintf("Equipment: %s %s %s nm", cfg.Device.Model, cfg.Device.Type, cfg.Device.Wavelength)))
	doc.AddParagraph(Text(fmt.Sprintf("Serial number: #%d", cfg.Device.Serial)))
	doc.AddHeading(capitalize(s.Name) + " spectrum")
	if err := doc.AddImage(chartPath, ChartWidth, AlignCenter); err != nil {
		return err
	}
	doc.AddBullet(Text(fmt.Sprintf("Max intensity: %10.1f%%", sum.Max)))
	doc.AddBullet(Text(fmt.Sprintf("Peak position: %10.1f cm", sum.PeakPosition)), Sup("-1"))
	resultColor := PassGreen
	if !verdict.Pass {
		resultColor = FailRed
	}
	doc.AddBullet(Text("Test result: "), Colored(verdict.Label(), resultColor))
	doc.AddSpacer(5)
	doc.AddParagraph(Text("Date: " + date.Format("2006-01-02")))
	doc.AddParagraph(Text("Operator: " + cfg.Operator))
	return nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
