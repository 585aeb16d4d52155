// Package model defines shared data structures.
package model

import "time"

// Result labels printed on certificates.
const (
	ResultPass = "pass"
	ResultFail = "fail"
)

// Device identifies the instrument under test.
type Device struct {
	Serial     int
	Model      string
	Type       string
	Wavelength string
}

// Acceptance holds optional pass criteria. Zero values disable a check.
type Acceptance struct {
	PeakPosition  float64
	PeakTolerance float64
	MinIntensity  float64
}

// Enabled reports whether any criterion is configured.
func (a Acceptance) Enabled() bool {
	return a.PeakTolerance > 0 || a.MinIntensity > 0
}

// ReportConfig defines a certificate run.
type ReportConfig struct {
	Device     Device
	Operator   string
	Source     string
	Logo       string
	Output     string
	Chart      string
	Acceptance Acceptance
	Date       time.Time
}

// Verdict is the outcome of the acceptance checks.
type Verdict struct {
	Pass    bool
	Reasons []string
}

// Label returns the result label for the verdict.
func (v Verdict) Label() string {
	if v.Pass {
		return ResultPass
	}
	return ResultFail
}

// CertificateRecord describes an issued certificate.
type CertificateRecord struct {
	ID           string
	IssuedAt     time.Time
	Device       Device
	Operator     string
	Source       string
	Rows         int
	MaxIntensity float64
	PeakPosition float64
	Result       string
	DocumentPath string
	ChartPath    string
}

// HistoryFilter selects register rows.
type HistoryFilter struct {
	Serial int
	Since  *time.Time
	Last   int
}
