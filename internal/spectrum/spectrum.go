// Package spectrum loads and normalizes Raman spectra from TSV exports.
package spectrum

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// HeaderLines is the number of preamble lines written by the spectrometer
// software before the table starts.
const HeaderLines = 7

// FileExt is appended to every base name passed to Load.
const FileExt = ".tsv"

// Column labels used for the loaded table.
const (
	ShiftColumn      = "Raman Shift, cm-1"
	IntensityColumn  = "Intensity, %"
	NormalizedColumn = "Normalized Intensity"
)

var (
	// ErrEmpty is returned when no usable rows remain after cleaning.
	ErrEmpty = errors.New("spectrum has no valid rows")
	// ErrMalformed is returned for fields that are neither numbers nor missing markers.
	ErrMalformed = errors.New("malformed spectrum data")
	// ErrBaseline is returned for normalization baselines that cannot scale the spectrum.
	ErrBaseline = errors.New("invalid baseline")
)

// Row is one measurement of the spectrum.
type Row struct {
	Shift      float64
	Intensity  float64
	Normalized float64
}

// Spectrum is a cleaned spectral measurement table.
type Spectrum struct {
	Name    string
	Path    string
	Dropped int

	rows     []Row
	baseline float64
}

// Load reads base+".tsv" and returns the cleaned, normalized spectrum.
func Load(base string) (*Spectrum, error) {
	path := base + FileExt
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only spectrum file.
			_ = cerr
		}
	}()

	s, err := Parse(file, filepath.Base(base))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Path = path
	return s, nil
}

// Parse reads a spectrum table from r. The first HeaderLines non-blank lines
// are skipped, an optional column label row is ignored, and rows with missing
// or non-finite values are dropped.
func Parse(r io.Reader, name string) (*Spectrum, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	s := &Spectrum{Name: name}
	lineNo := 0
	preamble := 0
	labelsChecked := false
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if preamble < HeaderLines {
			preamble++
			continue
		}
		fields := strings.Split(line, "\t")
		if !labelsChecked {
			labelsChecked = true
			if isLabelRow(fields) {
				continue
			}
		}
		row, ok, err := parseRow(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if !ok {
			s.Dropped++
			continue
		}
		s.rows = append(s.rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(s.rows) == 0 {
		return nil, ErrEmpty
	}
	s.Normalize()
	return s, nil
}

// isLabelRow reports whether the first table line carries column names
// instead of values.
func isLabelRow(fields []string) bool {
	for i, f := range fields {
		if i == 2 {
			break
		}
		if isMissing(f) {
			continue
		}
		if _, err := parseNumber(f); err != nil {
			return true
		}
	}
	return false
}

// parseRow returns ok=false when the row must be dropped.
func parseRow(fields []string) (Row, bool, error) {
	if len(fields) < 2 {
		return Row{}, false, nil
	}
	shift, ok, err := parseValue(fields[0])
	if err != nil || !ok {
		return Row{}, false, err
	}
	intensity, ok, err := parseValue(fields[1])
	if err != nil || !ok {
		return Row{}, false, err
	}
	return Row{Shift: shift, Intensity: intensity}, true, nil
}

func parseValue(field string) (float64, bool, error) {
	field = strings.TrimSpace(field)
	if isMissing(field) {
		return 0, false, nil
	}
	v, err := parseNumber(field)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q is not a number", ErrMalformed, field)
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false, nil
	}
	return v, true, nil
}

// parseNumber accepts out-of-range literals such as 1e400, which overflow
// to an infinity and are dropped like any other non-finite value.
func parseNumber(field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return v, nil
}

var missingMarkers = map[string]struct{}{
	"":     {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"-nan": {},
	"null": {},
	"none": {},
	"#n/a": {},
}

func isMissing(field string) bool {
	_, ok := missingMarkers[strings.ToLower(strings.TrimSpace(field))]
	return ok
}

// Normalize rescales intensities so the table's own minimum maps to 0 and
// the maximum maps to 1.
func (s *Spectrum) Normalize() {
	s.NormalizeFrom(s.Min())
}

// NormalizeFrom rescales intensities against an external minimum, used when
// several spectra share one baseline. Results are not clamped.
func (s *Spectrum) NormalizeFrom(min float64) {
	s.baseline = min
	span := s.Max() - min
	for i := range s.rows {
		if span == 0 {
			s.rows[i].Normalized = 0
			continue
		}
		s.rows[i].Normalized = (s.rows[i].Intensity - min) / span
	}
}

// CheckBaseline reports whether min can serve as an external normalization
// baseline: it must be finite and below the spectrum maximum.
func (s *Spectrum) CheckBaseline(min float64) error {
	if math.IsNaN(min) || math.IsInf(min, 0) {
		return fmt.Errorf("%w: %v is not a finite number", ErrBaseline, min)
	}
	if min >= s.Max() {
		return fmt.Errorf("%w: %.2f is not below the maximum %.2f", ErrBaseline, min, s.Max())
	}
	return nil
}

// Baseline returns the minimum used by the last normalization.
func (s *Spectrum) Baseline() float64 {
	return s.baseline
}

// Len returns the number of retained rows.
func (s *Spectrum) Len() int {
	return len(s.rows)
}

// Max returns the maximum intensity.
func (s *Spectrum) Max() float64 {
	return s.rows[s.PeakIndex()].Intensity
}

// Min returns the minimum intensity.
func (s *Spectrum) Min() float64 {
	minVal := s.rows[0].Intensity
	for _, r := range s.rows[1:] {
		if r.Intensity < minVal {
			minVal = r.Intensity
		}
	}
	return minVal
}

// PeakIndex returns the index of the first row holding the maximum intensity.
func (s *Spectrum) PeakIndex() int {
	idx := 0
	for i, r := range s.rows {
		if r.Intensity > s.rows[idx].Intensity {
			idx = i
		}
	}
	return idx
}

// PeakPosition returns the Raman shift at the maximum intensity.
func (s *Spectrum) PeakPosition() float64 {
	return s.rows[s.PeakIndex()].Shift
}

// ShiftRange returns the smallest and largest shift in the table.
func (s *Spectrum) ShiftRange() (float64, float64) {
	lo, hi := s.rows[0].Shift, s.rows[0].Shift
	for _, r := range s.rows[1:] {
		if r.Shift < lo {
			lo = r.Shift
		}
		if r.Shift > hi {
			hi = r.Shift
		}
	}
	return lo, hi
}

// Rows returns a copy of the table rows.
func (s *Spectrum) Rows() []Row {
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// Shifts returns the shift column.
func (s *Spectrum) Shifts() []float64 {
	return s.column(func(r Row) float64 { return r.Shift })
}

// Intensities returns the intensity column.
func (s *Spectrum) Intensities() []float64 {
	return s.column(func(r Row) float64 { return r.Intensity })
}

// Normalized returns the normalized intensity column.
func (s *Spectrum) Normalized() []float64 {
	return s.column(func(r Row) float64 { return r.Normalized })
}

func (s *Spectrum) column(get func(Row) float64) []float64 {
	out := make([]float64, len(s.rows))
	for i, r := range s.rows {
		out[i] = get(r)
	}
	return out
}

// SharedBaseline returns the lowest minimum across the given spectra.
func SharedBaseline(spectra []*Spectrum) float64 {
	if len(spectra) == 0 {
		return 0
	}
	base := spectra[0].Min()
	for _, s := range spectra[1:] {
		if m := s.Min(); m < base {
			base = m
		}
	}
	return base
}
