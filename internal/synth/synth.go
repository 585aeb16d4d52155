// Package synth builds synthetic Raman spectra for testing and demos.
package synth

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/verte-zerg/ramancert/internal/model"
	"github.com/verte-zerg/ramancert/internal/spectrum"
)

// Band is a Lorentzian line.
type Band struct {
	Center float64
	Height float64
	Width  float64
}

// Polystyrene lists the main polystyrene bands with relative heights.
var Polystyrene = []Band{
	{Center: 620.9, Height: 22, Width: 10},
	{Center: 795.8, Height: 9, Width: 12},
	{Center: 1001.4, Height: 100, Width: 7},
	{Center: 1031.8, Height: 32, Width: 8},
	{Center: 1155.3, Height: 12, Width: 12},
	{Center: 1450.5, Height: 14, Width: 16},
	{Center: 1583.1, Height: 13, Width: 9},
	{Center: 1602.3, Height: 30, Width: 9},
	{Center: 2852.4, Height: 16, Width: 18},
	{Center: 2904.5, Height: 28, Width: 22},
	{Center: 3054.3, Height: 45, Width: 14},
}

// Options controls spectrum generation.
type Options struct {
	Rows     int
	ShiftMin float64
	ShiftMax float64
	// Peak is the percent intensity of the tallest point before noise.
	Peak  float64
	Noise float64
	Bands []Band
}

// DefaultOptions returns a full-range polystyrene spectrum.
func DefaultOptions() Options {
	return Options{
		Rows:     1024,
		ShiftMin: 200,
		ShiftMax: 3200,
		Peak:     95,
		Noise:    0.4,
		Bands:    Polystyrene,
	}
}

// Point is one spectrum sample.
type Point struct {
	Shift     float64
	Intensity float64
}

// Generator produces randomized spectra.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Spectrum samples the bands over an evenly spaced shift axis on a sloped
// baseline, scales to percent and adds Gaussian noise. Intensities stay in [0, 100].
func (g *Generator) Spectrum(opts Options) ([]Point, error) {
	if opts.Rows < 2 {
		return nil, fmt.Errorf("rows must be at least 2, got %d", opts.Rows)
	}
	if opts.ShiftMax <= opts.ShiftMin {
		return nil, fmt.Errorf("invalid shift range %.1f..%.1f", opts.ShiftMin, opts.ShiftMax)
	}
	peak := opts.Peak
	if peak <= 0 || peak > 100 {
		peak = 95
	}

	step := (opts.ShiftMax - opts.ShiftMin) / float64(opts.Rows-1)
	points := make([]Point, opts.Rows)
	maxRaw := 0.0
	for i := range points {
		x := opts.ShiftMin + float64(i)*step
		y := 4 + 6*(x-opts.ShiftMin)/(opts.ShiftMax-opts.ShiftMin)
		for _, b := range opts.Bands {
			y += lorentzian(x, b)
		}
		points[i] = Point{Shift: x, Intensity: y}
		maxRaw = math.Max(maxRaw, y)
	}

	scale := peak / maxRaw
	for i := range points {
		v := points[i].Intensity*scale + g.rnd.NormFloat64()*opts.Noise
		points[i].Intensity = math.Min(100, math.Max(0, v))
	}
	return points, nil
}

func lorentzian(x float64, b Band) float64 {
	if b.Width <= 0 {
		return 0
	}
	d := (x - b.Center) / (b.Width / 2)
	return b.Height / (1 + d*d)
}

// Header describes the acquisition preamble written above the table.
type Header struct {
	Device   model.Device
	Exposure time.Duration
	Date     time.Time
}

// WriteTSV writes the preamble, a column label row and the data.
func WriteTSV(w io.Writer, header Header, points []Point) error {
	exposure := header.Exposure
	if exposure <= 0 {
		exposure = time.Second
	}
	date := header.Date
	if date.IsZero() {
		date = time.Now()
	}
	preamble := [spectrum.HeaderLines]string{
		"# synthetic spectrum",
		fmt.Sprintf("Device\t%s %s", header.Device.Model, header.Device.Type),
		fmt.Sprintf("Serial\t%d", header.Device.Serial),
		fmt.Sprintf("Laser wavelength, nm\t%s", header.Device.Wavelength),
		fmt.Sprintf("Exposure, ms\t%d", exposure.Milliseconds()),
		"Accumulations\t1",
		fmt.Sprintf("Date\t%s", date.Format("2006-01-02 15:04:05")),
	}

	bw := bufio.NewWriter(w)
	for _, line := range preamble {
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "%s\t%s\n", spectrum.ShiftColumn, spectrum.IntensityColumn); err != nil {
		return err
	}
	for _, p := range points {
		if _, err := fmt.Fprintf(bw, "%.2f\t%.4f\n", p.Shift, p.Intensity); err != nil {
			return err
		}
	}
	return bw.Flush()
}
