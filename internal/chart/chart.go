// Package chart renders spectra to PNG images.
package chart

import (
	"bufio"
	"fmt"
	"io"
	"os"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	defaultWidthInches  = 10.0
	defaultHeightInches = 5.0
	defaultDPI          = 300.0
	lineWidthPoints     = 1.5
	markerWidthPoints   = 3.0
	fontSizePoints      = 12.0
)

// Trace is one line on the chart.
type Trace struct {
	Name   string
	X      []float64
	Y      []float64
	Color  drawing.Color
	Marker bool
}

// Range fixes an axis range.
type Range struct {
	Min float64
	Max float64
}

// Options controls the rendered figure.
type Options struct {
	WidthInches  float64
	HeightInches float64
	DPI          float64
	XLabel       string
	YLabel       string
	YRange       *Range
}

// Red is the default spectrum color.
var Red = drawing.ColorFromHex("ff0000")

// Palette holds distinct colors for overlays.
var Palette = []drawing.Color{
	drawing.ColorFromHex("d62728"),
	drawing.ColorFromHex("1f77b4"),
	drawing.ColorFromHex("2ca02c"),
	drawing.ColorFromHex("ff7f0e"),
	drawing.ColorFromHex("9467bd"),
	drawing.ColorFromHex("8c564b"),
}

// DefaultOptions returns a 10x5 inch, 300 DPI figure with spectrum axis labels.
func DefaultOptions() Options {
	return Options{
		WidthInches:  defaultWidthInches,
		HeightInches: defaultHeightInches,
		DPI:          defaultDPI,
		XLabel:       "Raman Shift, cm-1",
		YLabel:       "Intensity, %",
	}
}

// PixelSize returns the image size in pixels.
func (o Options) PixelSize() (int, int) {
	return int(o.WidthInches * o.DPI), int(o.HeightInches * o.DPI)
}

// Render writes the traces as a PNG line chart.
func Render(w io.Writer, opts Options, traces ...Trace) error {
	if len(traces) == 0 {
		return fmt.Errorf("no traces to render")
	}
	opts = withDefaults(opts)
	width, height := opts.PixelSize()
	pad := int(opts.DPI / 4)

	series := make([]gochart.Series, 0, len(traces))
	named := false
	for i, tr := range traces {
		if len(tr.X) != len(tr.Y) {
			return fmt.Errorf("trace %d: x has %d values, y has %d", i, len(tr.X), len(tr.Y))
		}
		if len(tr.X) == 0 {
			return fmt.Errorf("trace %d is empty", i)
		}
		if tr.Name != "" {
			named = true
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    tr.Name,
			XValues: tr.X,
			YValues: tr.Y,
			Style:   traceStyle(tr),
		})
	}

	axisText := gochart.Style{FontSize: fontSizePoints}
	graph := gochart.Chart{
		Width:  width,
		Height: height,
		DPI:    opts.DPI,
		Background: gochart.Style{
			Padding: gochart.Box{Top: pad, Left: pad, Right: pad, Bottom: pad},
		},
		XAxis: gochart.XAxis{
			Name:      opts.XLabel,
			NameStyle: axisText,
			Style:     axisText,
		},
		YAxis: gochart.YAxis{
			Name:      opts.YLabel,
			NameStyle: axisText,
			Style:     axisText,
		},
		Series: series,
	}
	if opts.YRange != nil {
		graph.YAxis.Range = &gochart.ContinuousRange{Min: opts.YRange.Min, Max: opts.YRange.Max}
	}
	if named {
		graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	}
	return graph.Render(gochart.PNG, w)
}

// SaveFile renders the traces to path, replacing any existing file.
func SaveFile(path string, opts Options, traces ...Trace) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	writer := bufio.NewWriter(file)
	if err := Render(writer, opts, traces...); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to render chart: %w", err)
	}
	if err := writer.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write chart: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close chart file: %w", err)
	}
	return nil
}

// PaletteColor returns the overlay color for index i.
func PaletteColor(i int) drawing.Color {
	return Palette[i%len(Palette)]
}

func traceStyle(tr Trace) gochart.Style {
	color := tr.Color
	if color.IsZero() {
		color = Red
	}
	style := gochart.Style{
		StrokeColor: color,
		StrokeWidth: lineWidthPoints,
	}
	if tr.Marker {
		style.DotColor = color
		style.DotWidth = markerWidthPoints
	}
	return style
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.WidthInches <= 0 {
		opts.WidthInches = def.WidthInches
	}
	if opts.HeightInches <= 0 {
		opts.HeightInches = def.HeightInches
	}
	if opts.DPI <= 0 {
		opts.DPI = def.DPI
	}
	return opts
}
