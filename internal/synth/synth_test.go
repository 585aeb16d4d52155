package synth

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/ramancert/internal/model"
	"github.com/verte-zerg/ramancert/internal/spectrum"
)

func TestSpectrumPeaksAtStrongestBand(t *testing.T) {
	points, err := NewSeeded(7).Spectrum(DefaultOptions())
	require.NoError(t, err)
	require.Len(t, points, 1024)

	assert.Equal(t, 200.0, points[0].Shift)
	assert.InDelta(t, 3200.0, points[len(points)-1].Shift, 1e-9)

	peak := points[0]
	for _, p := range points {
		assert.GreaterOrEqual(t, p.Intensity, 0.0)
		assert.LessOrEqual(t, p.Intensity, 100.0)
		if p.Intensity > peak.Intensity {
			peak = p
		}
	}
	assert.InDelta(t, 1001.4, peak.Shift, 3)
	assert.InDelta(t, 95, peak.Intensity, 2)
}

func TestSpectrumIsDeterministicPerSeed(t *testing.T) {
	opts := DefaultOptions()
	opts.Rows = 64
	a, err := NewSeeded(42).Spectrum(opts)
	require.NoError(t, err)
	b, err := NewSeeded(42).Spectrum(opts)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := NewSeeded(43).Spectrum(opts)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestSpectrumRejectsBadOptions(t *testing.T) {
	g := NewSeeded(1)
	_, err := g.Spectrum(Options{Rows: 1, ShiftMin: 0, ShiftMax: 10})
	assert.Error(t, err)
	_, err = g.Spectrum(Options{Rows: 10, ShiftMin: 10, ShiftMax: 10})
	assert.Error(t, err)
}

func TestWriteTSVLoadsBack(t *testing.T) {
	opts := DefaultOptions()
	opts.Rows = 10
	opts.ShiftMin = 990
	opts.ShiftMax = 1010
	opts.Noise = 0
	points, err := NewSeeded(3).Spectrum(opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	header := Header{
		Device: model.Device{Serial: 10000, Model: "miniRaman", Type: "Power", Wavelength: "785"},
		Date:   time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, WriteTSV(&buf, header, points))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, spectrum.HeaderLines+1+10)
	assert.Equal(t, "Serial\t10000", lines[2])
	assert.Equal(t, "Exposure, ms\t1000", lines[4])
	assert.Equal(t, "Date\t2026-10-16 08:00:00", lines[6])
	assert.Equal(t, spectrum.ShiftColumn+"\t"+spectrum.IntensityColumn, lines[spectrum.HeaderLines])

	s, err := spectrum.Parse(&buf, "synthetic")
	require.NoError(t, err)
	assert.Equal(t, 10, s.Len())
	assert.Zero(t, s.Dropped)
	assert.InDelta(t, 1001.4, s.PeakPosition(), (opts.ShiftMax-opts.ShiftMin)/9)
	assert.True(t, math.Abs(s.Max()-95) < 0.01)
}
