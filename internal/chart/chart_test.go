package chart

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallOptions() Options {
	opts := DefaultOptions()
	opts.WidthInches = 4
	opts.HeightInches = 2
	opts.DPI = 100
	return opts
}

func sampleTrace() Trace {
	return Trace{
		X: []float64{100, 200, 300, 400, 500},
		Y: []float64{5, 20, 80, 30, 10},
	}
}

func TestDefaultOptionsPixelSize(t *testing.T) {
	w, h := DefaultOptions().PixelSize()
	assert.Equal(t, 3000, w)
	assert.Equal(t, 1500, h)
}

func TestRenderPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, smallOptions(), sampleTrace()))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestRenderOverlayWithLegend(t *testing.T) {
	a := sampleTrace()
	a.Name = "a"
	a.Marker = true
	a.Color = PaletteColor(0)
	b := Trace{Name: "b", X: []float64{100, 300, 500}, Y: []float64{0.1, 1, 0.2}, Color: PaletteColor(1)}
	opts := smallOptions()
	opts.YRange = &Range{Min: 0, Max: 1}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, opts, a, b))
	assert.NotZero(t, buf.Len())
}

func TestRenderRejectsBadTraces(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Render(&buf, smallOptions()))
	assert.Error(t, Render(&buf, smallOptions(), Trace{X: []float64{1, 2}, Y: []float64{1}}))
	assert.Error(t, Render(&buf, smallOptions(), Trace{}))
}

func TestSaveFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spectrum.png")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	require.NoError(t, SaveFile(path, smallOptions(), sampleTrace()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestPaletteColorWraps(t *testing.T) {
	assert.Equal(t, PaletteColor(0), PaletteColor(len(Palette)))
}
