package export

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/ramancert/internal/model"
	"github.com/verte-zerg/ramancert/internal/spectrum"
	"github.com/verte-zerg/ramancert/internal/stats"
)

const sample = "1\n2\n3\n4\n5\n6\n7\n" +
	"100\t10\n" +
	"200\t60\n" +
	"300\t110\n"

func TestWriteWorkbook(t *testing.T) {
	s, err := spectrum.Parse(strings.NewReader(sample), "polystyrene")
	require.NoError(t, err)
	rec := model.CertificateRecord{
		ID:       "cert-1",
		IssuedAt: time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC),
		Device:   model.Device{Serial: 10000, Model: "miniRaman", Type: "Power", Wavelength: "785"},
		Operator: "Yaroslav Aulin",
		Result:   model.ResultPass,
	}

	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, WriteWorkbook(path, s, stats.Summarize(s), rec))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { assert.NoError(t, f.Close()) }()

	assert.Equal(t, []string{SpectrumSheet, SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(SpectrumSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{spectrum.ShiftColumn, spectrum.IntensityColumn, spectrum.NormalizedColumn}, rows[0])
	assert.Equal(t, []string{"200", "60", "0.5"}, rows[2])
	assert.Equal(t, []string{"300", "110", "1"}, rows[3])

	peak, err := f.GetCellValue(SummarySheet, "B13")
	require.NoError(t, err)
	assert.Equal(t, "300", peak)
	result, err := f.GetCellValue(SummarySheet, "B15")
	require.NoError(t, err)
	assert.Equal(t, model.ResultPass, result)
}
