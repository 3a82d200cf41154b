package parser

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook saves a workbook with a title, a header row and two curves.
func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	f.SetCellValue(sheetName, "A1", "Damped response")
	f.SetCellValue(sheetName, "A3", "t")
	f.SetCellValue(sheetName, "B3", "position")
	f.SetCellValue(sheetName, "C3", "velocity")
	for i, row := range [][]float64{{0, 1, 0}, {0.5, 0.6, -0.8}, {1, 0.1, -0.3}} {
		cell, _ := excelize.CoordinatesToCellName(1, i+4)
		require.NoError(t, f.SetSheetRow(sheetName, cell, &[]interface{}{row[0], row[1], row[2]}))
	}
	f.SetCellValue(sheetName, "C5", "n/a")

	path := filepath.Join(t.TempDir(), "series.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestExtractColumns(t *testing.T) {
	f, err := excelize.OpenFile(writeWorkbook(t))
	require.NoError(t, err)
	defer f.Close()

	table, err := ExtractColumns(f, "Sheet1")
	require.NoError(t, err)

	assert.Equal(t, 3, table.Rows)
	assert.Equal(t, []string{"t", "position", "velocity"}, table.Headers)
	require.Len(t, table.Columns, 3)
	assert.Equal(t, []float64{0, 0.5, 1}, table.Columns[0])
	assert.Equal(t, []float64{1, 0.6, 0.1}, table.Columns[1])
	assert.Equal(t, 0.0, table.Columns[2][0])
	assert.True(t, math.IsNaN(table.Columns[2][1]), "non-numeric cell becomes NaN")

	curves := table.Curves()
	require.Len(t, curves, 2)
	assert.Equal(t, table.Columns[0], curves[1].X)
	assert.Equal(t, table.Columns[2], curves[1].Y)
}

func TestExtractColumnsNoNumbers(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "nothing to plot")

	_, err := ExtractColumns(f, "Sheet1")
	assert.ErrorIs(t, err, ErrNoNumericData)
}

func TestReadRangeValues(t *testing.T) {
	f, err := excelize.OpenFile(writeWorkbook(t))
	require.NoError(t, err)
	defer f.Close()

	r, err := ParseRange("$B$4:$B$6")
	require.NoError(t, err)
	values, err := readRangeValues(f, "Sheet1", r)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "0.6", "0.1"}, values)
}
