package parser

import (
	"fmt"
	"math"
	"strings"

	"github.com/simpleplot/simpleplot-go/pkg/simpleplot/models"
	"github.com/xuri/excelize/v2"
)

// ExtractColumns reads the numeric block of a sheet as a column-major table.
// Cells inside the block that are empty or not numeric become NaN.
func ExtractColumns(f *excelize.File, sheetName string) (*models.Table, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}

	block, header, ok := DetectTable(rows)
	if !ok {
		return nil, fmt.Errorf("%w: sheet %q", ErrNoNumericData, sheetName)
	}

	table := &models.Table{Rows: block.R2 - block.R1 + 1}
	for col := block.C1; col <= block.C2; col++ {
		values := make([]float64, 0, table.Rows)
		for row := block.R1; row <= block.R2; row++ {
			values = append(values, cellNumber(rows, row, col))
		}
		table.Columns = append(table.Columns, values)

		if header > 0 {
			table.Headers = append(table.Headers, cellText(rows, header, col))
		}
	}

	return table, nil
}

// cellNumber returns the value at 1-based coordinates, or NaN.
func cellNumber(rows [][]string, row, col int) float64 {
	if v, ok := parseNumber(cellText(rows, row, col)); ok {
		return v
	}
	return math.NaN()
}

// cellText returns the trimmed text at 1-based coordinates.
func cellText(rows [][]string, row, col int) string {
	if row < 1 || row > len(rows) || col < 1 || col > len(rows[row-1]) {
		return ""
	}
	return strings.TrimSpace(rows[row-1][col-1])
}

// readRangeValues reads every cell of a range with excelize, row by row.
func readRangeValues(f *excelize.File, defaultSheet string, r models.CellRange) ([]string, error) {
	sheet := r.Sheet
	if sheet == "" {
		sheet = defaultSheet
	}
	names := cellNames(r)
	values := make([]string, 0, len(names))
	for _, name := range names {
		v, err := f.GetCellValue(sheet, name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}
		values = append(values, strings.TrimSpace(v))
	}
	return values, nil
}
