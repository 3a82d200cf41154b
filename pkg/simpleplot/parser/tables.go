package parser

import (
	"strconv"
	"strings"

	"github.com/simpleplot/simpleplot-go/pkg/simpleplot/models"
)

// DetectTable finds the bounding box of the numeric cells in a sheet.
// header is the 1-based row of column labels directly above the block, or 0.
func DetectTable(rows [][]string) (block models.CellRange, header int, ok bool) {
	minRow, maxRow, minCol, maxCol := findNumericBounds(rows)
	if minRow < 0 {
		return block, 0, false
	}

	block = models.CellRange{R1: minRow + 1, C1: minCol + 1, R2: maxRow + 1, C2: maxCol + 1}
	if minRow > 0 && isLabelRow(rows[minRow-1], minCol, maxCol) {
		header = minRow
	}
	return block, header, true
}

// findNumericBounds finds the 0-based bounding box of cells holding numbers.
func findNumericBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if _, isNum := parseNumber(cell); !isNum {
				continue
			}
			if minRow < 0 {
				minRow = rowIdx
			}
			maxRow = rowIdx
			if minCol < 0 || colIdx < minCol {
				minCol = colIdx
			}
			if colIdx > maxCol {
				maxCol = colIdx
			}
		}
	}

	return
}

// isLabelRow reports whether a row holds text (and no numbers) within the column bounds.
func isLabelRow(row []string, minCol, maxCol int) bool {
	labels := 0
	for colIdx := minCol; colIdx <= maxCol && colIdx < len(row); colIdx++ {
		cell := strings.TrimSpace(row[colIdx])
		if cell == "" {
			continue
		}
		if _, isNum := parseNumber(cell); isNum {
			return false
		}
		labels++
	}
	return labels > 0
}

// parseNumber parses a cell as a float.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
