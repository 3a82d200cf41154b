package parser

import (
	"fmt"
	"strings"

	"github.com/simpleplot/simpleplot-go/pkg/simpleplot/models"
	"github.com/xuri/excelize/v2"
)

// ParseRange parses a range reference such as 'Sheet 1'!$A$2:$A$12.
// A single cell reference yields a one-cell range.
func ParseRange(ref string) (models.CellRange, error) {
	var r models.CellRange
	ref = strings.TrimSpace(ref)

	// Split by the last ! to separate sheet name and cells
	if idx := strings.LastIndex(ref, "!"); idx >= 0 {
		r.Sheet = strings.ReplaceAll(strings.Trim(ref[:idx], "'"), "''", "'")
		ref = ref[idx+1:]
	}
	ref = strings.ReplaceAll(ref, "$", "")
	if ref == "" {
		return r, fmt.Errorf("%w: empty reference", ErrInvalidRange)
	}

	parts := strings.Split(ref, ":")
	if len(parts) > 2 {
		return r, fmt.Errorf("%w: %q", ErrInvalidRange, ref)
	}
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}

	var err error
	if r.C1, r.R1, err = excelize.CellNameToCoordinates(parts[0]); err != nil {
		return r, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	if r.C2, r.R2, err = excelize.CellNameToCoordinates(parts[1]); err != nil {
		return r, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}
	if r.R2 < r.R1 {
		r.R1, r.R2 = r.R2, r.R1
	}
	if r.C2 < r.C1 {
		r.C1, r.C2 = r.C2, r.C1
	}
	return r, nil
}

// cellNames lists the cells of a range row by row.
func cellNames(r models.CellRange) []string {
	names := make([]string, 0, r.Cells())
	for row := r.R1; row <= r.R2; row++ {
		for col := r.C1; col <= r.C2; col++ {
			name, _ := excelize.CoordinatesToCellName(col, row)
			names = append(names, name)
		}
	}
	return names
}
