// Package parser reads numeric series for plotting from spreadsheets and text tables.
package parser

import "errors"

// ErrInvalidRange indicates a malformed cell range reference.
var ErrInvalidRange = errors.New("invalid range reference")

// ErrNoNumericData indicates the input holds no numeric block.
var ErrNoNumericData = errors.New("no numeric data")

// ErrChartNotFound indicates the requested chart does not exist in the workbook.
var ErrChartNotFound = errors.New("chart not found")
