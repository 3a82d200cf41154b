package models

// Table is a column-major block of numeric samples read from an input file.
type Table struct {
	// Source is the file the table was read from (no path).
	Source string `json:"source"`
	// Headers holds the column labels when the input had a header row.
	Headers []string `json:"headers,omitempty"`
	// Columns holds one slice per column; all columns have Rows entries.
	Columns [][]float64 `json:"columns"`
	// Rows is the number of samples per column.
	Rows int `json:"rows"`
}

// NumColumns returns the number of columns in the table.
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// Curves pairs the first column with every other column.
func (t *Table) Curves() []Curve {
	if len(t.Columns) < 2 {
		return nil
	}
	curves := make([]Curve, 0, len(t.Columns)-1)
	for _, col := range t.Columns[1:] {
		curves = append(curves, Curve{X: t.Columns[0], Y: col})
	}
	return curves
}
