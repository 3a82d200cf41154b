package simpleplot

import (
	"bufio"
	"math"
	"os"
)

// writeColumns writes column-major data as whitespace-separated rows.
// Columns shorter than the longest one are padded with NaN, which gnuplot skips.
func writeColumns(path string, columns [][]float64) error {
	rows := 0
	for _, col := range columns {
		if len(col) > rows {
			rows = len(col)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)

	for i := 0; i < rows; i++ {
		for j, col := range columns {
			if j > 0 {
				w.WriteByte(' ')
			}
			v := math.NaN()
			if i < len(col) {
				v = col[i]
			}
			w.WriteString(formatValue(v))
		}
		w.WriteByte('\n')
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
