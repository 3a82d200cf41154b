// Package models defines the data structures passed between readers and the plot driver.
package models

// Curve is one plotted series: Y[i] is drawn at X[i].
type Curve struct {
	// X holds the abscissae.
	X []float64 `json:"x"`
	// Y holds the ordinates, paired index by index with X.
	Y []float64 `json:"y"`
}

// Len returns the number of samples, or -1 when X and Y are not paired.
func (c Curve) Len() int {
	if len(c.X) != len(c.Y) {
		return -1
	}
	return len(c.X)
}

// Range is a closed axis interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}
