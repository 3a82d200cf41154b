package simpleplot

import (
	"errors"
	"fmt"

	"github.com/simpleplot/simpleplot-go/pkg/simpleplot/gnuplot"
)

// ErrDimensionMismatch indicates paired sequences of unequal length.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// ErrUnsupportedCurveCount indicates more curves than the script emitter supports.
var ErrUnsupportedCurveCount = errors.New("unsupported curve count")

// ErrNoDataToRender indicates a render call with nothing buffered.
var ErrNoDataToRender = errors.New("no data to render")

// ErrInvalidSaveFormat indicates an unrecognized output format in save mode.
var ErrInvalidSaveFormat = errors.New("invalid save format")

// ErrSpawnFailure indicates gnuplot could not be started.
var ErrSpawnFailure = gnuplot.ErrSpawnFailure

// PlotError represents a failed session operation.
type PlotError struct {
	Op  string // "plot", "append_frame", "play_animation", "new_driver"
	Err error
}

func (e *PlotError) Error() string {
	return fmt.Sprintf("simpleplot %s: %v", e.Op, e.Err)
}

func (e *PlotError) Unwrap() error {
	return e.Err
}

// NewPlotError creates a new PlotError.
func NewPlotError(op string, err error) *PlotError {
	return &PlotError{
		Op:  op,
		Err: err,
	}
}
