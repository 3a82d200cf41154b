package simpleplot

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/simpleplot/simpleplot-go/pkg/simpleplot/models"
)

// MaxBufferedCurves is the number of curve slots an animation can buffer.
const MaxBufferedCurves = 4

// MaxAnimatedCurves is the number of curves the frame loop can draw.
const MaxAnimatedCurves = 2

// boundingBoxMargin is the fraction of the maximum used to pad the y range.
const boundingBoxMargin = 0.05

// Accumulator buffers animation frames for one session.
// It is not safe for concurrent use.
type Accumulator struct {
	slots   [][][]float64 // slots[curve][frame][sample]
	axisLen int           // -1 until the first frame fixes it
}

// NewAccumulator allocates slots for the given number of curves.
func NewAccumulator(curves int) (*Accumulator, error) {
	if curves < 1 || curves > MaxBufferedCurves {
		return nil, fmt.Errorf("%w: %d curves, want 1 to %d", ErrUnsupportedCurveCount, curves, MaxBufferedCurves)
	}
	return &Accumulator{
		slots:   make([][][]float64, curves),
		axisLen: -1,
	}, nil
}

// SetAxisLength fixes the x-axis length that every frame must match.
func (a *Accumulator) SetAxisLength(n int) error {
	if a.axisLen >= 0 && a.axisLen != n {
		return fmt.Errorf("%w: x axis has %d samples, frames have %d", ErrDimensionMismatch, n, a.axisLen)
	}
	a.axisLen = n
	return nil
}

// AppendFrame appends values as the next frame of the given curve slot.
func (a *Accumulator) AppendFrame(curve int, values []float64) error {
	if curve < 0 || curve >= len(a.slots) {
		return fmt.Errorf("%w: curve %d outside %d allocated slots", ErrDimensionMismatch, curve, len(a.slots))
	}
	if a.axisLen < 0 {
		a.axisLen = len(values)
	}
	if len(values) != a.axisLen {
		return fmt.Errorf("%w: frame has %d samples, x axis has %d", ErrDimensionMismatch, len(values), a.axisLen)
	}

	frame := make([]float64, len(values))
	copy(frame, values)
	a.slots[curve] = append(a.slots[curve], frame)
	return nil
}

// Curves returns the number of allocated curve slots.
func (a *Accumulator) Curves() int {
	return len(a.slots)
}

// Frames returns the number of frames buffered in slot 0.
func (a *Accumulator) Frames() int {
	if len(a.slots) == 0 {
		return 0
	}
	return len(a.slots[0])
}

// Empty reports whether no frame has been buffered.
func (a *Accumulator) Empty() bool {
	for _, slot := range a.slots {
		if len(slot) > 0 {
			return false
		}
	}
	return true
}

// Reset discards every buffered frame but keeps the slot count.
func (a *Accumulator) Reset() {
	for i := range a.slots {
		a.slots[i] = nil
	}
	a.axisLen = -1
}

// Validate checks that the buffer can be rendered against xAxis.
func (a *Accumulator) Validate(xAxis []float64) error {
	if a.Empty() {
		return ErrNoDataToRender
	}
	if len(a.slots) > MaxAnimatedCurves {
		return fmt.Errorf("%w: %d curves, at most %d can be animated", ErrUnsupportedCurveCount, len(a.slots), MaxAnimatedCurves)
	}
	frames := len(a.slots[0])
	for i, slot := range a.slots[1:] {
		if len(slot) != frames {
			return fmt.Errorf("%w: curve %d has %d frames, curve 0 has %d", ErrDimensionMismatch, i+1, len(slot), frames)
		}
	}
	if len(xAxis) != a.axisLen {
		return fmt.Errorf("%w: x axis has %d samples, frames have %d", ErrDimensionMismatch, len(xAxis), a.axisLen)
	}
	return nil
}

// Columns lays the buffer out as data file columns:
// x, then per frame the values of every curve (c0f1 c1f1 c0f2 c1f2 ...).
func (a *Accumulator) Columns(xAxis []float64) [][]float64 {
	columns := make([][]float64, 0, 1+a.Frames()*len(a.slots))
	columns = append(columns, xAxis)
	for frame := 0; frame < a.Frames(); frame++ {
		for _, slot := range a.slots {
			columns = append(columns, slot[frame])
		}
	}
	return columns
}

// BoundingBox returns the padded y range of curve slot 0.
func (a *Accumulator) BoundingBox() models.Range {
	if len(a.slots) == 0 {
		return models.Range{}
	}
	return BoundingBox(a.slots[0])
}

// BoundingBox scans all frames for min and max and pads both by 5% of max.
// The pad keeps the sign of max, so a negative max moves both bounds inward.
func BoundingBox(frames [][]float64) models.Range {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, frame := range frames {
		if len(frame) == 0 {
			continue
		}
		lo = math.Min(lo, floats.Min(frame))
		hi = math.Max(hi, floats.Max(frame))
	}
	if math.IsInf(lo, 1) {
		return models.Range{}
	}

	pad := boundingBoxMargin * hi
	return models.Range{Min: lo - pad, Max: hi + pad}
}

// loopScript emits the frame loop that replays the data file.
func (a *Accumulator) loopScript(dataPath, plotOptions string, legend []string, delay float64) *Script {
	s := &Script{}
	box := a.BoundingBox()
	s.Command("set yrange [%s:%s]", formatNumber(box.Min), formatNumber(box.Max))
	s.Command("do for [t=2:%d] {", a.Frames()+1)

	columns := []string{"t"}
	if len(a.slots) == 2 {
		columns = []string{"2*t-2", "2*t-1"}
	}
	clauses := make([]string, len(columns))
	for i, col := range columns {
		source := quote(dataPath)
		if i > 0 {
			source = "''"
		}
		clauses[i] = plotClause(source, "1:"+col, plotOptions, legendTitle(legend, i))
	}
	s.Command("plot %s", joinClauses(clauses))
	s.Command("pause %s", formatNumber(delay))
	s.Command("}")
	return s
}
