package simpleplot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/simpleplot/simpleplot-go/pkg/simpleplot/gnuplot"
	"github.com/simpleplot/simpleplot-go/pkg/simpleplot/models"
)

// Driver is one plotting session. Each Driver owns its own temporary files
// and animation buffer, so independent drivers can be used side by side.
// A Driver is not safe for concurrent use.
//
// Example usage:
//
//	d, err := simpleplot.NewDriver(simpleplot.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	defer d.Close()
//	d.SetTitle("response")
//	err = d.Plot(ctx, models.Curve{X: x, Y: y})
type Driver struct {
	opts        Options
	id          string
	scriptPath  string
	dataPath    string
	settings    *Script
	plotOptions string
	legend      []string
	frames      *Accumulator
	logger      *log.Logger
	runner      gnuplot.Runner
}

// NewDriver creates a session. In save mode the format must be valid.
func NewDriver(opts Options) (*Driver, error) {
	if opts.Mode == "" {
		opts.Mode = ModePlot
	}
	if opts.Format == "" {
		opts.Format = FormatPNG
	}
	if opts.Mode == ModeSave && !opts.Format.Valid() {
		return nil, NewPlotError("new_driver", fmt.Errorf("%w: %q", ErrInvalidSaveFormat, opts.Format))
	}

	logger := opts.logger()
	runner := opts.Runner
	if runner == nil {
		runner = gnuplot.NewExecRunner(logger)
	}

	id := uuid.New().String()
	dir := opts.tempDir()
	return &Driver{
		opts:        opts,
		id:          id,
		scriptPath:  filepath.Join(dir, "gnuplot-"+id+".gp"),
		dataPath:    filepath.Join(dir, "gnuplot-data-"+id+".dat"),
		settings:    &Script{},
		plotOptions: DefaultPlotOptions,
		logger:      logger,
		runner:      runner,
	}, nil
}

// ID returns the session identifier embedded in the temporary file names.
func (d *Driver) ID() string { return d.id }

// ScriptPath returns the path of the session's command script.
func (d *Driver) ScriptPath() string { return d.scriptPath }

// DataPath returns the path of the session's data file.
func (d *Driver) DataPath() string { return d.dataPath }

// SetTitle sets the chart title.
func (d *Driver) SetTitle(title string) {
	d.settings.Command("set title %s", quote(title))
}

// SetTitleFont sets the title font size.
func (d *Driver) SetTitleFont(size int) {
	d.settings.Command("set title font \",%d\"", size)
}

// SetXRange sets the range of the x axis.
func (d *Driver) SetXRange(x0, x1 float64) {
	d.settings.Command("set xrange [%s:%s]", formatNumber(x0), formatNumber(x1))
}

// SetYRange sets the range of the y axis.
func (d *Driver) SetYRange(y0, y1 float64) {
	d.settings.Command("set yrange [%s:%s]", formatNumber(y0), formatNumber(y1))
}

// SetXLabel sets the x axis label.
func (d *Driver) SetXLabel(label string) {
	d.settings.Command("set xlabel %s", quote(label))
}

// SetYLabel sets the y axis label.
func (d *Driver) SetYLabel(label string) {
	d.settings.Command("set ylabel %s", quote(label))
}

// SetPlotOptions sets the style appended to every curve, e.g. "with lines".
func (d *Driver) SetPlotOptions(opts string) {
	d.plotOptions = strings.TrimSpace(opts)
}

// SetLegendTitles sets one legend label per curve. An empty list hides the legend.
func (d *Driver) SetLegendTitles(titles []string) {
	d.legend = append([]string(nil), titles...)
}

// Plot draws the given curves in one chart.
// In video mode each curve's Y values are buffered as the next frame of its slot instead.
func (d *Driver) Plot(ctx context.Context, curves ...models.Curve) error {
	if d.disabled("Plot") {
		return nil
	}
	if len(curves) == 0 {
		return NewPlotError("plot", ErrNoDataToRender)
	}
	for i, c := range curves {
		if c.Len() < 0 {
			return NewPlotError("plot", fmt.Errorf("%w: curve %d has %d x and %d y values", ErrDimensionMismatch, i, len(c.X), len(c.Y)))
		}
	}

	if d.opts.Mode == ModeVideo {
		return d.bufferCurves(curves)
	}

	if err := d.checkLegend(len(curves)); err != nil {
		return NewPlotError("plot", err)
	}

	columns := make([][]float64, 0, 2*len(curves))
	clauses := make([]string, len(curves))
	for i, c := range curves {
		columns = append(columns, c.X, c.Y)
		source := quote(d.dataPath)
		if i > 0 {
			source = "''"
		}
		clauses[i] = plotClause(source, fmt.Sprintf("%d:%d", 2*i+1, 2*i+2), d.plotOptions, legendTitle(d.legend, i))
	}
	if err := writeColumns(d.dataPath, columns); err != nil {
		return NewPlotError("plot", fmt.Errorf("writing data file: %w", err))
	}

	script := d.header()
	script.Command("plot %s", joinClauses(clauses))
	if err := d.render(ctx, script); err != nil {
		return NewPlotError("plot", err)
	}
	return nil
}

// bufferCurves appends one frame per curve, allocating the slots on first use.
func (d *Driver) bufferCurves(curves []models.Curve) error {
	if d.frames == nil {
		frames, err := NewAccumulator(len(curves))
		if err != nil {
			return NewPlotError("plot", err)
		}
		d.frames = frames
	}
	if len(curves) != d.frames.Curves() {
		return NewPlotError("plot", fmt.Errorf("%w: %d curves given, session buffers %d", ErrDimensionMismatch, len(curves), d.frames.Curves()))
	}
	for _, c := range curves {
		if err := d.frames.SetAxisLength(len(c.X)); err != nil {
			return NewPlotError("plot", err)
		}
	}
	for i, c := range curves {
		if err := d.frames.AppendFrame(i, c.Y); err != nil {
			return NewPlotError("plot", err)
		}
	}
	return nil
}

// AppendFrame buffers values as the next animation frame of the given curve.
// The first append allocates Options.Curves slots (one when unset).
func (d *Driver) AppendFrame(curve int, values []float64) error {
	if d.disabled("AppendFrame") {
		return nil
	}
	if d.frames == nil {
		n := d.opts.Curves
		if n == 0 {
			n = 1
		}
		frames, err := NewAccumulator(n)
		if err != nil {
			return NewPlotError("append_frame", err)
		}
		d.frames = frames
	}
	if err := d.frames.AppendFrame(curve, values); err != nil {
		return NewPlotError("append_frame", err)
	}
	return nil
}

// PlayAnimation writes the buffered frames, replays them with frameDelay seconds
// between frames and blocks until gnuplot exits. The buffer is cleared afterwards.
func (d *Driver) PlayAnimation(ctx context.Context, xAxis []float64, frameDelay float64) error {
	if d.disabled("PlayAnimation") {
		return nil
	}
	if d.frames == nil {
		return NewPlotError("play_animation", ErrNoDataToRender)
	}
	if err := d.frames.Validate(xAxis); err != nil {
		return NewPlotError("play_animation", err)
	}
	if err := d.checkLegend(d.frames.Curves()); err != nil {
		return NewPlotError("play_animation", err)
	}

	if err := writeColumns(d.dataPath, d.frames.Columns(xAxis)); err != nil {
		return NewPlotError("play_animation", fmt.Errorf("writing data file: %w", err))
	}

	script := d.header()
	script.Append(d.frames.loopScript(d.dataPath, d.plotOptions, d.legend, frameDelay))
	err := d.render(ctx, script)
	d.frames.Reset()
	if err != nil {
		return NewPlotError("play_animation", err)
	}
	return nil
}

// Close removes the session's temporary files unless Options.KeepFiles is set.
func (d *Driver) Close() error {
	if d.opts.KeepFiles {
		return nil
	}
	var errs []error
	for _, path := range []string{d.scriptPath, d.dataPath} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// header returns the terminal block (save mode) followed by the session settings.
func (d *Driver) header() *Script {
	script := &Script{}
	if d.opts.Mode == ModeSave {
		script.Append(terminalScript(d.opts))
	}
	script.Append(d.settings)
	script.Command("%s", legendCommand(d.legend))
	return script
}

// render writes the script and blocks on gnuplot.
func (d *Driver) render(ctx context.Context, script *Script) error {
	if err := script.WriteFile(d.scriptPath); err != nil {
		return fmt.Errorf("writing script: %w", err)
	}
	return d.runner.Run(ctx, d.scriptPath)
}

func (d *Driver) checkLegend(curves int) error {
	if len(d.legend) != 0 && len(d.legend) != curves {
		return fmt.Errorf("%w: %d legend titles for %d curves", ErrDimensionMismatch, len(d.legend), curves)
	}
	return nil
}

// disabled logs and reports whether the session is switched off.
func (d *Driver) disabled(op string) bool {
	if d.opts.Mode != ModeNone {
		return false
	}
	d.logger.Printf("[WARN] %s ignored: plotting is disabled for session %s", op, d.id)
	return true
}
