package simpleplot

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/simpleplot/simpleplot-go/pkg/simpleplot/models"
	"github.com/simpleplot/simpleplot-go/pkg/simpleplot/parser"
)

// recordingRunner captures the script content at the time gnuplot would read it.
type recordingRunner struct {
	scripts []string
	err     error
}

func (r *recordingRunner) Run(ctx context.Context, scriptPath string) error {
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return err
	}
	r.scripts = append(r.scripts, string(data))
	return r.err
}

func (r *recordingRunner) last() string {
	if len(r.scripts) == 0 {
		return ""
	}
	return r.scripts[len(r.scripts)-1]
}

func newTestDriver(t *testing.T, mode Mode) (*Driver, *recordingRunner, *bytes.Buffer) {
	t.Helper()
	runner := &recordingRunner{}
	var logs bytes.Buffer
	opts := DefaultOptions()
	opts.Mode = mode
	opts.TempDir = t.TempDir()
	opts.Runner = runner
	opts.Logger = log.New(&logs, "", 0)
	d, err := NewDriver(opts)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d, runner, &logs
}

func span(n int, lo, hi float64) []float64 {
	x := make([]float64, n)
	return floats.Span(x, lo, hi)
}

func TestNewDriverInvalidSaveFormat(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeSave
	opts.Format = "bmp"

	_, err := NewDriver(opts)
	assert.ErrorIs(t, err, ErrInvalidSaveFormat)

	var plotErr *PlotError
	require.True(t, errors.As(err, &plotErr))
	assert.Equal(t, "new_driver", plotErr.Op)
}

func TestNewDriverUniquePaths(t *testing.T) {
	a, _, _ := newTestDriver(t, ModePlot)
	b, _, _ := newTestDriver(t, ModePlot)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Contains(t, a.ScriptPath(), a.ID())
	assert.Contains(t, a.DataPath(), a.ID())
	assert.NotEqual(t, a.DataPath(), b.DataPath())
}

func TestPlotSingleCurve(t *testing.T) {
	d, runner, _ := newTestDriver(t, ModePlot)
	d.SetTitle("prova")
	d.SetTitleFont(20)
	d.SetXRange(0, 10)
	d.SetYRange(-1, 1)

	x := []float64{0, 1, 2}
	require.NoError(t, d.Plot(context.Background(), models.Curve{X: x, Y: []float64{0, 0.5, 1}}))

	lines := strings.Split(strings.TrimSpace(runner.last()), "\n")
	assert.Equal(t, []string{
		`set title "prova"`,
		`set title font ",20"`,
		"set xrange [0.000000:10.000000]",
		"set yrange [-1.000000:1.000000]",
		"set nokey",
		`plot "` + d.DataPath() + `" u 1:2 w l`,
	}, lines)

	data, err := os.ReadFile(d.DataPath())
	require.NoError(t, err)
	assert.Equal(t, "0 0\n1 0.5\n2 1\n", string(data))
}

func TestPlotMultipleCurvesWithLegend(t *testing.T) {
	d, runner, _ := newTestDriver(t, ModePlot)
	d.SetPlotOptions("  with points ")
	d.SetLegendTitles([]string{"a", "b", "c"})

	x := []float64{0, 1}
	curves := []models.Curve{{X: x, Y: x}, {X: x, Y: x}, {X: []float64{5}, Y: []float64{6}}}
	require.NoError(t, d.Plot(context.Background(), curves...))

	script := runner.last()
	assert.Contains(t, script, "set key\n")
	assert.Contains(t, script, `u 1:2 with points title "a", '' u 3:4 with points title "b", '' u 5:6 with points title "c"`)

	data, err := os.ReadFile(d.DataPath())
	require.NoError(t, err)
	assert.Equal(t, "0 0 0 0 5 6\n1 1 1 1 NaN NaN\n", string(data))
}

func TestPlotErrors(t *testing.T) {
	d, runner, _ := newTestDriver(t, ModePlot)
	ctx := context.Background()

	err := d.Plot(ctx)
	assert.ErrorIs(t, err, ErrNoDataToRender)

	err = d.Plot(ctx, models.Curve{X: []float64{1, 2}, Y: []float64{1}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	d.SetLegendTitles([]string{"only one"})
	err = d.Plot(ctx, models.Curve{X: []float64{1}, Y: []float64{1}}, models.Curve{X: []float64{1}, Y: []float64{1}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	assert.Empty(t, runner.scripts)
	_, statErr := os.Stat(d.DataPath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestPlotSpawnFailure(t *testing.T) {
	d, runner, _ := newTestDriver(t, ModePlot)
	runner.err = ErrSpawnFailure

	err := d.Plot(context.Background(), models.Curve{X: []float64{1}, Y: []float64{1}})
	assert.ErrorIs(t, err, ErrSpawnFailure)
}

func TestSaveModeTerminalBlockFirst(t *testing.T) {
	tests := []struct {
		format   SaveFormat
		saveName string
		width    int
		wantTerm string
		wantOut  string
	}{
		{FormatPNG, "", 0, "set term png", `set output "plot.png"`},
		{FormatPNG, "fig.png", 0, "set term png", `set output "fig.png"`},
		{FormatPNG, "fig.png", 640, "set term png size 640,480", `set output "fig.png"`},
		{FormatEPS, DefaultSaveName, 0, "set term epscairo", `set output "plot.eps"`},
		{FormatEPS, "fig.eps", 640, "set term epscairo", `set output "fig.eps"`},
		{FormatSVG, "fig.svg", 0, "set term svg", `set output "fig.svg"`},
	}

	for _, tt := range tests {
		t.Run(string(tt.format)+"/"+tt.saveName, func(t *testing.T) {
			runner := &recordingRunner{}
			opts := Options{
				Mode:     ModeSave,
				Format:   tt.format,
				SaveName: tt.saveName,
				TempDir:  t.TempDir(),
				Runner:   runner,
				Logger:   log.New(&bytes.Buffer{}, "", 0),
			}
			if tt.width > 0 {
				opts.Width, opts.Height = tt.width, 480
			}
			d, err := NewDriver(opts)
			require.NoError(t, err)
			defer d.Close()
			d.SetTitle("t")

			require.NoError(t, d.Plot(context.Background(), models.Curve{X: []float64{1}, Y: []float64{2}}))

			lines := strings.Split(runner.last(), "\n")
			assert.Equal(t, tt.wantTerm, lines[0])
			assert.Equal(t, tt.wantOut, lines[1])
			assert.Equal(t, `set title "t"`, lines[2])
		})
	}
}

func TestDisabledSessionDoesNothing(t *testing.T) {
	d, runner, logs := newTestDriver(t, ModeNone)
	ctx := context.Background()

	assert.NoError(t, d.Plot(ctx, models.Curve{X: []float64{1}, Y: []float64{1, 2}}))
	assert.NoError(t, d.AppendFrame(0, []float64{1}))
	assert.NoError(t, d.PlayAnimation(ctx, []float64{1}, 0.1))

	assert.Empty(t, runner.scripts)
	_, err := os.Stat(d.DataPath())
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(d.ScriptPath())
	assert.True(t, os.IsNotExist(err))
	assert.Equal(t, 3, strings.Count(logs.String(), "[WARN]"))
}

func TestVideoModeEndToEnd(t *testing.T) {
	d, runner, _ := newTestDriver(t, ModeVideo)
	ctx := context.Background()

	x := span(11, 0, 10)
	reversed := make([]float64, len(x))
	for i, v := range x {
		reversed[len(x)-1-i] = v
	}

	require.NoError(t, d.Plot(ctx, models.Curve{X: x, Y: x}, models.Curve{X: x, Y: reversed}))
	require.NoError(t, d.Plot(ctx, models.Curve{X: x, Y: reversed}, models.Curve{X: x, Y: x}))
	assert.Empty(t, runner.scripts, "video mode buffers without rendering")

	require.NoError(t, d.PlayAnimation(ctx, x, 0.1))

	script := runner.last()
	assert.Equal(t, 1, strings.Count(script, "do for ["))
	assert.Contains(t, script, "do for [t=2:3] {")
	assert.Equal(t, 1, strings.Count(script, "\nplot "))
	assert.Contains(t, script, `u 1:2*t-2 w l, '' u 1:2*t-1 w l`)
	assert.Contains(t, script, "set yrange [-0.500000:10.500000]")
	assert.Contains(t, script, "pause 0.100000\n}\n")

	// x, then frame 1 (curve 0, curve 1), then frame 2 (curve 0, curve 1)
	table, err := parser.ReadTable(d.DataPath(), parser.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 11, table.Rows)
	assert.Equal(t, 1+2*2, table.NumColumns())
	assert.Equal(t, x, table.Columns[0])
	assert.Equal(t, reversed, table.Columns[2])
	assert.Equal(t, reversed, table.Columns[3])

	assert.ErrorIs(t, d.PlayAnimation(ctx, x, 0.1), ErrNoDataToRender, "buffer is cleared after rendering")
}

func TestVideoModeCurveCountChanges(t *testing.T) {
	d, _, _ := newTestDriver(t, ModeVideo)
	ctx := context.Background()
	x := []float64{0, 1}

	require.NoError(t, d.Plot(ctx, models.Curve{X: x, Y: x}))
	err := d.Plot(ctx, models.Curve{X: x, Y: x}, models.Curve{X: x, Y: x})
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	err = d.Plot(ctx, models.Curve{X: []float64{0, 1, 2}, Y: []float64{0, 1, 2}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestPlayAnimationUnsupportedCurveCountWritesNothing(t *testing.T) {
	d, runner, _ := newTestDriver(t, ModeVideo)
	ctx := context.Background()
	x := []float64{0, 1}
	c := models.Curve{X: x, Y: x}

	require.NoError(t, d.Plot(ctx, c, c, c))
	err := d.PlayAnimation(ctx, x, 0.1)
	assert.ErrorIs(t, err, ErrUnsupportedCurveCount)

	assert.Empty(t, runner.scripts)
	_, statErr := os.Stat(d.DataPath())
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(d.ScriptPath())
	assert.True(t, os.IsNotExist(statErr))
}

func TestPlayAnimationWithoutFrames(t *testing.T) {
	d, _, _ := newTestDriver(t, ModeVideo)

	err := d.PlayAnimation(context.Background(), []float64{0, 1}, 0.1)
	assert.ErrorIs(t, err, ErrNoDataToRender)
}

func TestAppendFrameDeclaredCurves(t *testing.T) {
	runner := &recordingRunner{}
	d, err := NewDriver(Options{
		Mode:    ModeVideo,
		Curves:  2,
		TempDir: t.TempDir(),
		Runner:  runner,
		Logger:  log.New(&bytes.Buffer{}, "", 0),
	})
	require.NoError(t, err)
	defer d.Close()

	x := []float64{0, 1, 2}
	require.NoError(t, d.AppendFrame(0, []float64{1, 2, 3}))
	require.NoError(t, d.AppendFrame(1, []float64{3, 2, 1}))
	assert.ErrorIs(t, d.AppendFrame(0, []float64{1, 2}), ErrDimensionMismatch)
	assert.ErrorIs(t, d.AppendFrame(2, []float64{1, 2, 3}), ErrDimensionMismatch)

	assert.ErrorIs(t, d.PlayAnimation(context.Background(), []float64{0, 1}, 0.2), ErrDimensionMismatch)
	require.NoError(t, d.PlayAnimation(context.Background(), x, 0.2))
	assert.Contains(t, runner.last(), "do for [t=2:2] {")
}

func TestCloseRemovesFiles(t *testing.T) {
	dir := t.TempDir()
	runner := &recordingRunner{}
	d, err := NewDriver(Options{Mode: ModePlot, TempDir: dir, Runner: runner, Logger: log.New(&bytes.Buffer{}, "", 0)})
	require.NoError(t, err)

	require.NoError(t, d.Plot(context.Background(), models.Curve{X: []float64{1}, Y: []float64{1}}))
	require.NoError(t, d.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, d.Close(), "closing twice is harmless")
}

func TestCloseKeepFiles(t *testing.T) {
	dir := t.TempDir()
	d, err := NewDriver(Options{Mode: ModePlot, TempDir: dir, KeepFiles: true, Runner: &recordingRunner{}, Logger: log.New(&bytes.Buffer{}, "", 0)})
	require.NoError(t, err)

	require.NoError(t, d.Plot(context.Background(), models.Curve{X: []float64{1}, Y: []float64{1}}))
	require.NoError(t, d.Close())

	_, err = os.Stat(filepath.Join(dir, filepath.Base(d.ScriptPath())))
	assert.NoError(t, err)
}
