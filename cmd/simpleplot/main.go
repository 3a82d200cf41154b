// Package main provides the CLI entry point for simpleplot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/simpleplot/simpleplot-go/pkg/simpleplot"
	"github.com/simpleplot/simpleplot-go/pkg/simpleplot/gnuplot"
	"github.com/simpleplot/simpleplot-go/pkg/simpleplot/models"
	"github.com/simpleplot/simpleplot-go/pkg/simpleplot/parser"
)

var (
	mode        string
	outputPath  string
	format      string
	title       string
	titleFont   int
	xRange      string
	yRange      string
	xLabel      string
	yLabel      string
	plotOptions string
	legend      []string
	sheet       string
	chartName   string
	header      bool
	curves      int
	delay       float64
	width       int
	height      int
	keepFiles   bool
)

// runner overrides the gnuplot runner in tests.
var runner gnuplot.Runner

func main() {
	rootCmd := newRootCmd()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "simpleplot [input]",
		Short: "Plot numeric columns with gnuplot",
		Long: `simpleplot reads numeric columns from an xlsx, csv or whitespace-separated
file and plots them with gnuplot. The first column is the x axis.
In video mode the remaining columns are animation frames, --curves per frame.`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	flags := rootCmd.Flags()
	flags.StringVar(&mode, "mode", "plot", "Session mode: plot, save, video, none")
	flags.StringVarP(&outputPath, "output", "o", simpleplot.DefaultSaveName, "Output file in save mode")
	flags.StringVar(&format, "format", "png", "Save format: png, eps, svg")
	flags.StringVar(&title, "title", "", "Chart title")
	flags.IntVar(&titleFont, "title-font", 0, "Title font size")
	flags.StringVar(&xRange, "xrange", "", "X axis range as min:max")
	flags.StringVar(&yRange, "yrange", "", "Y axis range as min:max")
	flags.StringVar(&xLabel, "xlabel", "", "X axis label")
	flags.StringVar(&yLabel, "ylabel", "", "Y axis label")
	flags.StringVar(&plotOptions, "with", simpleplot.DefaultPlotOptions, "Style appended to every curve")
	flags.StringArrayVar(&legend, "legend", nil, "Legend label, once per curve")
	flags.StringVar(&sheet, "sheet", "", "Worksheet of an xlsx input (default: active sheet)")
	flags.StringVar(&chartName, "chart", "", "Reproduce the named Excel chart instead of reading columns")
	flags.BoolVar(&header, "header", false, "First line of a text input holds column labels")
	flags.IntVar(&curves, "curves", 1, "Curves per frame in video mode")
	flags.Float64Var(&delay, "delay", 0.1, "Seconds between animation frames")
	flags.IntVar(&width, "width", 0, "Terminal width in pixels")
	flags.IntVar(&height, "height", 0, "Terminal height in pixels")
	flags.BoolVar(&keepFiles, "keep-files", false, "Keep the generated script and data files")

	return rootCmd
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	// Validate input file exists
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	// Parse mode
	var sessionMode simpleplot.Mode
	switch mode {
	case "plot":
		sessionMode = simpleplot.ModePlot
	case "save":
		sessionMode = simpleplot.ModeSave
	case "video":
		sessionMode = simpleplot.ModeVideo
	case "none":
		sessionMode = simpleplot.ModeNone
	default:
		return fmt.Errorf("invalid mode: %s (must be plot, save, video, or none)", mode)
	}

	opts := simpleplot.DefaultOptions()
	opts.Mode = sessionMode
	opts.SaveName = outputPath
	opts.Format = simpleplot.SaveFormat(format)
	opts.Width, opts.Height = width, height
	opts.Curves = curves
	opts.KeepFiles = keepFiles
	opts.Runner = runner

	if cmd.Flags().Changed("chart") {
		return plotChart(cmd.Context(), inputPath, opts)
	}

	table, err := parser.ReadTable(inputPath, parser.ReadOptions{Sheet: sheet, Header: header})
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputPath, err)
	}
	if table.NumColumns() < 2 {
		return fmt.Errorf("%s: need an x column and at least one y column", inputPath)
	}

	d, err := simpleplot.NewDriver(opts)
	if err != nil {
		return err
	}
	defer d.Close()

	if err := configure(d); err != nil {
		return err
	}

	if sessionMode == simpleplot.ModeVideo {
		return animate(cmd.Context(), d, table)
	}

	if len(legend) == 0 && len(table.Headers) == table.NumColumns() {
		d.SetLegendTitles(table.Headers[1:])
	}
	return d.Plot(cmd.Context(), table.Curves()...)
}

// configure applies the session flags to the driver.
func configure(d *simpleplot.Driver) error {
	if title != "" {
		d.SetTitle(title)
	}
	if titleFont > 0 {
		d.SetTitleFont(titleFont)
	}
	if xRange != "" {
		r, err := parseAxisRange(xRange)
		if err != nil {
			return err
		}
		d.SetXRange(r.Min, r.Max)
	}
	if yRange != "" {
		r, err := parseAxisRange(yRange)
		if err != nil {
			return err
		}
		d.SetYRange(r.Min, r.Max)
	}
	if xLabel != "" {
		d.SetXLabel(xLabel)
	}
	if yLabel != "" {
		d.SetYLabel(yLabel)
	}
	d.SetPlotOptions(plotOptions)
	if len(legend) > 0 {
		d.SetLegendTitles(legend)
	}
	return nil
}

// animate buffers every frame of the table and plays them back.
func animate(ctx context.Context, d *simpleplot.Driver, table *models.Table) error {
	frames, err := splitFrames(table, curves)
	if err != nil {
		return err
	}
	for _, frame := range frames {
		if err := d.Plot(ctx, frame...); err != nil {
			return err
		}
	}
	return d.PlayAnimation(ctx, table.Columns[0], delay)
}

// splitFrames groups the y columns into frames of perFrame curves,
// matching the column layout of an animation data file.
func splitFrames(table *models.Table, perFrame int) ([][]models.Curve, error) {
	if perFrame < 1 {
		return nil, fmt.Errorf("--curves must be at least 1, got %d", perFrame)
	}
	ys := table.Columns[1:]
	if len(ys)%perFrame != 0 {
		return nil, fmt.Errorf("%d y columns cannot be split into frames of %d curves", len(ys), perFrame)
	}

	x := table.Columns[0]
	frames := make([][]models.Curve, 0, len(ys)/perFrame)
	for start := 0; start < len(ys); start += perFrame {
		frame := make([]models.Curve, 0, perFrame)
		for _, y := range ys[start : start+perFrame] {
			frame = append(frame, models.Curve{X: x, Y: y})
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// plotChart reproduces an Excel chart: its series, title, y axis and size.
func plotChart(ctx context.Context, inputPath string, opts simpleplot.Options) error {
	charts, err := parser.ExtractCharts(inputPath)
	if err != nil {
		return fmt.Errorf("reading charts: %w", err)
	}
	chart, err := parser.FindChart(charts, chartName)
	if err != nil {
		return err
	}

	f, err := excelize.OpenFile(inputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var chartCurves []models.Curve
	var names []string
	for _, s := range chart.Series {
		curve, name, err := parser.ResolveSeries(f, chart, s)
		if err != nil {
			return fmt.Errorf("series %q: %w", s.YRange, err)
		}
		chartCurves = append(chartCurves, curve)
		names = append(names, name)
	}

	if opts.Width == 0 && opts.Height == 0 {
		opts.Width, opts.Height = chart.W, chart.H
	}
	if opts.Mode == simpleplot.ModeVideo {
		opts.Mode = simpleplot.ModePlot
	}

	d, err := simpleplot.NewDriver(opts)
	if err != nil {
		return err
	}
	defer d.Close()

	if chart.Title != "" {
		d.SetTitle(chart.Title)
	}
	if chart.YAxisTitle != "" {
		d.SetYLabel(chart.YAxisTitle)
	}
	if chart.YAxisRange != nil {
		d.SetYRange(chart.YAxisRange.Min, chart.YAxisRange.Max)
	}
	if err := configure(d); err != nil {
		return err
	}
	if len(legend) == 0 && !allEmpty(names) {
		d.SetLegendTitles(names)
	}
	return d.Plot(ctx, chartCurves...)
}

// parseAxisRange parses "min:max".
func parseAxisRange(s string) (models.Range, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return models.Range{}, fmt.Errorf("invalid range %q (want min:max)", s)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.Range{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.Range{}, fmt.Errorf("invalid range %q: %w", s, err)
	}
	return models.Range{Min: lo, Max: hi}, nil
}

func allEmpty(values []string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}
