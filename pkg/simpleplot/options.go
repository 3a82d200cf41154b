// Package simpleplot drives gnuplot from Go: it writes temporary data files
// and a command script, then runs gnuplot on them.
package simpleplot

import (
	"log"
	"os"

	"github.com/simpleplot/simpleplot-go/pkg/simpleplot/gnuplot"
)

// Mode represents what a session does with its plots.
type Mode string

const (
	// ModeNone disables the session: plotting calls log a warning and do nothing.
	ModeNone Mode = "none"
	// ModePlot displays the chart in an interactive gnuplot window.
	ModePlot Mode = "plot"
	// ModeSave exports the chart to Options.SaveName.
	ModeSave Mode = "save"
	// ModeVideo buffers frames until PlayAnimation is called.
	ModeVideo Mode = "video"
)

// SaveFormat is the file format used in save mode.
type SaveFormat string

const (
	// FormatPNG is a raster export through the png terminal.
	FormatPNG SaveFormat = "png"
	// FormatEPS is a vector export through the epscairo terminal.
	FormatEPS SaveFormat = "eps"
	// FormatSVG is a vector export through the svg terminal.
	FormatSVG SaveFormat = "svg"
)

// DefaultSaveName is the export path used when none is given.
const DefaultSaveName = "plot.png"

// DefaultPlotOptions is the style appended to every plot clause.
const DefaultPlotOptions = "w l"

// Options configures a plotting session.
type Options struct {
	// Mode specifies the session mode (none, plot, save, video).
	Mode Mode
	// SaveName is the export path in save mode.
	SaveName string
	// Format is the export format in save mode.
	Format SaveFormat
	// Width and Height set the terminal size in pixels. Zero keeps gnuplot's default.
	Width  int
	Height int
	// Curves declares how many curves each animation frame carries when
	// frames are appended directly. Zero declares a single curve; Plot in
	// video mode declares the number of curves it is given.
	Curves int
	// TempDir holds the session's data and script files. Empty means os.TempDir().
	TempDir string
	// KeepFiles leaves the temporary files in place on Close.
	KeepFiles bool
	// Logger receives warnings. If nil, a stderr logger is used.
	Logger *log.Logger
	// Runner executes scripts. If nil, gnuplot is spawned from PATH.
	Runner gnuplot.Runner
}

// DefaultOptions returns options for an interactive session.
func DefaultOptions() Options {
	return Options{
		Mode:     ModePlot,
		SaveName: DefaultSaveName,
		Format:   FormatPNG,
	}
}

// Valid reports whether f is a supported save format.
func (f SaveFormat) Valid() bool {
	switch f {
	case FormatPNG, FormatEPS, FormatSVG:
		return true
	default:
		return false
	}
}

// terminal returns the gnuplot terminal name for the format.
func (f SaveFormat) terminal() string {
	switch f {
	case FormatEPS:
		return "epscairo"
	default:
		return string(f)
	}
}

// saveName returns the export path, switching the default name's extension for EPS.
func (o Options) saveName() string {
	name := o.SaveName
	if name == "" {
		name = DefaultSaveName
	}
	if name == DefaultSaveName && o.Format == FormatEPS {
		return "plot.eps"
	}
	return name
}

func (o Options) tempDir() string {
	if o.TempDir != "" {
		return o.TempDir
	}
	return os.TempDir()
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(os.Stderr, "simpleplot: ", log.LstdFlags)
}
