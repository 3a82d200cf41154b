package simpleplot

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// Script is an ordered list of gnuplot commands, one per line.
type Script struct {
	lines []string
}

// Command appends a formatted command.
func (s *Script) Command(format string, args ...interface{}) {
	s.lines = append(s.lines, fmt.Sprintf(format, args...))
}

// Append appends all commands of other.
func (s *Script) Append(other *Script) {
	if other == nil {
		return
	}
	s.lines = append(s.lines, other.lines...)
}

// Lines returns a copy of the commands.
func (s *Script) Lines() []string {
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// String renders the script as gnuplot reads it.
func (s *Script) String() string {
	if len(s.lines) == 0 {
		return ""
	}
	return strings.Join(s.lines, "\n") + "\n"
}

// WriteFile writes the script to path, truncating any previous content.
func (s *Script) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if _, err := w.WriteString(s.String()); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// terminalScript emits the output block of a save-mode session.
func terminalScript(opts Options) *Script {
	s := &Script{}
	term := "set term " + opts.Format.terminal()
	if opts.Width > 0 && opts.Height > 0 && opts.Format != FormatEPS {
		term += fmt.Sprintf(" size %d,%d", opts.Width, opts.Height)
	}
	s.Command("%s", term)
	s.Command("set output %s", quote(opts.saveName()))
	return s
}

// quote returns str as a double-quoted gnuplot string.
func quote(str string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(str) + `"`
}

// formatNumber formats a command argument with six decimals.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// formatValue formats a data sample with the shortest exact representation.
func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// plotClause formats one curve of a plot statement.
func plotClause(source, using, options, title string) string {
	clause := source + " u " + using
	if options != "" {
		clause += " " + options
	}
	if title != "" {
		clause += " title " + quote(title)
	}
	return clause
}

func joinClauses(clauses []string) string {
	return strings.Join(clauses, ", ")
}

// legendTitle returns the label of curve i, or "" when the legend is hidden.
func legendTitle(legend []string, i int) string {
	if i < len(legend) {
		return legend[i]
	}
	return ""
}

// legendCommand shows the key only when labels were given.
func legendCommand(legend []string) string {
	if len(legend) == 0 {
		return "set nokey"
	}
	return "set key"
}
