package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/simpleplot/simpleplot-go/pkg/simpleplot/models"
	"github.com/xuri/excelize/v2"
)

// ReadOptions configures ReadTable.
type ReadOptions struct {
	// Sheet selects the worksheet of an xlsx input. Empty means the active sheet.
	Sheet string
	// Header treats the first line of a text input as column labels.
	// Spreadsheets detect their header row automatically.
	Header bool
}

// ReadTable reads a numeric table from an xlsx workbook, a CSV file or a
// whitespace-separated text file (gnuplot's own data format), chosen by extension.
func ReadTable(path string, opts ReadOptions) (*models.Table, error) {
	var (
		table *models.Table
		err   error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		table, err = readWorkbook(path, opts.Sheet)
	case ".csv":
		table, err = readDelimitedFile(path, ',', opts.Header, false)
	default:
		table, err = readDelimitedFile(path, ' ', opts.Header, true)
	}
	if err != nil {
		return nil, err
	}

	table.Source = filepath.Base(path)
	return table, nil
}

func readWorkbook(path, sheet string) (*models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	return ExtractColumns(f, sheet)
}

func readDelimitedFile(path string, delimiter rune, header, whitespace bool) (*models.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var r io.Reader = file
	if whitespace {
		normalized, err := normalizeWhitespace(file)
		if err != nil {
			return nil, err
		}
		r = strings.NewReader(normalized)
	}
	return ReadDelimited(r, delimiter, header)
}

// ReadDelimited loads delimiter-separated numeric columns through a gota DataFrame.
func ReadDelimited(r io.Reader, delimiter rune, header bool) (*models.Table, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(header),
		dataframe.WithDelimiter(delimiter),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.Float),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoNumericData, df.Err)
	}
	if df.Nrow() == 0 || df.Ncol() == 0 {
		return nil, ErrNoNumericData
	}

	table := &models.Table{Rows: df.Nrow()}
	for _, name := range df.Names() {
		table.Columns = append(table.Columns, df.Col(name).Float())
	}
	if header {
		table.Headers = df.Names()
	}
	return table, nil
}

// normalizeWhitespace collapses runs of blanks into single spaces and drops
// blank lines and '#' comments, so the text can be split on one delimiter.
func normalizeWhitespace(r io.Reader) (string, error) {
	var b strings.Builder
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		b.WriteString(strings.Join(strings.Fields(line), " "))
		b.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}
