package parser

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"path"
	"strings"

	"github.com/simpleplot/simpleplot-go/pkg/simpleplot/models"
	"github.com/xuri/excelize/v2"
)

// ChartTypeMap maps OOXML chart element tags to chart type names.
// Only 2D types that map onto x/y curves are listed.
var ChartTypeMap = map[string]string{
	"lineChart":    "Line",
	"scatterChart": "XYScatter",
	"areaChart":    "Area",
	"barChart":     "Bar",
	"radarChart":   "Radar",
	"bubbleChart":  "Bubble",
	"stockChart":   "Stock",
}

// EMUPerPixel is the number of EMUs (English Metric Units) per pixel at 96 DPI.
const EMUPerPixel = 9525

// EMUToPixels converts drawing EMUs to pixels at 96 DPI.
func EMUToPixels(emu int64) int {
	return int(emu / EMUPerPixel)
}

type xmlRelationships struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
		Type   string `xml:"Type,attr"`
	} `xml:"Relationship"`
}

type xmlWorkbook struct {
	Sheets []struct {
		Name string `xml:"name,attr"`
		RID  string `xml:"id,attr"`
	} `xml:"sheets>sheet"`
}

type xmlSheet struct {
	Drawing struct {
		RID string `xml:"id,attr"`
	} `xml:"drawing"`
}

type xmlDrawing struct {
	TwoCell  []xmlAnchor `xml:"twoCellAnchor"`
	OneCell  []xmlAnchor `xml:"oneCellAnchor"`
	Absolute []xmlAnchor `xml:"absoluteAnchor"`
}

type xmlAnchor struct {
	Frame *struct {
		Props struct {
			Name string `xml:"name,attr"`
		} `xml:"nvGraphicFramePr>cNvPr"`
		Ext struct {
			Cx int64 `xml:"cx,attr"`
			Cy int64 `xml:"cy,attr"`
		} `xml:"xfrm>ext"`
		Chart struct {
			RID string `xml:"id,attr"`
		} `xml:"graphic>graphicData>chart"`
	} `xml:"graphicFrame"`
	Ext struct {
		Cx int64 `xml:"cx,attr"`
		Cy int64 `xml:"cy,attr"`
	} `xml:"ext"`
}

type xmlChartSpace struct {
	Title    *xmlTitle `xml:"chart>title"`
	PlotArea struct {
		Axes   []xmlAxis       `xml:"valAx"`
		Groups []xmlChartGroup `xml:",any"`
	} `xml:"chart>plotArea"`
}

type xmlTitle struct {
	Runs []string `xml:"tx>rich>p>r>t"`
}

func (t *xmlTitle) text() string {
	if t == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(t.Runs, ""))
}

type xmlAxis struct {
	Position struct {
		Val string `xml:"val,attr"`
	} `xml:"axPos"`
	Title *xmlTitle `xml:"title"`
	Min   *xmlValue `xml:"scaling>min"`
	Max   *xmlValue `xml:"scaling>max"`
}

type xmlValue struct {
	Val float64 `xml:"val,attr"`
}

type xmlChartGroup struct {
	XMLName xml.Name
	Series  []xmlSeries `xml:"ser"`
}

type xmlSeries struct {
	NameRef   string     `xml:"tx>strRef>f"`
	NameCache []string   `xml:"tx>strRef>strCache>pt>v"`
	NameValue string     `xml:"tx>v"`
	Cat       xmlDataRef `xml:"cat"`
	XVal      xmlDataRef `xml:"xVal"`
	Val       xmlDataRef `xml:"val"`
	YVal      xmlDataRef `xml:"yVal"`
}

type xmlDataRef struct {
	Num string `xml:"numRef>f"`
	Str string `xml:"strRef>f"`
}

func (r xmlDataRef) ref() string {
	if r.Num != "" {
		return strings.TrimSpace(r.Num)
	}
	return strings.TrimSpace(r.Str)
}

// ExtractCharts lists the charts of an xlsx workbook in sheet order.
func ExtractCharts(xlsxPath string) ([]models.Chart, error) {
	r, err := zip.OpenReader(xlsxPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var workbook xmlWorkbook
	if err := readZipXML(&r.Reader, "xl/workbook.xml", &workbook); err != nil {
		return nil, err
	}
	sheetTargets, err := readRelationships(&r.Reader, "xl/workbook.xml")
	if err != nil {
		return nil, err
	}

	var charts []models.Chart
	for _, sheet := range workbook.Sheets {
		sheetPath, ok := sheetTargets[sheet.RID]
		if !ok {
			continue
		}
		sheetCharts, err := chartsOnSheet(&r.Reader, sheet.Name, sheetPath)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet.Name, err)
		}
		charts = append(charts, sheetCharts...)
	}
	return charts, nil
}

// FindChart returns the chart with the given drawing name, or the first chart when name is empty.
func FindChart(charts []models.Chart, name string) (models.Chart, error) {
	for _, c := range charts {
		if name == "" || c.Name == name {
			return c, nil
		}
	}
	if name == "" {
		return models.Chart{}, ErrChartNotFound
	}
	return models.Chart{}, fmt.Errorf("%w: %q", ErrChartNotFound, name)
}

// chartsOnSheet follows sheet -> drawing -> chart relationships.
func chartsOnSheet(r *zip.Reader, sheetName, sheetPath string) ([]models.Chart, error) {
	var sheet xmlSheet
	if err := readZipXML(r, sheetPath, &sheet); err != nil {
		return nil, err
	}
	if sheet.Drawing.RID == "" {
		return nil, nil
	}

	sheetRels, err := readRelationships(r, sheetPath)
	if err != nil {
		return nil, err
	}
	drawingPath, ok := sheetRels[sheet.Drawing.RID]
	if !ok {
		return nil, nil
	}

	var drawing xmlDrawing
	if err := readZipXML(r, drawingPath, &drawing); err != nil {
		return nil, err
	}
	drawingRels, err := readRelationships(r, drawingPath)
	if err != nil {
		return nil, err
	}

	var charts []models.Chart
	anchors := append(append(drawing.TwoCell, drawing.OneCell...), drawing.Absolute...)
	for _, anchor := range anchors {
		if anchor.Frame == nil {
			continue
		}
		chartPath, ok := drawingRels[anchor.Frame.Chart.RID]
		if !ok {
			continue
		}
		chart, err := parseChartFile(r, chartPath)
		if err != nil {
			return nil, err
		}
		chart.Name = anchor.Frame.Props.Name
		chart.Sheet = sheetName

		cx, cy := anchor.Frame.Ext.Cx, anchor.Frame.Ext.Cy
		if cx == 0 || cy == 0 {
			cx, cy = anchor.Ext.Cx, anchor.Ext.Cy
		}
		chart.W, chart.H = EMUToPixels(cx), EMUToPixels(cy)
		charts = append(charts, *chart)
	}
	return charts, nil
}

// parseChartFile parses a chart part into its title, value axis and series.
func parseChartFile(r *zip.Reader, chartPath string) (*models.Chart, error) {
	var space xmlChartSpace
	if err := readZipXML(r, chartPath, &space); err != nil {
		return nil, err
	}

	chart := &models.Chart{
		ChartType: "unknown",
		Title:     space.Title.text(),
	}

	for _, group := range space.PlotArea.Groups {
		chartType, ok := ChartTypeMap[group.XMLName.Local]
		if !ok {
			continue
		}
		if chart.ChartType == "unknown" {
			chart.ChartType = chartType
		}
		for _, s := range group.Series {
			chart.Series = append(chart.Series, convertSeries(s))
		}
	}

	if axis := valueAxis(space.PlotArea.Axes); axis != nil {
		chart.YAxisTitle = axis.Title.text()
		if axis.Min != nil && axis.Max != nil {
			chart.YAxisRange = &models.Range{Min: axis.Min.Val, Max: axis.Max.Val}
		}
	}
	return chart, nil
}

func convertSeries(s xmlSeries) models.ChartSeries {
	out := models.ChartSeries{
		NameRange: strings.TrimSpace(s.NameRef),
		Name:      strings.TrimSpace(s.NameValue),
		XRange:    s.Cat.ref(),
		YRange:    s.Val.ref(),
	}
	if out.Name == "" && len(s.NameCache) > 0 {
		out.Name = strings.TrimSpace(s.NameCache[0])
	}
	if out.XRange == "" {
		out.XRange = s.XVal.ref()
	}
	if out.YRange == "" {
		out.YRange = s.YVal.ref()
	}
	return out
}

// valueAxis picks the vertical value axis (left or right), falling back to the first one.
func valueAxis(axes []xmlAxis) *xmlAxis {
	for i := range axes {
		if pos := axes[i].Position.Val; pos == "l" || pos == "r" {
			return &axes[i]
		}
	}
	if len(axes) > 0 {
		return &axes[0]
	}
	return nil
}

// ResolveSeries reads a chart series' cells into a curve. Categories that are
// not numeric (or missing) are replaced by the 1-based sample index.
func ResolveSeries(f *excelize.File, chart models.Chart, s models.ChartSeries) (models.Curve, string, error) {
	yRange, err := ParseRange(s.YRange)
	if err != nil {
		return models.Curve{}, "", err
	}
	yText, err := readRangeValues(f, chart.Sheet, yRange)
	if err != nil {
		return models.Curve{}, "", err
	}

	curve := models.Curve{Y: make([]float64, len(yText)), X: make([]float64, len(yText))}
	for i, v := range yText {
		curve.Y[i] = math.NaN()
		if n, ok := parseNumber(v); ok {
			curve.Y[i] = n
		}
		curve.X[i] = float64(i + 1)
	}

	if s.XRange != "" {
		xRange, err := ParseRange(s.XRange)
		if err != nil {
			return models.Curve{}, "", err
		}
		xText, err := readRangeValues(f, chart.Sheet, xRange)
		if err != nil {
			return models.Curve{}, "", err
		}
		if xs, ok := allNumbers(xText); ok && len(xs) == len(curve.Y) {
			curve.X = xs
		}
	}

	name := s.Name
	if name == "" && s.NameRange != "" {
		if nameRange, err := ParseRange(s.NameRange); err == nil {
			if values, err := readRangeValues(f, chart.Sheet, nameRange); err == nil && len(values) > 0 {
				name = values[0]
			}
		}
	}
	return curve, name, nil
}

func allNumbers(values []string) ([]float64, bool) {
	out := make([]float64, len(values))
	for i, v := range values {
		n, ok := parseNumber(v)
		if !ok {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// readRelationships maps relationship ids of a part to absolute zip paths.
func readRelationships(r *zip.Reader, partPath string) (map[string]string, error) {
	relsPath := path.Join(path.Dir(partPath), "_rels", path.Base(partPath)+".rels")
	var rels xmlRelationships
	if err := readZipXML(r, relsPath, &rels); err != nil {
		return nil, err
	}

	result := make(map[string]string, len(rels.Relationships))
	for _, rel := range rels.Relationships {
		result[rel.ID] = resolveTarget(partPath, rel.Target)
	}
	return result, nil
}

// resolveTarget resolves a relationship target against the part that owns it.
func resolveTarget(partPath, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(path.Dir(partPath), target))
}

// readZipXML decodes one part of the package. A missing part leaves v untouched.
func readZipXML(r *zip.Reader, name string, v interface{}) error {
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		if err := xml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parsing %s: %w", name, err)
		}
		return nil
	}
	return nil
}
