package models

// ChartSeries represents the cell references behind one chart series.
type ChartSeries struct {
	// Name is the series display name.
	Name string `json:"name"`
	// NameRange is the range reference holding the series name.
	NameRange string `json:"name_range,omitempty"`
	// XRange is the range reference for X values (category or xVal).
	XRange string `json:"x_range,omitempty"`
	// YRange is the range reference for Y values (val or yVal).
	YRange string `json:"y_range,omitempty"`
}

// Chart describes an Excel chart that can be reproduced with gnuplot.
type Chart struct {
	// Name is the drawing object name.
	Name string `json:"name"`
	// Sheet is the sheet the chart is anchored on.
	Sheet string `json:"sheet"`
	// ChartType is the chart type (e.g., Line, XYScatter).
	ChartType string `json:"chart_type"`
	// Title is the chart title.
	Title string `json:"title,omitempty"`
	// YAxisTitle is the Y-axis title.
	YAxisTitle string `json:"y_axis_title,omitempty"`
	// YAxisRange is the fixed Y-axis range, nil when Excel scales automatically.
	YAxisRange *Range `json:"y_axis_range,omitempty"`
	// W is the chart width in pixels (0 if unknown).
	W int `json:"w"`
	// H is the chart height in pixels (0 if unknown).
	H int `json:"h"`
	// Series is the list of series included in the chart.
	Series []ChartSeries `json:"series"`
}
