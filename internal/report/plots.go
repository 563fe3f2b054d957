package report

import (
	"bytes"
	"fmt"
	"math"

	"salesaudit/internal/errors"
	"salesaudit/internal/insights"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	plotWidth  = 8 * vg.Inch
	plotHeight = 5 * vg.Inch
	histBins   = 40
)

// Chart is a plot ready to be encoded to one file in the plots directory
type Chart struct {
	File string
	Plot *plot.Plot
}

// BarChart draws one bar per group in the given order. ok is false when
// there is nothing to draw.
func BarChart(title, ylabel string, groups []insights.Group) (*plot.Plot, bool, error) {
	if len(groups) == 0 {
		return nil, false, nil
	}
	values := make(plotter.Values, len(groups))
	labels := make([]string, len(groups))
	for i, g := range groups {
		values[i] = g.Value
		labels[i] = g.Label
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = ylabel

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to build bar chart %q", title)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return p, true, nil
}

// Histogram draws the distribution of the given values. NaN and infinite
// values are ignored.
func Histogram(title, xlabel string, values []float64) (*plot.Plot, bool, error) {
	present := make(plotter.Values, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			present = append(present, v)
		}
	}
	if len(present) == 0 {
		return nil, false, nil
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "Orders"

	hist, err := plotter.NewHist(present, histBins)
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to build histogram %q", title)
	}
	hist.FillColor = plotutil.Color(2)
	p.Add(hist)
	return p, true, nil
}

// EncodePNG renders a plot to PNG bytes
func EncodePNG(p *plot.Plot) ([]byte, error) {
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create png canvas: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteCharts encodes each chart and writes it into the plots directory
func (w *Writer) WriteCharts(charts []Chart) error {
	for _, c := range charts {
		data, err := EncodePNG(c.Plot)
		if err != nil {
			return errors.WriteError(w.PlotPath(c.File), err)
		}
		if err := w.WritePlot(c.File, data); err != nil {
			return err
		}
	}
	return nil
}

// KPICharts builds the standard chart set from the insight summary and the
// log-revenue values. Charts without data are left out.
func KPICharts(s insights.Summary, logRevenue []float64) ([]Chart, error) {
	type barSpec struct {
		file, title, ylabel string
		groups              []insights.Group
	}
	specs := []barSpec{
		{"revenue_by_category.png", "Revenue by Category", "Revenue", s.RevenueByCategory},
		{"return_rate_by_category.png", "Return Rate by Category", "Return Rate (%)", s.ReturnRateByCategory},
		{"return_rate_by_brand.png", "Return Rate by Brand (Top 20)", "Return Rate (%)", s.ReturnRateByBrand},
		{"return_rate_by_device.png", "Return Rate by Device", "Return Rate (%)", s.ReturnRateByDevice},
		{"delay_rate_by_region.png", "Delayed Deliveries by Region", "Delayed (%)", s.DelayRateByRegion},
	}

	var charts []Chart
	for _, spec := range specs {
		p, ok, err := BarChart(spec.title, spec.ylabel, spec.groups)
		if err != nil {
			return nil, err
		}
		if ok {
			charts = append(charts, Chart{File: spec.file, Plot: p})
		}
	}

	p, ok, err := Histogram("Revenue (log1p, capped)", "log(1 + revenue)", logRevenue)
	if err != nil {
		return nil, err
	}
	if ok {
		charts = append(charts, Chart{File: "revenue_log_hist.png", Plot: p})
	}
	return charts, nil
}
