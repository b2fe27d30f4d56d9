package app

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	colorful "github.com/lucasb-eyer/go-colorful"
	log "github.com/sirupsen/logrus"

	"github.com/AnkushinDaniil/bfield/entity/streamline"
)

const (
	pageTitle   = "Magnetic dipole field"
	chartSize   = "800px"
	bodyColor   = "#1f4fd8"
	bodySegment = 128
)

// inferno, sampled at nine stops
var palette = []string{
	"#000004", "#1b0c41", "#4a0c6b", "#781c6d", "#a52c60",
	"#cf4446", "#ed6925", "#fb9b06", "#fcffa4",
}

func (a *App) createPage(ctx context.Context, f *field) (*components.Page, error) {
	startTime := time.Now()
	defer func() {
		log.WithField("time", time.Since(startTime)).Debug("Creating charts")
	}()

	logMag := logMagnitude(f.bx, f.by)
	lo, hi := finiteRange(logMag, f)

	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)

	if a.Params.Mode.Streamlines() {
		tracer, err := streamline.NewTracer(f.xs, f.ys, f.bx, f.by,
			streamline.WithExclusionRadius(f.model.BodyRadius()),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create tracer: %w", err)
		}
		lines := tracer.TraceAll(a.Params.Density)
		log.WithField("lines", len(lines)).Debug("Streamlines traced")
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page.AddCharts(a.streamlineChart(f, lines, lo, hi))
	}
	if a.Params.Mode.Magnitude() {
		page.AddCharts(a.magnitudeChart(f, logMag, lo, hi))
	}
	return page, nil
}

func (a *App) streamlineChart(f *field, lines []streamline.Line, lo, hi float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			BackgroundColor: "#ffffff",
			Width:           chartSize,
			Height:          chartSize,
			PageTitle:       pageTitle,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Field lines",
			Subtitle: fmt.Sprintf("B0 = %g T, tilt = %g°", f.model.B0(), a.Params.TiltDegrees),
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithToolboxOpts(opts.Toolbox{
			Show: opts.Bool(true),
			Feature: &opts.ToolBoxFeature{
				SaveAsImage: &opts.ToolBoxFeatureSaveAsImage{
					Show:  opts.Bool(true),
					Type:  "png",
					Name:  "field-lines",
					Title: "Save as image",
				},
			},
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "x",
			Type: "value",
			Min:  -a.Params.ExtentX,
			Max:  a.Params.ExtentX,
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(false),
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "y",
			Type: "value",
			Min:  -a.Params.ExtentY,
			Max:  a.Params.ExtentY,
			SplitLine: &opts.SplitLine{
				Show: opts.Bool(false),
			},
		}),
	)

	for i, l := range lines {
		line.AddSeries(fmt.Sprintf("line %d", i), lineData(l),
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{
				Width: 1,
				Color: colorAt(normalize(meanLogMagnitude(f, l), lo, hi)),
			}),
		)
	}

	line.AddSeries("body", lineData(circle(f.model.BodyRadius())),
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: 3, Color: bodyColor}),
	)
	return line
}

func (a *App) magnitudeChart(f *field, logMag [][]float64, lo, hi float64) *charts.HeatMap {
	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			BackgroundColor: "#ffffff",
			Width:           chartSize,
			Height:          chartSize,
			PageTitle:       pageTitle,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "2 ln|B|",
			Subtitle: fmt.Sprintf("%dx%d samples", len(f.xs), len(f.ys)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Name: "x",
			Type: "category",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "y",
			Type: "category",
			Data: axisLabels(f.ys),
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange: &opts.VisualMapInRange{
				Color: palette,
			},
		}),
	)

	hm.SetXAxis(axisLabels(f.xs))
	hm.AddSeries("2 ln|B|", heatMapData(f, logMag))
	return hm
}

// logMagnitude is the colour scalar of the original plots, 2*ln(hypot(bx, by)).
func logMagnitude(bx, by [][]float64) [][]float64 {
	out := make([][]float64, len(bx))
	for j := range bx {
		out[j] = make([]float64, len(bx[j]))
		for i := range bx[j] {
			out[j][i] = 2 * math.Log(math.Hypot(bx[j][i], by[j][i]))
		}
	}
	return out
}

// finiteRange returns the bounds of logMag over samples outside the body.
func finiteRange(logMag [][]float64, f *field) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for j, y := range f.ys {
		for i, x := range f.xs {
			v := logMag[j][i]
			if !isFinite(v) || math.Hypot(x, y) < f.model.BodyRadius() {
				continue
			}
			lo, hi = min(lo, v), max(hi, v)
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

func heatMapData(f *field, logMag [][]float64) []opts.HeatMapData {
	data := make([]opts.HeatMapData, 0, len(f.xs)*len(f.ys))
	for j, y := range f.ys {
		for i, x := range f.xs {
			v := logMag[j][i]
			if !isFinite(v) || math.Hypot(x, y) < f.model.BodyRadius() {
				continue
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{i, j, v}})
		}
	}
	return data
}

func meanLogMagnitude(f *field, l streamline.Line) float64 {
	var sum float64
	var n int
	for _, p := range l {
		i, j := nearest(f.xs, p.X), nearest(f.ys, p.Y)
		v := 2 * math.Log(math.Hypot(f.bx[j][i], f.by[j][i]))
		if isFinite(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func nearest(axis []float64, v float64) int {
	step := (axis[len(axis)-1] - axis[0]) / float64(len(axis)-1)
	i := int(math.Round((v - axis[0]) / step))
	return min(max(i, 0), len(axis)-1)
}

func normalize(v, lo, hi float64) float64 {
	if !isFinite(v) || hi <= lo {
		return 0
	}
	return min(max((v-lo)/(hi-lo), 0), 1)
}

// colorAt blends the palette in Lab space, t in [0, 1].
func colorAt(t float64) string {
	pos := t * float64(len(palette)-1)
	i := min(int(pos), len(palette)-2)
	c1 := colorful.MustParseHex(palette[i])
	c2 := colorful.MustParseHex(palette[i+1])
	return c1.BlendLab(c2, pos-float64(i)).Clamped().Hex()
}

func circle(r float64) streamline.Line {
	l := make(streamline.Line, bodySegment+1)
	for k := range l {
		s, c := math.Sincos(2 * math.Pi * float64(k) / bodySegment)
		l[k] = streamline.Point{X: r * c, Y: r * s}
	}
	return l
}

func lineData(l streamline.Line) []opts.LineData {
	data := make([]opts.LineData, len(l))
	for i, p := range l {
		data[i] = opts.LineData{Value: []float64{p.X, p.Y}}
	}
	return data
}

func axisLabels(axis []float64) []string {
	labels := make([]string, len(axis))
	for i, v := range axis {
		labels[i] = strconv.FormatFloat(v, 'f', 1, 64)
	}
	return labels
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
