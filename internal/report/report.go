package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	talib "github.com/markcheno/go-talib"

	"tradelens/internal/analytics"
)

// ImageResult 渲染产物，HTML 始终生成，PNG 需要 headless 浏览器。
type ImageResult struct {
	HTML        []byte `json:"-"`
	PNG         []byte `json:"-"`
	Base64      string `json:"base64,omitempty"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
}

func (r *ImageResult) DataURI() string {
	if r == nil {
		return ""
	}
	if r.Base64 == "" && len(r.PNG) > 0 {
		r.Base64 = base64.StdEncoding.EncodeToString(r.PNG)
	}
	if r.Base64 == "" {
		return ""
	}
	return "data:image/png;base64," + r.Base64
}

// Input 权益报表输入。
type Input struct {
	Context   context.Context
	AccountID string
	Curve     []analytics.EquityPoint
	SMAPeriod int
	Snapshot  bool
}

const (
	colorBackground    = "#060c1b"
	colorTextPrimary   = "#eceff4"
	colorTextSecondary = "#9ca3af"
	colorEquity        = "#34d399"
	colorSMA           = "#fbbf24"
	colorDrawdown      = "#f87171"

	chartWidthPx     = 1600
	equityHeightPx   = 600
	drawdownHeightPx = 300
)

// RenderEquity 生成账户权益与回撤图表。
func RenderEquity(input Input) (ImageResult, error) {
	if input.AccountID == "" {
		return ImageResult{}, fmt.Errorf("account id required for equity render")
	}
	if len(input.Curve) == 0 {
		return ImageResult{}, fmt.Errorf("no equity points for %s", input.AccountID)
	}
	html, desc, err := buildEquityHTML(input)
	if err != nil {
		return ImageResult{}, err
	}
	img := ImageResult{
		HTML:        html,
		Filename:    fmt.Sprintf("%s_equity.png", strings.ToLower(input.AccountID)),
		Description: desc,
	}
	if !input.Snapshot {
		return img, nil
	}
	if err := EnsureHeadlessAvailable(input.Context); err != nil {
		return ImageResult{}, err
	}
	png, err := renderHTMLToPNG(input.Context, html, chartWidthPx, equityHeightPx+drawdownHeightPx)
	if err != nil {
		return ImageResult{}, err
	}
	img.PNG = png
	img.Base64 = base64.StdEncoding.EncodeToString(png)
	return img, nil
}

var (
	headlessOnce sync.Once
	headlessErr  error
)

func EnsureHeadlessAvailable(ctx context.Context) error {
	headlessOnce.Do(func() {
		targetCtx := ctx
		if targetCtx == nil {
			targetCtx = context.Background()
		}
		parent, cancel := chromedp.NewContext(targetCtx)
		if cancel != nil {
			defer cancel()
		}
		headlessErr = chromedp.Run(parent)
	})
	return headlessErr
}

func buildEquityHTML(input Input) ([]byte, string, error) {
	page := components.NewPage()
	page.SetLayout(components.PageFlexLayout)

	xAxis := buildDateAxis(input.Curve)
	final := input.Curve[len(input.Curve)-1]
	maxDD := maxDrawdownPercent(input.Curve)
	desc := fmt.Sprintf("%s | equity %.2f | cum %.2fR | max dd %.1f%%",
		strings.ToUpper(input.AccountID), final.Equity, final.CumulativeR, maxDD)

	equity := charts.NewLine()
	equity.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", equityHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:         fmt.Sprintf("Equity %s", strings.ToUpper(input.AccountID)),
			Subtitle:      fmt.Sprintf("%.2fR cumulative | final equity %.2f", final.CumulativeR, final.Equity),
			Left:          "left",
			Top:           "10",
			TitleStyle:    &opts.TextStyle{Color: colorTextPrimary, FontSize: 18},
			SubtitleStyle: &opts.TextStyle{Color: colorTextSecondary},
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), TextStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", XAxisIndex: []int{0}}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale:     opts.Bool(true),
			AxisLabel: &opts.AxisLabel{Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.2)}},
		}),
	)
	equity.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
	)
	equity.SetXAxis(xAxis)
	equity.AddSeries("Equity", equityLineData(input.Curve),
		charts.WithLineStyleOpts(opts.LineStyle{Color: colorEquity, Width: 2}))

	if sma := smaSeries(input.Curve, input.SMAPeriod); sma != nil {
		equity.AddSeries(fmt.Sprintf("SMA%d", input.SMAPeriod), toLineData(sma, len(input.Curve)),
			charts.WithLineStyleOpts(opts.LineStyle{Color: colorSMA, Width: 2}))
	}

	page.AddCharts(equity, buildDrawdownChart(xAxis, input.Curve))

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), desc, nil
}

func buildDrawdownChart(xAxis []string, curve []analytics.EquityPoint) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme:           types.ThemeWesteros,
			Width:           fmt.Sprintf("%dpx", chartWidthPx),
			Height:          fmt.Sprintf("%dpx", drawdownHeightPx),
			BackgroundColor: colorBackground,
		}),
		charts.WithTitleOpts(opts.Title{Title: "Drawdown %", Left: "left", TitleStyle: &opts.TextStyle{Color: colorTextPrimary}}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{AxisLabel: &opts.AxisLabel{Show: opts.Bool(false)}}),
		charts.WithYAxisOpts(opts.YAxis{
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Color: colorTextSecondary},
			SplitLine: &opts.SplitLine{Show: opts.Bool(true), LineStyle: &opts.LineStyle{Color: colorTextSecondary, Opacity: opts.Float(0.15)}},
		}),
	)
	line.SetSeriesOptions(
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.25)}),
	)
	data := make([]opts.LineData, len(curve))
	for i, p := range curve {
		data[i] = opts.LineData{Value: round(-p.DrawdownPercent, 2)}
	}
	line.SetXAxis(xAxis)
	line.AddSeries("Drawdown", data, charts.WithLineStyleOpts(opts.LineStyle{Color: colorDrawdown, Width: 2}))
	return line
}

func buildDateAxis(curve []analytics.EquityPoint) []string {
	x := make([]string, len(curve))
	for i, p := range curve {
		x[i] = p.Date
	}
	return x
}

func equityLineData(curve []analytics.EquityPoint) []opts.LineData {
	data := make([]opts.LineData, len(curve))
	for i, p := range curve {
		data[i] = opts.LineData{Value: round(p.Equity, 2)}
	}
	return data
}

func smaSeries(curve []analytics.EquityPoint, period int) []float64 {
	if period <= 1 || len(curve) < period {
		return nil
	}
	values := make([]float64, len(curve))
	for i, p := range curve {
		values[i] = p.Equity
	}
	return talib.Sma(values, period)
}

func toLineData(series []float64, length int) []opts.LineData {
	line := make([]opts.LineData, length)
	offset := length - len(series)
	if offset < 0 {
		offset = 0
	}
	for i := 0; i < offset; i++ {
		line[i] = opts.LineData{Value: nil}
	}
	for i := 0; i < len(series) && offset+i < length; i++ {
		val := series[i]
		if math.IsNaN(val) || val == 0 {
			line[offset+i] = opts.LineData{Value: nil}
		} else {
			line[offset+i] = opts.LineData{Value: round(val, 2)}
		}
	}
	return line
}

func maxDrawdownPercent(curve []analytics.EquityPoint) float64 {
	var maxDD float64
	for _, p := range curve {
		if p.DrawdownPercent > maxDD {
			maxDD = p.DrawdownPercent
		}
	}
	return maxDD
}

func round(val float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(val)
	}
	scale := math.Pow10(decimals)
	return math.Round(val*scale) / scale
}

func renderHTMLToPNG(ctx context.Context, html []byte, width, height int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	parent, cancel := chromedp.NewContext(ctx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, 20*time.Second)
	defer cancelTimeout()

	dataURI := "data:text/html;base64," + base64.StdEncoding.EncodeToString(html)
	var screenshot []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(1500 * time.Millisecond),
		chromedp.FullScreenshot(&screenshot, 0),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return nil, err
	}
	return screenshot, nil
}
