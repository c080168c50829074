// Package chart renders daily price history as a PNG line chart.
package chart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/m3rciful/tradebot/core/logger"
	"github.com/m3rciful/tradebot/internal/exchange"
)

const (
	width  = 1000
	height = 600
	// Half a day on each side keeps the first and last points off the frame.
	xPadding = 12 * time.Hour
)

var errNoCandles = errors.New("chart: no candles to render")

// Renderer draws open, close, high and low series for one symbol.
type Renderer struct {
	quoteAsset string
}

// New returns a Renderer labelling prices in quoteAsset.
func New(quoteAsset string) *Renderer {
	return &Renderer{quoteAsset: quoteAsset}
}

// RenderPriceChart returns a PNG with one point per candle in every series.
func (r *Renderer) RenderPriceChart(ctx context.Context, symbol string, candles []exchange.Candle) ([]byte, error) {
	if len(candles) == 0 {
		return nil, errNoCandles
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	n := len(candles)
	dates := make([]time.Time, n)
	opens, closes := make([]float64, n), make([]float64, n)
	highs, lows := make([]float64, n), make([]float64, n)
	for i, c := range candles {
		dates[i] = c.OpenTime
		opens[i] = c.Open.InexactFloat64()
		closes[i] = c.Close.InexactFloat64()
		highs[i] = c.High.InexactFloat64()
		lows[i] = c.Low.InexactFloat64()
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s last %d days", symbol, n),
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			TickStyle:      chart.Style{TextRotationDegrees: 45},
			Range: &chart.ContinuousRange{
				Min: chart.TimeToFloat64(dates[0].Add(-xPadding)),
				Max: chart.TimeToFloat64(dates[n-1].Add(xPadding)),
			},
		},
		YAxis: chart.YAxis{
			Name:  fmt.Sprintf("Price (%s)", r.quoteAsset),
			Range: priceRange(lows, highs),
		},
		Series: []chart.Series{
			series("Open", dates, opens, 0, false),
			series("Close", dates, closes, 1, false),
			series("High", dates, highs, 2, true),
			series("Low", dates, lows, 3, true),
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart: render %s: %w", symbol, err)
	}

	logger.Debug(ctx, "chart", "chart.rendered",
		slog.String("status", "ok"),
		slog.String("symbol", symbol),
		slog.Int("count", n),
		slog.Int("bytes", buf.Len()),
		slog.Duration("duration", logger.Took(start)),
	)
	return buf.Bytes(), nil
}

func series(name string, x []time.Time, y []float64, color int, dashed bool) chart.TimeSeries {
	style := chart.Style{
		StrokeColor: chart.GetDefaultColor(color),
		StrokeWidth: 2,
	}
	if dashed {
		style.StrokeDashArray = []float64{6, 4}
		style.StrokeColor = style.StrokeColor.WithAlpha(160)
	} else {
		style.DotColor = style.StrokeColor
		style.DotWidth = 3
	}
	return chart.TimeSeries{Name: name, XValues: x, YValues: y, Style: style}
}

// priceRange spans every low and high with a small margin. A flat history
// still gets a non-empty range.
func priceRange(lows, highs []float64) *chart.ContinuousRange {
	lo, hi := lows[0], highs[0]
	for i := range lows {
		lo = min(lo, lows[i], highs[i])
		hi = max(hi, lows[i], highs[i])
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = max(hi*0.01, 1e-8)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}
