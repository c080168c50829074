package chart

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/tradebot/internal/exchange"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func candles(n int, flat bool) []exchange.Candle {
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	out := make([]exchange.Candle, n)
	for i := range out {
		base := decimal.NewFromInt(int64(100 + i))
		if flat {
			base = decimal.NewFromInt(100)
		}
		out[i] = exchange.Candle{
			OpenTime: start.AddDate(0, 0, i),
			Open:     base,
			Close:    base.Add(decimal.NewFromFloat(0.5)),
			High:     base.Add(decimal.NewFromInt(2)),
			Low:      base.Sub(decimal.NewFromInt(1)),
		}
		if flat {
			out[i].Close, out[i].High, out[i].Low = base, base, base
		}
	}
	return out
}

func TestRenderPriceChartProducesPNG(t *testing.T) {
	r := New("USDT")
	cases := map[string][]exchange.Candle{
		"week":   candles(7, false),
		"single": candles(1, false),
		"flat":   candles(5, true),
	}
	for name, input := range cases {
		img, err := r.RenderPriceChart(context.Background(), "BTCUSDT", input)
		if err != nil {
			t.Fatalf("%s: render: %v", name, err)
		}
		if !bytes.HasPrefix(img, pngMagic) {
			t.Fatalf("%s: output is not a PNG", name)
		}
	}
}

func TestRenderPriceChartRejectsEmpty(t *testing.T) {
	if _, err := New("USDT").RenderPriceChart(context.Background(), "BTCUSDT", nil); err == nil {
		t.Fatal("expected error for empty candles")
	}
}

func TestPriceRangeNeverEmpty(t *testing.T) {
	rng := priceRange([]float64{0}, []float64{0})
	if rng.Max <= rng.Min {
		t.Fatalf("range = [%v, %v]", rng.Min, rng.Max)
	}
	rng = priceRange([]float64{10, 9}, []float64{12, 15})
	if rng.Min >= 9 || rng.Max <= 15 {
		t.Fatalf("range [%v, %v] does not cover 9..15", rng.Min, rng.Max)
	}
}
