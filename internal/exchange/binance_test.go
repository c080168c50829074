package exchange

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	coreconfig "github.com/m3rciful/tradebot/core/config"
)

const exchangeInfoJSON = `{
  "timezone": "UTC",
  "serverTime": 1700000000000,
  "symbols": [
    {"symbol": "BTCUSDT", "status": "TRADING", "baseAsset": "BTC", "quoteAsset": "USDT", "isSpotTradingAllowed": true, "filters": []},
    {"symbol": "ETHBTC", "status": "TRADING", "baseAsset": "ETH", "quoteAsset": "BTC", "isSpotTradingAllowed": true, "filters": []},
    {"symbol": "LUNAUSDT", "status": "BREAK", "baseAsset": "LUNA", "quoteAsset": "USDT", "isSpotTradingAllowed": true, "filters": []},
    {"symbol": "MARGINUSDT", "status": "TRADING", "baseAsset": "MARGIN", "quoteAsset": "USDT", "isSpotTradingAllowed": false, "filters": []}
  ]
}`

const klinesJSON = `[
  [1699920000000, "36500.10", "37000.00", "36000.00", "36800.50", "100.0", 1700006399999, "3650000.0", 1000, "50.0", "1825000.0", "0"],
  [1700006400000, "36800.50", "37500.00", "36700.00", "37400.00", "120.0", 1700092799999, "4400000.0", 1100, "60.0", "2200000.0", "0"]
]`

type fakeBinance struct {
	mu       sync.Mutex
	form     []map[string]string
	status   int
	body     string
	klines   string
	requests int
}

func (f *fakeBinance) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	w.Header().Set("Content-Type", "application/json")
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
		return
	}
	switch r.URL.Path {
	case "/api/v3/exchangeInfo":
		_, _ = w.Write([]byte(exchangeInfoJSON))
	case "/api/v3/klines":
		_, _ = w.Write([]byte(f.klines))
	case "/api/v3/order":
		_ = r.ParseForm()
		f.form = append(f.form, map[string]string{
			"symbol":           r.Form.Get("symbol"),
			"side":             r.Form.Get("side"),
			"type":             r.Form.Get("type"),
			"quantity":         r.Form.Get("quantity"),
			"newClientOrderId": r.Form.Get("newClientOrderId"),
		})
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","orderId":28,"clientOrderId":"` + r.Form.Get("newClientOrderId") +
			`","transactTime":1700000000000,"price":"0.00000000","origQty":"0.01000000","executedQty":"0.01000000",` +
			`"cummulativeQuoteQty":"368.00500000","status":"FILLED","timeInForce":"GTC","type":"MARKET","side":"BUY","fills":[]}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestBinance(t *testing.T, withKeys bool) (*Binance, *fakeBinance) {
	t.Helper()
	fake := &fakeBinance{klines: klinesJSON}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	cfg := coreconfig.ExchangeConfig{BaseURL: srv.URL, TimeoutSeconds: 5}
	if withKeys {
		cfg.APIKey, cfg.APISecret = "key", "secret"
	}
	return NewBinance(cfg), fake
}

func TestListTradablePairsFiltersClosedSymbols(t *testing.T) {
	b, _ := newTestBinance(t, false)
	pairs, err := b.ListTradablePairs(context.Background())
	if err != nil {
		t.Fatalf("ListTradablePairs: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("pairs = %+v, want BTCUSDT and ETHBTC", pairs)
	}
	if pairs[0].Symbol != "BTCUSDT" || pairs[0].QuoteAsset != "USDT" || pairs[1].QuoteAsset != "BTC" {
		t.Fatalf("unexpected pairs %+v", pairs)
	}
}

func TestPlaceMarketOrderSendsExactRequest(t *testing.T) {
	b, fake := newTestBinance(t, true)
	order, err := b.PlaceMarketOrder(context.Background(), OrderRequest{
		Symbol:   "BTCUSDT",
		Quantity: decimal.RequireFromString("0.01"),
	})
	if err != nil {
		t.Fatalf("PlaceMarketOrder: %v", err)
	}
	if len(fake.form) != 1 {
		t.Fatalf("order requests = %d, want 1", len(fake.form))
	}
	sent := fake.form[0]
	if sent["symbol"] != "BTCUSDT" || sent["side"] != "BUY" || sent["type"] != "MARKET" || sent["quantity"] != "0.01" {
		t.Fatalf("unexpected order params %v", sent)
	}
	if id := sent["newClientOrderId"]; !strings.HasPrefix(id, clientIDPrefix) || len(id) > 36 {
		t.Fatalf("client order id %q", id)
	}
	if order.OrderID != 28 || order.Status != "FILLED" {
		t.Fatalf("order = %+v", order)
	}
	if !order.QuoteQty.Equal(decimal.RequireFromString("368.005")) {
		t.Fatalf("quote qty = %s", order.QuoteQty)
	}
}

func TestPlaceMarketOrderRejected(t *testing.T) {
	b, fake := newTestBinance(t, true)
	fake.status = http.StatusBadRequest
	fake.body = `{"code":-2010,"msg":"Account has insufficient balance for requested action."}`

	_, err := b.PlaceMarketOrder(context.Background(), OrderRequest{Symbol: "BTCUSDT", Quantity: decimal.RequireFromString("1")})
	var rejected *OrderRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("err = %v, want OrderRejectedError", err)
	}
	if rejected.APICode != -2010 || !strings.Contains(rejected.Reason, "insufficient balance") {
		t.Fatalf("rejected = %+v", rejected)
	}
}

func TestPlaceMarketOrderAuthFailureIsUnavailable(t *testing.T) {
	b, fake := newTestBinance(t, true)
	fake.status = http.StatusUnauthorized
	fake.body = `{"code":-2015,"msg":"Invalid API-key, IP, or permissions for action."}`

	_, err := b.PlaceMarketOrder(context.Background(), OrderRequest{Symbol: "BTCUSDT", Quantity: decimal.RequireFromString("1")})
	if !IsUnavailable(err) {
		t.Fatalf("err = %v, want ErrExchangeUnavailable", err)
	}
}

func TestPlaceMarketOrderWithoutCredentials(t *testing.T) {
	b, fake := newTestBinance(t, false)
	_, err := b.PlaceMarketOrder(context.Background(), OrderRequest{Symbol: "BTCUSDT", Quantity: decimal.RequireFromString("1")})
	if !errors.Is(err, ErrTradingDisabled) || !IsUnavailable(err) {
		t.Fatalf("err = %v, want ErrTradingDisabled", err)
	}
	if fake.requests != 0 {
		t.Fatalf("requests = %d, want none", fake.requests)
	}
}

func TestGetDailyCandles(t *testing.T) {
	b, _ := newTestBinance(t, false)
	candles, err := b.GetDailyCandles(context.Background(), "BTCUSDT", 2)
	if err != nil {
		t.Fatalf("GetDailyCandles: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("candles = %d, want 2", len(candles))
	}
	first := candles[0]
	if first.OpenTime.Format("2006-01-02") != "2023-11-14" {
		t.Fatalf("open time = %s", first.OpenTime)
	}
	if !first.High.Equal(decimal.RequireFromString("37000")) || !first.Close.Equal(decimal.RequireFromString("36800.5")) {
		t.Fatalf("first candle = %+v", first)
	}
}

func TestGetDailyCandlesEmptyHistory(t *testing.T) {
	b, fake := newTestBinance(t, false)
	fake.klines = `[]`
	candles, err := b.GetDailyCandles(context.Background(), "NEWUSDT", 7)
	if err != nil {
		t.Fatalf("empty history must not be an error: %v", err)
	}
	if len(candles) != 0 {
		t.Fatalf("candles = %+v", candles)
	}
}

func TestGetDailyCandlesServerError(t *testing.T) {
	b, fake := newTestBinance(t, false)
	fake.status = http.StatusBadGateway
	fake.body = `<html>bad gateway</html>`
	if _, err := b.GetDailyCandles(context.Background(), "BTCUSDT", 7); !IsUnavailable(err) {
		t.Fatalf("err = %v, want ErrExchangeUnavailable", err)
	}
}

func TestGetDailyCandlesRejectsCount(t *testing.T) {
	b, fake := newTestBinance(t, false)
	for _, n := range []int{0, MaxCandles + 1} {
		if _, err := b.GetDailyCandles(context.Background(), "BTCUSDT", n); err == nil {
			t.Fatalf("count %d accepted", n)
		}
	}
	if fake.requests != 0 {
		t.Fatalf("requests = %d, want none", fake.requests)
	}
}
