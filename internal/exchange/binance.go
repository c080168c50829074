package exchange

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	coreconfig "github.com/m3rciful/tradebot/core/config"
	"github.com/m3rciful/tradebot/core/logger"
)

const (
	statusTrading  = "TRADING"
	dailyInterval  = "1d"
	clientIDPrefix = "tb-"
)

// API error codes that mean our credentials were refused rather than the order.
var authErrorCodes = map[int64]struct{}{
	-1022: {}, // signature for this request is not valid
	-2014: {}, // API-key format invalid
	-2015: {}, // invalid API-key, IP, or permissions for action
}

// Binance talks to a Binance compatible spot REST API.
type Binance struct {
	client   *binance.Client
	canTrade bool
	newID    func() string
}

// NewBinance returns an adapter for cfg. Without credentials only public
// market data endpoints work.
func NewBinance(cfg coreconfig.ExchangeConfig) *Binance {
	client := binance.NewClient(cfg.APIKey, cfg.APISecret)
	client.BaseURL = cfg.BaseURL
	client.HTTPClient = &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	return &Binance{
		client:   client,
		canTrade: cfg.HasCredentials(),
		newID:    newClientOrderID,
	}
}

// ListTradablePairs returns the symbols currently open for spot trading.
func (b *Binance) ListTradablePairs(ctx context.Context) ([]Pair, error) {
	start := time.Now()
	info, err := b.client.NewExchangeInfoService().Do(ctx)
	if err != nil {
		logCall(ctx, "exchange.pairs", start, err)
		return nil, unavailable("list pairs", err)
	}

	pairs := make([]Pair, 0, len(info.Symbols))
	for _, s := range info.Symbols {
		if s.Status != statusTrading || !s.IsSpotTradingAllowed {
			continue
		}
		pairs = append(pairs, Pair{Symbol: s.Symbol, BaseAsset: s.BaseAsset, QuoteAsset: s.QuoteAsset})
	}
	logCall(ctx, "exchange.pairs", start, nil, slog.Int("count", len(pairs)))
	return pairs, nil
}

// PlaceMarketOrder submits a market buy. Every call gets a fresh client
// order id and is sent once.
func (b *Binance) PlaceMarketOrder(ctx context.Context, req OrderRequest) (Order, error) {
	if !b.canTrade {
		return Order{}, ErrTradingDisabled
	}

	start := time.Now()
	clientID := b.newID()
	resp, err := b.client.NewCreateOrderService().
		Symbol(req.Symbol).
		Side(binance.SideTypeBuy).
		Type(binance.OrderTypeMarket).
		Quantity(req.Quantity.String()).
		NewClientOrderID(clientID).
		Do(ctx)
	if err != nil {
		logCall(ctx, "exchange.order", start, err, slog.String("symbol", req.Symbol))
		return Order{}, classifyOrderError(err)
	}

	order := Order{
		Symbol:        resp.Symbol,
		OrderID:       resp.OrderID,
		ClientOrderID: resp.ClientOrderID,
		Status:        string(resp.Status),
		ExecutedQty:   parseDecimal(resp.ExecutedQuantity),
		QuoteQty:      parseDecimal(resp.CummulativeQuoteQuantity),
		TransactTime:  time.UnixMilli(resp.TransactTime).UTC(),
	}
	logCall(ctx, "exchange.order", start, nil,
		slog.String("symbol", order.Symbol),
		slog.Int64("order_id", order.OrderID),
		slog.String("quantity", req.Quantity.String()),
	)
	return order, nil
}

// GetDailyCandles returns up to count daily candles ending with the current day.
func (b *Binance) GetDailyCandles(ctx context.Context, symbol string, count int) ([]Candle, error) {
	if count < 1 || count > MaxCandles {
		return nil, fmt.Errorf("exchange: candle count %d outside 1..%d", count, MaxCandles)
	}

	start := time.Now()
	klines, err := b.client.NewKlinesService().
		Symbol(symbol).
		Interval(dailyInterval).
		Limit(count).
		Do(ctx)
	if err != nil {
		logCall(ctx, "exchange.candles", start, err, slog.String("symbol", symbol))
		return nil, unavailable("daily candles", err)
	}

	candles := make([]Candle, 0, len(klines))
	for _, k := range klines {
		c, err := toCandle(k)
		if err != nil {
			return nil, unavailable("daily candles", err)
		}
		candles = append(candles, c)
	}
	logCall(ctx, "exchange.candles", start, nil,
		slog.String("symbol", symbol),
		slog.Int("days", count),
		slog.Int("count", len(candles)),
	)
	return candles, nil
}

// newClientOrderID fits Binance's 36 character limit for client order ids.
func newClientOrderID() string {
	return clientIDPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func toCandle(k *binance.Kline) (Candle, error) {
	var (
		c   = Candle{OpenTime: time.UnixMilli(k.OpenTime).UTC()}
		err error
	)
	fields := []struct {
		dst *decimal.Decimal
		raw string
	}{{&c.Open, k.Open}, {&c.High, k.High}, {&c.Low, k.Low}, {&c.Close, k.Close}}
	for _, f := range fields {
		if *f.dst, err = decimal.NewFromString(f.raw); err != nil {
			return Candle{}, fmt.Errorf("malformed price %q: %w", f.raw, err)
		}
	}
	return c, nil
}

func classifyOrderError(err error) error {
	var apiErr *common.APIError
	if !errors.As(err, &apiErr) || apiErr.Code == 0 {
		return unavailable("place order", err)
	}
	if _, auth := authErrorCodes[apiErr.Code]; auth {
		return unavailable("place order", err)
	}
	return &OrderRejectedError{APICode: apiErr.Code, Reason: strings.TrimSpace(apiErr.Message)}
}

func parseDecimal(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func logCall(ctx context.Context, event string, start time.Time, err error, attrs ...slog.Attr) {
	attrs = append(attrs, slog.Duration("duration", logger.Took(start)))
	if err != nil {
		attrs = append(attrs,
			slog.String("status", "fail"),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		logger.Warn(ctx, "exchange", event, attrs...)
		return
	}
	logger.Debug(ctx, "exchange", event, append(attrs, slog.String("status", "ok"))...)
}
