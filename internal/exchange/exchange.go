// Package exchange defines the market operations the bot needs and adapts a
// Binance compatible spot API to them.
package exchange

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MaxCandles is the largest daily candle window one request may ask for.
const MaxCandles = 1000

// Pair is a tradable spot symbol.
type Pair struct {
	Symbol     string `json:"symbol"`
	BaseAsset  string `json:"base_asset"`
	QuoteAsset string `json:"quote_asset"`
}

// Candle is one daily OHLC point.
type Candle struct {
	OpenTime time.Time
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
}

// OrderRequest is a market buy of Quantity units of Symbol's base asset.
type OrderRequest struct {
	Symbol   string
	Quantity decimal.Decimal
}

// Order is the exchange's confirmation of a placed order.
type Order struct {
	Symbol        string
	OrderID       int64
	ClientOrderID string
	Status        string
	ExecutedQty   decimal.Decimal
	QuoteQty      decimal.Decimal
	TransactTime  time.Time
}

// Exchange is the market API used by the conversation handlers.
//
// ListTradablePairs and GetDailyCandles fail with ErrExchangeUnavailable.
// PlaceMarketOrder fails with *OrderRejectedError or ErrExchangeUnavailable.
// GetDailyCandles returns an empty slice, not an error, when the symbol has
// no history in range.
type Exchange interface {
	ListTradablePairs(ctx context.Context) ([]Pair, error)
	PlaceMarketOrder(ctx context.Context, req OrderRequest) (Order, error)
	GetDailyCandles(ctx context.Context, symbol string, count int) ([]Candle, error)
}
