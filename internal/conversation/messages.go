package conversation

import (
	"fmt"
	"strings"

	"github.com/m3rciful/tradebot/core/telegram/format"
	"github.com/m3rciful/tradebot/internal/exchange"
)

const (
	msgHelp = "🤖 Welcome to the trading bot!\n" +
		"Commands:\n" +
		"/buy BTCUSDT 0.01 → market buy\n" +
		"/stats → pick a coin and get its price chart"
	msgPickPair            = "📌 Pick a coin:"
	msgNoData              = "❗ No data found."
	msgExchangeUnavailable = "❌ The exchange is unavailable right now, please try again later."
	msgTradingDisabled     = "❌ Trading is disabled: no exchange API credentials are configured."
	msgInternal            = "❌ Something went wrong, please try again."

	buyUsage = "usage: /buy SYMBOL QUANTITY, for example /buy BTCUSDT 0.01"
)

func pickPairText(page, pages int) string {
	if pages <= 1 {
		return msgPickPair
	}
	return fmt.Sprintf("%s (page %d/%d)", msgPickPair, page, pages)
}

func noPairsText(quote string) string {
	return fmt.Sprintf("❗ No pairs quoted in %s are available right now.", format.EscapeMarkdown(quote))
}

func dayCountPrompt(symbol string) string {
	return fmt.Sprintf("✅ %s selected.\n📆 How many days of history? (e.g. 7)", format.Code(symbol))
}

func orderPlacedText(o exchange.Order) string {
	var b strings.Builder
	b.WriteString("✅ Buy order sent\n")
	fmt.Fprintf(&b, "Symbol: %s\n", format.EscapeMarkdown(o.Symbol))
	fmt.Fprintf(&b, "Order ID: %d\n", o.OrderID)
	fmt.Fprintf(&b, "Status: %s\n", format.EscapeMarkdown(o.Status))
	fmt.Fprintf(&b, "Executed: %s\n", o.ExecutedQty.String())
	fmt.Fprintf(&b, "Quote spent: %s", o.QuoteQty.String())
	return b.String()
}

func chartCaption(symbol string, days int) string {
	return fmt.Sprintf("%s, last %d days", symbol, days)
}
