package conversation

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/tradebot/core/telegram/keyboard"
	"github.com/m3rciful/tradebot/core/telegram/state"
	"github.com/m3rciful/tradebot/internal/exchange"
)

const (
	choicesPerRow = 3
	rowsPerPage   = 8
	pageSize      = choicesPerRow * rowsPerPage
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9_.-]{1,20}$`)

type mutation int

const (
	keepSession mutation = iota
	putSession
	removeSession
)

// result is what a step handler decided. The orchestrator commits it.
type result struct {
	reply   *Reply
	mut     mutation
	next    state.Session
	err     error
	ignored bool
}

type handlerFunc func(ctx context.Context, sess state.Session, ev Event) result

func ignore() result { return result{ignored: true} }

func fail(err error) result {
	return result{reply: &Reply{Text: userMessage(err)}, err: err}
}

func (o *Orchestrator) handleStart(context.Context, state.Session, Event) result {
	return result{reply: &Reply{Text: msgHelp}}
}

func (o *Orchestrator) handleBuy(ctx context.Context, _ state.Session, ev Event) result {
	req, err := parseOrder(ev.Args)
	if err != nil {
		return fail(err)
	}
	order, err := o.exchange.PlaceMarketOrder(ctx, req)
	if err != nil {
		return fail(err)
	}
	return result{reply: &Reply{Text: orderPlacedText(order)}}
}

func parseOrder(args []string) (exchange.OrderRequest, error) {
	if len(args) != 2 {
		return exchange.OrderRequest{}, invalid("arguments", buyUsage)
	}
	symbol := strings.ToUpper(args[0])
	if !symbolPattern.MatchString(symbol) {
		return exchange.OrderRequest{}, invalid("symbol", fmt.Sprintf("%q is not a trading pair symbol", args[0]))
	}
	qty, err := decimal.NewFromString(args[1])
	if err != nil {
		return exchange.OrderRequest{}, invalid("quantity", fmt.Sprintf("%q is not a number", args[1]))
	}
	if !qty.IsPositive() {
		return exchange.OrderRequest{}, invalid("quantity", "quantity must be greater than zero")
	}
	return exchange.OrderRequest{Symbol: symbol, Quantity: qty}, nil
}

func (o *Orchestrator) handleStats(ctx context.Context, _ state.Session, _ Event) result {
	pairs, err := o.exchange.ListTradablePairs(ctx)
	if err != nil {
		return fail(err)
	}
	symbols := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.QuoteAsset == o.quoteAsset {
			symbols = append(symbols, p.Symbol)
		}
	}
	if len(symbols) == 0 {
		return result{reply: &Reply{Text: noPairsText(o.quoteAsset)}, err: exchange.ErrNoData}
	}
	return result{
		reply: keyboardPage(symbols, 1),
		mut:   putSession,
		next:  state.Session{Step: state.StepAwaitingSymbolChoice, Pairs: symbols},
	}
}

func (o *Orchestrator) handlePage(_ context.Context, sess state.Session, ev Event) result {
	if ev.Page > pageCount(len(sess.Pairs)) {
		return ignore()
	}
	return result{reply: keyboardPage(sess.Pairs, ev.Page), mut: putSession, next: sess}
}

func (o *Orchestrator) handleSymbol(_ context.Context, sess state.Session, ev Event) result {
	// Buttons from an older keyboard or forged payloads are not ours to act on.
	if !sess.HasPair(ev.Symbol) {
		return ignore()
	}
	return result{
		reply: &Reply{Text: dayCountPrompt(ev.Symbol)},
		mut:   putSession,
		next:  state.Session{Step: state.StepAwaitingDayCount, Symbol: ev.Symbol},
	}
}

func (o *Orchestrator) handleDayCount(ctx context.Context, sess state.Session, ev Event) result {
	days, err := strconv.Atoi(ev.Text)
	if err != nil || days < 1 {
		// Anything that is not a positive whole number is dropped without a reply.
		return ignore()
	}
	if days > exchange.MaxCandles {
		return fail(invalid("day count", fmt.Sprintf("at most %d days can be charted", exchange.MaxCandles)))
	}

	candles, err := o.exchange.GetDailyCandles(ctx, sess.Symbol, days)
	if err != nil {
		return fail(err)
	}
	if len(candles) == 0 {
		return fail(exchange.ErrNoData)
	}

	img, err := o.renderer.RenderPriceChart(ctx, sess.Symbol, candles)
	if err != nil {
		// The same input would fail again; start over from /stats.
		res := fail(err)
		res.mut = removeSession
		return res
	}
	return result{
		reply: &Reply{Image: img, Text: chartCaption(sess.Symbol, days)},
		mut:   removeSession,
	}
}

func pageCount(n int) int {
	return max(1, (n+pageSize-1)/pageSize)
}

// keyboardPage renders page (1-based) of symbols with prev/next buttons.
func keyboardPage(symbols []string, page int) *Reply {
	pages := pageCount(len(symbols))
	lo := (page - 1) * pageSize
	hi := min(lo+pageSize, len(symbols))

	choices := make([]Choice, 0, hi-lo)
	for _, s := range symbols[lo:hi] {
		choices = append(choices, Choice{Label: s, Data: SymbolData(s)})
	}
	rows := keyboard.Chunk(choices, choicesPerRow)

	var nav []Choice
	if page > 1 {
		nav = append(nav, Choice{Label: "« Prev", Data: PageData(page - 1)})
	}
	if page < pages {
		nav = append(nav, Choice{Label: "Next »", Data: PageData(page + 1)})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	return &Reply{Text: pickPairText(page, pages), Choices: rows}
}
