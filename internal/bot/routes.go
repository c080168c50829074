package bot

import (
	"context"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/tradebot/core/telegram"
	"github.com/m3rciful/tradebot/core/telegram/commands"
	tghelpers "github.com/m3rciful/tradebot/core/telegram/helpers"
	"github.com/m3rciful/tradebot/core/telegram/router"
	"github.com/m3rciful/tradebot/internal/conversation"
)

const msgSlowDown = "⏳ Too many requests, please slow down."

type dispatcher interface {
	Dispatch(ctx context.Context, in conversation.Inbound) bool
}

// newRegistry registers the bot's commands. All of them go through the
// conversation, which decides what they mean for the user's session.
func newRegistry(h tele.HandlerFunc) *tg.Registry {
	reg := tg.NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: h, Description: "Show help"})
	reg.RegisterCommand("/buy", commands.Command{Handler: h, Description: "Market buy: /buy SYMBOL QUANTITY"})
	reg.RegisterCommand("/stats", commands.Command{Handler: h, Description: "Price chart for a trading pair"})
	return reg
}

func routes(reg *tg.Registry, h tele.HandlerFunc) []tg.Route {
	out := router.CommandRoutes(reg)
	return append(out, router.TextRoute(h), router.CallbackRoute(h))
}

// dispatchHandler hands every routed update to the conversation and returns
// at once so the poller is never held up by the exchange.
func dispatchHandler(d dispatcher) tele.HandlerFunc {
	return func(c tele.Context) error {
		in, ok := inbound(c)
		if !ok {
			return nil
		}
		d.Dispatch(tghelpers.BuildContext(c), in)
		return nil
	}
}

func inbound(c tele.Context) (conversation.Inbound, bool) {
	_, userID, chatID := tghelpers.Identity(c)
	if userID == 0 || chatID == 0 {
		return conversation.Inbound{}, false
	}
	in := conversation.Inbound{UserID: userID, ChatID: chatID}
	if cb := c.Callback(); cb != nil {
		in.IsCallback = true
		in.Data = cb.Data
		return in, true
	}
	if msg := c.Message(); msg != nil {
		in.Text = msg.Text
	}
	return in, true
}

func onLimited(c tele.Context) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: msgSlowDown})
	}
	return nil
}
