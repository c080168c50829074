package telegram

import (
	"fmt"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/tradebot/core/config"
)

const defaultLongPollTimeout = 10 * time.Second

// PollTimeout returns the effective long poll timeout for cfg.
func PollTimeout(cfg config.TelegramConfig) time.Duration {
	if cfg.LongPollTimeoutSeconds <= 0 {
		return defaultLongPollTimeout
	}
	return time.Duration(cfg.LongPollTimeoutSeconds) * time.Second
}

// BuildPoller returns a webhook or long poller depending on the run mode.
// cfg is expected to be normalized already.
func BuildPoller(cfg *config.Config) tele.Poller {
	if cfg.Telegram.RunMode == config.RunModeWebhook {
		return &tele.Webhook{
			Listen:   fmt.Sprintf("%s:%d", cfg.Webhook.Listen, cfg.Webhook.Port),
			Endpoint: &tele.WebhookEndpoint{PublicURL: cfg.Webhook.URL},
		}
	}
	return &tele.LongPoller{
		Timeout:        PollTimeout(cfg.Telegram),
		AllowedUpdates: []string{"message", "callback_query"},
	}
}
