package bot

import (
	"bytes"
	"context"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/tradebot/core/telegram/keyboard"
	"github.com/m3rciful/tradebot/core/telegram/sender"
	"github.com/m3rciful/tradebot/internal/conversation"
)

// messenger is the part of *tele.Bot the transport needs.
type messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Transport delivers conversation replies through the Telegram Bot API.
type Transport struct {
	api    messenger
	sender *sender.Sender
}

// NewTransport returns a Transport sending through api with retries from s.
func NewTransport(api messenger, s *sender.Sender) *Transport {
	return &Transport{api: api, sender: s}
}

// SendText sends a Markdown message.
func (t *Transport) SendText(ctx context.Context, chatID int64, text string) error {
	return t.send(ctx, "send.text", "sendMessage", chatID, func() any { return text }, tele.ModeMarkdown)
}

// SendChoiceKeyboard sends a Markdown message with an inline keyboard.
func (t *Transport) SendChoiceKeyboard(ctx context.Context, chatID int64, text string, choices [][]conversation.Choice) error {
	rows := make([][]keyboard.Button, len(choices))
	for i, row := range choices {
		rows[i] = make([]keyboard.Button, len(row))
		for j, c := range row {
			rows[i][j] = keyboard.Button{Text: c.Label, Data: c.Data}
		}
	}
	markup := keyboard.Inline(rows)
	return t.send(ctx, "send.keyboard", "sendMessage", chatID, func() any { return text }, tele.ModeMarkdown, markup)
}

// SendImage uploads a PNG with a plain text caption.
func (t *Transport) SendImage(ctx context.Context, chatID int64, image []byte, caption string) error {
	// Each attempt needs a fresh reader; a failed upload may have consumed it.
	photo := func() any {
		return &tele.Photo{File: tele.FromReader(bytes.NewReader(image)), Caption: caption}
	}
	return t.send(ctx, "send.photo", "sendPhoto", chatID, photo)
}

func (t *Transport) send(ctx context.Context, action, endpoint string, chatID int64, what func() any, opts ...any) error {
	return t.sender.Do(ctx, action, endpoint, func() error {
		_, err := t.api.Send(tele.ChatID(chatID), what(), opts...)
		return err
	})
}
