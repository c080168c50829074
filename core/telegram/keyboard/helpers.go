// Package keyboard builds inline keyboards whose buttons carry raw callback
// data, so any client that knows the data format can route them.
package keyboard

import tele "gopkg.in/telebot.v4"

// Button is one inline button: a label and the callback data sent back on tap.
type Button struct {
	Text string
	Data string
}

// Inline builds an inline keyboard from rows of buttons. Empty rows are skipped.
func Inline(rows [][]Button) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, len(row))
		for i, btn := range row {
			r[i] = tele.InlineButton{Text: btn.Text, Data: btn.Data}
		}
		inline = append(inline, r)
	}
	markup.InlineKeyboard = inline
	return markup
}

// Chunk splits items into rows of at most n. n <= 1 yields one item per row.
func Chunk[T any](items []T, n int) [][]T {
	if n < 1 {
		n = 1
	}
	rows := make([][]T, 0, (len(items)+n-1)/n)
	for i := 0; i < len(items); i += n {
		end := min(i+n, len(items))
		rows = append(rows, items[i:end])
	}
	return rows
}
