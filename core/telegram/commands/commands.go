package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command binds a slash command to its handler and the text shown in the
// Telegram command menu.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// Hidden commands are routed but not advertised in the menu.
	Hidden bool
}
