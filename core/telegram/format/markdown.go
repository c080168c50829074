// Package format renders values into Telegram's legacy Markdown.
package format

import "strings"

var markdownEscaper = strings.NewReplacer(
	`_`, `\_`,
	`*`, `\*`,
	"`", "\\`",
	`[`, `\[`,
)

// EscapeMarkdown escapes the characters Telegram Markdown treats as entity
// delimiters so text is shown verbatim.
func EscapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}

// Code wraps text in an inline code entity. Backticks cannot be escaped
// inside one, so they are dropped.
func Code(text string) string {
	return "`" + strings.ReplaceAll(text, "`", "") + "`"
}
