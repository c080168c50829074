package conversation

import (
	"strconv"
	"strings"
)

const (
	symbolDataPrefix = "stats_"
	pageDataPrefix   = "page_"
)

// Inbound is one update as the transport received it.
type Inbound struct {
	UserID int64
	ChatID int64
	// Text is the message text. Unused for callbacks.
	Text string
	// Data is the callback payload of a keyboard button.
	Data       string
	IsCallback bool
}

// EventKind enumerates what an Inbound means to the conversation.
type EventKind int

const (
	EventStart EventKind = iota + 1
	EventBuy
	EventStats
	EventSymbol
	EventPage
	EventText
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventBuy:
		return "buy"
	case EventStats:
		return "stats"
	case EventSymbol:
		return "symbol"
	case EventPage:
		return "page"
	case EventText:
		return "text"
	}
	return "unknown"
}

// Event is a classified Inbound. Only the fields of its Kind are set.
type Event struct {
	Kind   EventKind
	Args   []string // EventBuy
	Symbol string   // EventSymbol
	Page   int      // EventPage
	Text   string   // EventText
}

// Classify maps an Inbound to an Event by its syntax alone. Unknown slash
// commands, empty messages and foreign callback data are not routed.
func Classify(in Inbound) (Event, bool) {
	if in.IsCallback {
		return classifyCallback(in.Data)
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Event{}, false
	}
	if !strings.HasPrefix(text, "/") {
		return Event{Kind: EventText, Text: text}, true
	}

	fields := strings.Fields(text)
	name, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")
	switch name {
	case "/start":
		return Event{Kind: EventStart}, true
	case "/buy":
		return Event{Kind: EventBuy, Args: fields[1:]}, true
	case "/stats":
		return Event{Kind: EventStats}, true
	}
	return Event{}, false
}

func classifyCallback(data string) (Event, bool) {
	if symbol, ok := strings.CutPrefix(data, symbolDataPrefix); ok && symbol != "" {
		return Event{Kind: EventSymbol, Symbol: symbol}, true
	}
	if raw, ok := strings.CutPrefix(data, pageDataPrefix); ok {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			return Event{Kind: EventPage, Page: page}, true
		}
	}
	return Event{}, false
}

// SymbolData is the callback payload of the button selecting symbol.
func SymbolData(symbol string) string { return symbolDataPrefix + symbol }

// PageData is the callback payload of the button opening keyboard page n.
func PageData(n int) string { return pageDataPrefix + strconv.Itoa(n) }
