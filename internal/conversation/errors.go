package conversation

import (
	"errors"
	"fmt"

	"github.com/m3rciful/tradebot/core/telegram/format"
	"github.com/m3rciful/tradebot/internal/exchange"
)

// ValidationError reports malformed user input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Code implements the logger's err_code contract.
func (e *ValidationError) Code() string { return "VALIDATION" }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

type internalError struct{}

func (internalError) Error() string { return "internal error" }
func (internalError) Code() string  { return "INTERNAL" }

// errInternal marks a handler fault that is not the user's or the exchange's doing.
var errInternal error = internalError{}

// userMessage turns any handler error into the single Markdown text shown to
// the user. Details of infrastructure failures stay in the logs.
func userMessage(err error) string {
	var (
		validation *ValidationError
		rejected   *exchange.OrderRejectedError
	)
	switch {
	case errors.As(err, &validation):
		return "⚠️ " + format.EscapeMarkdown(validation.Reason)
	case errors.As(err, &rejected):
		return "❌ Order rejected: " + format.EscapeMarkdown(rejected.Reason)
	case errors.Is(err, exchange.ErrTradingDisabled):
		return msgTradingDisabled
	case errors.Is(err, exchange.ErrExchangeUnavailable):
		return msgExchangeUnavailable
	case errors.Is(err, exchange.ErrNoData):
		return msgNoData
	}
	return msgInternal
}
