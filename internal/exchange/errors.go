package exchange

import (
	"errors"
	"fmt"
)

type codedError struct {
	code string
	msg  string
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() string  { return e.code }

var (
	// ErrExchangeUnavailable covers transport, auth and malformed response failures.
	ErrExchangeUnavailable error = &codedError{code: "EXCHANGE_UNAVAILABLE", msg: "exchange unavailable"}
	// ErrNoData reports an empty candle history.
	ErrNoData error = &codedError{code: "NO_DATA", msg: "no data available"}
	// ErrTradingDisabled is an ErrExchangeUnavailable returned when no API
	// credentials are configured.
	ErrTradingDisabled = fmt.Errorf("%w: trading credentials are not configured", ErrExchangeUnavailable)
)

// OrderRejectedError is returned when the exchange declined an order.
type OrderRejectedError struct {
	APICode int64
	Reason  string
}

func (e *OrderRejectedError) Error() string {
	if e.APICode != 0 {
		return fmt.Sprintf("order rejected (%d): %s", e.APICode, e.Reason)
	}
	return "order rejected: " + e.Reason
}

// Code implements the logger's err_code contract.
func (e *OrderRejectedError) Code() string { return "ORDER_REJECTED" }

func unavailable(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrExchangeUnavailable, op, cause)
}

// IsUnavailable reports whether err is an ErrExchangeUnavailable failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrExchangeUnavailable)
}
