package logger

import (
	"errors"
	"fmt"
	"testing"
)

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string  { return "no data" }

func TestErrorCode(t *testing.T) {
	if got := ErrorCode(nil); got != "" {
		t.Fatalf("nil error code = %q", got)
	}
	if got := ErrorCode(fmt.Errorf("wrap: %w", codedErr{})); got != "NO_DATA" {
		t.Fatalf("wrapped coder = %q, want NO_DATA", got)
	}
	if got := ErrorCode(errors.New("plain")); got != "ERRORSTRING" {
		t.Fatalf("plain error = %q, want ERRORSTRING", got)
	}
}
