package sender

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func TestSenderRetriesTransientErrors(t *testing.T) {
	s := New(Options{MaxRetries: 2, RetryBackoff: time.Millisecond})
	calls := 0
	err := s.Do(context.Background(), "send.text", "sendMessage", func() error {
		calls++
		if calls < 3 {
			return &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if sent, failed := s.Stats(); sent != 1 || failed != 0 {
		t.Fatalf("stats = %d/%d", sent, failed)
	}
}

func TestSenderDoesNotRetryAPIErrors(t *testing.T) {
	s := New(Options{MaxRetries: 3, RetryBackoff: time.Millisecond})
	calls := 0
	apiErr := &tele.Error{Code: 400, Description: "Bad Request: chat not found"}
	err := s.Do(context.Background(), "send.text", "sendMessage", func() error {
		calls++
		return apiErr
	})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, apiErr) {
		t.Fatalf("error chain lost the api error: %v", err)
	}
	if _, failed := s.Stats(); failed != 1 {
		t.Fatalf("failed = %d, want 1", failed)
	}
}

func TestSenderRedactsToken(t *testing.T) {
	s := New(Options{})
	err := s.Do(context.Background(), "send.photo", "sendPhoto", func() error {
		return errors.New(`Post "https://api.telegram.org/bot123456:AAH-secret_token/sendPhoto": EOF`)
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "secret") {
		t.Fatalf("token leaked: %s", err)
	}
	if !strings.Contains(err.Error(), "bot<redacted>") {
		t.Fatalf("expected redaction marker: %s", err)
	}
}

func TestClassifyError(t *testing.T) {
	cases := map[string]error{
		"timeout":  context.DeadlineExceeded,
		"dial":     &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED},
		"http_4xx": &tele.Error{Code: 403, Description: "Forbidden: bot was blocked by the user"},
		"http_5xx": errors.New("telegram: Internal Server Error (502)"),
		"unknown":  errors.New("boom"),
	}
	for want, err := range cases {
		if got := classifyError(err); got != want {
			t.Fatalf("classifyError(%v) = %q, want %q", err, got, want)
		}
	}
}
