// Package sender executes outbound Telegram calls with bounded retries.
//
// Calls run on the caller's goroutine: a conversation delivers its replies
// one after another, so order is preserved without a queue.
package sender

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/tradebot/core/logger"
	"github.com/m3rciful/tradebot/core/telegram/netutil"
)

var tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)

// Options controls retry behaviour.
type Options struct {
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent on one call including retries.
	MaxDuration time.Duration
	// MaxFloodWait caps how long a 429 retry_after is honoured.
	MaxFloodWait time.Duration
}

// Sender runs Telegram API calls and records their outcome.
type Sender struct {
	opts   Options
	sent   atomic.Uint64
	failed atomic.Uint64
}

// New returns a Sender, filling zero options with defaults.
func New(opts Options) *Sender {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = time.Second
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = 20 * time.Second
	}
	if opts.MaxFloodWait <= 0 {
		opts.MaxFloodWait = 10 * time.Second
	}
	return &Sender{opts: opts}
}

// Stats returns the number of successful and failed calls.
func (s *Sender) Stats() (sent, failed uint64) {
	return s.sent.Load(), s.failed.Load()
}

// Do runs fn, retrying transient network failures and flood waits.
// action and endpoint only label log lines.
func (s *Sender) Do(ctx context.Context, action, endpoint string, fn func() error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	deadlineCtx, cancel := context.WithTimeout(ctx, s.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attrs := []slog.Attr{slog.String("action", action), slog.String("endpoint", endpoint)}
	attempts := s.opts.MaxRetries + 1

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			s.sent.Add(1)
			logger.Debug(ctx, "tg.sender", "send.success", append(attrs,
				slog.String("status", "ok"),
				slog.Int("attempts", attempt),
				slog.Duration("duration", logger.RoundMS(time.Since(start))),
			)...)
			return nil
		}

		delay, retry := s.retryDelay(err, attempt)
		if !retry || attempt == attempts {
			break
		}
		logger.Debug(ctx, "tg.sender", "send.retry", append(attrs,
			slog.Int("attempts", attempt),
			slog.Duration("delay", delay),
			slog.String("cause", classifyError(err)),
		)...)

		timer := time.NewTimer(delay)
		select {
		case <-deadlineCtx.Done():
			timer.Stop()
			err = errors.Join(err, deadlineCtx.Err())
			attempt = attempts
		case <-timer.C:
		}
	}

	s.failed.Add(1)
	logger.Error(ctx, "tg.sender", "send.fail", append(attrs,
		slog.String("status", "fail"),
		slog.String("err", sanitizeErrorMessage(err)),
		slog.String("err_code", classifyError(err)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)...)
	return redactedError{err}
}

func (s *Sender) retryDelay(err error, attempt int) (time.Duration, bool) {
	var flood tele.FloodError
	if errors.As(err, &flood) {
		wait := time.Duration(flood.RetryAfter) * time.Second
		if wait > s.opts.MaxFloodWait {
			return 0, false
		}
		return wait, true
	}
	if netutil.ShouldRetry(err) {
		return s.opts.RetryBackoff * time.Duration(attempt), true
	}
	return 0, false
}

// redactedError hides the bot token that telebot embeds in request URLs.
type redactedError struct{ err error }

func (e redactedError) Error() string { return sanitizeErrorMessage(e.err) }
func (e redactedError) Unwrap() error { return e.err }

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return "timeout"
		}
		return "dns"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return "timeout"
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return "timeout"
		}
		if opErr.Op == "dial" {
			return "dial"
		}
	}

	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return "tls"
	}

	switch status := httpStatusFromError(err); {
	case status == http.StatusTooManyRequests:
		return "flood"
	case status >= 500:
		return "http_5xx"
	case status >= 400:
		return "http_4xx"
	}
	return "unknown"
}

func sanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}

func httpStatusFromError(err error) int {
	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		return http.StatusTooManyRequests
	}
	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}

	// telebot formats unknown API errors as "telegram: <description> (<code>)".
	msg := err.Error()
	open, end := strings.LastIndex(msg, "("), strings.LastIndex(msg, ")")
	if open >= 0 && end > open+1 {
		if code, convErr := strconv.Atoi(strings.TrimSpace(msg[open+1 : end])); convErr == nil {
			return code
		}
	}
	return 0
}
