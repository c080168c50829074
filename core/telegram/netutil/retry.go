// Package netutil classifies transport failures shared by the Telegram and
// exchange HTTP clients.
package netutil

import (
	"context"
	"errors"
	"net"
	"net/url"
	"syscall"
)

// IsTransient reports whether err is a network level failure: a timeout, a
// refused or reset connection, or a DNS miss. Context cancellation is not
// transient; the caller gave up.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Timeout() || opErr.Op == "dial" || opErr.Op == "read"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && urlErr.Err != err {
			return IsTransient(urlErr.Err)
		}
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// ShouldRetry reports whether a request that failed with err is safe to send
// again. Only idempotent Telegram calls go through the retrying transport.
func ShouldRetry(err error) bool {
	if !IsTransient(err) {
		return false
	}
	return !errors.Is(err, context.DeadlineExceeded)
}
