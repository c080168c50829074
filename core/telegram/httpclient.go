package telegram

import (
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/tradebot/core/telegram/netutil"
)

const (
	dialTimeout       = 5 * time.Second
	tlsHandshake      = 5 * time.Second
	idleConnTimeout   = 30 * time.Second
	keepAliveInterval = 30 * time.Second
	// Long polling holds the response open, so the header timeout has to
	// exceed the poll timeout.
	clientTimeoutSlack = 15 * time.Second
	retryAttempts      = 2
	retryBackoff       = 500 * time.Millisecond
)

// HTTPClientOptions tunes BuildHTTPClient.
type HTTPClientOptions struct {
	// PollTimeout is the long poll timeout the client must outlast.
	PollTimeout time.Duration
	// Retries caps transport level retries; negative disables them.
	Retries int
}

// BuildHTTPClient returns an HTTP client tuned for Telegram API calls.
func BuildHTTPClient(opts HTTPClientOptions) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: keepAliveInterval}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   16,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   tlsHandshake,
		ExpectContinueTimeout: time.Second,
	}

	retries := opts.Retries
	if retries == 0 {
		retries = retryAttempts
	}
	var rt http.RoundTripper = transport
	if retries > 0 {
		rt = &retryTransport{base: transport, maxRetries: retries, backoff: retryBackoff}
	}

	return &http.Client{
		Timeout:   opts.PollTimeout + clientTimeoutSlack,
		Transport: rt,
	}
}

// retryTransport resends requests that never reached Telegram. Requests with
// a body that cannot be replayed are sent once.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries int
	backoff    time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	for attempt := 1; err != nil && attempt <= t.maxRetries; attempt++ {
		if !netutil.ShouldRetry(err) {
			return nil, err
		}
		if req.Body != nil && req.GetBody == nil {
			return nil, err
		}

		timer := time.NewTimer(t.backoff * time.Duration(attempt))
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}

		next := req.Clone(req.Context())
		if req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, bodyErr
			}
			next.Body = body
		}
		resp, err = t.base.RoundTrip(next)
	}
	return resp, err
}
