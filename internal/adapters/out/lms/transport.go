package lms

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryTransport retries requests answered with a 5xx status or failing at
// the network level. The n-th retry waits delay * 2^(n-1). When the budget
// is spent the last response (or error) is returned as is.
type RetryTransport struct {
	next     http.RoundTripper
	attempts int
	delay    time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	inFlight map[string]int
}

func NewRetryTransport(next http.RoundTripper, attempts int, delay time.Duration, logger *slog.Logger) *RetryTransport {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryTransport{
		next:     next,
		attempts: attempts,
		delay:    delay,
		logger:   logger.With("component", "LMSRetryTransport"),
		inFlight: make(map[string]int),
	}
}

type serverError struct {
	status int
}

func (e serverError) Error() string {
	return fmt.Sprintf("server responded %d", e.status)
}

func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		var err error
		if body, err = io.ReadAll(req.Body); err != nil {
			return nil, err
		}
		_ = req.Body.Close()
	}

	key := requestKey(req.Method, req.URL.String(), body)
	defer t.forget(key)

	var last *http.Response
	operation := func() error {
		attempt := t.begin(key)

		r := req.Clone(req.Context())
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.ContentLength = int64(len(body))

		resp, err := t.next.RoundTrip(r)
		if err != nil {
			if req.Context().Err() != nil {
				return backoff.Permanent(err)
			}
			t.logger.WarnContext(req.Context(), "LMS request failed",
				"method", req.Method, "url", req.URL.String(), "attempt", attempt, "error", err)
			return err
		}
		if resp.StatusCode < http.StatusInternalServerError {
			last = resp
			return nil
		}

		buffered, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return readErr
		}
		resp.Body = io.NopCloser(bytes.NewReader(buffered))
		last = resp

		t.logger.WarnContext(req.Context(), "LMS server error",
			"method", req.Method, "url", req.URL.String(), "attempt", attempt, "status", resp.StatusCode)
		return serverError{status: resp.StatusCode}
	}

	err := backoff.Retry(operation, backoff.WithContext(t.policy(), req.Context()))
	if err != nil {
		if _, ok := err.(serverError); ok && last != nil {
			return last, nil
		}
		return nil, err
	}
	return last, nil
}

// Attempts reports how many times the request identified by method, url and
// body has been sent so far. It is zero once the request has finished.
func (t *RetryTransport) Attempts(method, url string, body []byte) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inFlight[requestKey(method, url, body)]
}

func (t *RetryTransport) policy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = t.delay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = t.delay << t.attempts
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithMaxRetries(b, uint64(t.attempts-1))
}

func (t *RetryTransport) begin(key string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.inFlight[key]++
	return t.inFlight[key]
}

func (t *RetryTransport) forget(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.inFlight, key)
}

func requestKey(method, url string, body []byte) string {
	sum := sha256.Sum256(body)
	return method + " " + url + " " + hex.EncodeToString(sum[:])
}
