// Package webhook provides the rate-limited HTTP send path shared by all
// channel providers.
package webhook

import (
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/mlanser/f451-comms/pkg/errors"
	"github.com/mlanser/f451-comms/pkg/logger"
)

// DefaultTimeout bounds a single vendor call.
const DefaultTimeout = 30 * time.Second

// Sender wraps an HTTP client with request pacing and uniform error
// classification.
type Sender struct {
	client  *http.Client
	limiter *rate.Limiter
	logger  logger.Logger
}

// NewSender creates a sender. A nil client gets a default with
// DefaultTimeout; rps <= 0 disables pacing.
func NewSender(client *http.Client, rps float64, log logger.Logger) *Sender {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if log == nil {
		log = logger.Discard
	}
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Sender{
		client:  client,
		limiter: limiter,
		logger:  log,
	}
}

// Do paces and performs the request, returning the status code and the
// full response body. Transport failures come back as communications
// errors; HTTP status handling is left to the caller since vendors signal
// failure differently.
func (s *Sender) Do(req *http.Request) (int, []byte, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(req.Context()); err != nil {
			return 0, nil, errors.Wrap(err, errors.ErrRateLimitExceeded, "request pacing interrupted")
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if req.Context().Err() == context.DeadlineExceeded {
			return 0, nil, errors.Wrap(err, errors.ErrNetworkTimeout, "vendor call timed out")
		}
		return 0, nil, errors.Wrap(err, errors.ErrConnectionFailed, "vendor call failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, errors.Wrap(err, errors.ErrConnectionFailed, "unable to read vendor response")
	}

	s.logger.Debug("vendor call completed", "url", req.URL.Path, "status", resp.StatusCode)
	return resp.StatusCode, body, nil
}
