package utils

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	apperrors "github.com/mapsengine/gme-cli/internal/errors"
	"github.com/mapsengine/gme-cli/internal/logger"
	"google.golang.org/api/googleapi"
)

const (
	// DefaultMaxAttempts is the number of times a request is sent before giving up
	DefaultMaxAttempts = 5
	// DefaultBaseDelay is the backoff unit, doubled on every failed attempt
	DefaultBaseDelay = time.Second
	// DefaultMaxJitter bounds the random delay added to each backoff
	DefaultMaxJitter = time.Second
)

// Sleeper waits for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// RequestBuilder creates a fresh request for each attempt so bodies can be re-sent
type RequestBuilder func(ctx context.Context) (*http.Request, error)

// Retrier sends requests with exponential backoff on unexpected status codes.
// Transport errors are not retried.
type Retrier struct {
	Client      *http.Client
	MaxAttempts int
	BaseDelay   time.Duration
	// Sleep and Jitter are replaced in tests
	Sleep  Sleeper
	Jitter func() time.Duration
}

// NewRetrier creates a Retrier with the default backoff policy
func NewRetrier(client *http.Client) *Retrier {
	return &Retrier{
		Client:      client,
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Sleep:       SleepContext,
		Jitter:      randomJitter,
	}
}

// SleepContext blocks for d, returning early with ctx.Err() if ctx is cancelled
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func randomJitter() time.Duration {
	return time.Duration(rand.Int63n(int64(DefaultMaxJitter) + 1))
}

// Backoff returns the delay before the attempt following attempt n (0-based)
func (r *Retrier) Backoff(n int) time.Duration {
	delay := r.BaseDelay * time.Duration(1<<uint(n))
	if r.Jitter != nil {
		delay += r.Jitter()
	}
	return delay
}

// Do sends the request built by build until the response status is one of
// successCodes (200 when none are given). The caller owns the returned body.
//
// On a transport error it fails immediately with ErrAPIRequest and no status.
// When every attempt returns an unexpected status it fails with ErrAPIRequest
// carrying the last status and a *googleapi.Error cause.
func (r *Retrier) Do(ctx context.Context, op string, build RequestBuilder, successCodes ...int) (*http.Response, error) {
	if len(successCodes) == 0 {
		successCodes = []int{http.StatusOK}
	}

	attempts := r.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	for n := 0; n < attempts; n++ {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.New(apperrors.ErrAPIRequest, op, err)
		}

		req, err := build(ctx)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrAPIRequest, op, err)
		}

		resp, err := r.Client.Do(req)
		if err != nil {
			return nil, apperrors.New(apperrors.ErrAPIRequest, op, wrapNetworkError(err))
		}

		if isSuccess(resp.StatusCode, successCodes) {
			return resp, nil
		}

		if n == attempts-1 {
			return nil, exhausted(op, resp)
		}

		DrainAndClose(resp.Body)

		delay := r.Backoff(n)
		logger.Debug("%s: HTTP %d, retry %d/%d in %v", op, resp.StatusCode, n+1, attempts-1, delay)

		if err := r.Sleep(ctx, delay); err != nil {
			return nil, apperrors.New(apperrors.ErrAPIRequest, op, err)
		}
	}

	// unreachable, the final attempt always returns
	return nil, apperrors.New(apperrors.ErrAPIRequest, op, nil)
}

func exhausted(op string, resp *http.Response) error {
	defer DrainAndClose(resp.Body)

	cause := googleapi.CheckResponse(resp)
	if cause == nil {
		// 2xx status outside the accepted set
		cause = fmt.Errorf("unexpected status %s", resp.Status)
	}
	return apperrors.NewWithStatus(apperrors.ErrAPIRequest, op, resp.StatusCode, cause)
}

func isSuccess(status int, codes []int) bool {
	for _, c := range codes {
		if status == c {
			return true
		}
	}
	return false
}
