package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/statewise/internal/snapshot"
)

// maxBodyBytes caps how much of an upstream response is read.
const maxBodyBytes = 4 << 20

const userAgent = "StateWise/1.0 (+https://github.com/i474232898/statewise)"

// HTTPClientConfig bundles the HTTP client and the per-call bound.
type HTTPClientConfig struct {
	Client  *http.Client
	Timeout time.Duration
}

var (
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")

	// errResponseTooLarge means the upstream body exceeded maxBodyBytes.
	errResponseTooLarge = errors.New("response too large")
)

// newCircuitBreaker opens after five consecutive transport failures or 5xx
// responses and probes again after 30 seconds.
func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

type upstreamResponse struct {
	status   int
	body     []byte
	tooLarge bool
}

// doRequest sends the request exactly once through the circuit breaker and returns
// the body of a 2xx response. Failures are *snapshot.UpstreamError or *snapshot.NetworkError.
func doRequest(
	ctx context.Context,
	provider string,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func(ctx context.Context) (*http.Request, error),
) ([]byte, error) {
	if cfg.Client == nil {
		return nil, &snapshot.NetworkError{Provider: provider, Err: errNoHTTPClient}
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	req, err := buildRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", provider, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	// Every call must reach the live upstream.
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
		if readErr != nil {
			return nil, readErr
		}
		tooLarge := len(body) > maxBodyBytes
		if tooLarge {
			body = nil
		}

		// Only server-side failures count against the breaker.
		if resp.StatusCode >= 500 {
			return nil, &snapshot.UpstreamError{Provider: provider, Status: resp.StatusCode}
		}
		return upstreamResponse{status: resp.StatusCode, body: body, tooLarge: tooLarge}, nil
	})
	if err != nil {
		var upErr *snapshot.UpstreamError
		switch {
		case errors.As(err, &upErr):
			return nil, upErr
		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			return nil, &snapshot.NetworkError{Provider: provider, Err: fmt.Errorf("%w: %v", errCircuitOpen, err)}
		default:
			return nil, &snapshot.NetworkError{Provider: provider, Err: err}
		}
	}

	resp, ok := result.(upstreamResponse)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type from circuit breaker", provider)
	}
	if resp.status < 200 || resp.status >= 300 {
		return nil, &snapshot.UpstreamError{Provider: provider, Status: resp.status}
	}
	if resp.tooLarge {
		return nil, &snapshot.UpstreamError{
			Provider: provider,
			Status:   http.StatusBadGateway,
			Err:      fmt.Errorf("%w: more than %d bytes", errResponseTooLarge, maxBodyBytes),
		}
	}
	return resp.body, nil
}
