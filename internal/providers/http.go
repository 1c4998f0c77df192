// Package providers calls the third-party weather and directions APIs. Every
// call is bounded by a timeout, guarded by a circuit breaker and optionally
// served from a response cache.
package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"navigator/internal/apperr"
	"navigator/internal/metrics"
)

// DefaultTimeout is the budget for one outbound provider call.
const DefaultTimeout = 10 * time.Second

const maxBodyBytes = 4 << 20

type response struct {
	status int
	body   []byte
}

// fetcher performs GET requests for one provider.
type fetcher struct {
	name    string
	client  *http.Client
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[*response]
}

func newFetcher(name string, client *http.Client, timeout time.Duration) *fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &fetcher{name: name, client: client, timeout: timeout, breaker: newBreaker(name)}
}

// get returns the response for any status below 500. Transport failures and
// 5xx responses count against the circuit breaker.
func (f *fetcher) get(ctx context.Context, url string) (*response, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := f.breaker.Execute(func() (*response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		res, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()

		body, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
		if err != nil {
			return nil, err
		}
		if res.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%s responded %d", f.name, res.StatusCode)
		}
		return &response{status: res.StatusCode, body: body}, nil
	})
	if err != nil {
		return nil, f.classify(err)
	}
	metrics.ProviderRequests.WithLabelValues(f.name, "success").Inc()
	return resp, nil
}

func (f *fetcher) classify(err error) error {
	if isBreakerRejection(err) {
		metrics.ProviderRequests.WithLabelValues(f.name, "rejected").Inc()
		return apperr.Wrap(apperr.KindProvider, f.name+" temporarily unavailable", err)
	}
	metrics.ProviderRequests.WithLabelValues(f.name, "failure").Inc()

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperr.Wrap(apperr.KindProviderTimeout, f.name+" timed out", err)
	}
	return apperr.Wrap(apperr.KindProvider, f.name+" request failed", err)
}
