// Package adapter provides HTTP clients for the external data providers that
// feed the enrichment layer. Each client wraps one upstream API behind a
// rate-limited, timeout-bounded fetch that returns the provider payload as
// opaque JSON.
package adapter

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/vehicle-valuation/internal/errors"
	"github.com/vehicle-valuation/internal/types"
)

// userAgent identifies the service to upstream providers. Nominatim rejects
// requests without one.
const userAgent = "vehicle-valuation/1.0"

// httpSource is the shared transport used by every provider client.
type httpSource struct {
	source  types.Source
	client  *http.Client
	limiter *rate.Limiter
}

// newHTTPSource builds a transport for one provider. requestsPerSecond bounds
// outbound calls so a burst of cache misses cannot hammer the upstream.
func newHTTPSource(source types.Source, timeout time.Duration, requestsPerSecond float64) *httpSource {
	return &httpSource{
		source:  source,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// getJSON performs a rate-limited GET and returns the raw response body.
// Failures and timeouts surface as adapter errors; the caller never sees a
// partial payload.
func (s *httpSource) getJSON(ctx context.Context, url string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, errors.NewAdapterError(s.source, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewAdapterError(s.source, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, errors.NewAdapterTimeoutError(s.source)
		}
		return nil, errors.NewAdapterError(s.source, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body) // nolint:errcheck // drain for connection reuse
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewAdapterError(s.source, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewAdapterError(s.source, err)
	}

	return body, nil
}

// isTimeout reports whether an outbound request failed on a deadline.
func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
