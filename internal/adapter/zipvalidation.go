package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/vehicle-valuation/internal/types"
)

// ZipClient validates ZIP codes against the Zippopotam API.
type ZipClient struct {
	baseURL string
	http    *httpSource
}

// NewZipClient creates a new ZIP validation client
func NewZipClient(baseURL string, timeout time.Duration, rps float64) *ZipClient {
	return &ZipClient{
		baseURL: baseURL,
		http:    newHTTPSource(types.SourceZipValidation, timeout, rps),
	}
}

// Lookup returns the raw Zippopotam payload for a US ZIP code. A 404 from the
// upstream means the ZIP does not exist and surfaces as an adapter error.
func (c *ZipClient) Lookup(ctx context.Context, zip string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/us/%s", c.baseURL, url.PathEscape(zip))
	return c.http.getJSON(ctx, endpoint)
}
