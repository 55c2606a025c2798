package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/vehicle-valuation/internal/types"
)

// GeocodeClient resolves ZIP codes to coordinates via the OSM Nominatim API.
type GeocodeClient struct {
	baseURL string
	http    *httpSource
}

// NewGeocodeClient creates a new postal geocoding client
func NewGeocodeClient(baseURL string, timeout time.Duration, rps float64) *GeocodeClient {
	return &GeocodeClient{
		baseURL: baseURL,
		http:    newHTTPSource(types.SourceGeocode, timeout, rps),
	}
}

// PostalCode returns the raw Nominatim payload for a US ZIP code.
func (c *GeocodeClient) PostalCode(ctx context.Context, zip string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("postalcode", zip)
	params.Set("country", "United States")
	params.Set("format", "json")
	params.Set("limit", "1")

	endpoint := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
	return c.http.getJSON(ctx, endpoint)
}
