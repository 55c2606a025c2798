package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/vehicle-valuation/internal/types"
)

// TheftCheckClient fetches VIN theft and salvage records from the NICB
// VINCheck service.
type TheftCheckClient struct {
	baseURL string
	http    *httpSource
}

// NewTheftCheckClient creates a new NICB VIN check client
func NewTheftCheckClient(baseURL string, timeout time.Duration, rps float64) *TheftCheckClient {
	return &TheftCheckClient{
		baseURL: baseURL,
		http:    newHTTPSource(types.SourceTheftCheck, timeout, rps),
	}
}

// CheckVIN returns the raw NICB payload for a VIN. The VIN must already be
// validated by the caller.
func (c *TheftCheckClient) CheckVIN(ctx context.Context, vin string) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/vincheck/%s", c.baseURL, url.PathEscape(vin))
	return c.http.getJSON(ctx, endpoint)
}
