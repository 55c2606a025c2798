package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/vehicle-valuation/internal/types"
)

// CensusClient fetches ZIP-level demographics from the Census Bureau ACS API.
type CensusClient struct {
	baseURL string
	apiKey  string
	http    *httpSource
}

// acsDataset is the ACS 5-year estimates vintage queried for demographics.
const acsDataset = "2022/acs/acs5"

// acsVariables selects area name, total population and median household income.
const acsVariables = "NAME,B01003_001E,B19013_001E"

// NewCensusClient creates a new census demographics client
func NewCensusClient(baseURL, apiKey string, timeout time.Duration, rps float64) *CensusClient {
	return &CensusClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    newHTTPSource(types.SourceCensus, timeout, rps),
	}
}

// Demographics returns the raw ACS payload for a ZIP code tabulation area.
// The ZIP must already be validated by the caller.
func (c *CensusClient) Demographics(ctx context.Context, zip string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("get", acsVariables)
	params.Set("for", fmt.Sprintf("zip code tabulation area:%s", zip))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	endpoint := fmt.Sprintf("%s/%s?%s", c.baseURL, acsDataset, params.Encode())
	return c.http.getJSON(ctx, endpoint)
}
