package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/vehicle-valuation/internal/types"
)

// RecallClient fetches vehicle recall records from the NHTSA API.
type RecallClient struct {
	baseURL string
	http    *httpSource
}

// NewRecallClient creates a new NHTSA recall client
func NewRecallClient(baseURL string, timeout time.Duration, rps float64) *RecallClient {
	return &RecallClient{
		baseURL: baseURL,
		http:    newHTTPSource(types.SourceRecalls, timeout, rps),
	}
}

// ByVehicle returns the raw NHTSA payload of recall campaigns for a
// make/model/year.
func (c *RecallClient) ByVehicle(ctx context.Context, make, model string, year int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("make", make)
	params.Set("model", model)
	params.Set("modelYear", fmt.Sprintf("%d", year))

	endpoint := fmt.Sprintf("%s/recalls/recallsByVehicle?%s", c.baseURL, params.Encode())
	return c.http.getJSON(ctx, endpoint)
}
