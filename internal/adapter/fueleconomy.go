package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/vehicle-valuation/internal/types"
)

// FuelEconomyClient fetches EPA fuel economy figures from fueleconomy.gov.
type FuelEconomyClient struct {
	baseURL string
	http    *httpSource
}

// NewFuelEconomyClient creates a new EPA fuel economy client
func NewFuelEconomyClient(baseURL string, timeout time.Duration, rps float64) *FuelEconomyClient {
	return &FuelEconomyClient{
		baseURL: baseURL,
		http:    newHTTPSource(types.SourceFuelEconomy, timeout, rps),
	}
}

// VehicleOptions returns the raw EPA payload listing fuel economy records for
// a make/model/year. Make and model are passed through as provided; the EPA
// menu endpoint matches case-insensitively.
func (c *FuelEconomyClient) VehicleOptions(ctx context.Context, make, model string, year int) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("year", fmt.Sprintf("%d", year))
	params.Set("make", make)
	params.Set("model", model)

	endpoint := fmt.Sprintf("%s/vehicle/menu/options?%s", c.baseURL, params.Encode())
	return c.http.getJSON(ctx, endpoint)
}
