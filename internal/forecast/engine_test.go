package forecast

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vehicle-valuation/internal/errors"
)

func monthObs(price float64, year int, month time.Month) Observation {
	return Observation{Price: price, Date: time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)}
}

func TestComputeIncreasingSeries(t *testing.T) {
	obs := []Observation{
		monthObs(100, 2026, time.January),
		monthObs(110, 2026, time.February),
		monthObs(120, 2026, time.March),
	}

	p, err := Compute(obs, 120, 12)
	require.NoError(t, err)

	assert.Equal(t, TrendIncreasing, p.Trend)
	assert.Equal(t, "20.0", p.PercentageChange)
	assert.Equal(t, "Mar 2026", p.BestTimeToSell)

	// A perfectly linear series fits itself.
	require.Len(t, p.Fitted, 3)
	assert.InDelta(t, 100, p.Fitted[0], 1e-9)
	assert.InDelta(t, 110, p.Fitted[1], 1e-9)
	assert.InDelta(t, 120, p.Fitted[2], 1e-9)

	// Projection continues the line month by month.
	require.Len(t, p.Months, 12)
	require.Len(t, p.Values, 12)
	assert.Equal(t, "Apr 2026", p.Months[0])
	assert.Equal(t, "Mar 2027", p.Months[11])
	assert.InDelta(t, 130, p.Values[0], 1e-9)
	assert.InDelta(t, 240, p.Values[11], 1e-9)
}

func TestComputeDecreasingSeries(t *testing.T) {
	obs := []Observation{
		monthObs(120, 2026, time.January),
		monthObs(110, 2026, time.February),
		monthObs(100, 2026, time.March),
	}

	p, err := Compute(obs, 120, 6)
	require.NoError(t, err)

	assert.Equal(t, TrendDecreasing, p.Trend)
	assert.Equal(t, "As soon as possible", p.BestTimeToSell)
	assert.Equal(t, "-16.7", p.PercentageChange)
}

func TestComputeSingleMonthIsStable(t *testing.T) {
	obs := []Observation{monthObs(15000, 2026, time.June)}

	p, err := Compute(obs, 15000, 12)
	require.NoError(t, err)

	assert.Equal(t, TrendStable, p.Trend)
	assert.Equal(t, "0.0", p.PercentageChange)
	assert.Equal(t, "Current market is stable", p.BestTimeToSell)
	assert.Equal(t, 100, p.ConfidenceScore)

	// Zero slope: every projected value equals the single observation.
	for _, v := range p.Values {
		assert.InDelta(t, 15000, v, 1e-9)
	}
}

func TestComputeAveragesWithinMonth(t *testing.T) {
	obs := []Observation{
		{Price: 100, Date: time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{Price: 200, Date: time.Date(2026, time.January, 31, 0, 0, 0, 0, time.UTC)},
		monthObs(150, 2026, time.February),
	}

	p, err := Compute(obs, 150, 3)
	require.NoError(t, err)

	// January averages to 150, so the series is flat.
	assert.Equal(t, TrendStable, p.Trend)
}

func TestComputeUnorderedObservations(t *testing.T) {
	obs := []Observation{
		monthObs(120, 2026, time.March),
		monthObs(100, 2026, time.January),
		monthObs(110, 2026, time.February),
	}

	p, err := Compute(obs, 120, 1)
	require.NoError(t, err)
	assert.Equal(t, TrendIncreasing, p.Trend)
}

func TestComputeNoObservations(t *testing.T) {
	_, err := Compute(nil, 15000, 12)
	require.Error(t, err)

	var catErr *errors.CategorizedError
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, errors.CategoryInsufficientData, catErr.Category)
}

func TestComputeRejectsNonPositiveEstimate(t *testing.T) {
	obs := []Observation{monthObs(100, 2026, time.January)}

	for _, estimate := range []float64{0, -1} {
		_, err := Compute(obs, estimate, 12)
		require.Error(t, err)
		assert.True(t, errors.IsValidation(err))
	}
}

func TestComputeRejectsNonPositiveHorizon(t *testing.T) {
	obs := []Observation{monthObs(100, 2026, time.January)}

	_, err := Compute(obs, 15000, 0)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestConfidenceClampedOnVolatileSeries(t *testing.T) {
	// Fitted range is far larger than the estimate, driving the raw score
	// deeply negative.
	obs := []Observation{
		monthObs(100, 2026, time.January),
		monthObs(10000, 2026, time.February),
	}

	p, err := Compute(obs, 50, 12)
	require.NoError(t, err)
	assert.Equal(t, 0, p.ConfidenceScore)
}

func TestComputeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	genPrices := gen.SliceOfN(8, gen.Float64Range(500, 50000))

	properties.Property("fitted series matches bucket count and invariants hold", prop.ForAll(
		func(prices []float64, horizon int) bool {
			obs := make([]Observation, len(prices))
			for i, price := range prices {
				obs[i] = Observation{
					Price: price,
					Date:  time.Date(2025, time.Month(1+i), 10, 0, 0, 0, 0, time.UTC),
				}
			}

			p, err := Compute(obs, 20000, horizon)
			if err != nil {
				return false
			}

			if len(p.Fitted) != len(prices) {
				return false
			}
			if len(p.Months) != horizon || len(p.Values) != horizon {
				return false
			}
			if p.ConfidenceScore < 0 || p.ConfidenceScore > 100 {
				return false
			}

			first := p.Fitted[0]
			last := p.Fitted[len(p.Fitted)-1]
			switch p.Trend {
			case TrendIncreasing:
				return last > first
			case TrendDecreasing:
				return last < first
			case TrendStable:
				return last == first
			}
			return false
		},
		genPrices,
		gen.IntRange(1, 24),
	))

	properties.TestingRun(t)
}
