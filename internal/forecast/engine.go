// Package forecast projects a vehicle's value forward from historical listing
// prices. The engine is a pure function of its inputs.
package forecast

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vehicle-valuation/internal/errors"
)

// DefaultHorizonMonths is the number of months projected forward.
const DefaultHorizonMonths = 12

// Trend labels derived from the fitted line's endpoints.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// monthLabelFormat renders bucket labels like "Jan 2026".
const monthLabelFormat = "Jan 2006"

// Observation is one historical listing price at a point in time.
type Observation struct {
	Price float64
	Date  time.Time
}

// Projection is the computed forecast for a make/model.
type Projection struct {
	Months           []string  `json:"months"`
	Values           []float64 `json:"values"`
	Fitted           []float64 `json:"fitted"`
	Trend            string    `json:"trend"`
	ConfidenceScore  int       `json:"confidenceScore"`
	PercentageChange string    `json:"percentageChange"`
	BestTimeToSell   string    `json:"bestTimeToSell"`
}

// bucket is one calendar month of averaged observations.
type bucket struct {
	year    int
	month   time.Month
	sum     float64
	count   int
	average float64
}

func (b *bucket) label() string {
	return time.Date(b.year, b.month, 1, 0, 0, 0, 0, time.UTC).Format(monthLabelFormat)
}

// Compute buckets observations by calendar month, fits a linear trend and
// extrapolates horizon months past the final bucket. Months with no
// observations are omitted, so the historical series may be shorter than the
// observation window. Zero buckets is an InsufficientData failure; a single
// bucket yields a zero slope and a stable trend.
func Compute(observations []Observation, currentEstimate float64, horizon int) (*Projection, error) {
	if currentEstimate <= 0 {
		return nil, errors.NewValidationError(
			fmt.Sprintf("current estimate must be positive, got %g", currentEstimate), nil)
	}
	if horizon <= 0 {
		return nil, errors.NewValidationError(
			fmt.Sprintf("forecast horizon must be positive, got %d", horizon), nil)
	}

	buckets := buildBuckets(observations)
	if len(buckets) == 0 {
		return nil, errors.NewInsufficientDataError("no historical listings to forecast from")
	}

	series := make([]float64, len(buckets))
	for i, b := range buckets {
		series[i] = b.average
	}

	slope, intercept := fitLine(series)

	fitted := make([]float64, len(series))
	for i := range series {
		fitted[i] = intercept + slope*float64(i)
	}

	first := fitted[0]
	last := fitted[len(fitted)-1]

	trend := TrendStable
	switch {
	case last > first:
		trend = TrendIncreasing
	case last < first:
		trend = TrendDecreasing
	}

	change := 0.0
	if first != 0 {
		change = (last - first) / first * 100
	}

	// Volatility of the fitted line relative to the point estimate. The raw
	// score can leave [0,100] on pathological inputs, so it is clamped.
	priceRange := maxOf(fitted) - minOf(fitted)
	volatility := priceRange / currentEstimate
	confidence := int(math.Round(100 * (1 - volatility)))
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}

	lastBucket := buckets[len(buckets)-1]
	months := make([]string, horizon)
	values := make([]float64, horizon)
	for j := 0; j < horizon; j++ {
		m := time.Date(lastBucket.year, lastBucket.month+time.Month(1+j), 1, 0, 0, 0, 0, time.UTC)
		months[j] = m.Format(monthLabelFormat)
		values[j] = intercept + slope*float64(len(series)+j)
	}

	bestTime := "Current market is stable"
	switch trend {
	case TrendDecreasing:
		bestTime = "As soon as possible"
	case TrendIncreasing:
		bestTime = lastBucket.label()
	}

	return &Projection{
		Months:           months,
		Values:           values,
		Fitted:           fitted,
		Trend:            trend,
		ConfidenceScore:  confidence,
		PercentageChange: fmt.Sprintf("%.1f", change),
		BestTimeToSell:   bestTime,
	}, nil
}

// buildBuckets groups observations into calendar-month buckets with mean
// prices, ordered chronologically.
func buildBuckets(observations []Observation) []*bucket {
	byMonth := make(map[int]*bucket)
	for _, obs := range observations {
		d := obs.Date.UTC()
		key := d.Year()*12 + int(d.Month()) - 1
		b, ok := byMonth[key]
		if !ok {
			b = &bucket{year: d.Year(), month: d.Month()}
			byMonth[key] = b
		}
		b.sum += obs.Price
		b.count++
	}

	keys := make([]int, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	buckets := make([]*bucket, 0, len(keys))
	for _, k := range keys {
		b := byMonth[k]
		b.average = b.sum / float64(b.count)
		buckets = append(buckets, b)
	}

	return buckets
}

// fitLine fits y = intercept + slope*x over x = 0..len(values)-1 by least
// squares. A single point has slope zero by definition.
func fitLine(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	if len(values) == 1 {
		return 0, values[0]
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, y := range values {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}

	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
