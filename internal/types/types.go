// Package types provides common type definitions for the vehicle valuation system.
package types

import "time"

// Source identifies an external data provider backed by its own cache table.
type Source string

const (
	// SourceCensus represents the census demographics provider
	SourceCensus Source = "census"
	// SourceFuelEconomy represents the EPA fuel economy provider
	SourceFuelEconomy Source = "fueleconomy"
	// SourceRecalls represents the NHTSA recall records provider
	SourceRecalls Source = "recalls"
	// SourceTheftCheck represents the NICB VIN theft records provider
	SourceTheftCheck Source = "theftcheck"
	// SourceGeocode represents the OSM postal geocoding provider
	SourceGeocode Source = "geocode"
	// SourceZipValidation represents the ZIP validation provider
	SourceZipValidation Source = "zipvalidation"
)

// AllSources lists every registered provider. Order matches migration order.
func AllSources() []Source {
	return []Source{
		SourceCensus,
		SourceFuelEconomy,
		SourceRecalls,
		SourceTheftCheck,
		SourceGeocode,
		SourceZipValidation,
	}
}

// TTL represents a cache freshness window. Forever means entries never expire;
// it is an explicit state rather than a zero-duration sentinel.
type TTL struct {
	Days    int
	Forever bool
}

// TTLDays returns a freshness window of n calendar days.
func TTLDays(n int) TTL {
	return TTL{Days: n}
}

// TTLForever returns a freshness window that never expires.
func TTLForever() TTL {
	return TTL{Forever: true}
}

// Fresh reports whether an entry fetched at fetchedAt is still fresh at now.
// Age is measured in calendar days (UTC date boundaries crossed), and an entry
// is fresh while its age is strictly less than the window.
func (t TTL) Fresh(fetchedAt, now time.Time) bool {
	if t.Forever {
		return true
	}
	return CalendarDaysBetween(fetchedAt, now) < t.Days
}

// CalendarDaysBetween returns the number of UTC calendar days from a to b.
// Negative when b precedes a.
func CalendarDaysBetween(a, b time.Time) int {
	au := a.UTC()
	bu := b.UTC()
	aDay := time.Date(au.Year(), au.Month(), au.Day(), 0, 0, 0, 0, time.UTC)
	bDay := time.Date(bu.Year(), bu.Month(), bu.Day(), 0, 0, 0, 0, time.UTC)
	return int(bDay.Sub(aDay).Hours() / 24)
}

// ServiceError represents a structured error passed between service layers
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	return e.Message
}
