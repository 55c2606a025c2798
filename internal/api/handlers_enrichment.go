package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/vehicle-valuation/internal/enrichment"
)

// enrichmentResponse wraps an external payload with its origin so clients can
// tell a cache hit from a live fetch.
type enrichmentResponse struct {
	Data   json.RawMessage   `json:"data"`
	Source enrichment.Origin `json:"source"`
}

func respondEnrichment(w http.ResponseWriter, result *enrichment.Result) {
	respondJSON(w, http.StatusOK, enrichmentResponse{
		Data:   result.Payload,
		Source: result.Origin,
	})
}

// vehicleParams reads make/model/year query parameters. A missing or
// non-numeric year comes through as zero and fails validation downstream.
func vehicleParams(r *http.Request) (make, model string, year int) {
	q := r.URL.Query()
	make = q.Get("make")
	model = q.Get("model")
	year, _ = strconv.Atoi(q.Get("year")) // nolint:errcheck // zero fails validation
	return make, model, year
}

// handleDemographics handles GET /api/demographics/{zip}
func (s *Server) handleDemographics(w http.ResponseWriter, r *http.Request) {
	zip := mux.Vars(r)["zip"]

	result, err := s.enrichment.Demographics(r.Context(), zip)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondEnrichment(w, result)
}

// handleFuelEconomy handles GET /api/fuel-economy?make=&model=&year=
func (s *Server) handleFuelEconomy(w http.ResponseWriter, r *http.Request) {
	make, model, year := vehicleParams(r)

	result, err := s.enrichment.FuelEconomy(r.Context(), make, model, year)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondEnrichment(w, result)
}

// handleRecalls handles GET /api/recalls?make=&model=&year=
func (s *Server) handleRecalls(w http.ResponseWriter, r *http.Request) {
	make, model, year := vehicleParams(r)

	result, err := s.enrichment.Recalls(r.Context(), make, model, year)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondEnrichment(w, result)
}

// handleTheftCheck handles GET /api/theft-check/{vin}
func (s *Server) handleTheftCheck(w http.ResponseWriter, r *http.Request) {
	vin := mux.Vars(r)["vin"]

	result, err := s.enrichment.TheftCheck(r.Context(), vin)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondEnrichment(w, result)
}

// handleGeocode handles GET /api/geocode/{zip}
func (s *Server) handleGeocode(w http.ResponseWriter, r *http.Request) {
	zip := mux.Vars(r)["zip"]

	result, err := s.enrichment.Geocode(r.Context(), zip)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondEnrichment(w, result)
}

// handleValidateZip handles GET /api/zip/{zip}/validate
func (s *Server) handleValidateZip(w http.ResponseWriter, r *http.Request) {
	zip := mux.Vars(r)["zip"]

	result, err := s.enrichment.ValidateZip(r.Context(), zip)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondEnrichment(w, result)
}
