package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// handleForecast handles GET /api/valuations/{id}/forecast
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.userID(w, r); !ok {
		return
	}

	valuationID := mux.Vars(r)["id"]

	projection, err := s.forecast.ForValuation(r.Context(), valuationID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, projection)
}
