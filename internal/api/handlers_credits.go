package api

import (
	"net/http"

	"github.com/google/uuid"
)

// ConsumeCreditRequest is the body for POST /api/credits/consume.
type ConsumeCreditRequest struct {
	ValuationID string `json:"valuationId"`
}

// GrantCreditsRequest is the body for POST /api/credits/grant.
type GrantCreditsRequest struct {
	UserID  string `json:"userId"`
	Credits int    `json:"credits"`
}

// handleConsumeCredit handles POST /api/credits/consume. A depleted balance
// is a 200 with success=false, not an error status.
func (s *Server) handleConsumeCredit(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req ConsumeCreditRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", nil)
		return
	}

	if _, err := uuid.Parse(req.ValuationID); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_VALUATION_ID",
			"valuationId must be a valid UUID", map[string]interface{}{
				"valuationId": req.ValuationID,
			})
		return
	}

	result, err := s.credits.Consume(r.Context(), userID, req.ValuationID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleGrantCredits handles POST /api/credits/grant. Called by the payment
// collaborator after a completed purchase.
func (s *Server) handleGrantCredits(w http.ResponseWriter, r *http.Request) {
	var req GrantCreditsRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", nil)
		return
	}

	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "userId is required", nil)
		return
	}
	if req.Credits <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "credits must be positive", nil)
		return
	}

	balance, err := s.credits.Grant(r.Context(), req.UserID, req.Credits)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"credits": balance})
}

// handleCreditBalance handles GET /api/credits/balance
func (s *Server) handleCreditBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	balance, err := s.credits.Balance(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"credits": balance})
}
