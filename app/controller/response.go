package controller

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"catering-fees/pricing"
	"catering-fees/service"
)

// validationResponse is the 400 body for a rejected rule edit
type validationResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	RuleID  string `json:"ruleId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Error encoding response: %v", err)
	}
}

// writeError maps validation errors to 400, a missing draft to 409 and anything else to 500
func writeError(w http.ResponseWriter, op string, err error) {
	var verr *pricing.ValidationError
	switch {
	case errors.As(err, &verr):
		log.Printf("⚠️  %s: %s (%s)", op, verr.Message, verr.Field)
		writeJSON(w, http.StatusBadRequest, validationResponse{Field: verr.Field, Message: verr.Message, RuleID: verr.RuleID})
	case errors.Is(err, service.ErrNoDraft):
		log.Printf("❌ %s: %v", op, err)
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Printf("❌ %s: %v", op, err)
		http.Error(w, "Failed to save fee configuration", http.StatusInternalServerError)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, op string, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Printf("❌ %s: Failed to decode request body: %v", op, err)
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}
