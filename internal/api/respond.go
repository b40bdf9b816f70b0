package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/medbook/clinic-scheduling/internal/scheduling"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("write response body")
	}
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// writeDomainError maps the scheduling error taxonomy onto HTTP codes:
// missing entities to 404, illegal transitions and bad input to 400, lost
// slot races to 409.
func writeDomainError(w http.ResponseWriter, err error) {
	var nf *scheduling.NotFoundError
	if errors.As(err, &nf) {
		writeError(w, http.StatusNotFound, string(nf.Kind)+"_not_found", nf.Error())
		return
	}

	var ve *scheduling.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, "validation_failed", ve.Reason)
		return
	}

	if errors.Is(err, scheduling.ErrConflict) {
		writeError(w, http.StatusConflict, "slot_conflict", "slot is no longer available, pick another slot")
		return
	}

	log.Error().Err(err).Msg("unhandled domain error")
	writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
}
