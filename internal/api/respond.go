package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"timesheet/internal/records"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func badRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"success": false,
		"message": message,
	})
}

// writeError maps repository failures onto the wire: validation problems are
// the client's to fix and carry their own message; everything else is logged
// in full and answered with a short generic message.
func writeError(w http.ResponseWriter, err error, genericMessage string) {
	var verr *records.ValidationError
	if errors.As(err, &verr) {
		badRequest(w, verr.Message)
		return
	}

	log.Error().Err(err).Msg("Request failed")
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"success": false,
		"message": genericMessage,
	})
}
