package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"ledgerbox/logger"
	"ledgerbox/services"
)

// Log is the handler-level logger; main replaces it with the configured one.
var Log zerolog.Logger = logger.New()

// Extractor resolves transaction fields from free text or receipt images.
// Wired in main; nil disables remote extraction.
var Extractor services.FieldExtractor

// Generator is the raw model surface behind the gemini endpoints.
var Generator services.TextGenerator

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		Log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
