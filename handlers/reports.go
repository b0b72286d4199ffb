package handlers

import (
	"net/http"
	"strconv"

	"ledgerbox/database"
	"ledgerbox/services"
)

func GetSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 100
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	result, err := services.Summary(database.DB, q.Get("start"), q.Get("end"), limit)
	if err != nil {
		Log.Error().Err(err).Msg("summary query failed")
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func GetAnalytics(w http.ResponseWriter, r *http.Request) {
	result, err := services.Analytics(database.DB)
	if err != nil {
		Log.Error().Err(err).Msg("analytics query failed")
		writeError(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func GetDRE(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := services.DRE(database.DB, q.Get("start"), q.Get("end"))
	if err != nil {
		Log.Error().Err(err).Msg("DRE query failed")
		writeError(w, http.StatusInternalServerError, "failed to compute income statement")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
