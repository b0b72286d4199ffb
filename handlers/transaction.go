package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"ledgerbox/database"
	"ledgerbox/models"
)

type transactionPayload struct {
	Amount      *float64 `json:"amount"`
	Date        *string  `json:"date"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
}

func validDate(s string) bool {
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

func AddTransaction(w http.ResponseWriter, r *http.Request) {
	var t transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if t.Amount == nil {
		writeError(w, http.StatusBadRequest, "amount is required")
		return
	}
	if t.Date != nil && !validDate(*t.Date) {
		writeError(w, http.StatusBadRequest, "date must be an ISO-8601 date")
		return
	}

	res, err := database.DB.Exec(`
		INSERT INTO transactions (amount, date, category, description)
		VALUES (?, ?, ?, ?)
	`, *t.Amount, t.Date, t.Category, t.Description)
	if err != nil {
		Log.Error().Err(err).Msg("failed to insert transaction")
		writeError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}
	id, err := res.LastInsertId()
	if err != nil {
		Log.Error().Err(err).Msg("failed to read inserted id")
		writeError(w, http.StatusInternalServerError, "failed to create transaction")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"id": id})
}

// UpdateTransaction applies a partial patch; unspecified fields keep their
// stored values. Responds with the full updated row.
func UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var t transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if t.Date != nil && !validDate(*t.Date) {
		writeError(w, http.StatusBadRequest, "date must be an ISO-8601 date")
		return
	}

	_, err = database.DB.Exec(`
		UPDATE transactions
		SET amount = COALESCE(?, amount),
			date = COALESCE(?, date),
			category = COALESCE(?, category),
			description = COALESCE(?, description)
		WHERE id = ?
	`, t.Amount, t.Date, t.Category, t.Description, id)
	if err != nil {
		Log.Error().Err(err).Int64("id", id).Msg("failed to update transaction")
		writeError(w, http.StatusInternalServerError, "update failed")
		return
	}

	var row models.Transaction
	var date, category, description sql.NullString
	err = database.DB.QueryRow(`
		SELECT id, amount, date, category, description, created_at
		FROM transactions WHERE id = ?
	`, id).Scan(&row.ID, &row.Amount, &date, &category, &description, &row.CreatedAt)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		Log.Error().Err(err).Int64("id", id).Msg("failed to read updated transaction")
		writeError(w, http.StatusInternalServerError, "update failed")
		return
	}
	if date.Valid {
		row.Date = &date.String
	}
	if category.Valid {
		row.Category = &category.String
	}
	if description.Valid {
		row.Description = &description.String
	}

	writeJSON(w, http.StatusOK, row)
}

func DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	res, err := database.DB.Exec("DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		Log.Error().Err(err).Int64("id", id).Msg("failed to delete transaction")
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	affected, err := res.RowsAffected()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "delete failed")
		return
	}
	if affected == 0 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
