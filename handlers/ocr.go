package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"ledgerbox/database"
	"ledgerbox/services"
)

// flexString decodes a JSON string or number into a plain string; null and
// absent both decode to "".
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = ""
		return nil
	}
	var v string
	if err := json.Unmarshal(b, &v); err == nil {
		*f = flexString(v)
		return nil
	}
	*f = flexString(strings.Trim(s, `"`))
	return nil
}

type ocrRequest struct {
	Text   string `json:"text"`
	Fields struct {
		Amount      flexString `json:"amount"`
		Date        flexString `json:"date"`
		Description flexString `json:"description"`
		Type        flexString `json:"type"`
	} `json:"fields"`
	Image string `json:"image"`
}

// ocrFields is the resolved field snapshot. Amount starts as the raw string
// and becomes numeric once a transaction is created from it.
type ocrFields struct {
	Amount      interface{} `json:"amount"`
	Date        *string     `json:"date"`
	Description *string     `json:"description"`
	Type        *string     `json:"type"`
}

func strOrNil(f flexString) *string {
	s := string(f)
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// OCRPost resolves {amount, date, description} from caller-supplied fields,
// free text, and an optional receipt image. Caller-supplied values always
// win; the remote extractor only fills the gaps. Every attempt is recorded
// as an extraction row, and a transaction is auto-inserted whenever an
// amount was resolved.
func OCRPost(w http.ResponseWriter, r *http.Request) {
	var req ocrRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	parsed := ocrFields{
		Date:        strOrNil(req.Fields.Date),
		Description: strOrNil(req.Fields.Description),
		Type:        strOrNil(req.Fields.Type),
	}
	amountRaw := string(req.Fields.Amount)
	if strings.TrimSpace(amountRaw) != "" {
		parsed.Amount = amountRaw
	}

	hasAmount := services.ParseAmount(amountRaw) != nil
	hasDate := parsed.Date != nil
	geminiUsed := false

	if (!hasAmount || !hasDate) && (req.Text != "" || req.Image != "") && Extractor != nil {
		g, err := Extractor.Extract(r.Context(), req.Text, req.Image)
		if err != nil {
			// Extraction failures degrade to unchanged fields, never to a
			// request error.
			Log.Error().Err(err).Msg("remote field extraction failed")
		}
		if g != nil {
			geminiUsed = true
			if parsed.Amount == nil && g.Amount != nil {
				amountRaw = *g.Amount
				parsed.Amount = *g.Amount
			}
			if parsed.Date == nil && g.Date != nil {
				parsed.Date = g.Date
			}
			if parsed.Description == nil && g.Description != nil {
				parsed.Description = g.Description
			}
		}
	}

	fieldsJSON, err := json.Marshal(parsed)
	if err != nil {
		fieldsJSON = []byte("{}")
	}
	res, err := database.DB.Exec("INSERT INTO extractions (text, fields) VALUES (?, ?)", req.Text, string(fieldsJSON))
	if err != nil {
		Log.Error().Err(err).Msg("failed to record extraction")
		writeError(w, http.StatusInternalServerError, "failed to record extraction")
		return
	}
	id, _ := res.LastInsertId()

	if amount := services.ParseAmount(amountRaw); amount != nil {
		value := *amount
		typeRaw := ""
		if parsed.Type != nil {
			typeRaw = strings.ToLower(*parsed.Type)
		}
		if strings.Contains(typeRaw, "saída") || strings.Contains(typeRaw, "saida") {
			value = -math.Abs(value)
		} else if strings.Contains(typeRaw, "entrada") {
			value = math.Abs(value)
		}

		description := "Criado via OCR import"
		if parsed.Description != nil && *parsed.Description != "" {
			description = services.TruncateDescription(*parsed.Description)
		}

		_, err := database.DB.Exec(`
			INSERT INTO transactions (amount, date, category, description)
			VALUES (?, ?, 'imported', ?)
		`, value, parsed.Date, description)
		if err != nil {
			Log.Error().Err(err).Msg("auto-transaction insert failed")
		} else {
			parsed.Amount = value
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":         id,
		"geminiUsed": geminiUsed,
		"fields":     parsed,
		"text":       req.Text,
	})
}
