package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ledgerbox/database"
	"ledgerbox/models"
	"ledgerbox/services"
)

// GeminiRaw sends free text to the model and returns the extracted
// {valor, data, descricao} object alongside the raw model output.
func GeminiRaw(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"erro": "Texto bruto obrigatório."})
		return
	}
	if Generator == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"erro": "Erro ao chamar Gemini"})
		return
	}

	prompt := `
Extraia do texto abaixo os campos "valor", "data" e "descricao". Retorne apenas um objeto JSON com chaves "valor", "data" e "descricao". Se não encontrar, coloque null.
Texto:
` + req.Text + "\n"

	raw, err := Generator.Generate(r.Context(), prompt)
	if err != nil {
		Log.Error().Err(err).Msg("gemini-raw call failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"erro": "Erro ao chamar Gemini", "detalhe": err.Error()})
		return
	}

	parsed, _ := services.ParseModelFields(raw, map[string]string{
		"valor":     "valor",
		"data":      "data",
		"descricao": "descri[cç]ao",
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"parsed": parsed, "raw": raw})
}

type aggregateRow struct {
	Date        *string  `json:"date"`
	Description *string  `json:"description"`
	Desc        *string  `json:"desc"`
	Category    *string  `json:"category"`
	Amount      *float64 `json:"amount"`
	Value       *float64 `json:"value"`
	CreatedAt   string   `json:"created_at"`
}

// GeminiAggregate asks the model for a financial analysis of the given
// ledger rows. Rows supplied in the request body win; otherwise the in-range
// transactions are loaded from the store.
func GeminiAggregate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Start string         `json:"start"`
		End   string         `json:"end"`
		Limit int            `json:"limit"`
		Data  []aggregateRow `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var rows []models.LedgerRow
	if len(req.Data) > 0 {
		for _, d := range req.Data {
			row := models.LedgerRow{Date: d.Date, Category: d.Category, CreatedAt: d.CreatedAt}
			row.Description = d.Description
			if row.Description == nil {
				row.Description = d.Desc
			}
			if d.Amount != nil {
				row.Amount = *d.Amount
			} else if d.Value != nil {
				row.Amount = *d.Value
			}
			if row.CreatedAt == "" {
				row.CreatedAt = time.Now().UTC().Format(time.RFC3339)
			}
			rows = append(rows, row)
		}
	} else {
		var err error
		rows, err = services.LedgerRows(database.DB, req.Start, req.End, req.Limit)
		if err != nil {
			Log.Error().Err(err).Msg("failed to load ledger rows for aggregate analysis")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"erro": "Erro ao gerar análise", "detalhe": err.Error()})
			return
		}
	}

	if len(rows) == 0 {
		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Sem lançamentos", "parsed": nil, "raw": nil})
		return
	}
	if Generator == nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"erro": "Erro ao gerar análise"})
		return
	}

	var list strings.Builder
	for _, row := range rows {
		date := "sem-data"
		if row.Date != nil && *row.Date != "" {
			date = *row.Date
		}
		category := "sem-categoria"
		if row.Category != nil && *row.Category != "" {
			category = *row.Category
		}
		description := "-"
		if row.Description != nil {
			cleaned := strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(*row.Description))
			if cleaned != "" {
				description = cleaned
			}
		}
		fmt.Fprintf(&list, "%s | %s | %s | %.2f\n", date, category, description, row.Amount)
	}

	prompt := `
Analise os lançamentos abaixo (formato: data | categoria | descrição | valor). Gere e retorne apenas um objeto JSON válido com as chaves:
- "summary": texto curto com os principais pontos (máx 2 frases)
- "top_categories": array de objetos { "name": "<categoria>", "amount": <valor absoluto> } com até 5 maiores categorias
- "cash_flow_trend": uma das strings "positivo", "negativo" ou "estável"
- "recommendations": array de strings com recomendações práticas e acionáveis
- "anomalies": array de strings descrevendo possíveis lançamentos anômalos (se houver)
Use valores numéricos em ponto flutuante para montantes. Não retorne explicações adicionais — apenas o JSON.

Lançamentos:
` + list.String()

	raw, err := Generator.Generate(r.Context(), prompt)
	if err != nil {
		Log.Error().Err(err).Msg("gemini-aggregate call failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"erro": "Erro ao gerar análise", "detalhe": err.Error()})
		return
	}

	var parsed interface{}
	if obj, ok := services.ParseModelObject(raw); ok {
		parsed = obj
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"parsed": parsed, "raw": raw})
}
