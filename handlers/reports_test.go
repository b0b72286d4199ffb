package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbox/models"
)

func TestGetSummary(t *testing.T) {
	setupTestDB(t)
	seedRow(t, 500, "2024-01-01", "Vendas", "venda")
	seedRow(t, -200, "2024-01-02", "Custos", "insumos")

	req := httptest.NewRequest("GET", "/summary", nil)
	rr := httptest.NewRecorder()
	GetSummary(rr, req)

	require.Equal(t, 200, rr.Code)
	var result models.SummaryResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 500.0, result.Income)
	assert.Equal(t, 200.0, result.Expenses)
	assert.Equal(t, 300.0, result.Balance)
	require.Len(t, result.Timeseries, 2)
	assert.Equal(t, 300.0, result.Timeseries[1].Balance)
}

func TestGetSummaryWithRangeAndLimit(t *testing.T) {
	setupTestDB(t)
	seedRow(t, 10, "2024-01-01", nil, nil)
	seedRow(t, 20, "2024-01-02", nil, nil)
	seedRow(t, 30, "2024-02-01", nil, nil)

	req := httptest.NewRequest("GET", "/summary?start=2024-01-01&end=2024-01-31&limit=1", nil)
	rr := httptest.NewRecorder()
	GetSummary(rr, req)

	require.Equal(t, 200, rr.Code)
	var result models.SummaryResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 30.0, result.Income)
	assert.Len(t, result.Timeseries, 1)
}

func TestGetAnalytics(t *testing.T) {
	setupTestDB(t)
	seedRow(t, 100, "2024-01-01", "Vendas", nil)
	seedRow(t, -40, "2024-01-01", nil, nil)

	req := httptest.NewRequest("GET", "/analytics", nil)
	rr := httptest.NewRecorder()
	GetAnalytics(rr, req)

	require.Equal(t, 200, rr.Code)
	var result models.AnalyticsResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))

	totals := map[string]float64{}
	for _, c := range result.Categories {
		totals[c.Name] = c.Amount
	}
	assert.Equal(t, 100.0, totals["Vendas"])
	assert.Equal(t, -40.0, totals["Uncategorized"])
}

func TestGetDRE(t *testing.T) {
	setupTestDB(t)
	seedRow(t, 500, "2024-01-01", "Vendas", "venda")
	seedRow(t, -200, "2024-01-02", "Custo de Produção", "insumos")

	req := httptest.NewRequest("GET", "/dre", nil)
	rr := httptest.NewRecorder()
	GetDRE(rr, req)

	require.Equal(t, 200, rr.Code)
	var result models.DREResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
	assert.Equal(t, 500.0, result.Summary.ReceitaOperacionalLiquida)
	assert.Equal(t, 300.0, result.Summary.LucroBruto)
	assert.Equal(t, 45.0, result.Summary.ProvisaoIR)
	assert.Equal(t, 255.0, result.Summary.LucroLiquido)
}
