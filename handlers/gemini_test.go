package handlers

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbox/services"
)

type stubGenerator struct {
	output string
	err    error
	prompt string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.output, s.err
}

func useGenerator(t *testing.T, g services.TextGenerator) {
	t.Helper()
	prev := Generator
	Generator = g
	t.Cleanup(func() { Generator = prev })
}

func TestGeminiRaw(t *testing.T) {
	setupTestDB(t)
	stub := &stubGenerator{output: `{"valor": "25,90", "data": "2024-01-01", "descricao": "mercado"}`}
	useGenerator(t, stub)

	req := jsonRequest(t, "POST", "/gemini-raw", map[string]string{"text": "nota 25,90"})
	rr := httptest.NewRecorder()
	GeminiRaw(rr, req)

	require.Equal(t, 200, rr.Code)
	body := decodeBody(t, rr)
	parsed := body["parsed"].(map[string]interface{})
	assert.Equal(t, "25,90", parsed["valor"])
	assert.Equal(t, "mercado", parsed["descricao"])
	assert.NotEmpty(t, body["raw"])
	assert.Contains(t, stub.prompt, "nota 25,90")
}

func TestGeminiRawRequiresText(t *testing.T) {
	setupTestDB(t)
	useGenerator(t, &stubGenerator{})

	req := jsonRequest(t, "POST", "/gemini-raw", map[string]string{"text": "   "})
	rr := httptest.NewRecorder()
	GeminiRaw(rr, req)

	assert.Equal(t, 400, rr.Code)
	assert.Equal(t, "Texto bruto obrigatório.", decodeBody(t, rr)["erro"])
}

func TestGeminiRawGeneratorError(t *testing.T) {
	setupTestDB(t)
	useGenerator(t, &stubGenerator{err: errors.New("quota exceeded")})

	req := jsonRequest(t, "POST", "/gemini-raw", map[string]string{"text": "nota"})
	rr := httptest.NewRecorder()
	GeminiRaw(rr, req)

	assert.Equal(t, 500, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Erro ao chamar Gemini", body["erro"])
	assert.Equal(t, "quota exceeded", body["detalhe"])
}

func TestGeminiAggregateFromStore(t *testing.T) {
	setupTestDB(t)
	seedRow(t, 500, "2024-01-01", "Vendas", "venda grande")
	seedRow(t, -120, "2024-01-02", nil, nil)
	stub := &stubGenerator{output: "```json\n{\"summary\": \"ok\", \"cash_flow_trend\": \"positivo\"}\n```"}
	useGenerator(t, stub)

	req := jsonRequest(t, "POST", "/gemini-aggregate", map[string]interface{}{})
	rr := httptest.NewRecorder()
	GeminiAggregate(rr, req)

	require.Equal(t, 200, rr.Code)
	body := decodeBody(t, rr)
	parsed := body["parsed"].(map[string]interface{})
	assert.Equal(t, "positivo", parsed["cash_flow_trend"])

	// Rows are flattened into "date | category | description | amount" lines
	// with placeholders for missing values.
	assert.Contains(t, stub.prompt, "2024-01-01 | Vendas | venda grande | 500.00")
	assert.Contains(t, stub.prompt, "2024-01-02 | sem-categoria | - | -120.00")
}

func TestGeminiAggregateDataOverride(t *testing.T) {
	setupTestDB(t)
	stub := &stubGenerator{output: `{"summary": "custom"}`}
	useGenerator(t, stub)

	req := jsonRequest(t, "POST", "/gemini-aggregate", map[string]interface{}{
		"data": []map[string]interface{}{
			{"date": "2024-03-01", "desc": "linha externa", "value": 77.5},
		},
	})
	rr := httptest.NewRecorder()
	GeminiAggregate(rr, req)

	require.Equal(t, 200, rr.Code)
	assert.Contains(t, stub.prompt, "2024-03-01 | sem-categoria | linha externa | 77.50")
}

func TestGeminiAggregateEmptyStore(t *testing.T) {
	setupTestDB(t)
	stub := &stubGenerator{output: "should not be called"}
	useGenerator(t, stub)

	req := jsonRequest(t, "POST", "/gemini-aggregate", map[string]interface{}{})
	rr := httptest.NewRecorder()
	GeminiAggregate(rr, req)

	require.Equal(t, 200, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Sem lançamentos", body["message"])
	assert.Nil(t, body["parsed"])
	assert.Empty(t, stub.prompt)
}

func TestGeminiAggregateUnparseableOutput(t *testing.T) {
	setupTestDB(t)
	seedRow(t, 10, "2024-01-01", "a", "x")
	useGenerator(t, &stubGenerator{output: "the outlook is fine"})

	req := jsonRequest(t, "POST", "/gemini-aggregate", map[string]interface{}{})
	rr := httptest.NewRecorder()
	GeminiAggregate(rr, req)

	require.Equal(t, 200, rr.Code)
	body := decodeBody(t, rr)
	assert.Nil(t, body["parsed"])
	assert.Equal(t, "the outlook is fine", body["raw"])
}

func TestGeminiAggregateSanitizesDescriptions(t *testing.T) {
	setupTestDB(t)
	seedRow(t, 10, "2024-01-01", "a", "first line\nsecond line")
	useGenerator(t, &stubGenerator{output: `{"summary": "ok"}`})

	req := jsonRequest(t, "POST", "/gemini-aggregate", map[string]interface{}{})
	rr := httptest.NewRecorder()
	GeminiAggregate(rr, req)

	require.Equal(t, 200, rr.Code)
	stub := Generator.(*stubGenerator)
	assert.Contains(t, stub.prompt, "first line second line")
	assert.False(t, strings.Contains(stub.prompt, "first line\nsecond line"))
}
