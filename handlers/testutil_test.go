package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ledgerbox/database"
	"ledgerbox/migrations"
)

// setupTestDB installs a per-test store as the process default so handlers
// that reach for database.DB hit an isolated file.
func setupTestDB(t *testing.T) {
	t.Helper()

	m := database.NewManager(filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, database.SetDefault(m))
	t.Cleanup(func() { m.Close() })

	require.NoError(t, migrations.RunMigrations(database.DB))
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func seedRow(t *testing.T, amount float64, date, category, description interface{}) int64 {
	t.Helper()
	res, err := database.DB.Exec(
		"INSERT INTO transactions (amount, date, category, description) VALUES (?, ?, ?, ?)",
		amount, date, category, description,
	)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func countRows(t *testing.T, table string) int {
	t.Helper()
	var count int
	require.NoError(t, database.DB.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
	return count
}
