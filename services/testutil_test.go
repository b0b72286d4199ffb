package services

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"ledgerbox/migrations"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.sqlite")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.RunMigrations(db))
	return db
}

func seedTransaction(t *testing.T, db *sql.DB, amount float64, date, category, description interface{}) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO transactions (amount, date, category, description) VALUES (?, ?, ?, ?)",
		amount, date, category, description,
	)
	require.NoError(t, err)
}

func countTransactions(t *testing.T, db *sql.DB) int {
	t.Helper()
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count))
	return count
}
