package migrations

import "database/sql"

// BaseSchema creates the ledger tables. Dates are stored as plain TEXT so a
// transaction can carry a bare ISO date while created_at keeps the full
// insert timestamp.
func BaseSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			amount REAL,
			date TEXT,
			category TEXT,
			description TEXT,
			created_at TEXT DEFAULT (datetime('now'))
		);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS extractions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT,
			fields TEXT,
			created_at TEXT DEFAULT (datetime('now'))
		);
	`)
	return err
}

// AddLedgerIndexes speeds up the effective-date range scans used by every
// read-side projection.
func AddLedgerIndexes(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
	`)
	if err != nil {
		return err
	}
	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at);
	`)
	return err
}
