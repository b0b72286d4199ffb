package services

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"ledgerbox/models"
)

// ImportFile is one uploaded artifact: the client-supplied name decides the
// format, Path points at the temporary file on disk.
type ImportFile struct {
	Name string
	Path string
}

// ImportFiles attempts to import each file independently. A failure rolls
// back only that file's transaction and is recorded in its result; the rest
// of the batch still runs. Temporary files are removed regardless of outcome.
func ImportFiles(db *sql.DB, files []ImportFile, log zerolog.Logger) []models.ImportResult {
	results := make([]models.ImportResult, 0, len(files))

	for _, file := range files {
		var message string
		var success bool

		switch strings.ToLower(filepath.Ext(file.Name)) {
		case ".sql":
			count, err := importSQLScript(db, file.Path)
			switch {
			case err != nil:
				log.Error().Err(err).Str("file", file.Name).Msg("SQL import failed")
				message = fmt.Sprintf("Erro ao importar %s: %v", file.Name, err)
			case count == 0:
				message = fmt.Sprintf("Nenhuma instrução SQL encontrada no arquivo %s.", file.Name)
			default:
				message = fmt.Sprintf("Dados SQL de %s importados com sucesso.", file.Name)
				success = true
			}
		case ".xls", ".xlsx":
			inserted, ignored, err := importSpreadsheet(db, file.Path)
			switch {
			case err != nil:
				log.Error().Err(err).Str("file", file.Name).Msg("spreadsheet import failed")
				message = fmt.Sprintf("Erro ao importar %s: %v", file.Name, err)
			case inserted == 0:
				message = fmt.Sprintf("Nenhuma transação encontrada no arquivo XLS %s.", file.Name)
			default:
				log.Info().Int("inserted", inserted).Int("ignored", ignored).Str("file", file.Name).Msg("spreadsheet imported")
				message = fmt.Sprintf("Dados XLS de %s importados com sucesso.", file.Name)
				success = true
			}
		case ".sqlite":
			inserted, skipped, err := importSnapshot(db, file.Path, log)
			if err != nil {
				log.Error().Err(err).Str("file", file.Name).Msg("snapshot import failed")
				message = fmt.Sprintf("Erro ao importar %s: %v", file.Name, err)
			} else {
				log.Info().Int("inserted", inserted).Int("skipped", skipped).Str("file", file.Name).Msg("snapshot merged")
				message = fmt.Sprintf("Dados do banco de dados %s importados com sucesso.", file.Name)
				success = true
			}
		default:
			message = fmt.Sprintf("Formato de arquivo não suportado para %s. Use .sql, .xls, .xlsx ou .sqlite.", file.Name)
		}

		if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", file.Path).Msg("failed to remove uploaded file")
		}
		results = append(results, models.ImportResult{Filename: file.Name, Message: message, Success: success})
	}

	return results
}

// importSQLScript splits the script on ';', drops blank fragments, and runs
// every statement inside one all-or-nothing transaction. Returns the number
// of statements executed.
func importSQLScript(db *sql.DB, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var statements []string
	for _, stmt := range strings.Split(string(content), ";") {
		if strings.TrimSpace(stmt) != "" {
			statements = append(statements, stmt)
		}
	}
	if len(statements) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("executing statement: %w", err)
		}
	}
	return len(statements), tx.Commit()
}

// importSpreadsheet reads the first sheet, skips the header row, and inserts
// every row whose first four columns (amount, date, category, description)
// are all present. Incomplete rows are counted as ignored, not errors.
func importSpreadsheet(db *sql.DB, path string) (inserted, ignored int, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, 0, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, 0, err
	}

	type entry struct {
		amount                      float64
		date, category, description string
	}
	var entries []entry
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 4 {
			ignored++
			continue
		}
		amount := strings.TrimSpace(row[0])
		date := strings.TrimSpace(row[1])
		category := strings.TrimSpace(row[2])
		description := strings.TrimSpace(row[3])
		if amount == "" || date == "" || category == "" || description == "" {
			ignored++
			continue
		}
		value, err := strconv.ParseFloat(amount, 64)
		if err != nil {
			ignored++
			continue
		}
		entries = append(entries, entry{amount: value, date: date, category: category, description: description})
	}
	if len(entries) == 0 {
		return 0, ignored, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, ignored, err
	}
	stmt, err := tx.Prepare("INSERT INTO transactions (amount, date, category, description) VALUES (?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return 0, ignored, err
	}
	defer stmt.Close()
	for _, e := range entries {
		if _, err := stmt.Exec(e.amount, e.date, e.category, e.description); err != nil {
			tx.Rollback()
			return 0, ignored, fmt.Errorf("inserting row: %w", err)
		}
	}
	return len(entries), ignored, tx.Commit()
}

// importSnapshot opens the uploaded file as a secondary store and merges its
// transactions table into the primary one with insert-or-ignore keyed on id.
// Column alignment is trusted; the schema probe is logged only.
func importSnapshot(db *sql.DB, path string, log zerolog.Logger) (inserted, skipped int, err error) {
	snapshot, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return 0, 0, err
	}
	defer snapshot.Close()

	probeSnapshotSchema(snapshot, log)

	rows, err := snapshot.Query("SELECT id, amount, date, category, description, created_at FROM transactions")
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	tx, err := db.Begin()
	if err != nil {
		return 0, 0, err
	}
	stmt, err := tx.Prepare(`
		INSERT OR IGNORE INTO transactions (id, amount, date, category, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return 0, 0, err
	}
	defer stmt.Close()

	for rows.Next() {
		var id int64
		var amount sql.NullFloat64
		var date, category, description, createdAt sql.NullString
		if err := rows.Scan(&id, &amount, &date, &category, &description, &createdAt); err != nil {
			tx.Rollback()
			return 0, 0, err
		}
		res, err := stmt.Exec(id, amount, date, category, description, createdAt)
		if err != nil {
			tx.Rollback()
			return 0, 0, fmt.Errorf("merging row %d: %w", id, err)
		}
		affected, _ := res.RowsAffected()
		if affected > 0 {
			inserted++
		} else {
			skipped++
		}
	}
	if err := rows.Err(); err != nil {
		tx.Rollback()
		return 0, 0, err
	}
	return inserted, skipped, tx.Commit()
}

func probeSnapshotSchema(snapshot *sql.DB, log zerolog.Logger) {
	rows, err := snapshot.Query("PRAGMA table_info(transactions)")
	if err != nil {
		log.Warn().Err(err).Msg("could not probe snapshot schema")
		return
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			log.Warn().Err(err).Msg("could not probe snapshot schema")
			return
		}
		columns = append(columns, name)
	}
	log.Info().Strs("columns", columns).Msg("snapshot transactions schema")
}
