package handlers

import (
	"io"
	"net/http"
	"os"
	"time"

	"ledgerbox/database"
	"ledgerbox/services"
)

// ExportSQL streams the raw store file back as a timestamped snapshot.
func ExportSQL(w http.ResponseWriter, r *http.Request) {
	manager := database.Default()
	if manager == nil || manager.Path() == ":memory:" {
		writeError(w, http.StatusInternalServerError, "store file is not available for download")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename="+services.SnapshotFilename(time.Now()))
	http.ServeFile(w, r, manager.Path())
}

// ExportXLS renders all transactions into a spreadsheet download.
func ExportXLS(w http.ResponseWriter, r *http.Request) {
	f, err := services.BuildWorkbook(database.DB)
	if err != nil {
		Log.Error().Err(err).Msg("failed to build export workbook")
		writeError(w, http.StatusInternalServerError, "failed to export spreadsheet")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=transactions.xlsx")
	if err := f.Write(w); err != nil {
		Log.Error().Err(err).Msg("failed to stream export workbook")
	}
}

// ImportData accepts a multipart batch of .sql/.xls/.xlsx/.sqlite files and
// imports each one independently. The response carries one result per file;
// any failure turns the whole response into a 400 so the caller can see
// which files need attention.
func ImportData(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}
	uploads := r.MultipartForm.File["files"]
	if len(uploads) == 0 {
		writeError(w, http.StatusBadRequest, "Nenhum arquivo enviado.")
		return
	}

	var files []services.ImportFile
	for _, header := range uploads {
		src, err := header.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "could not read uploaded file "+header.Filename)
			return
		}
		tmp, err := os.CreateTemp("", "ledgerbox-import-*")
		if err != nil {
			src.Close()
			Log.Error().Err(err).Msg("failed to create temporary upload file")
			writeError(w, http.StatusInternalServerError, "failed to stage uploaded files")
			return
		}
		_, err = io.Copy(tmp, src)
		src.Close()
		tmp.Close()
		if err != nil {
			os.Remove(tmp.Name())
			Log.Error().Err(err).Msg("failed to stage uploaded file")
			writeError(w, http.StatusInternalServerError, "failed to stage uploaded files")
			return
		}
		files = append(files, services.ImportFile{Name: header.Filename, Path: tmp.Name()})
	}

	results := services.ImportFiles(database.DB, files, Log)

	// Flush the WAL and recycle the handle so every subsequent read,
	// including direct readers of the store file, observes the merged state.
	if err := database.Default().Checkpoint(); err != nil {
		Log.Error().Err(err).Msg("WAL checkpoint after import failed")
	}
	if err := database.ForceReopen(); err != nil {
		Log.Error().Err(err).Msg("failed to reopen store after import")
	}

	allSuccess := true
	for _, result := range results {
		if !result.Success {
			allSuccess = false
			break
		}
	}
	if allSuccess {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Todos os arquivos importados com sucesso.",
			"results": results,
		})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error":   "Alguns arquivos falharam na importação.",
		"results": results,
	})
}

// ClearAll deletes every transaction and extraction, then reclaims storage.
func ClearAll(w http.ResponseWriter, r *http.Request) {
	tx, err := database.DB.Begin()
	if err != nil {
		Log.Error().Err(err).Msg("failed to begin clear transaction")
		writeError(w, http.StatusInternalServerError, "Falha ao apagar dados.")
		return
	}
	if _, err := tx.Exec("DELETE FROM extractions"); err != nil {
		tx.Rollback()
		Log.Error().Err(err).Msg("failed to clear extractions")
		writeError(w, http.StatusInternalServerError, "Falha ao apagar dados.")
		return
	}
	if _, err := tx.Exec("DELETE FROM transactions"); err != nil {
		tx.Rollback()
		Log.Error().Err(err).Msg("failed to clear transactions")
		writeError(w, http.StatusInternalServerError, "Falha ao apagar dados.")
		return
	}
	if err := tx.Commit(); err != nil {
		Log.Error().Err(err).Msg("failed to commit clear transaction")
		writeError(w, http.StatusInternalServerError, "Falha ao apagar dados.")
		return
	}

	if err := database.Default().Vacuum(); err != nil {
		Log.Warn().Err(err).Msg("VACUUM after clear failed")
	}
	if err := database.ForceReopen(); err != nil {
		Log.Warn().Err(err).Msg("failed to reopen store after clear")
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Dados apagados com sucesso."})
}
