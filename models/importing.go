package models

// ImportResult is the outcome of one file in an import batch.
type ImportResult struct {
	Filename string `json:"filename"`
	Message  string `json:"message"`
	Success  bool   `json:"success"`
}
