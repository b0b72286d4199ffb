package models

// Transaction is one ledger entry. Sign of Amount is the type discriminator:
// non-negative amounts are inflows ("Entrada"), negative ones are outflows
// ("Saída"). Date, Category and Description are nullable in the store.
type Transaction struct {
	ID          int64   `json:"id"`
	Amount      float64 `json:"amount"`
	Date        *string `json:"date"`
	Category    *string `json:"category"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at"`
}

// Extraction is the write-once audit record of one field-extraction attempt.
type Extraction struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Fields    string `json:"fields"`
	CreatedAt string `json:"created_at"`
}
