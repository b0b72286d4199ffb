package services

import (
	"database/sql"
	"strings"

	"ledgerbox/models"
)

// effectiveDate is the grouping key for every read-side projection: the
// explicit date when present, otherwise the date portion of created_at.
const effectiveDate = "COALESCE(date, date(created_at))"

// rangeFilters builds the optional inclusive date-range predicate shared by
// the read projections.
func rangeFilters(start, end string) ([]string, []interface{}) {
	var filters []string
	var args []interface{}
	if start != "" {
		filters = append(filters, effectiveDate+" >= ?")
		args = append(args, start)
	}
	if end != "" {
		filters = append(filters, effectiveDate+" <= ?")
		args = append(args, end)
	}
	return filters, args
}

func whereClause(filters []string) string {
	if len(filters) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(filters, " AND ")
}

// TypeLabel derives the display type from the sign of an amount.
func TypeLabel(amount float64) string {
	if amount >= 0 {
		return "Entrada"
	}
	return "Saída"
}

// Summary computes income/expense/balance totals for the optional date range
// plus a chronological timeseries annotated with a running balance.
func Summary(db *sql.DB, start, end string, limit int) (*models.SummaryResult, error) {
	baseFilters, args := rangeFilters(start, end)

	incomeFilters := append(append([]string{}, baseFilters...), "amount > 0")
	var income sql.NullFloat64
	err := db.QueryRow("SELECT SUM(amount) FROM transactions "+whereClause(incomeFilters), args...).Scan(&income)
	if err != nil {
		return nil, err
	}

	expensesFilters := append(append([]string{}, baseFilters...), "amount < 0")
	var expenses sql.NullFloat64
	err = db.QueryRow("SELECT SUM(amount) FROM transactions "+whereClause(expensesFilters), args...).Scan(&expenses)
	if err != nil {
		return nil, err
	}

	result := &models.SummaryResult{
		Income:     income.Float64,
		Expenses:   -expenses.Float64,
		Timeseries: []models.TimeseriesEntry{},
	}
	result.Balance = result.Income - result.Expenses

	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT id, ` + effectiveDate + ` as date, description, category, amount, created_at
		FROM transactions
		` + whereClause(baseFilters) + `
		ORDER BY date ASC, created_at ASC
		LIMIT ?
	`
	rows, err := db.Query(query, append(append([]interface{}{}, args...), limit)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var running float64
	for rows.Next() {
		var entry models.TimeseriesEntry
		var description, category sql.NullString
		var createdAt string
		if err := rows.Scan(&entry.ID, &entry.Date, &description, &category, &entry.Amount, &createdAt); err != nil {
			return nil, err
		}
		if description.Valid {
			entry.Description = &description.String
		}
		if category.Valid {
			entry.Category = &category.String
		}
		running += entry.Amount
		entry.Value = entry.Amount
		entry.Balance = running
		entry.Type = TypeLabel(entry.Amount)
		result.Timeseries = append(result.Timeseries, entry)
	}
	return result, rows.Err()
}

// Analytics returns per-category totals and a 30-point daily income/expense
// series in chronological order. It is not gated by a date range.
func Analytics(db *sql.DB) (*models.AnalyticsResult, error) {
	result := &models.AnalyticsResult{
		Categories: []models.CategoryTotal{},
		Timeseries: []models.DailyPoint{},
	}

	rows, err := db.Query("SELECT category, SUM(amount) FROM transactions GROUP BY category")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var category sql.NullString
		var amount sql.NullFloat64
		if err := rows.Scan(&category, &amount); err != nil {
			return nil, err
		}
		name := "Uncategorized"
		if category.Valid && category.String != "" {
			name = category.String
		}
		result.Categories = append(result.Categories, models.CategoryTotal{Name: name, Amount: amount.Float64})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	dayRows, err := db.Query(`
		SELECT ` + effectiveDate + ` as date,
			SUM(amount) as income,
			SUM(CASE WHEN amount < 0 THEN amount ELSE 0 END) as expenses
		FROM transactions
		GROUP BY date
		ORDER BY date DESC
		LIMIT 30
	`)
	if err != nil {
		return nil, err
	}
	defer dayRows.Close()

	var points []models.DailyPoint
	for dayRows.Next() {
		var p models.DailyPoint
		var income, expenses sql.NullFloat64
		if err := dayRows.Scan(&p.Date, &income, &expenses); err != nil {
			return nil, err
		}
		p.Income = income.Float64
		p.Expenses = -expenses.Float64
		points = append(points, p)
	}
	if err := dayRows.Err(); err != nil {
		return nil, err
	}

	// Query returns most recent first; charts want chronological order.
	for i := len(points) - 1; i >= 0; i-- {
		result.Timeseries = append(result.Timeseries, points[i])
	}
	return result, nil
}

// ClassifyDRE maps one transaction onto an income-statement bucket. Positive
// amounts are always revenue; negatives fall through a keyword match on the
// category, defaulting to operating expenses.
func ClassifyDRE(amount float64, category *string) string {
	if amount > 0 {
		return "Receitas"
	}
	cat := ""
	if category != nil {
		cat = strings.ToLower(*category)
	}
	switch {
	case strings.Contains(cat, "custo"):
		return "Custos"
	case strings.Contains(cat, "despesa"), strings.Contains(cat, "administrativ"), strings.Contains(cat, "operacional"):
		return "Despesas Operacionais"
	case strings.Contains(cat, "financ"), strings.Contains(cat, "jur"):
		return "Despesas Financeiras"
	case amount < 0:
		return "Despesas Operacionais"
	}
	return "Outros"
}

// DRE builds the simplified income statement for the optional date range.
func DRE(db *sql.DB, start, end string) (*models.DREResult, error) {
	baseFilters, args := rangeFilters(start, end)

	rows, err := db.Query(`
		SELECT category, description, amount
		FROM transactions
		`+whereClause(baseFilters)+`
		ORDER BY amount DESC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &models.DREResult{Rows: []models.DRERow{}}
	var totalReceitas, totalCustos, totalDespesas float64
	for rows.Next() {
		var category, description sql.NullString
		var amount sql.NullFloat64
		if err := rows.Scan(&category, &description, &amount); err != nil {
			return nil, err
		}

		var catPtr *string
		if category.Valid {
			catPtr = &category.String
		}
		valor := amount.Float64
		categoria := ClassifyDRE(valor, catPtr)

		descricao := "Sem descrição"
		if description.Valid && description.String != "" {
			descricao = description.String
		} else if category.Valid && category.String != "" {
			descricao = category.String
		}

		result.Rows = append(result.Rows, models.DRERow{Categoria: categoria, Descricao: descricao, Valor: valor})

		if valor > 0 {
			totalReceitas += valor
		}
		switch categoria {
		case "Custos":
			totalCustos += valor
		case "Despesas Operacionais", "Despesas Financeiras":
			totalDespesas += valor
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if totalCustos < 0 {
		totalCustos = -totalCustos
	}
	if totalDespesas < 0 {
		totalDespesas = -totalDespesas
	}

	lucroBruto := totalReceitas - totalCustos
	resultadoOperacional := lucroBruto - totalDespesas
	provisaoIR := 0.0
	if resultadoOperacional > 0 {
		provisaoIR = resultadoOperacional * 0.15
	}

	result.Summary = models.DRESummary{
		ReceitaOperacionalLiquida: totalReceitas,
		LucroBruto:                lucroBruto,
		ResultadoOperacional:      resultadoOperacional,
		ProvisaoIR:                provisaoIR,
		LucroLiquido:              resultadoOperacional - provisaoIR,
	}
	return result, nil
}

// LedgerRows lists in-range transactions in effective-date order, feeding the
// aggregate-analysis prompt builder.
func LedgerRows(db *sql.DB, start, end string, limit int) ([]models.LedgerRow, error) {
	baseFilters, args := rangeFilters(start, end)
	if limit <= 0 {
		limit = 500
	}

	rows, err := db.Query(`
		SELECT `+effectiveDate+` as date, description, category, amount, created_at
		FROM transactions
		`+whereClause(baseFilters)+`
		ORDER BY date ASC, created_at ASC
		LIMIT ?
	`, append(append([]interface{}{}, args...), limit)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LedgerRow
	for rows.Next() {
		var r models.LedgerRow
		var date, description, category sql.NullString
		var amount sql.NullFloat64
		if err := rows.Scan(&date, &description, &category, &amount, &r.CreatedAt); err != nil {
			return nil, err
		}
		if date.Valid {
			r.Date = &date.String
		}
		if description.Valid {
			r.Description = &description.String
		}
		if category.Valid {
			r.Category = &category.String
		}
		r.Amount = amount.Float64
		out = append(out, r)
	}
	return out, rows.Err()
}
