package models

// TimeseriesEntry is one row of the summary timeseries, annotated with the
// running balance up to and including this entry.
type TimeseriesEntry struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Type        string  `json:"type"`
	Value       float64 `json:"value"`
	Amount      float64 `json:"amount"`
	Balance     float64 `json:"balance"`
}

type SummaryResult struct {
	Income     float64           `json:"income"`
	Expenses   float64           `json:"expenses"`
	Balance    float64           `json:"balance"`
	Timeseries []TimeseriesEntry `json:"timeseries"`
}

type CategoryTotal struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// DailyPoint is one day of the analytics timeseries. Expenses is the absolute
// value of the day's negative amounts.
type DailyPoint struct {
	Date     string  `json:"date"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

type AnalyticsResult struct {
	Categories []CategoryTotal `json:"categories"`
	Timeseries []DailyPoint    `json:"timeseries"`
}

// DRERow is one classified transaction in the simplified income statement.
type DRERow struct {
	Categoria string  `json:"categoria"`
	Descricao string  `json:"descricao"`
	Valor     float64 `json:"valor"`
}

type DRESummary struct {
	ReceitaOperacionalLiquida float64 `json:"receita_operacional_liquida"`
	LucroBruto                float64 `json:"lucro_bruto"`
	ResultadoOperacional      float64 `json:"resultado_operacional"`
	ProvisaoIR                float64 `json:"provisao_ir"`
	LucroLiquido              float64 `json:"lucro_liquido"`
}

type DREResult struct {
	Rows    []DRERow   `json:"rows"`
	Summary DRESummary `json:"summary"`
}

// LedgerRow is the flat projection used to feed aggregate analysis prompts.
type LedgerRow struct {
	Date        *string `json:"date"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Amount      float64 `json:"amount"`
	CreatedAt   string  `json:"created_at"`
}
