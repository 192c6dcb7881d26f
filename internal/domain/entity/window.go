package entity

import "time"

// BillingWindow descreve o intervalo de consulta de gasto e quantos dias
// restam no mês de faturamento a partir da data final (inclusive).
type BillingWindow struct {
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
	RemainingDays int       `json:"remaining_days"`
}

// StartDate retorna o início do período no formato ISO-8601.
func (w BillingWindow) StartDate() string {
	return w.PeriodStart.Format("2006-01-02")
}

// EndDate retorna o fim do período no formato ISO-8601.
func (w BillingWindow) EndDate() string {
	return w.PeriodEnd.Format("2006-01-02")
}
