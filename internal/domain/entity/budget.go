package entity

import "github.com/shopspring/decimal"

// SpendInput é uma tupla (entidade, orçamento, gasto) antes da agregação.
type SpendInput struct {
	ID       string
	Name     string
	Level    EntityLevel
	ParentID string
	Budget   decimal.Decimal
	Spend    decimal.Decimal
}

// BudgetEntity represents one campaign or ad set in a reallocation run.
type BudgetEntity struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Level               EntityLevel     `json:"level"`
	ParentID            string          `json:"parent_id,omitempty"`
	CurrentDailyBudget  decimal.Decimal `json:"current_daily_budget"`
	Spend               decimal.Decimal `json:"spend"`
	CurrentSharePercent decimal.Decimal `json:"current_share_percent"`
	TargetPercent       decimal.Decimal `json:"target_percent"`
	NewDailyBudget      decimal.Decimal `json:"new_daily_budget"`
}
