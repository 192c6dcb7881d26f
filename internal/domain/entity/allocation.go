package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
)

// AllocationContext contains the budget figures a reallocation is computed from.
// It is rebuilt on every fetch and never partially updated.
type AllocationContext struct {
	TotalMonthlyBudget decimal.Decimal `json:"total_monthly_budget"`
	PaddingPercent     decimal.Decimal `json:"padding_percent"`
	TotalSpend         decimal.Decimal `json:"total_spend"`
	RemainingBudget    decimal.Decimal `json:"remaining_budget"`
	Window             BillingWindow   `json:"window"`
}

// NewAllocationContext calcula o orçamento restante distribuível:
// max(total - gasto, 0) × padding.
func NewAllocationContext(total, padding decimal.Decimal, entities []BudgetEntity, window BillingWindow) AllocationContext {
	spend := decimal.Zero
	for _, e := range entities {
		spend = spend.Add(e.Spend)
	}

	remaining := total.Sub(spend)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	return AllocationContext{
		TotalMonthlyBudget: total,
		PaddingPercent:     padding,
		TotalSpend:         spend,
		RemainingBudget:    remaining.Mul(padding),
		Window:             window,
	}
}

// PaddingPresets são as opções de reserva oferecidas ao usuário, em percentuais.
var PaddingPresets = []string{"1%", "2%", "3%", "4%", "5%", "Custom"}

// Padding é a reserva escolhida, expressa em percentual (0–100).
type Padding struct {
	ReservePercent decimal.Decimal
}

// Multiplier retorna 1 − reserva/100, o fator aplicado ao orçamento restante.
func (p Padding) Multiplier() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(p.ReservePercent.Div(hundred))
}

// String formata a reserva como "5%".
func (p Padding) String() string {
	return p.ReservePercent.String() + "%"
}

// ParsePadding aceita um preset ("1%".."5%"), um número ("2.5") ou "custom:7".
func ParsePadding(s string) (Padding, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimPrefix(s, "custom:")
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return Padding{}, fmt.Errorf("padding is empty")
	}

	pct, err := decimal.NewFromString(s)
	if err != nil {
		return Padding{}, fmt.Errorf("padding %q is not a number: %w", s, err)
	}
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return Padding{}, fmt.Errorf("padding %s%% must be between 0 and 100", pct)
	}
	return Padding{ReservePercent: pct}, nil
}

// ValidationOutcome é o resultado da validação de uma recomputação.
type ValidationOutcome struct {
	Accepted   bool            `json:"accepted"`
	SumPercent decimal.Decimal `json:"sum_percent"`
	Reason     string          `json:"reason,omitempty"`
}
