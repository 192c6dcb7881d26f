package service

import (
	"fmt"

	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
	"github.com/shopspring/decimal"
)

// SumTargetPercent soma os percentuais alvo de todas as entidades.
func SumTargetPercent(entities []entity.BudgetEntity) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entities {
		sum = sum.Add(e.TargetPercent)
	}
	return sum
}

// Recompute calcula o novo orçamento diário de cada entidade:
//
//	new = round(target/100 × remainingBudget / remainingDays, 2)
//
// Quando a soma dos alvos passa de 100% o resultado é rejeitado e as entidades
// voltam inalteradas, com os valores anteriores de NewDailyBudget. O slice de
// entrada nunca é modificado.
func Recompute(entities []entity.BudgetEntity, ctx entity.AllocationContext) ([]entity.BudgetEntity, entity.ValidationOutcome, error) {
	out := make([]entity.BudgetEntity, len(entities))
	copy(out, entities)

	sum := SumTargetPercent(entities)
	if sum.GreaterThan(hundred) {
		return out, entity.ValidationOutcome{
			Accepted:   false,
			SumPercent: sum,
			Reason:     fmt.Sprintf("sum exceeds 100%%: %s", sum.String()),
		}, nil
	}

	if ctx.Window.RemainingDays <= 0 {
		return out, entity.ValidationOutcome{SumPercent: sum}, types.ErrInvalidWindow
	}

	days := decimal.NewFromInt(int64(ctx.Window.RemainingDays))
	for i := range out {
		share := out[i].TargetPercent.Div(hundred).Mul(ctx.RemainingBudget)
		out[i].NewDailyBudget = share.Div(days).Round(2)
	}

	return out, entity.ValidationOutcome{Accepted: true, SumPercent: sum}, nil
}
