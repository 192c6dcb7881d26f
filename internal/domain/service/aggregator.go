package service

import (
	"context"
	"errors"
	"time"

	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/repository"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Aggregate transforma as tuplas buscadas em linhas com o percentual atual de
// cada entidade no orçamento total. A ordem de entrada é preservada.
func Aggregate(inputs []entity.SpendInput) []entity.BudgetEntity {
	total := decimal.Zero
	for _, in := range inputs {
		total = total.Add(in.Budget)
	}

	rows := make([]entity.BudgetEntity, 0, len(inputs))
	for _, in := range inputs {
		share := decimal.Zero
		if total.IsPositive() {
			share = in.Budget.Div(total).Mul(hundred).Round(2)
		}

		rows = append(rows, entity.BudgetEntity{
			ID:                  in.ID,
			Name:                in.Name,
			Level:               in.Level,
			ParentID:            in.ParentID,
			CurrentDailyBudget:  in.Budget,
			Spend:               in.Spend,
			CurrentSharePercent: share,
			TargetPercent:       share,
			NewDailyBudget:      decimal.Zero,
		})
	}
	return rows
}

// CollectRows lista as entidades com orçamento e busca o gasto de cada uma na
// janela. Campanhas sem orçamento próprio são substituídas pelos seus conjuntos
// de anúncios quando o gateway é hierárquico. Qualquer falha descarta tudo.
func CollectRows(
	ctx context.Context,
	gateway repository.PlatformGateway,
	accountRef string,
	start, end time.Time,
	onEntity func(name string),
) ([]entity.BudgetEntity, error) {
	platform := string(gateway.Platform())

	entities, err := gateway.ListBudgetedEntities(ctx, accountRef)
	if err != nil {
		return nil, asGatewayError(platform, "list entities", err)
	}

	if hg, ok := gateway.(repository.HierarchicalGateway); ok {
		parents, err := hg.ListUnbudgetedParents(ctx, accountRef)
		if err != nil {
			return nil, asGatewayError(platform, "list campaigns without budget", err)
		}
		for _, parent := range parents {
			children, err := hg.ListChildEntities(ctx, parent.ID)
			if err != nil {
				return nil, asGatewayError(platform, "list ad sets of "+parent.ID, err)
			}
			entities = append(entities, children...)
		}
	}

	inputs := make([]entity.SpendInput, 0, len(entities))
	for _, e := range entities {
		if onEntity != nil {
			onEntity(e.Name)
		}

		spend, err := gateway.FetchSpend(ctx, e.ID, start, end)
		if err != nil {
			return nil, asGatewayError(platform, "fetch spend for "+e.ID, err)
		}

		inputs = append(inputs, entity.SpendInput{
			ID:       e.ID,
			Name:     e.Name,
			Level:    e.Level,
			ParentID: e.ParentID,
			Budget:   e.DailyBudget,
			Spend:    spend,
		})
	}

	return Aggregate(inputs), nil
}

func asGatewayError(platform, op string, err error) error {
	var gwErr *types.GatewayError
	if errors.As(err, &gwErr) {
		return err
	}
	return &types.GatewayError{Platform: platform, Op: op, Err: err}
}
