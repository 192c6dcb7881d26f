package repository

import (
	"context"
	"time"

	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// PlatformGateway defines the interface for ad platform API interactions.
type PlatformGateway interface {
	Platform() entity.Platform

	// ListBudgetedEntities retorna apenas entidades ativas com orçamento não nulo.
	ListBudgetedEntities(ctx context.Context, accountRef string) ([]entity.PlatformEntity, error)

	// FetchSpend retorna 0 quando a plataforma não tem dados para a janela.
	FetchSpend(ctx context.Context, entityID string, start, end time.Time) (decimal.Decimal, error)

	// UpdateBudget retorna nil ou *types.PlatformError com a mensagem bruta.
	UpdateBudget(ctx context.Context, entityID string, newDailyBudget decimal.Decimal) error
}

// HierarchicalGateway é implementado por plataformas onde campanhas sem
// orçamento próprio delegam o orçamento aos conjuntos de anúncios.
type HierarchicalGateway interface {
	PlatformGateway

	ListUnbudgetedParents(ctx context.Context, accountRef string) ([]entity.PlatformEntity, error)
	ListChildEntities(ctx context.Context, parentID string) ([]entity.PlatformEntity, error)
}
