package service

import (
	"context"
	"errors"
	"time"

	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
	"github.com/shopspring/decimal"
)

type fakeGateway struct {
	entities  []entity.PlatformEntity
	spend     map[string]decimal.Decimal
	listErr   error
	spendErr  map[string]error
	updateErr map[string]string
	updates   map[string]decimal.Decimal
	spendCall int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		spend:     map[string]decimal.Decimal{},
		spendErr:  map[string]error{},
		updateErr: map[string]string{},
		updates:   map[string]decimal.Decimal{},
	}
}

func (f *fakeGateway) Platform() entity.Platform { return entity.PlatformMeta }

func (f *fakeGateway) ListBudgetedEntities(ctx context.Context, accountRef string) ([]entity.PlatformEntity, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entities, nil
}

func (f *fakeGateway) FetchSpend(ctx context.Context, entityID string, start, end time.Time) (decimal.Decimal, error) {
	f.spendCall++
	if err := f.spendErr[entityID]; err != nil {
		return decimal.Zero, err
	}
	return f.spend[entityID], nil
}

func (f *fakeGateway) UpdateBudget(ctx context.Context, entityID string, newDailyBudget decimal.Decimal) error {
	if msg, ok := f.updateErr[entityID]; ok {
		return &types.PlatformError{Platform: "meta", EntityID: entityID, Message: msg}
	}
	f.updates[entityID] = newDailyBudget
	return nil
}

type fakeHierarchicalGateway struct {
	*fakeGateway
	parents  []entity.PlatformEntity
	children map[string][]entity.PlatformEntity
}

func (f *fakeHierarchicalGateway) ListUnbudgetedParents(ctx context.Context, accountRef string) ([]entity.PlatformEntity, error) {
	return f.parents, nil
}

func (f *fakeHierarchicalGateway) ListChildEntities(ctx context.Context, parentID string) ([]entity.PlatformEntity, error) {
	children, ok := f.children[parentID]
	if !ok {
		return nil, errors.New("unknown campaign")
	}
	return children, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
