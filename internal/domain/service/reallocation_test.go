package service

import (
	"errors"
	"testing"

	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
)

func allocationContext(total, padding string, entities []entity.BudgetEntity, days int) entity.AllocationContext {
	return entity.NewAllocationContext(dec(total), dec(padding), entities, entity.BillingWindow{RemainingDays: days})
}

func TestRecompute_EndToEndScenario(t *testing.T) {
	entities := []entity.BudgetEntity{
		{ID: "1", Spend: dec("600"), TargetPercent: dec("100")},
	}
	ctx := allocationContext("3000", "0.95", entities, 10)

	if !ctx.RemainingBudget.Equal(dec("2280")) {
		t.Fatalf("RemainingBudget = %s; want 2280", ctx.RemainingBudget)
	}

	out, outcome, err := Recompute(entities, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Accepted {
		t.Fatalf("outcome rejected: %s", outcome.Reason)
	}
	if !out[0].NewDailyBudget.Equal(dec("228.00")) {
		t.Errorf("NewDailyBudget = %s; want 228.00", out[0].NewDailyBudget)
	}
}

func TestRecompute_RejectsOverHundred(t *testing.T) {
	entities := []entity.BudgetEntity{
		{ID: "1", TargetPercent: dec("50"), NewDailyBudget: dec("11.11")},
		{ID: "2", TargetPercent: dec("40"), NewDailyBudget: dec("22.22")},
		{ID: "3", TargetPercent: dec("20"), NewDailyBudget: dec("33.33")},
	}
	ctx := allocationContext("1000", "1", entities, 10)

	out, outcome, err := Recompute(entities, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Accepted {
		t.Fatal("want rejection when targets sum to 110")
	}
	if outcome.Reason != "sum exceeds 100%: 110" {
		t.Errorf("reason = %q", outcome.Reason)
	}
	for i := range entities {
		if !out[i].NewDailyBudget.Equal(entities[i].NewDailyBudget) {
			t.Errorf("entity %s new budget changed to %s", out[i].ID, out[i].NewDailyBudget)
		}
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	entities := []entity.BudgetEntity{
		{ID: "1", Spend: dec("123.45"), TargetPercent: dec("33.33")},
		{ID: "2", Spend: dec("67.89"), TargetPercent: dec("33.33")},
		{ID: "3", Spend: dec("10"), TargetPercent: dec("33.34")},
	}
	ctx := allocationContext("5000", "0.97", entities, 17)

	first, _, err := Recompute(entities, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _, err := Recompute(first, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range first {
		if first[i].NewDailyBudget.String() != second[i].NewDailyBudget.String() {
			t.Errorf("entity %s: %s != %s", first[i].ID, first[i].NewDailyBudget, second[i].NewDailyBudget)
		}
		if first[i].NewDailyBudget.Exponent() < -2 {
			t.Errorf("entity %s not rounded to cents: %s", first[i].ID, first[i].NewDailyBudget)
		}
	}
}

func TestRecompute_DoesNotMutateInput(t *testing.T) {
	entities := []entity.BudgetEntity{{ID: "1", TargetPercent: dec("50")}}
	ctx := allocationContext("100", "1", entities, 5)

	if _, _, err := Recompute(entities, ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !entities[0].NewDailyBudget.IsZero() {
		t.Errorf("input mutated: %s", entities[0].NewDailyBudget)
	}
}

func TestRecompute_ZeroRemainingDays(t *testing.T) {
	entities := []entity.BudgetEntity{{ID: "1", TargetPercent: dec("50")}}
	ctx := allocationContext("100", "1", entities, 0)

	_, _, err := Recompute(entities, ctx)
	if !errors.Is(err, types.ErrInvalidWindow) {
		t.Fatalf("got %v; want ErrInvalidWindow", err)
	}
}

func TestRecompute_SpendAboveBudgetLeavesNothing(t *testing.T) {
	entities := []entity.BudgetEntity{{ID: "1", Spend: dec("4000"), TargetPercent: dec("100")}}
	ctx := allocationContext("3000", "0.95", entities, 10)

	out, outcome, err := Recompute(entities, ctx)
	if err != nil || !outcome.Accepted {
		t.Fatalf("unexpected result: %v %+v", err, outcome)
	}
	if !out[0].NewDailyBudget.IsZero() {
		t.Errorf("NewDailyBudget = %s; want 0", out[0].NewDailyBudget)
	}
}

func TestRecompute_HalfUpRounding(t *testing.T) {
	// 1% de 100 dividido em 8 dias = 0.125 → 0.13
	entities := []entity.BudgetEntity{{ID: "1", TargetPercent: dec("1")}}
	ctx := allocationContext("100", "1", entities, 8)

	out, _, err := Recompute(entities, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out[0].NewDailyBudget.Equal(dec("0.13")) {
		t.Errorf("NewDailyBudget = %s; want 0.13", out[0].NewDailyBudget)
	}
}
