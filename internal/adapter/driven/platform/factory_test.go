package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/repository"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
)

func TestGatewayFactory_Meta(t *testing.T) {
	t.Setenv(MetaTokenEnvVar, "from-env")
	f := NewGatewayFactory(types.Config{Meta: types.MetaConfig{AdAccountID: "act_1"}})

	gw, err := f.NewGateway(context.Background(), entity.PlatformMeta)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.Platform() != entity.PlatformMeta {
		t.Errorf("platform = %s", gw.Platform())
	}
	if _, ok := gw.(repository.HierarchicalGateway); !ok {
		t.Error("meta gateway should descend into ad sets")
	}
	if f.AccountRef(entity.PlatformMeta) != "act_1" {
		t.Errorf("account ref = %q", f.AccountRef(entity.PlatformMeta))
	}
}

func TestGatewayFactory_GoogleFromEnv(t *testing.T) {
	t.Setenv("GOOGLE_ADS_CREDENTIALS", `{"developer_token":"d","access_token":"a"}`)
	f := NewGatewayFactory(types.Config{Google: types.GoogleConfig{CustomerID: "123"}})

	gw, err := f.NewGateway(context.Background(), entity.PlatformGoogle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := gw.(repository.HierarchicalGateway); ok {
		t.Error("google gateway budgets live on campaigns only")
	}
}

func TestGatewayFactory_Unknown(t *testing.T) {
	_, err := NewGatewayFactory(types.Config{}).NewGateway(context.Background(), entity.Platform("tiktok"))
	if !errors.Is(err, types.ErrUnknownPlatform) {
		t.Fatalf("got %v; want ErrUnknownPlatform", err)
	}
}
