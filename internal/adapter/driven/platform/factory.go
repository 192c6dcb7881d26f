// Package platform escolhe a implementação do gateway pela plataforma selecionada.
package platform

import (
	"context"
	"fmt"
	"os"

	"github.com/diillson/ads-budget-realloc-go/internal/adapter/driven/platform/googleads"
	"github.com/diillson/ads-budget-realloc-go/internal/adapter/driven/platform/meta"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/repository"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
)

// MetaTokenEnvVar pode substituir o token do arquivo de configuração.
const MetaTokenEnvVar = "META_ACCESS_TOKEN"

// GatewayFactory cria gateways a partir da configuração carregada.
type GatewayFactory struct {
	cfg types.Config
}

// NewGatewayFactory cria uma fábrica para a configuração informada.
func NewGatewayFactory(cfg types.Config) *GatewayFactory {
	return &GatewayFactory{cfg: cfg}
}

// NewGateway despacha pela enumeração de plataforma.
func (f *GatewayFactory) NewGateway(ctx context.Context, p entity.Platform) (repository.PlatformGateway, error) {
	switch p {
	case entity.PlatformMeta:
		metaCfg := f.cfg.Meta
		if metaCfg.AccessToken == "" {
			metaCfg.AccessToken = os.Getenv(MetaTokenEnvVar)
		}
		return meta.NewMetaGateway(metaCfg)
	case entity.PlatformGoogle:
		creds, err := googleads.LoadCredentials(f.cfg.Google.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return googleads.NewGoogleAdsGateway(ctx, f.cfg.Google, creds)
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownPlatform, p)
	}
}

// AccountRef retorna a conta configurada para a plataforma.
func (f *GatewayFactory) AccountRef(p entity.Platform) string {
	switch p {
	case entity.PlatformMeta:
		return f.cfg.Meta.AdAccountID
	case entity.PlatformGoogle:
		return f.cfg.Google.CustomerID
	default:
		return ""
	}
}
