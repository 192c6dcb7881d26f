// Package meta implements the PlatformGateway over the Meta (Facebook) Graph API.
package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/repository"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/service"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
	"github.com/shopspring/decimal"
)

const (
	defaultBaseURL    = "https://graph.facebook.com"
	defaultAPIVersion = "v15.0"
	requestTimeout    = 30 * time.Second
	maxBodySize       = 4 << 20 // 4 MB
	activeStatusParam = `["ACTIVE"]`
)

// MetaGatewayImpl implementa o HierarchicalGateway para o Meta Ads.
// Orçamentos trafegam em centavos.
type MetaGatewayImpl struct {
	accessToken string
	baseURL     string
	apiVersion  string
	http        *http.Client

	// Campanhas sem orçamento da última listagem, por conta. Consumidas pelo
	// ListUnbudgetedParents seguinte para não listar /campaigns duas vezes.
	mu         sync.Mutex
	unbudgeted map[string][]entity.PlatformEntity
}

// NewMetaGateway cria o gateway a partir da configuração. O token é obrigatório.
func NewMetaGateway(cfg types.MetaConfig) (repository.HierarchicalGateway, error) {
	token := strings.TrimSpace(cfg.AccessToken)
	if token == "" {
		return nil, fmt.Errorf("%w: Meta Ads access token", types.ErrMissingCredentials)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	version := cfg.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}

	return &MetaGatewayImpl{
		accessToken: token,
		baseURL:     baseURL,
		apiVersion:  version,
		http:        &http.Client{Timeout: requestTimeout},
		unbudgeted:  make(map[string][]entity.PlatformEntity),
	}, nil
}

func (g *MetaGatewayImpl) Platform() entity.Platform {
	return entity.PlatformMeta
}

type graphNode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DailyBudget string `json:"daily_budget"`
}

type graphList struct {
	Data []graphNode `json:"data"`
}

type graphError struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// ListBudgetedEntities lista campanhas ativas com daily_budget próprio.
func (g *MetaGatewayImpl) ListBudgetedEntities(ctx context.Context, accountRef string) ([]entity.PlatformEntity, error) {
	budgeted, unbudgeted, err := g.listCampaigns(ctx, accountRef)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.unbudgeted[normalizeAccount(accountRef)] = unbudgeted
	g.mu.Unlock()
	return budgeted, nil
}

// ListUnbudgetedParents lista campanhas ativas cujo orçamento vive nos conjuntos
// de anúncios. Reaproveita a listagem do ListBudgetedEntities anterior, de modo
// que as duas metades venham do mesmo retrato da conta.
func (g *MetaGatewayImpl) ListUnbudgetedParents(ctx context.Context, accountRef string) ([]entity.PlatformEntity, error) {
	key := normalizeAccount(accountRef)

	g.mu.Lock()
	cached, ok := g.unbudgeted[key]
	delete(g.unbudgeted, key)
	g.mu.Unlock()
	if ok {
		return cached, nil
	}

	_, unbudgeted, err := g.listCampaigns(ctx, accountRef)
	return unbudgeted, err
}

// ListChildEntities lista os conjuntos de anúncios ativos, com orçamento, de uma campanha.
func (g *MetaGatewayImpl) ListChildEntities(ctx context.Context, parentID string) ([]entity.PlatformEntity, error) {
	nodes, err := g.listNodes(ctx, parentID+"/adsets")
	if err != nil {
		return nil, err
	}

	adSets := []entity.PlatformEntity{}
	for _, n := range nodes {
		budget, ok, err := parseCents(n.DailyBudget)
		if err != nil {
			return nil, fmt.Errorf("ad set %s: %w", n.ID, err)
		}
		if !ok {
			continue
		}
		adSets = append(adSets, entity.PlatformEntity{
			ID:          n.ID,
			Name:        n.Name,
			DailyBudget: budget,
			Level:       entity.LevelAdSet,
			ParentID:    parentID,
		})
	}
	return adSets, nil
}

func (g *MetaGatewayImpl) listCampaigns(ctx context.Context, accountRef string) ([]entity.PlatformEntity, []entity.PlatformEntity, error) {
	accountRef = normalizeAccount(accountRef)
	if accountRef == "" {
		return nil, nil, &types.InputValidationError{Field: "ad account id", Reason: "is empty"}
	}

	nodes, err := g.listNodes(ctx, "act_"+accountRef+"/campaigns")
	if err != nil {
		return nil, nil, err
	}

	budgeted := []entity.PlatformEntity{}
	unbudgeted := []entity.PlatformEntity{}
	for _, n := range nodes {
		budget, ok, err := parseCents(n.DailyBudget)
		if err != nil {
			return nil, nil, fmt.Errorf("campaign %s: %w", n.ID, err)
		}

		e := entity.PlatformEntity{ID: n.ID, Name: n.Name, Level: entity.LevelCampaign}
		if ok {
			e.DailyBudget = budget
			budgeted = append(budgeted, e)
		} else {
			unbudgeted = append(unbudgeted, e)
		}
	}
	return budgeted, unbudgeted, nil
}

func normalizeAccount(accountRef string) string {
	return strings.TrimPrefix(strings.TrimSpace(accountRef), "act_")
}

func (g *MetaGatewayImpl) listNodes(ctx context.Context, edge string) ([]graphNode, error) {
	params := url.Values{}
	params.Set("fields", "id,name,daily_budget")
	params.Set("effective_status", activeStatusParam)

	body, err := g.do(ctx, http.MethodGet, edge, params)
	if err != nil {
		return nil, err
	}

	var list graphList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("meta: parsing %s: %w", edge, err)
	}
	return list.Data, nil
}

// FetchSpend consulta /insights. Sem linhas de dados o gasto é zero.
func (g *MetaGatewayImpl) FetchSpend(ctx context.Context, entityID string, start, end time.Time) (decimal.Decimal, error) {
	params := url.Values{}
	params.Set("fields", "spend")
	params.Set("time_range", fmt.Sprintf(`{"since":"%s","until":"%s"}`, start.Format("2006-01-02"), end.Format("2006-01-02")))

	body, err := g.do(ctx, http.MethodGet, entityID+"/insights", params)
	if err != nil {
		return decimal.Zero, err
	}

	var insights struct {
		Data []struct {
			Spend string `json:"spend"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &insights); err != nil {
		return decimal.Zero, fmt.Errorf("meta: parsing insights: %w", err)
	}
	if len(insights.Data) == 0 || insights.Data[0].Spend == "" {
		return decimal.Zero, nil
	}

	spend, err := decimal.NewFromString(insights.Data[0].Spend)
	if err != nil {
		return decimal.Zero, fmt.Errorf("meta: invalid spend %q: %w", insights.Data[0].Spend, err)
	}
	return spend, nil
}

// UpdateBudget grava o novo daily_budget em centavos.
func (g *MetaGatewayImpl) UpdateBudget(ctx context.Context, entityID string, newDailyBudget decimal.Decimal) error {
	form := url.Values{}
	form.Set("daily_budget", strconv.FormatInt(service.ToMinorUnits(newDailyBudget), 10))

	body, err := g.do(ctx, http.MethodPost, entityID, form)
	if err != nil {
		return &types.PlatformError{Platform: string(entity.PlatformMeta), EntityID: entityID, Message: err.Error()}
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &result); err != nil || !result.Success {
		return &types.PlatformError{
			Platform: string(entity.PlatformMeta),
			EntityID: entityID,
			Message:  fmt.Sprintf("unexpected response: %s", strings.TrimSpace(string(body))),
		}
	}
	return nil
}

// do executa uma chamada autenticada à Graph API. GET leva os parâmetros na
// query string, POST no corpo form-encoded.
func (g *MetaGatewayImpl) do(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/%s/%s", g.baseURL, g.apiVersion, strings.TrimLeft(path, "/"))

	var reqBody io.Reader
	if method == http.MethodGet {
		endpoint += "?" + params.Encode()
	} else {
		reqBody = strings.NewReader(params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("meta: creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.accessToken)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("meta: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("meta: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var gErr graphError
		if json.Unmarshal(body, &gErr) == nil && gErr.Error != nil && gErr.Error.Message != "" {
			return nil, errors.New(gErr.Error.Message)
		}
		return nil, fmt.Errorf("meta: unexpected status %d", resp.StatusCode)
	}

	return body, nil
}

// parseCents interpreta daily_budget (centavos em string). ok é false quando
// a entidade não tem orçamento próprio.
func parseCents(raw string) (decimal.Decimal, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false, nil
	}
	cents, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("invalid daily_budget %q: %w", raw, err)
	}
	if cents <= 0 {
		return decimal.Zero, false, nil
	}
	return service.FromMinorUnits(cents), true, nil
}
