// Package googleads implements the PlatformGateway over the Google Ads REST API.
package googleads

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/repository"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/service"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
)

const (
	defaultBaseURL    = "https://googleads.googleapis.com"
	defaultAPIVersion = "v17"
	requestTimeout    = 30 * time.Second
	maxBodySize       = 8 << 20 // 8 MB
)

// GoogleAdsGatewayImpl implementa o PlatformGateway para o Google Ads.
// Orçamentos trafegam em micro-unidades.
type GoogleAdsGatewayImpl struct {
	customerID      string
	developerToken  string
	loginCustomerID string
	baseURL         string
	apiVersion      string
	http            *http.Client

	mu              sync.Mutex
	budgetResources map[string]string
}

// NewGoogleAdsGateway cria o gateway com cliente HTTP autenticado via OAuth2.
func NewGoogleAdsGateway(ctx context.Context, cfg types.GoogleConfig, creds *Credentials) (repository.PlatformGateway, error) {
	if creds == nil {
		return nil, fmt.Errorf("%w: Google Ads credentials", types.ErrMissingCredentials)
	}

	// O token source guarda ctx para todos os refreshes; o gateway vive mais
	// que a requisição ou o comando que o criou.
	ctx = context.WithoutCancel(ctx)
	client := oauth2.NewClient(ctx, creds.TokenSource(ctx))
	client.Timeout = requestTimeout

	return newGateway(cfg, creds, client), nil
}

func newGateway(cfg types.GoogleConfig, creds *Credentials, client *http.Client) *GoogleAdsGatewayImpl {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	version := cfg.APIVersion
	if version == "" {
		version = defaultAPIVersion
	}
	login := cfg.LoginCustomerID
	if login == "" {
		login = string(creds.LoginCustomerID)
	}

	return &GoogleAdsGatewayImpl{
		customerID:      normalizeCustomerID(cfg.CustomerID),
		developerToken:  creds.DeveloperToken,
		loginCustomerID: normalizeCustomerID(login),
		baseURL:         baseURL,
		apiVersion:      version,
		http:            client,
		budgetResources: make(map[string]string),
	}
}

func (g *GoogleAdsGatewayImpl) Platform() entity.Platform {
	return entity.PlatformGoogle
}

type searchRow struct {
	Campaign struct {
		ResourceName   string `json:"resourceName"`
		ID             string `json:"id"`
		Name           string `json:"name"`
		CampaignBudget string `json:"campaignBudget"`
	} `json:"campaign"`
	CampaignBudget struct {
		ResourceName string `json:"resourceName"`
		AmountMicros string `json:"amountMicros"`
	} `json:"campaignBudget"`
	Metrics struct {
		CostMicros string `json:"costMicros"`
	} `json:"metrics"`
}

type searchResponse struct {
	Results       []searchRow `json:"results"`
	NextPageToken string      `json:"nextPageToken"`
}

type apiError struct {
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// ListBudgetedEntities lista campanhas ENABLED com orçamento e memoriza o
// resource name do orçamento de cada uma para o UpdateBudget.
func (g *GoogleAdsGatewayImpl) ListBudgetedEntities(ctx context.Context, accountRef string) ([]entity.PlatformEntity, error) {
	if cid := normalizeCustomerID(accountRef); cid != "" {
		g.customerID = cid
	}
	if g.customerID == "" {
		return nil, &types.InputValidationError{Field: "customer id", Reason: "is empty"}
	}

	rows, err := g.search(ctx, `
		SELECT
		  campaign.id,
		  campaign.name,
		  campaign_budget.resource_name,
		  campaign_budget.amount_micros
		FROM
		  campaign
		WHERE
		  campaign.status = 'ENABLED'`)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	entities := []entity.PlatformEntity{}
	for _, row := range rows {
		micros, err := parseInt64(row.CampaignBudget.AmountMicros)
		if err != nil {
			return nil, fmt.Errorf("campaign %s: invalid amountMicros: %w", row.Campaign.ID, err)
		}
		if micros <= 0 {
			continue
		}

		g.budgetResources[row.Campaign.ID] = row.CampaignBudget.ResourceName
		entities = append(entities, entity.PlatformEntity{
			ID:          row.Campaign.ID,
			Name:        row.Campaign.Name,
			DailyBudget: service.FromMicros(micros),
			Level:       entity.LevelCampaign,
		})
	}
	return entities, nil
}

// FetchSpend soma metrics.cost_micros da campanha no intervalo.
func (g *GoogleAdsGatewayImpl) FetchSpend(ctx context.Context, entityID string, start, end time.Time) (decimal.Decimal, error) {
	if _, err := strconv.ParseInt(entityID, 10, 64); err != nil {
		return decimal.Zero, fmt.Errorf("invalid campaign id %q", entityID)
	}

	rows, err := g.search(ctx, fmt.Sprintf(`
		SELECT
		  campaign.id,
		  metrics.cost_micros
		FROM
		  campaign
		WHERE
		  campaign.id = %s
		  AND segments.date BETWEEN '%s' AND '%s'`,
		entityID, start.Format("2006-01-02"), end.Format("2006-01-02")))
	if err != nil {
		return decimal.Zero, err
	}

	var total int64
	for _, row := range rows {
		micros, err := parseInt64(row.Metrics.CostMicros)
		if err != nil {
			return decimal.Zero, fmt.Errorf("campaign %s: invalid costMicros: %w", entityID, err)
		}
		total += micros
	}
	return service.FromMicros(total), nil
}

// UpdateBudget grava amount_micros no orçamento da campanha.
func (g *GoogleAdsGatewayImpl) UpdateBudget(ctx context.Context, entityID string, newDailyBudget decimal.Decimal) error {
	fail := func(msg string) error {
		return &types.PlatformError{Platform: string(entity.PlatformGoogle), EntityID: entityID, Message: msg}
	}

	resource, err := g.budgetResource(ctx, entityID)
	if err != nil {
		return fail(err.Error())
	}

	payload := map[string]any{
		"operations": []map[string]any{
			{
				"updateMask": "amount_micros",
				"update": map[string]string{
					"resourceName": resource,
					"amountMicros": strconv.FormatInt(service.ToMicros(newDailyBudget), 10),
				},
			},
		},
	}

	if _, err := g.post(ctx, "campaignBudgets:mutate", payload); err != nil {
		return fail(err.Error())
	}
	return nil
}

// budgetResource usa o resource name memorizado na listagem ou consulta a API.
func (g *GoogleAdsGatewayImpl) budgetResource(ctx context.Context, campaignID string) (string, error) {
	g.mu.Lock()
	resource, ok := g.budgetResources[campaignID]
	g.mu.Unlock()
	if ok && resource != "" {
		return resource, nil
	}

	if _, err := strconv.ParseInt(campaignID, 10, 64); err != nil {
		return "", fmt.Errorf("invalid campaign id %q", campaignID)
	}

	rows, err := g.search(ctx, fmt.Sprintf(
		"SELECT campaign.id, campaign.campaign_budget FROM campaign WHERE campaign.id = %s", campaignID))
	if err != nil {
		return "", err
	}
	if len(rows) == 0 || rows[0].Campaign.CampaignBudget == "" {
		return "", fmt.Errorf("campaign %s has no budget", campaignID)
	}

	g.mu.Lock()
	g.budgetResources[campaignID] = rows[0].Campaign.CampaignBudget
	g.mu.Unlock()
	return rows[0].Campaign.CampaignBudget, nil
}

func (g *GoogleAdsGatewayImpl) search(ctx context.Context, query string) ([]searchRow, error) {
	rows := []searchRow{}
	pageToken := ""

	for {
		payload := map[string]string{"query": strings.TrimSpace(query)}
		if pageToken != "" {
			payload["pageToken"] = pageToken
		}

		body, err := g.post(ctx, "googleAds:search", payload)
		if err != nil {
			return nil, err
		}

		var resp searchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("googleads: parsing search response: %w", err)
		}
		rows = append(rows, resp.Results...)

		if resp.NextPageToken == "" {
			return rows, nil
		}
		pageToken = resp.NextPageToken
	}
}

func (g *GoogleAdsGatewayImpl) post(ctx context.Context, method string, payload any) ([]byte, error) {
	if g.customerID == "" {
		return nil, &types.InputValidationError{Field: "customer id", Reason: "is empty"}
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("googleads: encoding request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/customers/%s/%s", g.baseURL, g.apiVersion, g.customerID, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("googleads: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("developer-token", g.developerToken)
	if g.loginCustomerID != "" {
		req.Header.Set("login-customer-id", g.loginCustomerID)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("googleads: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("googleads: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var aErr apiError
		if json.Unmarshal(body, &aErr) == nil && aErr.Error != nil && aErr.Error.Message != "" {
			return nil, errors.New(aErr.Error.Message)
		}
		return nil, fmt.Errorf("googleads: unexpected status %d", resp.StatusCode)
	}
	return body, nil
}

func normalizeCustomerID(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), "-", "")
}

func parseInt64(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
