package googleads

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *GoogleAdsGatewayImpl {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	creds := &Credentials{DeveloperToken: "dev-tok", AccessToken: "access"}
	return newGateway(types.GoogleConfig{CustomerID: "123-456-7890", BaseURL: srv.URL}, creds, srv.Client())
}

func decodeQuery(t *testing.T, r *http.Request) string {
	t.Helper()
	body, _ := io.ReadAll(r.Body)
	var payload map[string]string
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Errorf("decode body: %v", err)
	}
	return payload["query"]
}

func TestListBudgetedEntities(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v17/customers/1234567890/googleAds:search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("developer-token"); got != "dev-tok" {
			t.Errorf("developer-token = %q", got)
		}
		if q := decodeQuery(t, r); !strings.Contains(q, "campaign.status = 'ENABLED'") {
			t.Errorf("query = %s", q)
		}
		w.Write([]byte(`{"results":[
			{"campaign":{"id":"11","name":"Search"},"campaignBudget":{"resourceName":"customers/1234567890/campaignBudgets/900","amountMicros":"50000000"}},
			{"campaign":{"id":"12","name":"Paused budget"},"campaignBudget":{"resourceName":"customers/1234567890/campaignBudgets/901","amountMicros":"0"}}
		]}`))
	})

	entities, err := gw.ListBudgetedEntities(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entities) != 1 {
		t.Fatalf("got %d entities; want 1", len(entities))
	}
	if entities[0].ID != "11" || !entities[0].DailyBudget.Equal(decimal.NewFromInt(50)) {
		t.Errorf("entity = %+v", entities[0])
	}
	if gw.budgetResources["11"] != "customers/1234567890/campaignBudgets/900" {
		t.Errorf("budget resource not remembered: %v", gw.budgetResources)
	}
}

func TestNewGoogleAdsGateway_OutlivesConstructionContext(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","expires_in":3600}`))
	}))
	defer tokenSrv.Close()

	orig := tokenEndpoint
	tokenEndpoint = oauth2.Endpoint{TokenURL: tokenSrv.URL, AuthStyle: oauth2.AuthStyleInParams}
	defer func() { tokenEndpoint = orig }()

	apiReached := false
	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiReached = true
		if got := r.Header.Get("Authorization"); got != "Bearer fresh" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"results":[]}`))
	}))
	defer apiSrv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	creds := &Credentials{DeveloperToken: "dev-tok", ClientID: "id", ClientSecret: "secret", RefreshToken: "refresh"}
	gw, err := NewGoogleAdsGateway(ctx, types.GoogleConfig{CustomerID: "1", BaseURL: apiSrv.URL}, creds)
	if err != nil {
		t.Fatalf("NewGoogleAdsGateway: %v", err)
	}
	cancel()

	if _, err := gw.ListBudgetedEntities(context.Background(), "1"); err != nil {
		t.Fatalf("unexpected error after the construction context ended: %v", err)
	}
	if !apiReached {
		t.Error("Ads API was not called")
	}
}

func TestFetchSpend_SumsRows(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		q := decodeQuery(t, r)
		if !strings.Contains(q, "campaign.id = 11") || !strings.Contains(q, "BETWEEN '2024-02-01' AND '2024-02-10'") {
			t.Errorf("query = %s", q)
		}
		w.Write([]byte(`{"results":[{"metrics":{"costMicros":"1500000"}},{"metrics":{"costMicros":"2250000"}}]}`))
	})

	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	spend, err := gw.FetchSpend(context.Background(), "11", start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !spend.Equal(decimal.RequireFromString("3.75")) {
		t.Errorf("spend = %s; want 3.75", spend)
	}
}

func TestFetchSpend_NoData(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	spend, err := gw.FetchSpend(context.Background(), "11", time.Now(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !spend.IsZero() {
		t.Errorf("spend = %s; want 0", spend)
	}
}

func TestFetchSpend_FollowsPageToken(t *testing.T) {
	calls := 0
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), `"pageToken":"p2"`) {
			w.Write([]byte(`{"results":[{"metrics":{"costMicros":"1000000"}}]}`))
			return
		}
		w.Write([]byte(`{"results":[{"metrics":{"costMicros":"1000000"}}],"nextPageToken":"p2"}`))
	})

	spend, err := gw.FetchSpend(context.Background(), "11", time.Now(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 || !spend.Equal(decimal.NewFromInt(2)) {
		t.Errorf("calls=%d spend=%s", calls, spend)
	}
}

func TestUpdateBudget(t *testing.T) {
	var mutate map[string]any
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "googleAds:search"):
			w.Write([]byte(`{"results":[{"campaign":{"id":"11","campaignBudget":"customers/1234567890/campaignBudgets/900"}}]}`))
		case strings.HasSuffix(r.URL.Path, "campaignBudgets:mutate"):
			body, _ := io.ReadAll(r.Body)
			json.Unmarshal(body, &mutate)
			w.Write([]byte(`{"results":[{"resourceName":"customers/1234567890/campaignBudgets/900"}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	if err := gw.UpdateBudget(context.Background(), "11", decimal.RequireFromString("228.004")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ops := mutate["operations"].([]any)
	op := ops[0].(map[string]any)
	update := op["update"].(map[string]any)
	if op["updateMask"] != "amount_micros" {
		t.Errorf("updateMask = %v", op["updateMask"])
	}
	if update["amountMicros"] != "228004000" {
		t.Errorf("amountMicros = %v; want 228004000", update["amountMicros"])
	}
	if update["resourceName"] != "customers/1234567890/campaignBudgets/900" {
		t.Errorf("resourceName = %v", update["resourceName"])
	}
}

func TestUpdateBudget_Failure(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "googleAds:search") {
			w.Write([]byte(`{"results":[{"campaign":{"id":"11","campaignBudget":"customers/1/campaignBudgets/9"}}]}`))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"Request contains an invalid argument.","status":"INVALID_ARGUMENT"}}`))
	})

	err := gw.UpdateBudget(context.Background(), "11", decimal.NewFromInt(10))
	var platformErr *types.PlatformError
	if !errors.As(err, &platformErr) {
		t.Fatalf("got %v; want PlatformError", err)
	}
	if platformErr.Message != "Request contains an invalid argument." {
		t.Errorf("message = %q", platformErr.Message)
	}
}

func TestParseCredentials(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLogin string
		wantErr   bool
	}{
		{
			name:      "refresh token flow",
			input:     `{"developer_token":"d","client_id":"c","client_secret":"s","refresh_token":"r","login_customer_id":1234567890}`,
			wantLogin: "1234567890",
		},
		{
			name:  "static access token",
			input: `{"developer_token":"d","access_token":"a"}`,
		},
		{
			name:    "missing developer token",
			input:   `{"client_id":"c","client_secret":"s","refresh_token":"r"}`,
			wantErr: true,
		},
		{
			name:    "missing oauth fields",
			input:   `{"developer_token":"d","client_id":"c"}`,
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			input:   `{invalid}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCredentials(tt.input, "test")
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got.LoginCustomerID) != tt.wantLogin {
				t.Errorf("login customer id = %q; want %q", got.LoginCustomerID, tt.wantLogin)
			}
		})
	}
}

func TestLoadCredentials_FromEnv(t *testing.T) {
	t.Setenv(CredentialsEnvVar, `{"developer_token":"d","access_token":"a"}`)

	creds, err := LoadCredentials("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if creds.DeveloperToken != "d" {
		t.Errorf("developer token = %q", creds.DeveloperToken)
	}
}

func TestLoadCredentials_Missing(t *testing.T) {
	t.Setenv(CredentialsEnvVar, "")

	_, err := LoadCredentials("")
	if !errors.Is(err, types.ErrMissingCredentials) {
		t.Fatalf("got %v; want ErrMissingCredentials", err)
	}
}
