package googleads

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// CredentialsEnvVar é a variável de ambiente com o JSON de credenciais.
const CredentialsEnvVar = "GOOGLE_ADS_CREDENTIALS"

const adwordsScope = "https://www.googleapis.com/auth/adwords"

var tokenEndpoint = endpoints.Google

// Credentials espelha as chaves do google-ads.yaml, serializadas em JSON.
type Credentials struct {
	DeveloperToken  string     `json:"developer_token"`
	ClientID        string     `json:"client_id"`
	ClientSecret    string     `json:"client_secret"`
	RefreshToken    string     `json:"refresh_token"`
	AccessToken     string     `json:"access_token,omitempty"`
	LoginCustomerID flexString `json:"login_customer_id,omitempty"`
}

// flexString aceita tanto "123" quanto 123 no JSON.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	*f = flexString(strings.Trim(strings.TrimSpace(string(b)), `"`))
	return nil
}

// LoadCredentials lê as credenciais da variável GOOGLE_ADS_CREDENTIALS ou,
// se ela estiver vazia, do arquivo informado.
func LoadCredentials(path string) (*Credentials, error) {
	raw := os.Getenv(CredentialsEnvVar)
	source := CredentialsEnvVar

	if strings.TrimSpace(raw) == "" {
		if path == "" {
			return nil, fmt.Errorf("%w: set %s or pass a credentials file", types.ErrMissingCredentials, CredentialsEnvVar)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading Google Ads credentials: %w", err)
		}
		raw = string(data)
		source = path
	}

	return ParseCredentials(raw, source)
}

// ParseCredentials valida o JSON de credenciais.
func ParseCredentials(raw, source string) (*Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, fmt.Errorf("error parsing Google Ads credentials from %s: %w", source, err)
	}

	if creds.DeveloperToken == "" {
		return nil, fmt.Errorf("%w: developer_token is required", types.ErrMissingCredentials)
	}
	if creds.AccessToken == "" && (creds.RefreshToken == "" || creds.ClientID == "" || creds.ClientSecret == "") {
		return nil, fmt.Errorf("%w: client_id, client_secret and refresh_token are required", types.ErrMissingCredentials)
	}
	return &creds, nil
}

// TokenSource devolve o fluxo OAuth2 adequado: refresh token quando houver,
// senão o access token estático.
func (c *Credentials) TokenSource(ctx context.Context) oauth2.TokenSource {
	if c.RefreshToken == "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.AccessToken, TokenType: "Bearer"})
	}

	conf := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     tokenEndpoint,
		Scopes:       []string{adwordsScope},
	}
	return conf.TokenSource(ctx, &oauth2.Token{RefreshToken: c.RefreshToken})
}
