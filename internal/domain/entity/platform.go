package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Platform identifica a plataforma de anúncios selecionada pelo usuário.
type Platform string

const (
	PlatformMeta   Platform = "meta"
	PlatformGoogle Platform = "google"
)

// DisplayName retorna o nome exibido para a plataforma.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformMeta:
		return "Meta Ads"
	case PlatformGoogle:
		return "Google Ads"
	default:
		return string(p)
	}
}

// ParsePlatform converte a entrada do usuário (flag, config ou API) em Platform.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "meta", "meta ads", "facebook":
		return PlatformMeta, nil
	case "google", "google ads", "googleads":
		return PlatformGoogle, nil
	default:
		return "", fmt.Errorf("unknown platform %q (expected meta or google)", s)
	}
}

// EntityLevel indica se a entidade é uma campanha ou um conjunto de anúncios.
type EntityLevel string

const (
	LevelCampaign EntityLevel = "campaign"
	LevelAdSet    EntityLevel = "adset"
)

// PlatformEntity é uma entidade listada pelo gateway, com orçamento diário já
// normalizado para a moeda decimal.
type PlatformEntity struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	DailyBudget decimal.Decimal `json:"daily_budget"`
	Level       EntityLevel     `json:"level"`
	ParentID    string          `json:"parent_id,omitempty"`
}
