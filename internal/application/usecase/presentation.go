package usecase

import (
	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/service"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
	"github.com/shopspring/decimal"
)

// Row é a linha somente leitura exibida na grade. TargetPercent é o único
// campo editável, via ApplyTargetEdits.
type Row struct {
	Name                string          `json:"name"`
	ID                  string          `json:"id"`
	Level               string          `json:"level"`
	CurrentBudget       decimal.Decimal `json:"current_budget"`
	Spend               decimal.Decimal `json:"spend"`
	CurrentSharePercent decimal.Decimal `json:"current_share_percent"`
	TargetPercent       decimal.Decimal `json:"target_percent"`
	NewDailyBudget      decimal.Decimal `json:"new_daily_budget"`
	CommitState         string          `json:"commit_state,omitempty"`
	CommitError         string          `json:"commit_error,omitempty"`
}

// Summary resume o contexto de alocação da sessão.
type Summary struct {
	SessionID          string          `json:"session_id"`
	Platform           entity.Platform `json:"platform"`
	AccountRef         string          `json:"account_ref"`
	PeriodStart        string          `json:"period_start"`
	PeriodEnd          string          `json:"period_end"`
	RemainingDays      int             `json:"remaining_days"`
	TotalMonthlyBudget decimal.Decimal `json:"total_monthly_budget"`
	PaddingPercent     decimal.Decimal `json:"padding_percent"`
	TotalSpend         decimal.Decimal `json:"total_spend"`
	RemainingBudget    decimal.Decimal `json:"remaining_budget"`
	TargetPercentSum   decimal.Decimal `json:"target_percent_sum"`
	LastOutcome        string          `json:"last_outcome,omitempty"`
}

// Rows retorna as linhas na ordem do fetch, com o estado do ticket quando houver.
func (uc *ReallocationUseCase) Rows(s *Session) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.allocation == nil {
		return nil, types.ErrNoData
	}

	rows := make([]Row, 0, len(s.entities))
	for _, e := range s.entities {
		row := Row{
			Name:                e.Name,
			ID:                  e.ID,
			Level:               string(e.Level),
			CurrentBudget:       e.CurrentDailyBudget,
			Spend:               e.Spend,
			CurrentSharePercent: e.CurrentSharePercent,
			TargetPercent:       e.TargetPercent,
			NewDailyBudget:      e.NewDailyBudget,
		}
		if s.coordinator != nil {
			if t, err := s.coordinator.Ticket(e.ID); err == nil {
				row.CommitState = t.State.String()
				row.CommitError = t.Reason
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Summary retorna o resumo do contexto de alocação.
func (uc *ReallocationUseCase) Summary(s *Session) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.allocation == nil {
		return Summary{}, types.ErrNoData
	}

	a := s.allocation
	summary := Summary{
		SessionID:          s.ID,
		Platform:           s.Platform,
		AccountRef:         s.AccountRef,
		PeriodStart:        a.Window.StartDate(),
		PeriodEnd:          a.Window.EndDate(),
		RemainingDays:      a.Window.RemainingDays,
		TotalMonthlyBudget: a.TotalMonthlyBudget,
		PaddingPercent:     a.PaddingPercent,
		TotalSpend:         a.TotalSpend,
		RemainingBudget:    a.RemainingBudget,
		TargetPercentSum:   service.SumTargetPercent(s.entities),
	}
	if s.outcome != nil {
		if s.outcome.Accepted {
			summary.LastOutcome = "accepted"
		} else {
			summary.LastOutcome = s.outcome.Reason
		}
	}
	return summary, nil
}
