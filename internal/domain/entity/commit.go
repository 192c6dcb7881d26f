package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketState é o estado de um ticket de commit por entidade.
type TicketState int

const (
	TicketPending TicketState = iota
	TicketStaged
	TicketCommitting
	TicketSucceeded
	TicketFailed
)

func (s TicketState) String() string {
	switch s {
	case TicketPending:
		return "Pending"
	case TicketStaged:
		return "Staged"
	case TicketCommitting:
		return "Committing"
	case TicketSucceeded:
		return "Succeeded"
	case TicketFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// MarshalText permite serializar o estado pelo nome.
func (s TicketState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CommitTicket acompanha a gravação do novo orçamento de uma entidade.
type CommitTicket struct {
	EntityID       string          `json:"entity_id"`
	EntityName     string          `json:"entity_name"`
	NewDailyBudget decimal.Decimal `json:"new_daily_budget"`
	State          TicketState     `json:"state"`
	Reason         string          `json:"reason,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// CommitReport agrega o resultado de um commit em lote.
type CommitReport struct {
	Succeeded []CommitTicket `json:"succeeded"`
	Failed    []CommitTicket `json:"failed"`
}

// Total retorna quantos tickets foram processados.
func (r CommitReport) Total() int {
	return len(r.Succeeded) + len(r.Failed)
}

// CommitActionKind enumera as ações explícitas da camada de apresentação.
type CommitActionKind int

const (
	ActionStage CommitActionKind = iota
	ActionStageAll
	ActionCommit
	ActionCommitAll
)

// CommitAction é um evento vindo da camada de apresentação.
// EntityID é usado por ActionStage/ActionCommit, Confirmation por ActionCommitAll.
type CommitAction struct {
	Kind         CommitActionKind
	EntityID     string
	Confirmation string
}
