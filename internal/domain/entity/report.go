package entity

import "time"

// SessionReport contains everything exported for one reallocation session.
type SessionReport struct {
	SessionID   string             `json:"session_id"`
	Platform    Platform           `json:"platform"`
	AccountRef  string             `json:"account_ref"`
	GeneratedAt time.Time          `json:"generated_at"`
	Context     AllocationContext  `json:"context"`
	Outcome     *ValidationOutcome `json:"outcome,omitempty"`
	Entities    []BudgetEntity     `json:"entities"`
	Tickets     []CommitTicket     `json:"tickets,omitempty"`
}
