package types

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDate        = errors.New("invalid date: end date is missing or unparseable")
	ErrInvalidWindow      = errors.New("invalid billing window: zero remaining days, pick a different date range")
	ErrBulkNotConfirmed   = errors.New("bulk commit not confirmed: type \"yes\" to proceed")
	ErrNotStaged          = errors.New("ticket is not staged for commit")
	ErrTicketNotFound     = errors.New("no commit ticket for this entity")
	ErrInvalidTransition  = errors.New("invalid ticket state transition")
	ErrNothingToCommit    = errors.New("no reallocation has been accepted yet")
	ErrNoData             = errors.New("no data fetched for this session")
	ErrSessionNotFound    = errors.New("session not found")
	ErrMissingCredentials = errors.New("missing platform credentials")
	ErrUnknownPlatform    = errors.New("unknown platform")
)

// InputValidationError indica uma entrada malformada do usuário.
// Bloqueia apenas a ação que a disparou.
type InputValidationError struct {
	Field  string
	Reason string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// GatewayError representa uma falha de rede, autenticação ou da plataforma
// durante a listagem de entidades ou a consulta de gasto.
type GatewayError struct {
	Platform string
	Op       string
	Err      error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Platform, e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// AllocationRejectedError é retornado quando a soma dos percentuais alvo excede 100%.
type AllocationRejectedError struct {
	SumPercent string
}

func (e *AllocationRejectedError) Error() string {
	return fmt.Sprintf("sum exceeds 100%%: %s", e.SumPercent)
}

// PlatformError carrega a mensagem bruta devolvida pela plataforma ao
// atualizar o orçamento de uma entidade.
type PlatformError struct {
	Platform string
	EntityID string
	Message  string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s update of %s failed: %s", e.Platform, e.EntityID, e.Message)
}
