package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/repository"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
)

// BulkConfirmationToken é a palavra que o usuário precisa digitar antes de um
// commit em lote.
const BulkConfirmationToken = "yes"

// CommitCoordinator conduz a gravação dos novos orçamentos em duas fases:
// Pending → Staged (confirmação explícita) → Committing → Succeeded | Failed.
type CommitCoordinator struct {
	gateway repository.PlatformGateway
	tickets []*entity.CommitTicket
	index   map[string]*entity.CommitTicket
	now     func() time.Time
}

// NewCommitCoordinator cria um ticket Pending por entidade. Só aceita um
// resultado de recomputação aprovado.
func NewCommitCoordinator(
	gateway repository.PlatformGateway,
	entities []entity.BudgetEntity,
	outcome entity.ValidationOutcome,
) (*CommitCoordinator, error) {
	if !outcome.Accepted {
		return nil, &types.AllocationRejectedError{SumPercent: outcome.SumPercent.String()}
	}

	c := &CommitCoordinator{
		gateway: gateway,
		tickets: make([]*entity.CommitTicket, 0, len(entities)),
		index:   make(map[string]*entity.CommitTicket, len(entities)),
		now:     time.Now,
	}

	for _, e := range entities {
		t := &entity.CommitTicket{
			EntityID:       e.ID,
			EntityName:     e.Name,
			NewDailyBudget: e.NewDailyBudget,
			State:          entity.TicketPending,
			UpdatedAt:      c.now(),
		}
		c.tickets = append(c.tickets, t)
		c.index[e.ID] = t
	}

	return c, nil
}

// Tickets retorna uma cópia dos tickets na ordem das entidades.
func (c *CommitCoordinator) Tickets() []entity.CommitTicket {
	out := make([]entity.CommitTicket, 0, len(c.tickets))
	for _, t := range c.tickets {
		out = append(out, *t)
	}
	return out
}

// Ticket retorna uma cópia do ticket da entidade.
func (c *CommitCoordinator) Ticket(entityID string) (entity.CommitTicket, error) {
	t, ok := c.index[entityID]
	if !ok {
		return entity.CommitTicket{}, fmt.Errorf("%w: %s", types.ErrTicketNotFound, entityID)
	}
	return *t, nil
}

// Stage move um único ticket de Pending para Staged.
func (c *CommitCoordinator) Stage(entityID string) error {
	t, ok := c.index[entityID]
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrTicketNotFound, entityID)
	}
	switch t.State {
	case entity.TicketStaged:
		return nil
	case entity.TicketPending:
		c.transition(t, entity.TicketStaged, "")
		return nil
	default:
		return fmt.Errorf("%w: cannot stage %s ticket %s", types.ErrInvalidTransition, t.State, entityID)
	}
}

// StageAll prepara todos os tickets Pending e retorna quantos foram movidos.
func (c *CommitCoordinator) StageAll() int {
	staged := 0
	for _, t := range c.tickets {
		if t.State == entity.TicketPending {
			c.transition(t, entity.TicketStaged, "")
			staged++
		}
	}
	return staged
}

// Commit grava o orçamento de um ticket Staged.
func (c *CommitCoordinator) Commit(ctx context.Context, entityID string) (entity.CommitTicket, error) {
	t, ok := c.index[entityID]
	if !ok {
		return entity.CommitTicket{}, fmt.Errorf("%w: %s", types.ErrTicketNotFound, entityID)
	}
	if t.State != entity.TicketStaged {
		return *t, fmt.Errorf("%w: %s is %s", types.ErrNotStaged, entityID, t.State)
	}

	c.execute(ctx, t)
	return *t, nil
}

// CommitAll grava todos os tickets Staged depois de conferir o token de
// confirmação. Falhas individuais não interrompem os demais tickets.
func (c *CommitCoordinator) CommitAll(ctx context.Context, confirmation string) (entity.CommitReport, error) {
	if !strings.EqualFold(strings.TrimSpace(confirmation), BulkConfirmationToken) {
		return entity.CommitReport{}, types.ErrBulkNotConfirmed
	}

	report := entity.CommitReport{}
	for _, t := range c.tickets {
		if t.State != entity.TicketStaged {
			continue
		}

		c.execute(ctx, t)
		if t.State == entity.TicketSucceeded {
			report.Succeeded = append(report.Succeeded, *t)
		} else {
			report.Failed = append(report.Failed, *t)
		}
	}

	if report.Total() == 0 {
		return report, types.ErrNotStaged
	}
	return report, nil
}

// Dispatch executa uma ação vinda da camada de apresentação. Ações de um único
// ticket retornam um relatório com esse ticket.
func (c *CommitCoordinator) Dispatch(ctx context.Context, action entity.CommitAction) (entity.CommitReport, error) {
	switch action.Kind {
	case entity.ActionStage:
		return entity.CommitReport{}, c.Stage(action.EntityID)
	case entity.ActionStageAll:
		c.StageAll()
		return entity.CommitReport{}, nil
	case entity.ActionCommit:
		t, err := c.Commit(ctx, action.EntityID)
		if err != nil {
			return entity.CommitReport{}, err
		}
		if t.State == entity.TicketSucceeded {
			return entity.CommitReport{Succeeded: []entity.CommitTicket{t}}, nil
		}
		return entity.CommitReport{Failed: []entity.CommitTicket{t}}, nil
	case entity.ActionCommitAll:
		return c.CommitAll(ctx, action.Confirmation)
	default:
		return entity.CommitReport{}, fmt.Errorf("%w: unknown action %d", types.ErrInvalidTransition, action.Kind)
	}
}

func (c *CommitCoordinator) execute(ctx context.Context, t *entity.CommitTicket) {
	c.transition(t, entity.TicketCommitting, "")

	if err := c.gateway.UpdateBudget(ctx, t.EntityID, t.NewDailyBudget); err != nil {
		reason := err.Error()
		var platformErr *types.PlatformError
		if errors.As(err, &platformErr) {
			reason = platformErr.Message
		}
		c.transition(t, entity.TicketFailed, reason)
		return
	}
	c.transition(t, entity.TicketSucceeded, "")
}

func (c *CommitCoordinator) transition(t *entity.CommitTicket, state entity.TicketState, reason string) {
	t.State = state
	t.Reason = reason
	t.UpdatedAt = c.now()
}
