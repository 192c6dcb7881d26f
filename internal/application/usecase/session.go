package usecase

import (
	"sync"
	"time"

	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/repository"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/service"
	"github.com/google/uuid"
)

// Session guarda o estado de uma sessão interativa de realocação: contexto de
// alocação, linhas de entidades e tickets de commit. Todo o estado é trocado
// por inteiro a cada fetch. Uma ação por vez: cada operação do caso de uso
// segura o mutex da sessão até terminar.
type Session struct {
	mu sync.Mutex

	ID         string
	Platform   entity.Platform
	AccountRef string
	CreatedAt  time.Time

	gateway     repository.PlatformGateway
	days        *service.DayCounter
	allocation  *entity.AllocationContext
	entities    []entity.BudgetEntity
	outcome     *entity.ValidationOutcome
	coordinator *service.CommitCoordinator
}

// NewSession cria uma sessão vazia para a plataforma e conta informadas.
func NewSession(gateway repository.PlatformGateway, accountRef string) *Session {
	return &Session{
		ID:         uuid.NewString(),
		Platform:   gateway.Platform(),
		AccountRef: accountRef,
		CreatedAt:  time.Now(),
		gateway:    gateway,
		days:       service.NewDayCounter(),
	}
}

// HasData indica se já houve um fetch bem-sucedido.
func (s *Session) HasData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allocation != nil
}

// reset descarta todo o estado derivado de um fetch.
func (s *Session) reset() {
	s.allocation = nil
	s.entities = nil
	s.outcome = nil
	s.coordinator = nil
}

// Close libera a tabela de memoização ao fim da sessão.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.days.Reset()
}
