package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/repository"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/service"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
	"github.com/shopspring/decimal"
)

// ReallocationUseCase handles the fetch → edit → recompute → stage → commit cycle.
type ReallocationUseCase struct {
	exportRepo  repository.ExportRepository
	archiveRepo repository.ArchiveRepository
	console     types.ConsoleInterface
	metrics     repository.MetricsRecorder
}

// NewReallocationUseCase creates a new reallocation use case.
func NewReallocationUseCase(
	exportRepo repository.ExportRepository,
	archiveRepo repository.ArchiveRepository,
	console types.ConsoleInterface,
	metrics repository.MetricsRecorder,
) *ReallocationUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &ReallocationUseCase{
		exportRepo:  exportRepo,
		archiveRepo: archiveRepo,
		console:     console,
		metrics:     metrics,
	}
}

// FetchRequest contém as entradas do usuário para um fetch.
type FetchRequest struct {
	TotalMonthlyBudget decimal.Decimal
	Padding            entity.Padding
	DateRange          []string
}

// Fetch busca entidades e gasto e reconstrói o estado da sessão. Com menos de
// duas datas nada acontece e fetched volta false. Em caso de falha do gateway
// nenhuma linha parcial fica na sessão.
func (uc *ReallocationUseCase) Fetch(ctx context.Context, s *Session, req FetchRequest) (bool, error) {
	if req.TotalMonthlyBudget.IsNegative() {
		return false, &types.InputValidationError{Field: "total monthly budget", Reason: "must be >= 0"}
	}

	start, end, ok, err := service.ParseDateRange(req.DateRange)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	window, err := service.NewBillingWindow(start, end, s.days)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()

	status := uc.console.Status(fmt.Sprintf("Fetching %s data...", s.Platform.DisplayName()))
	rows, err := service.CollectRows(ctx, s.gateway, s.AccountRef, window.PeriodStart, window.PeriodEnd, func(name string) {
		status.Update(fmt.Sprintf("Fetching spend for %s...", name))
	})
	status.Stop()

	uc.metrics.ObserveFetch(s.Platform, len(rows), err)
	if err != nil {
		return false, err
	}

	allocation := entity.NewAllocationContext(req.TotalMonthlyBudget, req.Padding.Multiplier(), rows, window)
	s.allocation = &allocation
	s.entities = rows

	if len(rows) == 0 {
		uc.console.LogWarning("No active %s entities with a budget were found", s.Platform.DisplayName())
	}
	return true, nil
}

// ApplyTargetEdits é o único caminho de escrita da camada de apresentação para
// o modelo: altera os percentuais alvo. Todas as edições são validadas antes
// de qualquer alteração. Qualquer alvo alterado descarta os tickets, que só
// voltam a existir depois de um novo Recompute aceito.
func (uc *ReallocationUseCase) ApplyTargetEdits(s *Session, edits map[string]decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.allocation == nil {
		return types.ErrNoData
	}

	index := make(map[string]int, len(s.entities))
	for i, e := range s.entities {
		index[e.ID] = i
	}

	for id, pct := range edits {
		if _, ok := index[id]; !ok {
			return &types.InputValidationError{Field: "entity id", Reason: fmt.Sprintf("%q is not part of this session", id)}
		}
		if pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
			return &types.InputValidationError{Field: "target percent", Reason: fmt.Sprintf("%s must be between 0 and 100", pct)}
		}
	}

	for id, pct := range edits {
		e := &s.entities[index[id]]
		if e.TargetPercent.Equal(pct) {
			continue
		}
		e.TargetPercent = pct
		s.coordinator = nil
	}
	return nil
}

// Recompute roda o motor de realocação. Aceito, cria tickets Pending novos;
// rejeitado, mantém os orçamentos anteriores, descarta os tickets e retorna
// AllocationRejectedError.
func (uc *ReallocationUseCase) Recompute(s *Session) (entity.ValidationOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.allocation == nil {
		return entity.ValidationOutcome{}, types.ErrNoData
	}

	out, outcome, err := service.Recompute(s.entities, *s.allocation)
	if err != nil {
		return outcome, err
	}

	s.outcome = &outcome
	uc.metrics.ObserveRecompute(s.Platform, outcome.Accepted)

	if !outcome.Accepted {
		s.coordinator = nil
		return outcome, &types.AllocationRejectedError{SumPercent: outcome.SumPercent.String()}
	}

	coordinator, err := service.NewCommitCoordinator(s.gateway, out, outcome)
	if err != nil {
		return outcome, err
	}
	s.entities = out
	s.coordinator = coordinator
	return outcome, nil
}

// Stage prepara um ticket para commit.
func (uc *ReallocationUseCase) Stage(s *Session, entityID string) error {
	_, err := uc.dispatch(context.Background(), s, entity.CommitAction{Kind: entity.ActionStage, EntityID: entityID})
	return err
}

// StageAll prepara todos os tickets Pending.
func (uc *ReallocationUseCase) StageAll(s *Session) error {
	_, err := uc.dispatch(context.Background(), s, entity.CommitAction{Kind: entity.ActionStageAll})
	return err
}

// Commit grava o orçamento de um ticket Staged.
func (uc *ReallocationUseCase) Commit(ctx context.Context, s *Session, entityID string) (entity.CommitReport, error) {
	return uc.dispatch(ctx, s, entity.CommitAction{Kind: entity.ActionCommit, EntityID: entityID})
}

// CommitAll grava todos os tickets Staged após a confirmação textual.
func (uc *ReallocationUseCase) CommitAll(ctx context.Context, s *Session, confirmation string) (entity.CommitReport, error) {
	return uc.dispatch(ctx, s, entity.CommitAction{Kind: entity.ActionCommitAll, Confirmation: confirmation})
}

func (uc *ReallocationUseCase) dispatch(ctx context.Context, s *Session, action entity.CommitAction) (entity.CommitReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.coordinator == nil {
		return entity.CommitReport{}, types.ErrNothingToCommit
	}

	report, err := s.coordinator.Dispatch(ctx, action)
	for range report.Succeeded {
		uc.metrics.ObserveCommit(s.Platform, true)
	}
	for _, t := range report.Failed {
		uc.metrics.ObserveCommit(s.Platform, false)
		uc.console.LogError("Failed to update %s (%s): %s", t.EntityName, t.EntityID, t.Reason)
	}
	return report, err
}

// Report monta o retrato atual da sessão para exportação ou API.
func (uc *ReallocationUseCase) Report(s *Session) (entity.SessionReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.allocation == nil {
		return entity.SessionReport{}, types.ErrNoData
	}

	report := entity.SessionReport{
		SessionID:   s.ID,
		Platform:    s.Platform,
		AccountRef:  s.AccountRef,
		GeneratedAt: time.Now(),
		Context:     *s.allocation,
		Outcome:     s.outcome,
		Entities:    append([]entity.BudgetEntity(nil), s.entities...),
	}
	if s.coordinator != nil {
		report.Tickets = s.coordinator.Tickets()
	}
	return report, nil
}

// ExportRequest descreve os formatos e o destino de uma exportação.
type ExportRequest struct {
	ReportName string
	ReportType []string
	Dir        string
	S3Bucket   string
	S3Prefix   string
}

// Export grava o relatório da sessão em cada formato pedido e, se houver
// bucket configurado, envia os arquivos para o S3. Falhas de um formato não
// impedem os demais.
func (uc *ReallocationUseCase) Export(ctx context.Context, s *Session, req ExportRequest) ([]string, error) {
	report, err := uc.Report(s)
	if err != nil {
		return nil, err
	}
	if req.ReportName == "" {
		return nil, &types.InputValidationError{Field: "report name", Reason: "is empty"}
	}

	filename := fmt.Sprintf("%s-%s", req.ReportName, s.Platform)
	paths := []string{}
	var errs []error

	for _, reportType := range req.ReportType {
		var (
			path string
			err  error
		)
		switch reportType {
		case "csv":
			path, err = uc.exportRepo.ExportPlanToCSV(report, filename, req.Dir)
		case "json":
			path, err = uc.exportRepo.ExportPlanToJSON(report, filename, req.Dir)
		case "pdf":
			path, err = uc.exportRepo.ExportPlanToPDF(report, filename, req.Dir)
		default:
			err = &types.InputValidationError{Field: "report type", Reason: fmt.Sprintf("unsupported %q", reportType)}
		}

		if err != nil {
			uc.console.LogError("Failed to export plan to %s: %s", reportType, err)
			errs = append(errs, err)
			continue
		}
		uc.console.LogSuccess("Successfully exported plan to %s: %s", reportType, path)
		paths = append(paths, path)
	}

	if req.S3Bucket != "" && uc.archiveRepo != nil {
		for _, path := range paths {
			location, err := uc.archiveRepo.Upload(ctx, path, req.S3Bucket, req.S3Prefix)
			if err != nil {
				uc.console.LogError("Failed to upload %s: %s", path, err)
				errs = append(errs, err)
				continue
			}
			uc.console.LogSuccess("Uploaded report to %s", location)
		}
	}

	return paths, errors.Join(errs...)
}

type noopMetrics struct{}

func (noopMetrics) ObserveFetch(entity.Platform, int, error) {}
func (noopMetrics) ObserveRecompute(entity.Platform, bool)   {}
func (noopMetrics) ObserveCommit(entity.Platform, bool)      {}
