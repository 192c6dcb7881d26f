package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/diillson/ads-budget-realloc-go/internal/adapter/driven/platform"
	"github.com/diillson/ads-budget-realloc-go/internal/adapter/driven/platform/googleads"
	"github.com/diillson/ads-budget-realloc-go/internal/adapter/driving/httpapi"
	"github.com/diillson/ads-budget-realloc-go/internal/application/usecase"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/service"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
)

// Ações do menu da sessão.
const (
	actionEditTarget = "Edit target %"
	actionRecompute  = "Recompute budgets"
	actionStage      = "Prepare one entity for commit"
	actionStageAll   = "Prepare all for commit"
	actionCommit     = "Commit one entity"
	actionCommitAll  = "Commit all prepared"
	actionChart      = "Show share chart"
	actionSettings   = "Change budget, padding or dates"
	actionRefetch    = "Refetch data"
	actionExport     = "Export plan"
	actionQuit       = "Quit"

	platformBoth = "Both"
)

// sessionRunner conduz a sessão interativa no terminal, uma plataforma por vez.
type sessionRunner struct {
	cfg      *types.Config
	uc       *usecase.ReallocationUseCase
	console  types.ConsoleInterface
	gateways func(cfg types.Config) httpapi.GatewayProvider
	now      func() time.Time

	selected []entity.Platform
}

// Run escolhe as plataformas e abre uma sessão para cada uma.
func (r *sessionRunner) Run(ctx context.Context) error {
	if r.now == nil {
		r.now = time.Now
	}

	platforms, err := r.selectPlatforms()
	if err != nil {
		return err
	}
	r.selected = platforms

	for _, p := range platforms {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.runPlatform(ctx, p); err != nil {
			r.console.LogError("%s session ended with error: %s", p.DisplayName(), err)
		}
	}
	return nil
}

func (r *sessionRunner) selectPlatforms() ([]entity.Platform, error) {
	names := r.cfg.Platforms
	if len(names) == 0 {
		choice, err := r.console.Select("Select the ad platform", []string{
			entity.PlatformMeta.DisplayName(),
			entity.PlatformGoogle.DisplayName(),
			platformBoth,
		})
		if err != nil {
			return nil, err
		}
		if choice == platformBoth {
			return []entity.Platform{entity.PlatformMeta, entity.PlatformGoogle}, nil
		}
		names = []string{choice}
	}

	platforms := make([]entity.Platform, 0, len(names))
	for _, name := range names {
		p, err := entity.ParsePlatform(name)
		if err != nil {
			return nil, &types.InputValidationError{Field: "platform", Reason: err.Error()}
		}
		platforms = append(platforms, p)
	}
	return platforms, nil
}

// ensureCredentials pede ao usuário o que faltar para autenticar na plataforma.
func (r *sessionRunner) ensureCredentials(p entity.Platform) error {
	var err error
	switch p {
	case entity.PlatformMeta:
		if r.cfg.Meta.AccessToken == "" && os.Getenv(platform.MetaTokenEnvVar) == "" {
			if r.cfg.Meta.AccessToken, err = r.console.SecretInput("Meta access token"); err != nil {
				return err
			}
		}
		if r.cfg.Meta.AdAccountID == "" {
			if r.cfg.Meta.AdAccountID, err = r.console.TextInput("Meta ad account id", ""); err != nil {
				return err
			}
		}
	case entity.PlatformGoogle:
		if r.cfg.Google.CredentialsFile == "" && os.Getenv(googleads.CredentialsEnvVar) == "" {
			if r.cfg.Google.CredentialsFile, err = r.console.TextInput("Path to the Google Ads credentials JSON", "google-ads.json"); err != nil {
				return err
			}
		}
		if r.cfg.Google.CustomerID == "" {
			if r.cfg.Google.CustomerID, err = r.console.TextInput("Google Ads customer id", ""); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *sessionRunner) runPlatform(ctx context.Context, p entity.Platform) error {
	if err := r.ensureCredentials(p); err != nil {
		return err
	}

	provider := r.gateways(*r.cfg)
	gateway, err := provider.NewGateway(ctx, p)
	if err != nil {
		return err
	}

	session := usecase.NewSession(gateway, provider.AccountRef(p))
	defer session.Close()

	r.console.LogInfo("Session %s for %s account %s", session.ID, p.DisplayName(), session.AccountRef)

	req, err := r.fetchRequest(p, false)
	if err != nil {
		return err
	}
	r.fetch(ctx, session, req)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		action, err := r.console.Select("What next?", []string{
			actionEditTarget, actionRecompute,
			actionStage, actionStageAll,
			actionCommit, actionCommitAll,
			actionChart, actionSettings, actionRefetch,
			actionExport, actionQuit,
		})
		if err != nil {
			return err
		}

		switch action {
		case actionQuit:
			return nil
		case actionSettings:
			if req, err = r.fetchRequest(p, true); err != nil {
				r.console.LogError("%s", err)
				continue
			}
			r.fetch(ctx, session, req)
		case actionRefetch:
			r.fetch(ctx, session, req)
		default:
			if err := r.dispatch(ctx, session, action); err != nil {
				r.console.LogError("%s", err)
			}
		}
	}
}

// monthlyBudget devolve o orçamento mensal da plataforma. O valor global só
// vale quando uma única plataforma foi selecionada.
func (r *sessionRunner) monthlyBudget(p entity.Platform) float64 {
	var own float64
	switch p {
	case entity.PlatformMeta:
		own = r.cfg.Meta.TotalMonthlyBudget
	case entity.PlatformGoogle:
		own = r.cfg.Google.TotalMonthlyBudget
	}
	if own > 0 || len(r.selected) > 1 {
		return own
	}
	return r.cfg.TotalMonthlyBudget
}

func (r *sessionRunner) setMonthlyBudget(p entity.Platform, budget float64) {
	switch p {
	case entity.PlatformMeta:
		r.cfg.Meta.TotalMonthlyBudget = budget
	case entity.PlatformGoogle:
		r.cfg.Google.TotalMonthlyBudget = budget
	}
}

// fetchRequest monta as entradas do fetch da plataforma. Com ask=true pergunta
// tudo de novo, usando os valores atuais como padrão.
func (r *sessionRunner) fetchRequest(p entity.Platform, ask bool) (usecase.FetchRequest, error) {
	budget := decimal.NewFromFloat(r.monthlyBudget(p))
	if ask || budget.IsZero() {
		input, err := r.console.TextInput(p.DisplayName()+" total monthly budget", budget.String())
		if err != nil {
			return usecase.FetchRequest{}, err
		}
		if budget, err = decimal.NewFromString(input); err != nil {
			return usecase.FetchRequest{}, &types.InputValidationError{Field: "total monthly budget", Reason: fmt.Sprintf("%q is not a number", input)}
		}
		r.setMonthlyBudget(p, budget.InexactFloat64())
	}

	paddingValue := r.cfg.Padding
	if ask {
		choice, err := r.console.Select("Padding (reserve kept aside)", entity.PaddingPresets)
		if err != nil {
			return usecase.FetchRequest{}, err
		}
		paddingValue = choice
		if choice == "Custom" {
			if paddingValue, err = r.console.TextInput("Custom padding %", r.cfg.Padding); err != nil {
				return usecase.FetchRequest{}, err
			}
		}
		r.cfg.Padding = paddingValue
	}
	padding, err := entity.ParsePadding(paddingValue)
	if err != nil {
		return usecase.FetchRequest{}, &types.InputValidationError{Field: "padding", Reason: err.Error()}
	}

	dates := r.cfg.DateRange
	if len(dates) == 0 {
		dates = service.DefaultDateRange(r.now())
	}
	if ask {
		start, err := r.console.TextInput("Start date (YYYY-MM-DD)", first(dates))
		if err != nil {
			return usecase.FetchRequest{}, err
		}
		end, err := r.console.TextInput("End date (YYYY-MM-DD)", last(dates))
		if err != nil {
			return usecase.FetchRequest{}, err
		}
		dates = []string{start, end}
		r.cfg.DateRange = dates
	}

	return usecase.FetchRequest{
		TotalMonthlyBudget: budget,
		Padding:            padding,
		DateRange:          dates,
	}, nil
}

func (r *sessionRunner) fetch(ctx context.Context, session *usecase.Session, req usecase.FetchRequest) {
	fetched, err := r.uc.Fetch(ctx, session, req)
	if err != nil {
		r.console.LogError("Fetch failed, nothing is displayed: %s", err)
		return
	}
	if !fetched {
		r.console.LogWarning("Pick both a start and an end date to fetch data")
		return
	}
	r.render(session)
}

func (r *sessionRunner) dispatch(ctx context.Context, session *usecase.Session, action string) error {
	switch action {
	case actionEditTarget:
		return r.editTarget(session)
	case actionRecompute:
		outcome, err := r.uc.Recompute(session)
		if err != nil {
			return err
		}
		r.console.LogSuccess("Reallocation accepted (targets sum to %s%%)", outcome.SumPercent)
	case actionStage:
		id, err := r.pickEntity(session)
		if err != nil {
			return err
		}
		if err := r.uc.Stage(session, id); err != nil {
			return err
		}
	case actionStageAll:
		if err := r.uc.StageAll(session); err != nil {
			return err
		}
	case actionCommit:
		id, err := r.pickEntity(session)
		if err != nil {
			return err
		}
		report, err := r.uc.Commit(ctx, session, id)
		if err != nil {
			return err
		}
		r.reportCommit(report)
	case actionCommitAll:
		confirmation, err := r.console.TextInput(fmt.Sprintf("Type %q to update every prepared budget on the platform", service.BulkConfirmationToken), "")
		if err != nil {
			return err
		}
		report, err := r.uc.CommitAll(ctx, session, confirmation)
		if err != nil && report.Total() == 0 {
			return err
		}
		r.reportCommit(report)
	case actionChart:
		rows, err := r.uc.Rows(session)
		if err != nil {
			return err
		}
		bars := make([]types.ShareBar, 0, len(rows))
		for _, row := range rows {
			bars = append(bars, types.ShareBar{
				Name:    row.Name,
				Current: row.CurrentSharePercent.InexactFloat64(),
				Target:  row.TargetPercent.InexactFloat64(),
			})
		}
		r.console.DisplayShareBars(bars)
		return nil
	case actionExport:
		_, err := r.uc.Export(ctx, session, usecase.ExportRequest{
			ReportName: r.cfg.ReportName,
			ReportType: r.cfg.ReportType,
			Dir:        r.cfg.Dir,
			S3Bucket:   r.cfg.S3Bucket,
			S3Prefix:   r.cfg.S3Prefix,
		})
		return err
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	r.render(session)
	return nil
}

func (r *sessionRunner) editTarget(session *usecase.Session) error {
	rows, err := r.uc.Rows(session)
	if err != nil {
		return err
	}

	id, err := r.pickEntity(session)
	if err != nil {
		return err
	}

	current := ""
	for _, row := range rows {
		if row.ID == id {
			current = row.TargetPercent.String()
		}
	}

	input, err := r.console.TextInput("New target %", current)
	if err != nil {
		return err
	}
	pct, err := decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(input), "%"))
	if err != nil {
		return &types.InputValidationError{Field: "target percent", Reason: fmt.Sprintf("%q is not a number", input)}
	}
	return r.uc.ApplyTargetEdits(session, map[string]decimal.Decimal{id: pct})
}

// pickEntity mostra as entidades como "nome (id)" e devolve o id escolhido.
func (r *sessionRunner) pickEntity(session *usecase.Session) (string, error) {
	rows, err := r.uc.Rows(session)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", types.ErrNoData
	}

	labels := make([]string, 0, len(rows))
	byLabel := make(map[string]string, len(rows))
	for _, row := range rows {
		label := fmt.Sprintf("%s (%s)", row.Name, row.ID)
		labels = append(labels, label)
		byLabel[label] = row.ID
	}

	choice, err := r.console.Select("Select the entity", labels)
	if err != nil {
		return "", err
	}
	id, ok := byLabel[choice]
	if !ok {
		return "", &types.InputValidationError{Field: "entity", Reason: fmt.Sprintf("%q is not listed", choice)}
	}
	return id, nil
}

func (r *sessionRunner) reportCommit(report entity.CommitReport) {
	for _, t := range report.Succeeded {
		r.console.LogSuccess("%s (%s) daily budget set to %s", t.EntityName, t.EntityID, t.NewDailyBudget.StringFixed(2))
	}
	if report.Total() > 1 {
		r.console.LogInfo("%d succeeded, %d failed", len(report.Succeeded), len(report.Failed))
	}
}

func (r *sessionRunner) render(session *usecase.Session) {
	summary, err := r.uc.Summary(session)
	if errors.Is(err, types.ErrNoData) {
		return
	}
	rows, _ := r.uc.Rows(session)

	table := r.console.CreateTable()
	for _, col := range []string{"Name", "ID", "Level", "Current Budget", "Spend", "Share %", "Target %", "New Daily Budget", "Commit"} {
		table.AddColumn(col)
	}
	for _, row := range rows {
		commit := row.CommitState
		if row.CommitError != "" {
			commit = fmt.Sprintf("%s: %s", commit, row.CommitError)
		}
		table.AddRow(
			row.Name, row.ID, row.Level,
			row.CurrentBudget.StringFixed(2), row.Spend.StringFixed(2),
			row.CurrentSharePercent.StringFixed(2), row.TargetPercent.StringFixed(2),
			row.NewDailyBudget.StringFixed(2), commit,
		)
	}
	r.console.Println(table.Render())

	r.console.LogInfo("Period %s to %s, %d days left in the month", summary.PeriodStart, summary.PeriodEnd, summary.RemainingDays)
	r.console.LogInfo("Budget %s, spent %s, remaining after padding %s",
		summary.TotalMonthlyBudget.StringFixed(2), summary.TotalSpend.StringFixed(2), summary.RemainingBudget.StringFixed(2))

	if summary.TargetPercentSum.GreaterThan(decimal.NewFromInt(100)) {
		r.console.LogWarning("Targets sum to %s%%, recompute will be rejected", summary.TargetPercentSum)
	} else {
		r.console.LogInfo("Targets sum to %s%%", summary.TargetPercentSum)
	}
	if summary.LastOutcome != "" && summary.LastOutcome != "accepted" {
		r.console.LogWarning("Last recompute: %s", summary.LastOutcome)
	}
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func last(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[len(values)-1]
}
