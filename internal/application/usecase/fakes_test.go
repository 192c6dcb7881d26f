package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
	"github.com/shopspring/decimal"
)

type fakeGateway struct {
	entities  []entity.PlatformEntity
	spend     map[string]decimal.Decimal
	failSpend bool
	updateErr map[string]string
	updates   map[string]decimal.Decimal
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		entities: []entity.PlatformEntity{
			{ID: "1", Name: "Prospecting", DailyBudget: decimal.NewFromInt(60), Level: entity.LevelCampaign},
			{ID: "2", Name: "Retargeting", DailyBudget: decimal.NewFromInt(40), Level: entity.LevelCampaign},
		},
		spend: map[string]decimal.Decimal{
			"1": decimal.NewFromInt(400),
			"2": decimal.NewFromInt(200),
		},
		updateErr: map[string]string{},
		updates:   map[string]decimal.Decimal{},
	}
}

func (f *fakeGateway) Platform() entity.Platform { return entity.PlatformMeta }

func (f *fakeGateway) ListBudgetedEntities(ctx context.Context, accountRef string) ([]entity.PlatformEntity, error) {
	return f.entities, nil
}

func (f *fakeGateway) FetchSpend(ctx context.Context, entityID string, start, end time.Time) (decimal.Decimal, error) {
	if f.failSpend {
		return decimal.Zero, errors.New("network unreachable")
	}
	return f.spend[entityID], nil
}

func (f *fakeGateway) UpdateBudget(ctx context.Context, entityID string, newDailyBudget decimal.Decimal) error {
	if msg, ok := f.updateErr[entityID]; ok {
		return &types.PlatformError{Platform: "meta", EntityID: entityID, Message: msg}
	}
	f.updates[entityID] = newDailyBudget
	return nil
}

type fakeConsole struct {
	errors   []string
	warnings []string
	inputs   []string
	selects  []string
	confirms []bool
}

func (c *fakeConsole) Print(a ...interface{})                  {}
func (c *fakeConsole) Printf(format string, a ...interface{})  {}
func (c *fakeConsole) Println(a ...interface{})                {}
func (c *fakeConsole) LogInfo(format string, a ...interface{}) {}
func (c *fakeConsole) LogWarning(format string, a ...interface{}) {
	c.warnings = append(c.warnings, format)
}
func (c *fakeConsole) LogError(format string, a ...interface{}) {
	c.errors = append(c.errors, format)
}
func (c *fakeConsole) LogSuccess(format string, a ...interface{}) {}
func (c *fakeConsole) Status(message string) types.StatusHandle   { return noopHandle{} }
func (c *fakeConsole) CreateTable() types.TableInterface          { return &noopTable{} }
func (c *fakeConsole) DisplayShareBars(bars []types.ShareBar)     {}

func (c *fakeConsole) Select(prompt string, options []string) (string, error) {
	if len(c.selects) == 0 {
		return "", errors.New("no more selections")
	}
	v := c.selects[0]
	c.selects = c.selects[1:]
	return v, nil
}

func (c *fakeConsole) TextInput(prompt, defaultValue string) (string, error) {
	if len(c.inputs) == 0 {
		return defaultValue, nil
	}
	v := c.inputs[0]
	c.inputs = c.inputs[1:]
	return v, nil
}

func (c *fakeConsole) SecretInput(prompt string) (string, error) {
	return c.TextInput(prompt, "")
}

func (c *fakeConsole) Confirm(prompt string) (bool, error) {
	if len(c.confirms) == 0 {
		return false, nil
	}
	v := c.confirms[0]
	c.confirms = c.confirms[1:]
	return v, nil
}

type noopHandle struct{}

func (noopHandle) Update(string) {}
func (noopHandle) Stop()         {}

type noopTable struct{ rows int }

func (t *noopTable) AddColumn(name string, options ...interface{}) {}
func (t *noopTable) AddRow(cells ...interface{})                   { t.rows++ }
func (t *noopTable) Render() string                                { return "" }

type fakeExportRepo struct {
	exported []string
	failType string
}

func (r *fakeExportRepo) export(kind, filename string) (string, error) {
	if kind == r.failType {
		return "", errors.New("disk full")
	}
	path := filename + "." + kind
	r.exported = append(r.exported, path)
	return path, nil
}

func (r *fakeExportRepo) ExportPlanToCSV(report entity.SessionReport, filename, outputDir string) (string, error) {
	return r.export("csv", filename)
}

func (r *fakeExportRepo) ExportPlanToJSON(report entity.SessionReport, filename, outputDir string) (string, error) {
	return r.export("json", filename)
}

func (r *fakeExportRepo) ExportPlanToPDF(report entity.SessionReport, filename, outputDir string) (string, error) {
	return r.export("pdf", filename)
}

type fakeArchive struct {
	uploaded []string
}

func (a *fakeArchive) Upload(ctx context.Context, localPath, bucket, prefix string) (string, error) {
	a.uploaded = append(a.uploaded, localPath)
	return "s3://" + bucket + "/" + prefix + localPath, nil
}

type countingMetrics struct {
	fetches, fetchErrors, accepted, rejected, commitsOK, commitsFailed int
}

func (m *countingMetrics) ObserveFetch(p entity.Platform, n int, err error) {
	m.fetches++
	if err != nil {
		m.fetchErrors++
	}
}

func (m *countingMetrics) ObserveRecompute(p entity.Platform, accepted bool) {
	if accepted {
		m.accepted++
	} else {
		m.rejected++
	}
}

func (m *countingMetrics) ObserveCommit(p entity.Platform, ok bool) {
	if ok {
		m.commitsOK++
	} else {
		m.commitsFailed++
	}
}
