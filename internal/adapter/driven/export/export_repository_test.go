package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/shopspring/decimal"
)

func sampleReport() entity.SessionReport {
	d := decimal.RequireFromString
	return entity.SessionReport{
		SessionID:   "s-1",
		Platform:    entity.PlatformMeta,
		AccountRef:  "act_1",
		GeneratedAt: time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC),
		Context: entity.AllocationContext{
			TotalMonthlyBudget: d("3000"),
			PaddingPercent:     d("0.95"),
			TotalSpend:         d("600"),
			RemainingBudget:    d("2280"),
			Window: entity.BillingWindow{
				PeriodStart:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
				PeriodEnd:     time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
				RemainingDays: 10,
			},
		},
		Outcome: &entity.ValidationOutcome{Accepted: true, SumPercent: d("100")},
		Entities: []entity.BudgetEntity{
			{ID: "1", Name: "[red]Prospecting[/red]", Level: entity.LevelCampaign, CurrentDailyBudget: d("60"), Spend: d("400"), CurrentSharePercent: d("60"), TargetPercent: d("60"), NewDailyBudget: d("136.8")},
			{ID: "2", Name: "Retargeting", Level: entity.LevelCampaign, CurrentDailyBudget: d("40"), Spend: d("200"), CurrentSharePercent: d("40"), TargetPercent: d("40"), NewDailyBudget: d("91.2")},
		},
		Tickets: []entity.CommitTicket{
			{EntityID: "1", State: entity.TicketSucceeded},
			{EntityID: "2", State: entity.TicketFailed, Reason: "(#100) Invalid parameter"},
		},
	}
}

func TestExportPlanToCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := NewExportRepository().ExportPlanToCSV(sampleReport(), "plan-meta", dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "plan-meta_") || filepath.Ext(path) != ".csv" {
		t.Errorf("unexpected filename %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records; want header + 2", len(records))
	}
	if records[1][0] != "Prospecting" {
		t.Errorf("rich tags not stripped: %q", records[1][0])
	}
	if records[1][8] != "136.80" || records[1][9] != "Succeeded" {
		t.Errorf("row 1 = %v", records[1])
	}
	if records[2][9] != "Failed" || records[2][10] != "(#100) Invalid parameter" {
		t.Errorf("row 2 = %v", records[2])
	}
}

func TestExportPlanToJSON(t *testing.T) {
	path, err := NewExportRepository().ExportPlanToJSON(sampleReport(), "plan", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var decoded struct {
		SessionID string `json:"session_id"`
		Entities  []struct {
			ID             string `json:"id"`
			NewDailyBudget string `json:"new_daily_budget"`
		} `json:"entities"`
		Tickets []struct {
			State string `json:"state"`
		} `json:"tickets"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.SessionID != "s-1" || len(decoded.Entities) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Entities[1].NewDailyBudget != "91.2" {
		t.Errorf("new budget = %q", decoded.Entities[1].NewDailyBudget)
	}
}

func TestExportPlanToPDF(t *testing.T) {
	path, err := NewExportRepository().ExportPlanToPDF(sampleReport(), "plan", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("empty PDF")
	}
}

func TestCleanRichTags(t *testing.T) {
	in := "\x1b[31m[bold]Campaign[/bold]\x1b[0m"
	if got := cleanRichTags(in); got != "Campaign" {
		t.Errorf("cleanRichTags = %q", got)
	}
}
