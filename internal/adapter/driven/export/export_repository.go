package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/diillson/ads-budget-realloc-go/internal/domain/entity"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/repository"
	"github.com/jung-kurt/gofpdf"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

var planHeaders = []string{
	"Entity", "ID", "Level", "Parent ID",
	"Current Daily Budget", "Spend", "Current Share %",
	"Target %", "New Daily Budget", "Commit State", "Commit Error",
}

// planRecords monta as linhas do plano na ordem do fetch, com o estado do
// ticket de cada entidade quando houver.
func planRecords(report entity.SessionReport) [][]string {
	tickets := make(map[string]entity.CommitTicket, len(report.Tickets))
	for _, t := range report.Tickets {
		tickets[t.EntityID] = t
	}

	records := make([][]string, 0, len(report.Entities))
	for _, e := range report.Entities {
		state, reason := "", ""
		if t, ok := tickets[e.ID]; ok {
			state = t.State.String()
			reason = cleanRichTags(t.Reason)
		}
		records = append(records, []string{
			cleanRichTags(e.Name),
			e.ID,
			string(e.Level),
			e.ParentID,
			e.CurrentDailyBudget.StringFixed(2),
			e.Spend.StringFixed(2),
			e.CurrentSharePercent.StringFixed(2),
			e.TargetPercent.StringFixed(2),
			e.NewDailyBudget.StringFixed(2),
			state,
			reason,
		})
	}
	return records
}

// ExportPlanToCSV grava o plano de realocação em CSV.
func (r *ExportRepositoryImpl) ExportPlanToCSV(report entity.SessionReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(planHeaders); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}
	if err := writer.WriteAll(planRecords(report)); err != nil {
		return "", fmt.Errorf("error writing CSV record: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportPlanToJSON grava o relatório completo da sessão em JSON.
func (r *ExportRepositoryImpl) ExportPlanToJSON(report entity.SessionReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportPlanToPDF grava o plano em PDF: resumo da alocação seguido da tabela
// de entidades.
func (r *ExportRepositoryImpl) ExportPlanToPDF(report entity.SessionReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	sectionTitleColor := [3]int{0, 0, 0}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}
	pageWidth := 277.0

	drawSectionTitle := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(sectionTitleColor[0], sectionTitleColor[1], sectionTitleColor[2])
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(7)

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+pageWidth, pdf.GetY())
		pdf.Ln(4)
	}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Generated by Ads Budget Reallocator | %s", report.GeneratedAt.Format("2006-01-02 15:04"))
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", pdf.PageNo())), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()

	// Cabeçalho
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  Budget Reallocation: %s", report.Platform.DisplayName())), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("  Account: %s    Session: %s", report.AccountRef, report.SessionID)), "", 1, "L", true, 0, "")
	pdf.Ln(8)

	// Resumo
	ctx := report.Context
	drawSectionTitle("Allocation Summary")
	summary := [][2]string{
		{"Billing period", fmt.Sprintf("%s to %s", ctx.Window.StartDate(), ctx.Window.EndDate())},
		{"Remaining days", fmt.Sprintf("%d", ctx.Window.RemainingDays)},
		{"Total monthly budget", ctx.TotalMonthlyBudget.StringFixed(2)},
		{"Spend so far", ctx.TotalSpend.StringFixed(2)},
		{"Padding multiplier", ctx.PaddingPercent.String()},
		{"Remaining budget", ctx.RemainingBudget.StringFixed(2)},
	}
	if report.Outcome != nil {
		status := "accepted"
		if !report.Outcome.Accepted {
			status = report.Outcome.Reason
		}
		summary = append(summary, [2]string{"Last recompute", fmt.Sprintf("%s (sum %s%%)", status, report.Outcome.SumPercent)})
	}
	for _, kv := range summary {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(55, 6, tr(kv[0]), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)

	// Tabela de entidades
	drawSectionTitle("Entities")
	widths := []float64{58, 28, 16, 28, 24, 22, 18, 18, 24, 20, 21}
	columns := []string{"Entity", "ID", "Level", "Parent", "Budget", "Spend", "Share %", "Target %", "New Budget", "State", "Error"}

	drawHeader := func() {
		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for i, col := range columns {
			pdf.CellFormat(widths[i], 7, tr(col), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	drawHeader()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottomMargin := pdf.GetMargins()
	for _, record := range planRecords(report) {
		if pdf.GetY()+6 > pageHeight-bottomMargin-15 {
			pdf.AddPage()
			drawHeader()
		}
		for i, cell := range record {
			align := "L"
			if i >= 4 && i <= 8 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, tr(truncate(pdf, cell, widths[i]-2)), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// truncate corta o texto para caber na largura da célula.
func truncate(pdf *gofpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

// --- Funções Auxiliares ---

// generateFilename cria um nome de arquivo único com timestamp e garante que o diretório exista.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

// Regex para limpar formatação pterm (rich tags) e sequências ANSI de cor/estilo.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags remove tags de formatação do pterm e sequências ANSI.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}
