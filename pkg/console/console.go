package console

import (
	"fmt"
	"math"
	"strings"

	"github.com/fatih/color"

	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
	"github.com/pterm/pterm"
)

// Console é uma implementação do ConsoleInterface.
type Console struct{}

// NewConsole cria um novo Console.
func NewConsole() *Console {
	return &Console{}
}

// Print imprime no console.
func (c *Console) Print(a ...interface{}) {
	fmt.Print(a...)
}

// Printf imprime uma string formatada no console.
func (c *Console) Printf(format string, a ...interface{}) {
	fmt.Printf(format, a...)
}

// Println imprime no console com uma nova linha.
func (c *Console) Println(a ...interface{}) {
	fmt.Println(a...)
}

// LogInfo registra uma mensagem de informação.
func (c *Console) LogInfo(format string, a ...interface{}) {
	pterm.Info.Printfln(format, a...)
}

// LogWarning registra uma mensagem de aviso.
func (c *Console) LogWarning(format string, a ...interface{}) {
	pterm.Warning.Printfln(format, a...)
}

// LogError registra uma mensagem de erro.
func (c *Console) LogError(format string, a ...interface{}) {
	pterm.Error.Printfln(format, a...)
}

// LogSuccess registra uma mensagem de sucesso.
func (c *Console) LogSuccess(format string, a ...interface{}) {
	pterm.Success.Printfln(format, a...)
}

// statusHandle é uma implementação do StatusHandle.
type statusHandle struct {
	spinner *pterm.SpinnerPrinter
}

// Status cria um spinner de status com a mensagem especificada.
func (c *Console) Status(message string) types.StatusHandle {
	spinner, _ := pterm.DefaultSpinner.Start(message)
	return &statusHandle{spinner: spinner}
}

// Cores predefinidas para uso consistente
var (
	BrightMagenta = color.New(color.FgMagenta, color.Bold).SprintFunc()
	BoldRed       = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightGreen   = color.New(color.FgGreen, color.Bold).SprintFunc()
	BrightYellow  = color.New(color.FgYellow, color.Bold).SprintFunc()
	BrightRed     = color.New(color.FgRed, color.Bold).SprintFunc()
	BrightCyan    = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// Update atualiza a mensagem de status.
func (h *statusHandle) Update(message string) {
	if h.spinner != nil {
		h.spinner.UpdateText(message)
	}
}

// Stop pára o spinner de status.
func (h *statusHandle) Stop() {
	if h.spinner != nil {
		h.spinner.Stop()
	}
}

// Table é uma implementação do TableInterface.
type Table struct {
	columns []string
	rows    [][]string
}

// CreateTable cria uma nova tabela.
func (c *Console) CreateTable() types.TableInterface {
	return &Table{
		columns: []string{},
		rows:    [][]string{},
	}
}

// AddColumn adiciona uma coluna à tabela.
func (t *Table) AddColumn(name string, options ...interface{}) {
	t.columns = append(t.columns, name)
}

// AddRow adiciona uma linha à tabela.
func (t *Table) AddRow(cells ...interface{}) {
	processedCells := make([]string, len(cells))
	for i, cell := range cells {
		processedCells[i] = fmt.Sprint(cell)
	}
	t.rows = append(t.rows, processedCells)
}

// Render renderiza a tabela como uma string.
func (t *Table) Render() string {
	tableData := pterm.TableData{t.columns}
	for _, row := range t.rows {
		tableData = append(tableData, row)
	}

	table := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithData(tableData)

	renderedTable, _ := table.Srender()
	return renderedTable
}

// Select mostra uma lista de opções e retorna a escolhida.
func (c *Console) Select(prompt string, options []string) (string, error) {
	return pterm.DefaultInteractiveSelect.
		WithOptions(options).
		WithMaxHeight(len(options)).
		Show(prompt)
}

// TextInput lê uma linha de texto, com valor padrão opcional.
func (c *Console) TextInput(prompt string, defaultValue string) (string, error) {
	value, err := pterm.DefaultInteractiveTextInput.WithDefaultValue(defaultValue).Show(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// SecretInput lê um token sem ecoar os caracteres.
func (c *Console) SecretInput(prompt string) (string, error) {
	value, err := pterm.DefaultInteractiveTextInput.WithMask("*").Show(prompt)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// Confirm faz uma pergunta de sim/não.
func (c *Console) Confirm(prompt string) (bool, error) {
	return pterm.DefaultInteractiveConfirm.Show(prompt)
}

// DisplayShareBars exibe a participação atual e alvo de cada entidade.
func (c *Console) DisplayShareBars(bars []types.ShareBar) {
	if len(bars) == 0 {
		pterm.Warning.Println("No entities to chart")
		return
	}

	maxShare := 0.0
	for _, b := range bars {
		maxShare = math.Max(maxShare, math.Max(b.Current, b.Target))
	}
	if maxShare == 0 {
		pterm.Warning.Println("All shares are 0% for this period")
		return
	}

	tableData := pterm.TableData{
		{"Entity", "Current", "", "Target", "", "Change"},
	}

	for _, b := range bars {
		current := strings.Repeat("█", int((b.Current/maxShare)*25))
		target := strings.Repeat("█", int((b.Target/maxShare)*25))

		delta := b.Target - b.Current
		change := pterm.FgYellow.Sprint("0%")
		targetBar := pterm.FgYellow.Sprint(target)
		if math.Abs(delta) >= 0.01 {
			if delta > 0 {
				change = pterm.FgGreen.Sprintf("+%.2f pp", delta)
				targetBar = pterm.FgGreen.Sprint(target)
			} else {
				change = pterm.FgRed.Sprintf("%.2f pp", delta)
				targetBar = pterm.FgRed.Sprint(target)
			}
		}

		tableData = append(tableData, []string{
			b.Name,
			fmt.Sprintf("%.2f%%", b.Current),
			pterm.FgBlue.Sprint(current),
			fmt.Sprintf("%.2f%%", b.Target),
			targetBar,
			change,
		})
	}

	table := pterm.DefaultTable.WithHasHeader().WithData(tableData)
	renderedTable, _ := table.Srender()

	panel := pterm.DefaultBox.WithTitle("Budget Share").WithBoxStyle(pterm.NewStyle(pterm.FgCyan)).Sprint(renderedTable)

	fmt.Println("\n" + panel)
}
