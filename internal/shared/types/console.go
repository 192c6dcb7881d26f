package types

// ConsoleInterface define a interface para saída no console.
type ConsoleInterface interface {
	Print(a ...interface{})
	Printf(format string, a ...interface{})
	Println(a ...interface{})

	LogInfo(format string, a ...interface{})
	LogWarning(format string, a ...interface{})
	LogError(format string, a ...interface{})
	LogSuccess(format string, a ...interface{})

	Status(message string) StatusHandle

	CreateTable() TableInterface
	DisplayShareBars(bars []ShareBar)

	// Prompts interativos usados pela sessão de realocação.
	Select(prompt string, options []string) (string, error)
	TextInput(prompt string, defaultValue string) (string, error)
	SecretInput(prompt string) (string, error)
	Confirm(prompt string) (bool, error)
}

// StatusHandle é uma interface para atualizar uma mensagem de status.
type StatusHandle interface {
	Update(message string)
	Stop()
}

// TableInterface define a interface para criar e manipular tabelas.
type TableInterface interface {
	AddColumn(name string, options ...interface{})
	AddRow(cells ...interface{})
	Render() string
}

// ShareBar é uma linha do gráfico de participação: percentual atual e alvo de
// uma entidade.
type ShareBar struct {
	Name    string
	Current float64
	Target  float64
}
