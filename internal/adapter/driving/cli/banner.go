package cli

import (
	"fmt"

	"github.com/diillson/ads-budget-realloc-go/pkg/version"
	"github.com/fatih/color"
)

// displayWelcomeBanner exibe o banner de boas-vindas com informações de versão.
func displayWelcomeBanner(versionStr string) {
	banner := `
     ___       __        ____            ____           ____
    /   | ____/ /____   / __ \___  ____ _/ / /___  _____/ __/
   / /| |/ __  / ___/  / /_/ / _ \/ __ ` + "`" + `/ / / __ \/ ___/ /_
  / ___ / /_/ (__  )  / _, _/  __/ /_/ / / / /_/ / /__/ __/
 /_/  |_\__,_/____/  /_/ |_|\___/\__,_/_/_/\____/\___/_/
        `
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	blue := color.New(color.FgBlue, color.Bold).SprintFunc()

	fmt.Println(red(banner))

	formattedVersion := version.FormatVersion()
	fmt.Println(blue(fmt.Sprintf("Ads Budget Reallocator CLI (v%s)", formattedVersion)))
}
