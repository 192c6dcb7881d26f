package main

import (
	"fmt"
	"os"

	"github.com/diillson/ads-budget-realloc-go/internal/adapter/driven/aws"
	"github.com/diillson/ads-budget-realloc-go/internal/adapter/driven/config"
	"github.com/diillson/ads-budget-realloc-go/internal/adapter/driven/export"
	"github.com/diillson/ads-budget-realloc-go/internal/adapter/driven/metrics"
	"github.com/diillson/ads-budget-realloc-go/internal/adapter/driven/platform"
	"github.com/diillson/ads-budget-realloc-go/internal/adapter/driving/cli"
	"github.com/diillson/ads-budget-realloc-go/internal/adapter/driving/httpapi"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
	"github.com/diillson/ads-budget-realloc-go/pkg/console"
	"github.com/diillson/ads-budget-realloc-go/pkg/version"
)

func main() {
	// Inicializa os repositórios
	deps := cli.Dependencies{
		ConfigRepo: config.NewConfigRepository(),
		ExportRepo: export.NewExportRepository(),
		Console:    console.NewConsole(),
		NewArchive: aws.NewS3ArchiveRepository,
		NewGateways: func(cfg types.Config) httpapi.GatewayProvider {
			return platform.NewGatewayFactory(cfg)
		},
		Metrics: metrics.NewPrometheusRecorder(),
	}

	app := cli.NewCLIApp(version.Version, deps)

	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
