package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diillson/ads-budget-realloc-go/internal/adapter/driving/httpapi"
	"github.com/diillson/ads-budget-realloc-go/internal/application/usecase"
	"github.com/diillson/ads-budget-realloc-go/internal/domain/repository"
	"github.com/diillson/ads-budget-realloc-go/internal/shared/types"
	"github.com/diillson/ads-budget-realloc-go/pkg/version"
)

// Dependencies são os adaptadores que o main injeta na CLI.
type Dependencies struct {
	ConfigRepo  repository.ConfigRepository
	ExportRepo  repository.ExportRepository
	Console     types.ConsoleInterface
	NewArchive  func(profile string) repository.ArchiveRepository
	NewGateways func(cfg types.Config) httpapi.GatewayProvider
	Metrics     MetricsExporter
}

// MetricsExporter é um MetricsRecorder que também expõe um endpoint HTTP.
type MetricsExporter interface {
	repository.MetricsRecorder
	Handler() http.Handler
}

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd *cobra.Command
	deps    Dependencies
	version string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string, deps Dependencies) *CLIApp {
	app := &CLIApp{
		version: versionStr,
		deps:    deps,
	}

	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:     "ads-realloc",
		Short:   "Redistribute a monthly ad budget across Meta Ads and Google Ads campaigns",
		Version: formattedVersion,
		RunE:    app.runCommand,
	}

	rootCmd.SetVersionTemplate(`{{printf "Ads Budget Reallocator version: %s\n" .Version}}`)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	flags.StringSliceP("platforms", "p", nil, "Platforms to reallocate (comma-separated): meta, google")
	flags.String("meta-token", "", "Meta Graph API access token (or META_ACCESS_TOKEN)")
	flags.String("meta-account", "", "Meta ad account id, with or without the act_ prefix")
	flags.String("google-customer", "", "Google Ads customer id")
	flags.String("google-credentials", "", "Path to the Google Ads credentials JSON (or GOOGLE_ADS_CREDENTIALS)")
	flags.Float64P("budget", "b", 0, "Total monthly budget when a single platform is selected")
	flags.Float64("meta-budget", 0, "Meta Ads total monthly budget")
	flags.Float64("google-budget", 0, "Google Ads total monthly budget")
	flags.String("padding", "", "Reserve kept aside from the remaining budget: 1%, 2%, 3%, 4%, 5% or any 0-100 value")
	flags.StringSlice("date-range", nil, "Spend window as start,end (YYYY-MM-DD); default: first of the month to today")
	flags.StringP("report-name", "n", "", "Specify the base name for the report file (without extension)")
	flags.StringSliceP("report-type", "y", nil, "Specify report types: csv, json, pdf")
	flags.StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	flags.String("s3-bucket", "", "Upload exported reports to this S3 bucket")
	flags.String("s3-prefix", "", "Key prefix for uploaded reports")
	flags.String("aws-profile", "", "AWS profile used for S3 uploads")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reallocation sessions over HTTP",
		RunE:  app.runServe,
	}
	serveCmd.Flags().String("listen", "", "Address to listen on (default :8080)")
	rootCmd.AddCommand(serveCmd)

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line arguments into a CLIArgs struct.
func (app *CLIApp) parseArgs(cmd *cobra.Command) (*types.CLIArgs, error) {
	flags := cmd.Flags()

	configFile, _ := flags.GetString("config-file")
	platforms, _ := flags.GetStringSlice("platforms")
	metaToken, _ := flags.GetString("meta-token")
	metaAccount, _ := flags.GetString("meta-account")
	googleCustomer, _ := flags.GetString("google-customer")
	googleCredentials, _ := flags.GetString("google-credentials")
	budget, _ := flags.GetFloat64("budget")
	metaBudget, _ := flags.GetFloat64("meta-budget")
	googleBudget, _ := flags.GetFloat64("google-budget")
	padding, _ := flags.GetString("padding")
	dateRange, _ := flags.GetStringSlice("date-range")
	reportName, _ := flags.GetString("report-name")
	reportType, _ := flags.GetStringSlice("report-type")
	dir, _ := flags.GetString("dir")
	s3Bucket, _ := flags.GetString("s3-bucket")
	s3Prefix, _ := flags.GetString("s3-prefix")
	awsProfile, _ := flags.GetString("aws-profile")
	listen := ""
	if flags.Lookup("listen") != nil {
		listen, _ = flags.GetString("listen")
	}

	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	// Orçamentos só sobrescrevem o arquivo quando a flag foi informada
	changed := func(name string, v float64) *float64 {
		if !flags.Changed(name) {
			return nil
		}
		return &v
	}

	return &types.CLIArgs{
		ConfigFile:         configFile,
		Platforms:          platforms,
		MetaToken:          metaToken,
		MetaAccount:        metaAccount,
		GoogleCustomer:     googleCustomer,
		GoogleCredentials:  googleCredentials,
		TotalMonthlyBudget: changed("budget", budget),
		MetaBudget:         changed("meta-budget", metaBudget),
		GoogleBudget:       changed("google-budget", googleBudget),
		Padding:            padding,
		DateRange:          dateRange,
		ReportName:         reportName,
		ReportType:         reportType,
		Dir:                dir,
		S3Bucket:           s3Bucket,
		S3Prefix:           s3Prefix,
		AWSProfile:         awsProfile,
		ListenAddr:         listen,
	}, nil
}

func (app *CLIApp) loadConfig(cmd *cobra.Command) (*types.Config, error) {
	cliArgs, err := app.parseArgs(cmd)
	if err != nil {
		return nil, err
	}
	return app.deps.ConfigRepo.Resolve(cliArgs)
}

func (app *CLIApp) newUseCase(cfg *types.Config, console types.ConsoleInterface) *usecase.ReallocationUseCase {
	var archive repository.ArchiveRepository
	if cfg.S3Bucket != "" && app.deps.NewArchive != nil {
		archive = app.deps.NewArchive(cfg.AWSProfile)
	}

	var metrics repository.MetricsRecorder
	if app.deps.Metrics != nil {
		metrics = app.deps.Metrics
	}

	return usecase.NewReallocationUseCase(app.deps.ExportRepo, archive, console, metrics)
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	displayWelcomeBanner(app.version)

	go version.CheckLatestVersion(app.version)

	cfg, err := app.loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := &sessionRunner{
		cfg:      cfg,
		uc:       app.newUseCase(cfg, app.deps.Console),
		console:  app.deps.Console,
		gateways: app.deps.NewGateways,
	}
	return runner.Run(ctx)
}

// runServe sobe a API HTTP com as mesmas configurações da CLI.
func (app *CLIApp) runServe(cmd *cobra.Command, args []string) error {
	cfg, err := app.loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console := httpapi.NewServerConsole(app.deps.Console)
	server := httpapi.NewServer(app.newUseCase(cfg, console), app.deps.NewGateways(*cfg), usecase.ExportRequest{
		ReportName: cfg.ReportName,
		ReportType: cfg.ReportType,
		Dir:        cfg.Dir,
		S3Bucket:   cfg.S3Bucket,
		S3Prefix:   cfg.S3Prefix,
	})
	server.SetConsole(console)
	server.SetDefaultPadding(cfg.Padding)
	if app.deps.Metrics != nil {
		server.SetMetricsHandler(app.deps.Metrics.Handler())
	}

	app.deps.Console.LogInfo("Listening on %s", cfg.ListenAddr)
	if err := server.ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	app.deps.Console.LogSuccess("Server stopped")
	return nil
}
